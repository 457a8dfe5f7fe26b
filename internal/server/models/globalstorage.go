package models

import "time"

// DefaultStorageLimit is the capacity of the shared global pool and the
// default per-user ceiling (9 GiB). Users compete for the global pool; the
// global limit is the binding constraint.
const DefaultStorageLimit = 9 * 1024 * 1024 * 1024

// GlobalStorage is the singleton quota pool shared by every user. Exactly one
// row exists; it is created lazily on first access. All updates go through
// atomic conditional SQL so concurrent reservations cannot jointly overflow
// TotalLimit.
type GlobalStorage struct {
	TotalUsed   int64
	TotalLimit  int64
	LastUpdated time.Time
}
