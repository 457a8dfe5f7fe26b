// Package common defines shared constants and sentinel errors used across
// the Pixel Vault server. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal         = errors.New("internal error")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrPermissionDenied = errors.New("permission denied")

	// Admission / upload errors.
	ErrQuotaExceeded        = errors.New("storage quota exceeded")
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// Account lifecycle errors.
	ErrEmailTaken       = errors.New("email already registered")
	ErrEmailNotVerified = errors.New("email not verified")
	ErrInvalidState     = errors.New("invalid or expired token")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// QuotaExceededError reports a failed storage admission with the numbers the
// caller needs to act on. It matches ErrQuotaExceeded via errors.Is.
type QuotaExceededError struct {
	Used      int64
	Limit     int64
	Requested int64
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("storage quota exceeded: used %d of %d, requested %d", e.Used, e.Limit, e.Requested)
}

func (e *QuotaExceededError) Unwrap() error { return ErrQuotaExceeded }
