package quota

import (
	"context"

	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/models"
)

// Repository manages the shared global storage pool. TryReserve is the
// admission gate for uploads: it either accounts the requested bytes
// atomically or reports the current usage that blocked them.
type Repository interface {
	// EnsureGlobal creates the singleton pool row with the given limit if it
	// does not exist yet. Safe to call concurrently.
	EnsureGlobal(ctx context.Context, limit int64) error
	GetGlobal(ctx context.Context) (*models.GlobalStorage, error)
	// TryReserveGlobal atomically adds size to the pool if it fits. A
	// *common.QuotaExceededError is returned when it does not.
	TryReserveGlobal(ctx context.Context, size int64) error
	// ReleaseGlobal subtracts size from the pool, clamping at zero.
	ReleaseGlobal(ctx context.Context, size int64) error
	// ReconcileGlobal recomputes the pool usage from the file catalog and
	// returns the corrected value.
	ReconcileGlobal(ctx context.Context) (int64, error)
	// ReconcileUsers recomputes every user's storage_used from the catalog.
	ReconcileUsers(ctx context.Context) error
}
