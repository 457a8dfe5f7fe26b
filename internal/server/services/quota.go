package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Ronak-Sheladiya/pixel-vault/internal/dbx"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/logging"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/models"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/repositories/repomanager"
)

// QuotaService is the admission ledger for storage bytes. Every stored byte
// is charged to exactly one user and to the shared global pool; the pool's
// conditional update is what keeps concurrent uploads from jointly
// overflowing the limit.
type QuotaService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	globalLimit int64
}

func NewQuotaService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger, globalLimit int64) *QuotaService {
	return &QuotaService{
		db:          db,
		repomanager: m,
		logger:      logger.With("service", "quota"),
		globalLimit: globalLimit,
	}
}

// Init creates the global pool row if missing. Called once at startup.
func (s *QuotaService) Init(ctx context.Context) error {
	return s.repomanager.Quota(s.db).EnsureGlobal(ctx, s.globalLimit)
}

// Reserve admits size bytes for userID, or fails with a
// *common.QuotaExceededError without changing anything. The global pool and
// the user's counter move together inside one transaction.
func (s *QuotaService) Reserve(ctx context.Context, userID string, size int64) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Quota(tx).TryReserveGlobal(ctx, size); err != nil {
			return err
		}
		return s.repomanager.Users(tx).AddStorageUsed(ctx, userID, size)
	})
}

// Release returns size bytes to the pool after a delete or a failed upload.
// Both counters clamp at zero, so a double release drifts the ledger low
// rather than negative.
func (s *QuotaService) Release(ctx context.Context, userID string, size int64) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Quota(tx).ReleaseGlobal(ctx, size); err != nil {
			return err
		}
		return s.repomanager.Users(tx).AddStorageUsed(ctx, userID, -size)
	})
}

// Usage reports both sides of the ledger for one user.
type Usage struct {
	UserUsed    int64
	UserLimit   int64
	GlobalUsed  int64
	GlobalLimit int64
}

func (s *QuotaService) Usage(ctx context.Context, userID string) (*Usage, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	global, err := s.repomanager.Quota(s.db).GetGlobal(ctx)
	if err != nil {
		return nil, err
	}
	return &Usage{
		UserUsed:    user.StorageUsed,
		UserLimit:   user.StorageLimit,
		GlobalUsed:  global.TotalUsed,
		GlobalLimit: global.TotalLimit,
	}, nil
}

// Reconcile recomputes every counter from the file catalog, repairing drift
// left behind by crashes between store writes and ledger updates.
func (s *QuotaService) Reconcile(ctx context.Context) (int64, error) {
	var used int64
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Quota(tx)
		var err error
		used, err = repo.ReconcileGlobal(ctx)
		if err != nil {
			return fmt.Errorf("error reconciling global pool: %w", err)
		}
		return repo.ReconcileUsers(ctx)
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info(ctx, "quota reconciled", "global_used", used)
	return used, nil
}

// GlobalLimit reports the configured pool capacity.
func (s *QuotaService) GlobalLimit() int64 {
	if s.globalLimit > 0 {
		return s.globalLimit
	}
	return models.DefaultStorageLimit
}
