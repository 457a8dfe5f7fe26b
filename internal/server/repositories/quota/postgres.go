package quota

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Ronak-Sheladiya/pixel-vault/internal/common"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/dbx"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/models"
)

// PostgresRepository keeps the quota pool in the global_storage singleton row.
// The reserve path is a single conditional UPDATE so two concurrent uploads
// can never jointly push total_used past total_limit.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) EnsureGlobal(ctx context.Context, limit int64) error {
	query := `
		INSERT INTO global_storage (id, total_used, total_limit)
		VALUES (1, 0, $1)
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, limit); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetGlobal(ctx context.Context) (*models.GlobalStorage, error) {
	query := `SELECT total_used, total_limit, last_updated FROM global_storage WHERE id = 1`
	g := &models.GlobalStorage{}
	err := r.db.QueryRowContext(ctx, query).Scan(&g.TotalUsed, &g.TotalLimit, &g.LastUpdated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return g, nil
}

func (r *PostgresRepository) TryReserveGlobal(ctx context.Context, size int64) error {
	query := `
		UPDATE global_storage
		SET total_used = total_used + $1, last_updated = now()
		WHERE id = 1 AND total_used + $1 <= total_limit
	`
	res, err := r.db.ExecContext(ctx, query, size)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		g, err := r.GetGlobal(ctx)
		if err != nil {
			return err
		}
		return &common.QuotaExceededError{Used: g.TotalUsed, Limit: g.TotalLimit, Requested: size}
	}
	return nil
}

func (r *PostgresRepository) ReleaseGlobal(ctx context.Context, size int64) error {
	query := `
		UPDATE global_storage
		SET total_used = GREATEST(total_used - $1, 0), last_updated = now()
		WHERE id = 1
	`
	if _, err := r.db.ExecContext(ctx, query, size); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ReconcileGlobal(ctx context.Context) (int64, error) {
	query := `
		UPDATE global_storage
		SET total_used = (SELECT COALESCE(SUM(size), 0) FROM files), last_updated = now()
		WHERE id = 1
		RETURNING total_used
	`
	var used int64
	if err := r.db.QueryRowContext(ctx, query).Scan(&used); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return used, nil
}

func (r *PostgresRepository) ReconcileUsers(ctx context.Context) error {
	// A FROM-joined UPDATE only touches matched rows, so users with no files
	// are zeroed in a second statement.
	first := `
		UPDATE users u
		SET storage_used = f.total
		FROM (SELECT user_id, SUM(size) AS total FROM files GROUP BY user_id) f
		WHERE u.id = f.user_id
	`
	if _, err := r.db.ExecContext(ctx, first); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	second := `
		UPDATE users SET storage_used = 0
		WHERE NOT EXISTS (SELECT 1 FROM files WHERE files.user_id = users.id)
	`
	if _, err := r.db.ExecContext(ctx, second); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
