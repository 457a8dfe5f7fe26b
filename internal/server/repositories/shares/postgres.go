package shares

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Ronak-Sheladiya/pixel-vault/internal/common"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/dbx"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/models"
)

// PostgresRepository implements share storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const shareColumns = `id, folder_id, shared_by, shared_with, invited_email,
	permission, public_link, link_expires, is_public, created_at`

func scanShare(row interface{ Scan(...any) error }) (*models.Share, error) {
	s := &models.Share{}
	var permission string
	err := row.Scan(&s.ID, &s.FolderID, &s.SharedByID, &s.SharedWithID,
		&s.InvitedEmail, &permission, &s.PublicLink, &s.LinkExpires,
		&s.IsPublic, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	s.Permission = models.ParsePermission(permission)
	return s, nil
}

func (r *PostgresRepository) Create(ctx context.Context, share *models.Share) (*models.Share, error) {
	if share.ID == "" {
		share.ID = uuid.NewString()
	}
	query := `
		INSERT INTO shares (id, folder_id, shared_by, shared_with, invited_email,
			permission, public_link, link_expires, is_public)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		share.ID, share.FolderID, share.SharedByID, share.SharedWithID,
		share.InvitedEmail, share.Permission.String(), share.PublicLink,
		share.LinkExpires, share.IsPublic).Scan(&share.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return share, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Share, error) {
	query := `SELECT ` + shareColumns + ` FROM shares WHERE id = $1`
	return scanShare(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) FindDirect(ctx context.Context, folderID, userID string) (*models.Share, error) {
	query := `SELECT ` + shareColumns + ` FROM shares WHERE folder_id = $1 AND shared_with = $2`
	return scanShare(r.db.QueryRowContext(ctx, query, folderID, userID))
}

func (r *PostgresRepository) FindInvite(ctx context.Context, folderID, email string) (*models.Share, error) {
	query := `SELECT ` + shareColumns + ` FROM shares
		WHERE folder_id = $1 AND invited_email = $2 AND shared_with IS NULL`
	return scanShare(r.db.QueryRowContext(ctx, query, folderID, email))
}

func (r *PostgresRepository) FindByPublicLink(ctx context.Context, token string) (*models.Share, error) {
	query := `SELECT ` + shareColumns + ` FROM shares
		WHERE public_link = $1 AND is_public = TRUE`
	return scanShare(r.db.QueryRowContext(ctx, query, token))
}

func (r *PostgresRepository) ListByFolder(ctx context.Context, folderID string) ([]*models.Share, error) {
	query := `SELECT ` + shareColumns + ` FROM shares WHERE folder_id = $1 ORDER BY created_at`
	return r.list(ctx, query, folderID)
}

func (r *PostgresRepository) ListForUser(ctx context.Context, userID string) ([]*models.Share, error) {
	query := `SELECT ` + shareColumns + ` FROM shares WHERE shared_with = $1 ORDER BY created_at`
	return r.list(ctx, query, userID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Share, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Share
	for rows.Next() {
		s, err := scanShare(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) UpdatePermission(ctx context.Context, id string, permission models.Permission) (*models.Share, error) {
	query := `UPDATE shares SET permission = $2 WHERE id = $1 RETURNING ` + shareColumns
	return scanShare(r.db.QueryRowContext(ctx, query, id, permission.String()))
}

func (r *PostgresRepository) LinkPending(ctx context.Context, email, userID string) (int64, error) {
	query := `UPDATE shares SET shared_with = $2, invited_email = ''
		WHERE invited_email = $1 AND shared_with IS NULL`
	res, err := r.db.ExecContext(ctx, query, email, userID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM shares WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
