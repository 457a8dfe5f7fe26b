package files

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

// PostgresRepository implements catalog storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const fileColumns = `id, owner_id, folder_id, name, original_name, type, mime_type,
	size, storage_key, meta_width, meta_height, meta_duration, meta_dimensions, uploaded_at`

func scanFile(row interface{ Scan(...any) error }) (*models.File, error) {
	f := &models.File{}
	err := row.Scan(&f.ID, &f.OwnerID, &f.FolderID, &f.Name, &f.OriginalName,
		&f.Type, &f.MimeType, &f.Size, &f.StorageKey,
		&f.Metadata.Width, &f.Metadata.Height, &f.Metadata.Duration,
		&f.Metadata.Dimensions, &f.UploadedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

func (r *PostgresRepository) Create(ctx context.Context, file *models.File) (*models.File, error) {
	if file.ID == "" {
		file.ID = uuid.NewString()
	}
	query := `
		INSERT INTO files (id, owner_id, folder_id, name, original_name, type, mime_type,
			size, storage_key, meta_width, meta_height, meta_duration, meta_dimensions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING uploaded_at
	`
	err := r.db.QueryRowContext(ctx, query,
		file.ID, file.OwnerID, file.FolderID, file.Name, file.OriginalName,
		file.Type, file.MimeType, file.Size, file.StorageKey,
		file.Metadata.Width, file.Metadata.Height, file.Metadata.Duration,
		file.Metadata.Dimensions).Scan(&file.UploadedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return file, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE id = $1`
	return scanFile(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetOwned(ctx context.Context, id, ownerID string) (*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE id = $1 AND owner_id = $2`
	return scanFile(r.db.QueryRowContext(ctx, query, id, ownerID))
}

// ListByFolder returns the owner's files in a folder (nil = root), newest first.
func (r *PostgresRepository) ListByFolder(ctx context.Context, ownerID string, folderID *string) ([]*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files
		WHERE owner_id = $1 AND folder_id IS NOT DISTINCT FROM $2
		ORDER BY uploaded_at DESC`
	return r.list(ctx, query, ownerID, folderID)
}

func (r *PostgresRepository) ListInFolder(ctx context.Context, folderID string) ([]*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE folder_id = $1`
	return r.list(ctx, query, folderID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.File, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// Rename updates the display name only; the store key never changes.
func (r *PostgresRepository) Rename(ctx context.Context, id, ownerID, name string) (*models.File, error) {
	query := `UPDATE files SET name = $3 WHERE id = $1 AND owner_id = $2 RETURNING ` + fileColumns
	return scanFile(r.db.QueryRowContext(ctx, query, id, ownerID, name))
}

// Move reassigns the folder pointer; no physical data moves.
func (r *PostgresRepository) Move(ctx context.Context, id, ownerID string, folderID *string) (*models.File, error) {
	query := `UPDATE files SET folder_id = $3 WHERE id = $1 AND owner_id = $2 RETURNING ` + fileColumns
	return scanFile(r.db.QueryRowContext(ctx, query, id, ownerID, folderID))
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM files WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
