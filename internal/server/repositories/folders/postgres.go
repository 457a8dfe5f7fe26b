package folders

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

// PostgresRepository implements folder storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const folderColumns = `id, owner_id, parent_id, name, description, path, color, created_at, updated_at`

func scanFolder(row interface{ Scan(...any) error }) (*models.Folder, error) {
	f := &models.Folder{}
	err := row.Scan(&f.ID, &f.OwnerID, &f.ParentID, &f.Name, &f.Description,
		&f.Path, &f.Color, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

func (r *PostgresRepository) Create(ctx context.Context, folder *models.Folder) (*models.Folder, error) {
	if folder.ID == "" {
		folder.ID = uuid.NewString()
	}
	query := `
		INSERT INTO folders (id, owner_id, parent_id, name, description, path, color)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		folder.ID, folder.OwnerID, folder.ParentID, folder.Name,
		folder.Description, folder.Path, folder.Color).Scan(&folder.CreatedAt, &folder.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return folder, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Folder, error) {
	query := `SELECT ` + folderColumns + ` FROM folders WHERE id = $1`
	return scanFolder(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetOwned(ctx context.Context, id, ownerID string) (*models.Folder, error) {
	query := `SELECT ` + folderColumns + ` FROM folders WHERE id = $1 AND owner_id = $2`
	return scanFolder(r.db.QueryRowContext(ctx, query, id, ownerID))
}

func (r *PostgresRepository) ListChildren(ctx context.Context, ownerID string, parentID *string) ([]*models.Folder, error) {
	query := `SELECT ` + folderColumns + ` FROM folders
		WHERE owner_id = $1 AND parent_id IS NOT DISTINCT FROM $2
		ORDER BY created_at DESC`
	return r.list(ctx, query, ownerID, parentID)
}

func (r *PostgresRepository) ListSubfolders(ctx context.Context, parentID string) ([]*models.Folder, error) {
	query := `SELECT ` + folderColumns + ` FROM folders WHERE parent_id = $1`
	return r.list(ctx, query, parentID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Folder, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Folder
	for rows.Next() {
		f, err := scanFolder(rows)
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

func (r *PostgresRepository) Update(ctx context.Context, id, ownerID, name, description, color string) (*models.Folder, error) {
	query := `UPDATE folders SET name = $3, description = $4, color = $5, updated_at = now()
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + folderColumns
	return scanFolder(r.db.QueryRowContext(ctx, query, id, ownerID, name, description, color))
}

// Move rewrites the parent pointer and this folder's own path. Descendant
// paths are left as written at their creation time.
func (r *PostgresRepository) Move(ctx context.Context, id, ownerID string, parentID *string, path string) (*models.Folder, error) {
	query := `UPDATE folders SET parent_id = $3, path = $4, updated_at = now()
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + folderColumns
	return scanFolder(r.db.QueryRowContext(ctx, query, id, ownerID, parentID, path))
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM folders WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
