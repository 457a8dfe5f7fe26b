package comments

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

// PostgresRepository implements comment storage over a dbx.DBTX (*sql.DB or *sql.Tx).
// Mentions live in a comment_mentions join table and are loaded alongside
// the comments they belong to.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const commentColumns = `id, file_id, user_id, text, parent_id, created_at, updated_at`

func scanComment(row interface{ Scan(...any) error }) (*models.Comment, error) {
	c := &models.Comment{}
	err := row.Scan(&c.ID, &c.FileID, &c.UserID, &c.Text, &c.ParentID,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) Create(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	query := `
		INSERT INTO comments (id, file_id, user_id, text, parent_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		comment.ID, comment.FileID, comment.UserID, comment.Text,
		comment.ParentID).Scan(&comment.CreatedAt, &comment.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if err := r.saveMentions(ctx, comment.ID, comment.MentionIDs); err != nil {
		return nil, err
	}
	return comment, nil
}

func (r *PostgresRepository) saveMentions(ctx context.Context, commentID string, userIDs []string) error {
	query := `INSERT INTO comment_mentions (comment_id, user_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`
	for _, userID := range userIDs {
		if _, err := r.db.ExecContext(ctx, query, commentID, userID); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) loadMentions(ctx context.Context, comments []*models.Comment) error {
	if len(comments) == 0 {
		return nil
	}
	byID := make(map[string]*models.Comment, len(comments))
	for _, c := range comments {
		byID[c.ID] = c
	}
	query := `SELECT m.comment_id, m.user_id FROM comment_mentions m
		JOIN comments c ON c.id = m.comment_id WHERE c.file_id = $1`
	rows, err := r.db.QueryContext(ctx, query, comments[0].FileID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var commentID, userID string
		if err := rows.Scan(&commentID, &userID); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		if c, ok := byID[commentID]; ok {
			c.MentionIDs = append(c.MentionIDs, userID)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE id = $1`
	return scanComment(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetOwn(ctx context.Context, id, userID string) (*models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE id = $1 AND user_id = $2`
	return scanComment(r.db.QueryRowContext(ctx, query, id, userID))
}

func (r *PostgresRepository) ListByFile(ctx context.Context, fileID string) ([]*models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE file_id = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, fileID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if err := r.loadMentions(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) UpdateText(ctx context.Context, id, userID, text string) (*models.Comment, error) {
	query := `UPDATE comments SET text = $3, updated_at = now()
		WHERE id = $1 AND user_id = $2 RETURNING ` + commentColumns
	return scanComment(r.db.QueryRowContext(ctx, query, id, userID, text))
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM comments WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteReplies(ctx context.Context, id string) error {
	query := `DELETE FROM comments WHERE parent_id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
