package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Ronak-Sheladiya/pixel-vault/internal/common"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/dbx"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/models"
)

// PostgresRepository implements user storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, email, password_hash, first_name, last_name, is_verified,
	verification_token, reset_password_token, reset_password_expires,
	storage_used, storage_limit, created_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.IsVerified, &u.VerificationToken, &u.ResetPasswordToken,
		&u.ResetPasswordExpires, &u.StorageUsed, &u.StorageLimit, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

// Create inserts a new user. A unique-violation on email surfaces as
// common.ErrEmailTaken so signup can report it without string matching.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	query := `
		INSERT INTO users (id, email, password_hash, first_name, last_name, verification_token, storage_limit)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName,
		user.VerificationToken, user.StorageLimit).Scan(&user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrEmailTaken
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) GetByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE verification_token = $1 AND verification_token <> ''`
	return scanUser(r.db.QueryRowContext(ctx, query, token))
}

func (r *PostgresRepository) GetByResetToken(ctx context.Context, token string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE reset_password_token = $1 AND reset_password_token <> ''`
	return scanUser(r.db.QueryRowContext(ctx, query, token))
}

// MarkVerified flips the verification flag and burns the token.
func (r *PostgresRepository) MarkVerified(ctx context.Context, id string) error {
	query := `UPDATE users SET is_verified = TRUE, verification_token = '' WHERE id = $1`
	return r.execOne(ctx, query, id)
}

func (r *PostgresRepository) SetResetToken(ctx context.Context, id, token string, expires time.Time) error {
	query := `UPDATE users SET reset_password_token = $2, reset_password_expires = $3 WHERE id = $1`
	return r.execOne(ctx, query, id, token, expires)
}

// UpdatePassword stores the new hash and burns any outstanding reset token.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	query := `UPDATE users SET password_hash = $2, reset_password_token = '', reset_password_expires = NULL WHERE id = $1`
	return r.execOne(ctx, query, id, passwordHash)
}

// AddStorageUsed atomically adjusts the per-user counter. Negative deltas are
// clamped at zero to defend against double-release drift.
func (r *PostgresRepository) AddStorageUsed(ctx context.Context, id string, delta int64) error {
	query := `UPDATE users SET storage_used = GREATEST(storage_used + $2, 0) WHERE id = $1`
	return r.execOne(ctx, query, id, delta)
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
