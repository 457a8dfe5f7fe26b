// Package services contains server-side business logic. This file implements
// UserService, which handles signup, email verification, login with
// server-stored refresh tokens, and the password reset flow.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Ronak-Sheladiya/pixel-vault/internal/common"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/dbx"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/logging"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/auth"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/config"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/models"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/repositories/repomanager"
)

const resetTokenValidity = time.Hour

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// SignUpRequest carries the fields a new account needs.
type SignUpRequest struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// UserService provides account operations: signup with email verification,
// login, refresh-token rotation, and password reset.
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	notifier                     Notifier
	logger                       logging.Logger
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	userStorageLimit             int64
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, notifier Notifier,
	logger logging.Logger, cfg *config.Config) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		notifier:                     notifier,
		logger:                       logger.With("service", "users"),
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		userStorageLimit:             cfg.UserStorageLimit,
	}
}

// SignUp creates an account, sends a verification email, and links any share
// invitations that were waiting on this address. Linking and mail delivery
// are best effort; the account is created either way.
func (s *UserService) SignUp(ctx context.Context, req SignUpRequest) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.ErrInternal
	}
	verificationToken, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrInternal
	}

	user := &models.User{
		Email:             req.Email,
		PasswordHash:      string(hash),
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		VerificationToken: verificationToken,
		StorageLimit:      s.userStorageLimit,
	}
	created, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrEmailTaken) {
			return nil, common.ErrEmailTaken
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	if n, err := s.repomanager.Shares(s.db).LinkPending(ctx, created.Email, created.ID); err != nil {
		s.logger.Warn(ctx, "linking pending invitations failed", "user", created.ID, "error", err)
	} else if n > 0 {
		s.logger.Info(ctx, "linked pending invitations", "user", created.ID, "count", n)
	}

	if err := s.notifier.SendVerification(ctx, created.Email, verificationToken); err != nil {
		s.logger.Warn(ctx, "verification email failed", "user", created.ID, "error", err)
	}
	return created, nil
}

// VerifyEmail marks the account behind token as verified and burns the token.
func (s *UserService) VerifyEmail(ctx context.Context, token string) error {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrInvalidState
		}
		return fmt.Errorf("error finding verification token: %w", err)
	}
	return repo.MarkVerified(ctx, user.ID)
}

// Login verifies the credentials and, on success, returns a new TokenPair.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil, common.ErrUnauthorized
		}
		return nil, nil, common.ErrInternal
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil, common.ErrUnauthorized
	}
	// Verification state is only revealed after the password matched.
	if !user.IsVerified {
		return nil, nil, common.ErrEmailNotVerified
	}
	pair, err := s.generateTokenPair(ctx, user.ID, s.db)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// RefreshToken validates a refresh token, rotates it transactionally, and
// returns a fresh TokenPair. Expired tokens yield ErrTokenExpired.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expires.Before(time.Now()) {
		return nil, common.ErrTokenExpired
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, token.UserID, tx)
		return genErr
	}); err != nil {
		return nil, err
	}
	return pair, nil
}

// Logout discards the refresh token; unknown tokens are not an error.
func (s *UserService) Logout(ctx context.Context, refreshToken string) error {
	return s.repomanager.RefreshTokens(s.db).Delete(ctx, refreshToken)
}

// Me returns the account behind an authenticated user id.
func (s *UserService) Me(ctx context.Context, userID string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, userID)
}

// ForgotPassword issues a reset token when the email is known. It reports
// success either way so the endpoint cannot be used to probe for accounts.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil
		}
		return common.ErrInternal
	}
	token, err := common.MakeRandHexString(32)
	if err != nil {
		return common.ErrInternal
	}
	if err := repo.SetResetToken(ctx, user.ID, token, time.Now().Add(resetTokenValidity)); err != nil {
		return fmt.Errorf("error storing reset token: %w", err)
	}
	if err := s.notifier.SendPasswordReset(ctx, user.Email, token); err != nil {
		s.logger.Warn(ctx, "password reset email failed", "user", user.ID, "error", err)
	}
	return nil
}

// ResetPassword exchanges a valid reset token for a new password hash.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrInvalidState
		}
		return fmt.Errorf("error finding reset token: %w", err)
	}
	if user.ResetPasswordExpires == nil || user.ResetPasswordExpires.Before(time.Now()) {
		return common.ErrInvalidState
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return common.ErrInternal
	}
	return repo.UpdatePassword(ctx, user.ID, string(hash))
}

func (s *UserService) generateTokenPair(ctx context.Context, userID string, tx dbx.DBTX) (*TokenPair, error) {
	access, err := auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrInternal
	}
	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrInternal
	}
	if err := s.repomanager.RefreshTokens(tx).Create(ctx, userID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
