package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Ronak-Sheladiya/pixel-vault/internal/common"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/models"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/repositories/repomanager"
)

// AccessService decides what a user may do with a folder. Ownership grants
// admin; a direct share grants its stored level; everything else is none.
// Permissions do not inherit: sharing a folder says nothing about its
// subfolders.
type AccessService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewAccessService(db *sql.DB, m repomanager.RepositoryManager) *AccessService {
	return &AccessService{db: db, repomanager: m}
}

// Resolve returns the user's permission level on the folder. Unknown folders
// surface as ErrNotFound so callers cannot tell absent from forbidden apart
// unless they hold at least view access.
func (s *AccessService) Resolve(ctx context.Context, userID, folderID string) (*models.Folder, models.Permission, error) {
	folder, err := s.repomanager.Folders(s.db).Get(ctx, folderID)
	if err != nil {
		return nil, models.PermissionNone, err
	}
	if folder.OwnerID == userID {
		return folder, models.PermissionAdmin, nil
	}
	share, err := s.repomanager.Shares(s.db).FindDirect(ctx, folderID, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return folder, models.PermissionNone, nil
		}
		return nil, models.PermissionNone, err
	}
	return folder, share.Permission, nil
}

// Require resolves the folder and fails unless the user holds at least the
// wanted level. A user with no access at all gets ErrNotFound, the same
// answer a nonexistent folder gives, so probing cannot confirm existence.
// ErrPermissionDenied means the user holds some access but not enough.
func (s *AccessService) Require(ctx context.Context, userID, folderID string, want models.Permission) (*models.Folder, error) {
	folder, level, err := s.Resolve(ctx, userID, folderID)
	if err != nil {
		return nil, err
	}
	if level == models.PermissionNone {
		return nil, common.ErrNotFound
	}
	if level < want {
		return nil, common.ErrPermissionDenied
	}
	return folder, nil
}

// ResolvePublicLink loads the folder behind an unauthenticated share token.
// Expired links are reported as ErrNotFound, same as tokens that never
// existed.
func (s *AccessService) ResolvePublicLink(ctx context.Context, token string) (*models.Folder, *models.Share, error) {
	share, err := s.repomanager.Shares(s.db).FindByPublicLink(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	if share.LinkExpires != nil && share.LinkExpires.Before(time.Now()) {
		return nil, nil, common.ErrNotFound
	}
	folder, err := s.repomanager.Folders(s.db).Get(ctx, share.FolderID)
	if err != nil {
		return nil, nil, err
	}
	return folder, share, nil
}
