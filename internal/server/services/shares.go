package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/Ronak-Sheladiya/pixel-vault/internal/common"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/logging"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/models"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/repositories/repomanager"
)

// SharedFolder pairs a share grant with the folder it opens.
type SharedFolder struct {
	Share  *models.Share
	Folder *models.Folder
}

// ShareService manages folder sharing: direct grants to existing users,
// email invitations for addresses without an account yet, and tokenized
// public links.
type ShareService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	access      *AccessService
	notifier    Notifier
	logger      logging.Logger
}

func NewShareService(db *sql.DB, m repomanager.RepositoryManager, access *AccessService,
	notifier Notifier, logger logging.Logger) *ShareService {
	return &ShareService{
		db:          db,
		repomanager: m,
		access:      access,
		notifier:    notifier,
		logger:      logger.With("service", "shares"),
	}
}

// ShareWithEmail grants email access to folderID at the given level. When
// the address belongs to a known user the grant is direct; otherwise a
// pending invitation is stored and linked when that user signs up. Sharing
// again with the same address updates the level instead of duplicating the
// grant. Requires admin on the folder.
func (s *ShareService) ShareWithEmail(ctx context.Context, userID, folderID, email string, permission models.Permission) (*models.Share, error) {
	folder, err := s.access.Require(ctx, userID, folderID, models.PermissionAdmin)
	if err != nil {
		return nil, err
	}
	if permission == models.PermissionNone {
		return nil, common.ErrInvalidState
	}

	sharesRepo := s.repomanager.Shares(s.db)
	target, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	switch {
	case err == nil:
		if target.ID == folder.OwnerID {
			return nil, common.ErrInvalidState
		}
		if existing, ferr := sharesRepo.FindDirect(ctx, folderID, target.ID); ferr == nil {
			return sharesRepo.UpdatePermission(ctx, existing.ID, permission)
		} else if !errors.Is(ferr, common.ErrNotFound) {
			return nil, ferr
		}
		share, err := sharesRepo.Create(ctx, &models.Share{
			FolderID:     folderID,
			SharedByID:   userID,
			SharedWithID: &target.ID,
			Permission:   permission,
		})
		if err != nil {
			return nil, err
		}
		s.sendInvitation(ctx, email, folder.Name, userID)
		return share, nil

	case errors.Is(err, common.ErrNotFound):
		if existing, ferr := sharesRepo.FindInvite(ctx, folderID, email); ferr == nil {
			return sharesRepo.UpdatePermission(ctx, existing.ID, permission)
		} else if !errors.Is(ferr, common.ErrNotFound) {
			return nil, ferr
		}
		share, err := sharesRepo.Create(ctx, &models.Share{
			FolderID:     folderID,
			SharedByID:   userID,
			InvitedEmail: email,
			Permission:   permission,
		})
		if err != nil {
			return nil, err
		}
		s.sendInvitation(ctx, email, folder.Name, userID)
		return share, nil

	default:
		return nil, err
	}
}

func (s *ShareService) sendInvitation(ctx context.Context, email, folderName, inviterID string) {
	inviter, err := s.repomanager.Users(s.db).GetByID(ctx, inviterID)
	if err != nil {
		s.logger.Warn(ctx, "inviter lookup failed", "user", inviterID, "error", err)
		return
	}
	if err := s.notifier.SendShareInvitation(ctx, email, folderName, inviter.Email); err != nil {
		s.logger.Warn(ctx, "invitation email failed", "to", email, "error", err)
	}
}

// CreatePublicLink mints an unauthenticated view link for the folder with an
// optional expiry. Requires admin on the folder.
func (s *ShareService) CreatePublicLink(ctx context.Context, userID, folderID string, expires *time.Time) (*models.Share, error) {
	if _, err := s.access.Require(ctx, userID, folderID, models.PermissionAdmin); err != nil {
		return nil, err
	}
	return s.repomanager.Shares(s.db).Create(ctx, &models.Share{
		FolderID:    folderID,
		SharedByID:  userID,
		Permission:  models.PermissionView,
		PublicLink:  shortuuid.New(),
		LinkExpires: expires,
		IsPublic:    true,
	})
}

// Members lists every grant on a folder. Requires admin.
func (s *ShareService) Members(ctx context.Context, userID, folderID string) ([]*models.Share, error) {
	if _, err := s.access.Require(ctx, userID, folderID, models.PermissionAdmin); err != nil {
		return nil, err
	}
	return s.repomanager.Shares(s.db).ListByFolder(ctx, folderID)
}

// requireOwner loads the grant's folder and rejects callers other than its
// owner. An admin-level grant is not enough to manage other users' grants.
func (s *ShareService) requireOwner(ctx context.Context, userID, folderID string) error {
	folder, err := s.repomanager.Folders(s.db).Get(ctx, folderID)
	if err != nil {
		return err
	}
	if folder.OwnerID != userID {
		return common.ErrPermissionDenied
	}
	return nil
}

// UpdatePermission changes a grant's level. Only the folder owner may do so.
func (s *ShareService) UpdatePermission(ctx context.Context, userID, shareID string, permission models.Permission) (*models.Share, error) {
	share, err := s.repomanager.Shares(s.db).Get(ctx, shareID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwner(ctx, userID, share.FolderID); err != nil {
		return nil, err
	}
	if permission == models.PermissionNone {
		return nil, common.ErrInvalidState
	}
	return s.repomanager.Shares(s.db).UpdatePermission(ctx, shareID, permission)
}

// Remove revokes a grant or public link. Only the folder owner may remove
// other users' grants; a grantee may still remove their own.
func (s *ShareService) Remove(ctx context.Context, userID, shareID string) error {
	share, err := s.repomanager.Shares(s.db).Get(ctx, shareID)
	if err != nil {
		return err
	}
	if share.SharedWithID == nil || *share.SharedWithID != userID {
		if err := s.requireOwner(ctx, userID, share.FolderID); err != nil {
			return err
		}
	}
	return s.repomanager.Shares(s.db).Delete(ctx, shareID)
}

// SharedWithMe lists the folders other users granted to the caller.
func (s *ShareService) SharedWithMe(ctx context.Context, userID string) ([]SharedFolder, error) {
	grants, err := s.repomanager.Shares(s.db).ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := make([]SharedFolder, 0, len(grants))
	for _, grant := range grants {
		folder, err := s.repomanager.Folders(s.db).Get(ctx, grant.FolderID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				continue
			}
			return nil, err
		}
		result = append(result, SharedFolder{Share: grant, Folder: folder})
	}
	return result, nil
}
