package shares

import (
	"context"

	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, share *models.Share) (*models.Share, error)
	Get(ctx context.Context, id string) (*models.Share, error)
	// FindDirect looks up the direct share of folder with a specific user.
	FindDirect(ctx context.Context, folderID, userID string) (*models.Share, error)
	// FindInvite looks up a pending email invitation on a folder.
	FindInvite(ctx context.Context, folderID, email string) (*models.Share, error)
	FindByPublicLink(ctx context.Context, token string) (*models.Share, error)
	ListByFolder(ctx context.Context, folderID string) ([]*models.Share, error)
	ListForUser(ctx context.Context, userID string) ([]*models.Share, error)
	UpdatePermission(ctx context.Context, id string, permission models.Permission) (*models.Share, error)
	// LinkPending attaches every pending invitation for email to userID and
	// clears the invited address. Returns the number of shares linked;
	// running it again for the same email is a no-op.
	LinkPending(ctx context.Context, email, userID string) (int64, error)
	Delete(ctx context.Context, id string) error
}
