package files

import (
	"context"

	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, file *models.File) (*models.File, error)
	// Get loads a file regardless of owner; the access resolver decides
	// whether the caller may see it.
	Get(ctx context.Context, id string) (*models.File, error)
	GetOwned(ctx context.Context, id, ownerID string) (*models.File, error)
	ListByFolder(ctx context.Context, ownerID string, folderID *string) ([]*models.File, error)
	// ListInFolder lists a folder's files without owner scoping, for the
	// recursive delete cascade.
	ListInFolder(ctx context.Context, folderID string) ([]*models.File, error)
	Rename(ctx context.Context, id, ownerID, name string) (*models.File, error)
	Move(ctx context.Context, id, ownerID string, folderID *string) (*models.File, error)
	Delete(ctx context.Context, id string) error
}
