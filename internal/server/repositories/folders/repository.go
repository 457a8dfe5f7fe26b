package folders

import (
	"context"

	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, folder *models.Folder) (*models.Folder, error)
	// Get loads a folder regardless of owner; the access resolver decides
	// whether the caller may see it.
	Get(ctx context.Context, id string) (*models.Folder, error)
	// GetOwned loads a folder only when ownerID owns it.
	GetOwned(ctx context.Context, id, ownerID string) (*models.Folder, error)
	ListChildren(ctx context.Context, ownerID string, parentID *string) ([]*models.Folder, error)
	// ListSubfolders lists direct children without owner scoping, for the
	// recursive delete cascade.
	ListSubfolders(ctx context.Context, parentID string) ([]*models.Folder, error)
	Update(ctx context.Context, id, ownerID, name, description, color string) (*models.Folder, error)
	Move(ctx context.Context, id, ownerID string, parentID *string, path string) (*models.Folder, error)
	Delete(ctx context.Context, id string) error
}
