package comments

import (
	"context"

	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	Get(ctx context.Context, id string) (*models.Comment, error)
	// GetOwn loads a comment only when userID wrote it.
	GetOwn(ctx context.Context, id, userID string) (*models.Comment, error)
	ListByFile(ctx context.Context, fileID string) ([]*models.Comment, error)
	UpdateText(ctx context.Context, id, userID, text string) (*models.Comment, error)
	Delete(ctx context.Context, id string) error
	// DeleteReplies removes comments whose parent is id (one level only).
	DeleteReplies(ctx context.Context, id string) error
}
