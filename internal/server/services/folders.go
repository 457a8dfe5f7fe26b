package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Ronak-Sheladiya/pixel-vault/internal/common"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/logging"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/models"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/repositories/repomanager"
)

// maxAncestorDepth caps the parent-chain walk so a corrupted tree with a
// cycle cannot hang a request.
const maxAncestorDepth = 64

// FolderContents is a folder with what a directory listing needs.
type FolderContents struct {
	Folder    *models.Folder
	Ancestors []models.FolderRef
	Children  []*models.Folder
	Files     []*models.File
}

// FolderService manages the folder tree. Paths are materialized breadcrumbs
// written at creation and move time; lookups always go through ids.
type FolderService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	files       *FileService
	access      *AccessService
	logger      logging.Logger
}

func NewFolderService(db *sql.DB, m repomanager.RepositoryManager, files *FileService,
	access *AccessService, logger logging.Logger) *FolderService {
	return &FolderService{
		db:          db,
		repomanager: m,
		files:       files,
		access:      access,
		logger:      logger.With("service", "folders"),
	}
}

// childPath derives the breadcrumb a child of parent carries. Root-level
// folders carry "/".
func childPath(parent *models.Folder) string {
	if parent == nil {
		return "/"
	}
	return parent.Path + parent.Name + "/"
}

// Create adds a folder under parentID (nil = root). The parent must belong
// to the caller.
func (s *FolderService) Create(ctx context.Context, userID string, parentID *string, name, description, color string) (*models.Folder, error) {
	var parent *models.Folder
	if parentID != nil {
		var err error
		parent, err = s.repomanager.Folders(s.db).GetOwned(ctx, *parentID, userID)
		if err != nil {
			return nil, err
		}
	}
	folder := &models.Folder{
		OwnerID:     userID,
		ParentID:    parentID,
		Name:        name,
		Description: description,
		Path:        childPath(parent),
		Color:       color,
	}
	return s.repomanager.Folders(s.db).Create(ctx, folder)
}

// List returns the caller's folders under parentID (nil = root).
func (s *FolderService) List(ctx context.Context, userID string, parentID *string) ([]*models.Folder, error) {
	return s.repomanager.Folders(s.db).ListChildren(ctx, userID, parentID)
}

// Get loads a folder the caller may at least view, with its subfolders,
// files, and ancestor chain.
func (s *FolderService) Get(ctx context.Context, userID, folderID string) (*FolderContents, error) {
	folder, err := s.access.Require(ctx, userID, folderID, models.PermissionView)
	if err != nil {
		return nil, err
	}
	return s.contents(ctx, folder)
}

// GetPublic loads the folder behind a public link token.
func (s *FolderService) GetPublic(ctx context.Context, token string) (*FolderContents, error) {
	folder, _, err := s.access.ResolvePublicLink(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.contents(ctx, folder)
}

func (s *FolderService) contents(ctx context.Context, folder *models.Folder) (*FolderContents, error) {
	children, err := s.repomanager.Folders(s.db).ListChildren(ctx, folder.OwnerID, &folder.ID)
	if err != nil {
		return nil, err
	}
	files, err := s.repomanager.Files(s.db).ListByFolder(ctx, folder.OwnerID, &folder.ID)
	if err != nil {
		return nil, err
	}
	ancestors, err := s.ancestors(ctx, folder)
	if err != nil {
		return nil, err
	}
	return &FolderContents{Folder: folder, Ancestors: ancestors, Children: children, Files: files}, nil
}

// ancestors walks the parent chain to the root, nearest ancestor last in
// source order then reversed, so the result reads root first.
func (s *FolderService) ancestors(ctx context.Context, folder *models.Folder) ([]models.FolderRef, error) {
	var chain []models.FolderRef
	current := folder
	for depth := 0; current.ParentID != nil && depth < maxAncestorDepth; depth++ {
		parent, err := s.repomanager.Folders(s.db).Get(ctx, *current.ParentID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				break
			}
			return nil, err
		}
		chain = append(chain, models.FolderRef{ID: parent.ID, Name: parent.Name})
		current = parent
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// Update renames or restyles a folder the caller owns.
func (s *FolderService) Update(ctx context.Context, userID, folderID, name, description, color string) (*models.Folder, error) {
	return s.repomanager.Folders(s.db).Update(ctx, folderID, userID, name, description, color)
}

// Move reparents a folder within the caller's own tree. Only the moved
// folder's breadcrumb is rewritten; descendants keep the path they were
// given when created.
func (s *FolderService) Move(ctx context.Context, userID, folderID string, newParentID *string) (*models.Folder, error) {
	folder, err := s.repomanager.Folders(s.db).GetOwned(ctx, folderID, userID)
	if err != nil {
		return nil, err
	}
	var parent *models.Folder
	if newParentID != nil {
		if *newParentID == folder.ID {
			return nil, common.ErrInvalidState
		}
		parent, err = s.repomanager.Folders(s.db).GetOwned(ctx, *newParentID, userID)
		if err != nil {
			return nil, err
		}
		if err := s.checkNotDescendant(ctx, folder.ID, parent); err != nil {
			return nil, err
		}
	}
	return s.repomanager.Folders(s.db).Move(ctx, folderID, userID, newParentID, childPath(parent))
}

// checkNotDescendant rejects moves that would put a folder under its own
// subtree.
func (s *FolderService) checkNotDescendant(ctx context.Context, folderID string, candidate *models.Folder) error {
	current := candidate
	for depth := 0; depth < maxAncestorDepth; depth++ {
		if current.ID == folderID {
			return common.ErrInvalidState
		}
		if current.ParentID == nil {
			return nil
		}
		parent, err := s.repomanager.Folders(s.db).Get(ctx, *current.ParentID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return nil
			}
			return err
		}
		current = parent
	}
	return common.ErrInvalidState
}

// Delete removes a folder the caller owns together with everything under
// it: files, subfolders, and their files, depth first. Stored objects are
// deleted best effort; records and quota charges always go together.
func (s *FolderService) Delete(ctx context.Context, userID, folderID string) error {
	folder, err := s.repomanager.Folders(s.db).GetOwned(ctx, folderID, userID)
	if err != nil {
		return err
	}
	return s.deleteRecursive(ctx, folder, 0)
}

func (s *FolderService) deleteRecursive(ctx context.Context, folder *models.Folder, depth int) error {
	if depth >= maxAncestorDepth {
		return common.ErrInvalidState
	}
	subfolders, err := s.repomanager.Folders(s.db).ListSubfolders(ctx, folder.ID)
	if err != nil {
		return err
	}
	for _, sub := range subfolders {
		if err := s.deleteRecursive(ctx, sub, depth+1); err != nil {
			return err
		}
	}
	files, err := s.repomanager.Files(s.db).ListInFolder(ctx, folder.ID)
	if err != nil {
		return err
	}
	for _, file := range files {
		if err := s.files.deleteForCascade(ctx, file); err != nil {
			return err
		}
	}
	return s.repomanager.Folders(s.db).Delete(ctx, folder.ID)
}
