package services

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"image"
	"io"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/Ronak-Sheladiya/pixel-vault/internal/common"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/dbx"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/logging"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/models"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/objectstore"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/repositories/repomanager"
)

// UploadItem is one file in an upload batch.
type UploadItem struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// UploadResult reports the outcome for one item of a batch. Err is nil on
// success; the batch as a whole succeeds even when single items fail.
type UploadResult struct {
	Name string
	File *models.File
	Err  error
}

// FileService manages the catalog and the bytes behind it. Every mutation
// keeps three things in step: the object store, the catalog record, and the
// quota ledger.
type FileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       objectstore.Store
	quota       *QuotaService
	access      *AccessService
	logger      logging.Logger
}

func NewFileService(db *sql.DB, m repomanager.RepositoryManager, store objectstore.Store,
	quota *QuotaService, access *AccessService, logger logging.Logger) *FileService {
	return &FileService{
		db:          db,
		repomanager: m,
		store:       store,
		quota:       quota,
		access:      access,
		logger:      logger.With("service", "files"),
	}
}

func classifyMime(contentType string) (string, error) {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return models.FileTypeImage, nil
	case strings.HasPrefix(contentType, "video/"):
		return models.FileTypeVideo, nil
	default:
		return "", common.ErrUnsupportedMediaType
	}
}

// Upload ingests a batch of files into folderID (nil = root). Items that
// fail on their own — unsupported media type, unreadable body — are reported
// in their slot of the results without touching their siblings. The valid
// items are admitted against the quota together up front, so either every
// one of them has room or nothing is charged; items that later fail to store
// or record give their bytes back individually.
func (s *FileService) Upload(ctx context.Context, userID string, folderID *string, items []UploadItem) ([]UploadResult, error) {
	if folderID != nil {
		if _, err := s.access.Require(ctx, userID, *folderID, models.PermissionEdit); err != nil {
			return nil, err
		}
	}

	type buffered struct {
		idx  int
		item UploadItem
		kind string
		data []byte
	}
	var total int64
	results := make([]UploadResult, len(items))
	staged := make([]buffered, 0, len(items))
	for i, item := range items {
		results[i].Name = item.Name
		kind, err := classifyMime(item.ContentType)
		if err != nil {
			results[i].Err = err
			continue
		}
		data, err := io.ReadAll(item.Body)
		if err != nil {
			results[i].Err = fmt.Errorf("error reading upload %q: %w", item.Name, err)
			continue
		}
		total += int64(len(data))
		staged = append(staged, buffered{idx: i, item: item, kind: kind, data: data})
	}

	if len(staged) == 0 {
		return results, nil
	}
	if err := s.quota.Reserve(ctx, userID, total); err != nil {
		return nil, err
	}

	for _, b := range staged {
		file, err := s.storeOne(ctx, userID, folderID, b.item, b.kind, b.data)
		if err != nil {
			if relErr := s.quota.Release(ctx, userID, int64(len(b.data))); relErr != nil {
				s.logger.Error(ctx, "quota release after failed upload", "name", b.item.Name, "error", relErr)
			}
			results[b.idx].Err = err
			continue
		}
		results[b.idx].File = file
	}
	return results, nil
}

func (s *FileService) storeOne(ctx context.Context, userID string, folderID *string,
	item UploadItem, kind string, data []byte) (*models.File, error) {
	meta := extractMetadata(kind, data)

	put, err := s.store.Put(ctx, bytes.NewReader(data), item.ContentType, item.Name, userID)
	if err != nil {
		return nil, err
	}

	file := &models.File{
		OwnerID:      userID,
		FolderID:     folderID,
		Name:         item.Name,
		OriginalName: item.Name,
		Type:         kind,
		MimeType:     item.ContentType,
		Size:         put.Size,
		StorageKey:   put.Key,
		Metadata:     meta,
	}
	created, err := s.repomanager.Files(s.db).Create(ctx, file)
	if err != nil {
		if delErr := s.store.Delete(ctx, put.Key); delErr != nil {
			s.logger.Error(ctx, "orphaned object after failed record", "key", put.Key, "error", delErr)
		}
		return nil, err
	}
	return created, nil
}

// extractMetadata reads image dimensions from the buffered bytes. Video
// durations need a demuxer the server does not carry, so they stay zero.
func extractMetadata(kind string, data []byte) models.FileMetadata {
	if kind != models.FileTypeImage {
		return models.FileMetadata{}
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return models.FileMetadata{}
	}
	return models.FileMetadata{
		Width:      cfg.Width,
		Height:     cfg.Height,
		Dimensions: fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
	}
}

// List returns the caller's files in a folder (nil = root), newest first.
func (s *FileService) List(ctx context.Context, userID string, folderID *string) ([]*models.File, error) {
	return s.repomanager.Files(s.db).ListByFolder(ctx, userID, folderID)
}

// Get loads a file the caller owns, or one sitting in a folder shared with
// the caller at view level or better. Files the caller cannot see at all
// answer as ErrNotFound.
func (s *FileService) Get(ctx context.Context, userID, fileID string) (*models.File, error) {
	file, err := s.repomanager.Files(s.db).Get(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if file.OwnerID == userID {
		return file, nil
	}
	if file.FolderID == nil {
		return nil, common.ErrNotFound
	}
	if _, err := s.access.Require(ctx, userID, *file.FolderID, models.PermissionView); err != nil {
		return nil, err
	}
	return file, nil
}

// Content opens the stored bytes behind a file the caller may see. The
// stream is proxied; storage addressing never reaches the client.
func (s *FileService) Content(ctx context.Context, userID, fileID string) (*models.File, *objectstore.Object, error) {
	file, err := s.Get(ctx, userID, fileID)
	if err != nil {
		return nil, nil, err
	}
	obj, err := s.store.Open(ctx, file.StorageKey)
	if err != nil {
		return nil, nil, err
	}
	if obj.ContentType == "" {
		obj.ContentType = file.MimeType
	}
	return file, obj, nil
}

// PublicContent opens a file via an unauthenticated share token. The file
// must sit directly in the linked folder.
func (s *FileService) PublicContent(ctx context.Context, token, fileID string) (*models.File, *objectstore.Object, error) {
	folder, _, err := s.access.ResolvePublicLink(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	file, err := s.repomanager.Files(s.db).Get(ctx, fileID)
	if err != nil {
		return nil, nil, err
	}
	if file.FolderID == nil || *file.FolderID != folder.ID {
		return nil, nil, common.ErrNotFound
	}
	obj, err := s.store.Open(ctx, file.StorageKey)
	if err != nil {
		return nil, nil, err
	}
	if obj.ContentType == "" {
		obj.ContentType = file.MimeType
	}
	return file, obj, nil
}

// Rename changes the display name. The storage key and size never change.
func (s *FileService) Rename(ctx context.Context, userID, fileID, name string) (*models.File, error) {
	return s.repomanager.Files(s.db).Rename(ctx, fileID, userID, name)
}

// Move repoints the file at another folder the caller owns. No bytes move
// and no quota changes hands; the owner stays the same.
func (s *FileService) Move(ctx context.Context, userID, fileID string, folderID *string) (*models.File, error) {
	if folderID != nil {
		if _, err := s.repomanager.Folders(s.db).GetOwned(ctx, *folderID, userID); err != nil {
			return nil, err
		}
	}
	return s.repomanager.Files(s.db).Move(ctx, fileID, userID, folderID)
}

// Delete removes the stored object, then the record and its quota charge
// together. A store failure aborts before anything is forgotten, so a
// half-deleted file can always be retried.
func (s *FileService) Delete(ctx context.Context, userID, fileID string) error {
	file, err := s.repomanager.Files(s.db).GetOwned(ctx, fileID, userID)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, file.StorageKey); err != nil && !errors.Is(err, objectstore.ErrNotFound) {
		return err
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Files(tx).Delete(ctx, file.ID); err != nil {
			return err
		}
		if err := s.repomanager.Quota(tx).ReleaseGlobal(ctx, file.Size); err != nil {
			return err
		}
		return s.repomanager.Users(tx).AddStorageUsed(ctx, file.OwnerID, -file.Size)
	})
}

// deleteForCascade removes a file during a recursive folder delete. Store
// failures are logged and skipped so one unreachable object cannot wedge
// the cascade; the reconciler picks up any stragglers.
func (s *FileService) deleteForCascade(ctx context.Context, file *models.File) error {
	if err := s.store.Delete(ctx, file.StorageKey); err != nil && !errors.Is(err, objectstore.ErrNotFound) {
		s.logger.Warn(ctx, "object delete failed during folder delete", "key", file.StorageKey, "error", err)
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Files(tx).Delete(ctx, file.ID); err != nil {
			return err
		}
		if err := s.repomanager.Quota(tx).ReleaseGlobal(ctx, file.Size); err != nil {
			return err
		}
		return s.repomanager.Users(tx).AddStorageUsed(ctx, file.OwnerID, -file.Size)
	})
}
