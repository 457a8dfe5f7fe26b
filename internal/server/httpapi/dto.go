package httpapi

import (
	"time"

	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/models"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/services"
)

type userResponse struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	IsVerified   bool      `json:"isVerified"`
	StorageUsed  int64     `json:"storageUsed"`
	StorageLimit int64     `json:"storageLimit"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:           u.ID,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsVerified:   u.IsVerified,
		StorageUsed:  u.StorageUsed,
		StorageLimit: u.StorageLimit,
		CreatedAt:    u.CreatedAt,
	}
}

type fileMetadataResponse struct {
	Width      int     `json:"width,omitempty"`
	Height     int     `json:"height,omitempty"`
	Duration   float64 `json:"duration,omitempty"`
	Dimensions string  `json:"dimensions,omitempty"`
}

type fileResponse struct {
	ID           string               `json:"id"`
	FolderID     *string              `json:"folderId"`
	Name         string               `json:"name"`
	OriginalName string               `json:"originalName"`
	Type         string               `json:"type"`
	MimeType     string               `json:"mimeType"`
	Size         int64                `json:"size"`
	Metadata     fileMetadataResponse `json:"metadata"`
	UploadedAt   time.Time            `json:"uploadedAt"`
}

// toFileResponse deliberately omits the storage key; clients fetch bytes
// through the content endpoint only.
func toFileResponse(f *models.File) fileResponse {
	return fileResponse{
		ID:           f.ID,
		FolderID:     f.FolderID,
		Name:         f.Name,
		OriginalName: f.OriginalName,
		Type:         f.Type,
		MimeType:     f.MimeType,
		Size:         f.Size,
		Metadata: fileMetadataResponse{
			Width:      f.Metadata.Width,
			Height:     f.Metadata.Height,
			Duration:   f.Metadata.Duration,
			Dimensions: f.Metadata.Dimensions,
		},
		UploadedAt: f.UploadedAt,
	}
}

func toFileResponses(files []*models.File) []fileResponse {
	out := make([]fileResponse, 0, len(files))
	for _, f := range files {
		out = append(out, toFileResponse(f))
	}
	return out
}

type folderResponse struct {
	ID          string    `json:"id"`
	ParentID    *string   `json:"parentId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Path        string    `json:"path"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toFolderResponse(f *models.Folder) folderResponse {
	return folderResponse{
		ID:          f.ID,
		ParentID:    f.ParentID,
		Name:        f.Name,
		Description: f.Description,
		Path:        f.Path,
		Color:       f.Color,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

func toFolderResponses(folders []*models.Folder) []folderResponse {
	out := make([]folderResponse, 0, len(folders))
	for _, f := range folders {
		out = append(out, toFolderResponse(f))
	}
	return out
}

type folderRefResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type folderContentsResponse struct {
	Folder    folderResponse      `json:"folder"`
	Ancestors []folderRefResponse `json:"ancestors"`
	Folders   []folderResponse    `json:"folders"`
	Files     []fileResponse      `json:"files"`
}

func toFolderContentsResponse(c *services.FolderContents) folderContentsResponse {
	ancestors := make([]folderRefResponse, 0, len(c.Ancestors))
	for _, a := range c.Ancestors {
		ancestors = append(ancestors, folderRefResponse{ID: a.ID, Name: a.Name})
	}
	return folderContentsResponse{
		Folder:    toFolderResponse(c.Folder),
		Ancestors: ancestors,
		Folders:   toFolderResponses(c.Children),
		Files:     toFileResponses(c.Files),
	}
}

type shareResponse struct {
	ID           string     `json:"id"`
	FolderID     string     `json:"folderId"`
	SharedWithID *string    `json:"sharedWithId"`
	InvitedEmail string     `json:"invitedEmail,omitempty"`
	Permission   string     `json:"permission"`
	PublicLink   string     `json:"publicLink,omitempty"`
	LinkExpires  *time.Time `json:"linkExpires,omitempty"`
	IsPublic     bool       `json:"isPublic"`
	CreatedAt    time.Time  `json:"createdAt"`
}

func toShareResponse(s *models.Share) shareResponse {
	return shareResponse{
		ID:           s.ID,
		FolderID:     s.FolderID,
		SharedWithID: s.SharedWithID,
		InvitedEmail: s.InvitedEmail,
		Permission:   s.Permission.String(),
		PublicLink:   s.PublicLink,
		LinkExpires:  s.LinkExpires,
		IsPublic:     s.IsPublic,
		CreatedAt:    s.CreatedAt,
	}
}

type commentResponse struct {
	ID         string    `json:"id"`
	FileID     string    `json:"fileId"`
	UserID     string    `json:"userId"`
	Text       string    `json:"text"`
	ParentID   *string   `json:"parentId"`
	MentionIDs []string  `json:"mentionIds"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func toCommentResponse(c *models.Comment) commentResponse {
	mentions := c.MentionIDs
	if mentions == nil {
		mentions = []string{}
	}
	return commentResponse{
		ID:         c.ID,
		FileID:     c.FileID,
		UserID:     c.UserID,
		Text:       c.Text,
		ParentID:   c.ParentID,
		MentionIDs: mentions,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}
