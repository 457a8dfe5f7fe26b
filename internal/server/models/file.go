package models

import "time"

// Media classification, fixed at upload time from the MIME type.
const (
	FileTypeImage = "image"
	FileTypeVideo = "video"
)

// File is a catalog record for one stored object. StorageKey addresses the
// physical object and is immutable for the record's lifetime, as is Size:
// the size contributes to exactly one user's counter and to the global pool
// from creation until deletion. Name is the mutable display name; FolderID
// nil means the file sits at the owner's root.
type File struct {
	ID           string
	OwnerID      string
	FolderID     *string
	Name         string
	OriginalName string
	Type         string
	MimeType     string
	Size         int64
	StorageKey   string
	Metadata     FileMetadata
	UploadedAt   time.Time
}

// FileMetadata holds type-specific details extracted at ingestion.
// Width/Height/Dimensions are set for images, Duration for videos when known.
type FileMetadata struct {
	Width      int
	Height     int
	Duration   float64
	Dimensions string
}
