package models

import "time"

// Folder is a hierarchical container owned by exactly one user. ParentID is
// nil for root folders. Path is a materialized breadcrumb string computed at
// creation/move time as parent.Path + parent.Name + "/"; it is display-only
// and never used for lookups, so descendants keep their stored path when an
// ancestor moves.
type Folder struct {
	ID          string
	OwnerID     string
	ParentID    *string
	Name        string
	Description string
	Path        string
	Color       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FolderRef is the minimal folder identity used in ancestor chains.
type FolderRef struct {
	ID   string
	Name string
}
