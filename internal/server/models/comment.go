package models

import "time"

// Comment is attached to a file. ParentID allows one level of threading in
// practice; deleting a comment removes its direct replies only. MentionIDs
// are users referenced with @ in the text, resolved at creation time.
type Comment struct {
	ID         string
	FileID     string
	UserID     string
	Text       string
	ParentID   *string
	MentionIDs []string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
