package models

import "time"

// Permission levels, ordered: PermissionNone < PermissionView <
// PermissionEdit < PermissionAdmin. Stored as strings; use ParsePermission
// when reading untrusted input.
type Permission int

const (
	PermissionNone Permission = iota
	PermissionView
	PermissionEdit
	PermissionAdmin
)

func (p Permission) String() string {
	switch p {
	case PermissionView:
		return "view"
	case PermissionEdit:
		return "edit"
	case PermissionAdmin:
		return "admin"
	default:
		return "none"
	}
}

// ParsePermission maps a stored or client-supplied permission string to its
// level. Unknown values resolve to PermissionNone.
func ParsePermission(s string) Permission {
	switch s {
	case "view":
		return PermissionView
	case "edit":
		return PermissionEdit
	case "admin":
		return PermissionAdmin
	default:
		return PermissionNone
	}
}

// Share grants access to a folder. Exactly one of three shapes:
//
//   - direct share: SharedWithID set, InvitedEmail empty
//   - pending invitation: SharedWithID nil, InvitedEmail set; linked in place
//     when a user signs up with that email
//   - public link: IsPublic true, PublicLink set, optional LinkExpires
//
// The folder owner never has a Share row; ownership implies admin.
type Share struct {
	ID           string
	FolderID     string
	SharedByID   string
	SharedWithID *string
	InvitedEmail string
	Permission   Permission
	PublicLink   string
	LinkExpires  *time.Time
	IsPublic     bool
	CreatedAt    time.Time
}
