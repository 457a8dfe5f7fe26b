package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Ronak-Sheladiya/pixel-vault/internal/common"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/models"
)

func TestResolve_OwnerIsAdmin(t *testing.T) {
	env := newTestEnv(t, 1<<20)
	owner := env.addUser(t, "owner@example.com")
	folder := env.addFolder(t, owner.ID, nil, "Mine")

	_, level, err := env.access.Resolve(context.Background(), owner.ID, folder.ID)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if level != models.PermissionAdmin {
		t.Fatalf("expected admin, got %v", level)
	}
}

func TestResolve_DirectShareLevel(t *testing.T) {
	env := newTestEnv(t, 1<<20)
	owner := env.addUser(t, "owner@example.com")
	editor := env.addUser(t, "editor@example.com")
	folder := env.addFolder(t, owner.ID, nil, "Shared")

	if _, err := env.shares.ShareWithEmail(context.Background(), owner.ID, folder.ID,
		editor.Email, models.PermissionEdit); err != nil {
		t.Fatalf("ShareWithEmail error: %v", err)
	}

	_, level, err := env.access.Resolve(context.Background(), editor.ID, folder.ID)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if level != models.PermissionEdit {
		t.Fatalf("expected edit, got %v", level)
	}
}

func TestResolve_StrangerGetsNone(t *testing.T) {
	env := newTestEnv(t, 1<<20)
	owner := env.addUser(t, "owner@example.com")
	stranger := env.addUser(t, "stranger@example.com")
	folder := env.addFolder(t, owner.ID, nil, "Private")

	_, level, err := env.access.Resolve(context.Background(), stranger.ID, folder.ID)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if level != models.PermissionNone {
		t.Fatalf("expected none, got %v", level)
	}
	// A stranger's probe answers exactly like a nonexistent folder.
	if _, err := env.access.Require(context.Background(), stranger.ID, folder.ID,
		models.PermissionView); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRequire_InsufficientLevelIsDenied(t *testing.T) {
	env := newTestEnv(t, 1<<20)
	owner := env.addUser(t, "owner@example.com")
	viewer := env.addUser(t, "viewer@example.com")
	folder := env.addFolder(t, owner.ID, nil, "Shared")

	if _, err := env.shares.ShareWithEmail(context.Background(), owner.ID, folder.ID,
		viewer.Email, models.PermissionView); err != nil {
		t.Fatalf("ShareWithEmail error: %v", err)
	}

	// Holding some access but not enough is a 403, not a 404.
	if _, err := env.access.Require(context.Background(), viewer.ID, folder.ID,
		models.PermissionEdit); !errors.Is(err, common.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestResolve_NoInheritanceFromParent(t *testing.T) {
	env := newTestEnv(t, 1<<20)
	owner := env.addUser(t, "owner@example.com")
	guest := env.addUser(t, "guest@example.com")
	parent := env.addFolder(t, owner.ID, nil, "Parent")
	child := env.addFolder(t, owner.ID, parent, "Child")

	if _, err := env.shares.ShareWithEmail(context.Background(), owner.ID, parent.ID,
		guest.Email, models.PermissionEdit); err != nil {
		t.Fatalf("ShareWithEmail error: %v", err)
	}

	_, level, err := env.access.Resolve(context.Background(), guest.ID, child.ID)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if level != models.PermissionNone {
		t.Fatalf("share must not reach subfolders, got %v", level)
	}
}

func TestResolve_UnknownFolder(t *testing.T) {
	env := newTestEnv(t, 1<<20)
	user := env.addUser(t, "alice@example.com")

	_, _, err := env.access.Resolve(context.Background(), user.ID, "no-such-folder")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolvePublicLink_RoundTrip(t *testing.T) {
	env := newTestEnv(t, 1<<20)
	owner := env.addUser(t, "owner@example.com")
	folder := env.addFolder(t, owner.ID, nil, "Album")

	share, err := env.shares.CreatePublicLink(context.Background(), owner.ID, folder.ID, nil)
	if err != nil {
		t.Fatalf("CreatePublicLink error: %v", err)
	}
	if share.PublicLink == "" || !share.IsPublic {
		t.Fatalf("unexpected link share: %+v", share)
	}

	got, _, err := env.access.ResolvePublicLink(context.Background(), share.PublicLink)
	if err != nil {
		t.Fatalf("ResolvePublicLink error: %v", err)
	}
	if got.ID != folder.ID {
		t.Fatalf("wrong folder: %+v", got)
	}
}

func TestResolvePublicLink_ExpiredLooksAbsent(t *testing.T) {
	env := newTestEnv(t, 1<<20)
	owner := env.addUser(t, "owner@example.com")
	folder := env.addFolder(t, owner.ID, nil, "Album")

	past := time.Now().Add(-time.Hour)
	share, err := env.shares.CreatePublicLink(context.Background(), owner.ID, folder.ID, &past)
	if err != nil {
		t.Fatalf("CreatePublicLink error: %v", err)
	}

	_, _, err = env.access.ResolvePublicLink(context.Background(), share.PublicLink)
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expired link must read as absent, got %v", err)
	}
}
