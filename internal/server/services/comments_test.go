package services

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/Ronak-Sheladiya/pixel-vault/internal/common"
)

func commentEnv(t *testing.T) (*testEnv, string, string) {
	t.Helper()
	env := newTestEnv(t, 1<<20)
	user := env.addUser(t, "alice@example.com")

	results, err := env.files.Upload(context.Background(), user.ID, nil, []UploadItem{
		{Name: "v.mp4", ContentType: "video/mp4", Body: bytes.NewReader(make([]byte, 10))},
	})
	if err != nil || results[0].Err != nil {
		t.Fatalf("Upload error: %v %v", err, results[0].Err)
	}
	return env, user.ID, results[0].File.ID
}

func TestAdd_ExtractsMentions(t *testing.T) {
	env, userID, fileID := commentEnv(t)
	bob := env.addUser(t, "bob@example.com")

	c, err := env.comments.Add(context.Background(), userID, fileID,
		"look at this @bob@example.com and @ghost@example.com", nil)
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if len(c.MentionIDs) != 1 || c.MentionIDs[0] != bob.ID {
		t.Fatalf("unexpected mentions: %+v", c.MentionIDs)
	}
	if len(env.notifier.mentions) != 1 || env.notifier.mentions[0] != "bob@example.com" {
		t.Fatalf("unexpected mention notices: %+v", env.notifier.mentions)
	}
}

func TestAdd_MentionNoticeFailureDoesNotFailComment(t *testing.T) {
	env, userID, fileID := commentEnv(t)
	env.addUser(t, "bob@example.com")
	env.notifier.failAll = true

	c, err := env.comments.Add(context.Background(), userID, fileID, "hey @bob@example.com", nil)
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if len(c.MentionIDs) != 1 {
		t.Fatalf("unexpected mentions: %+v", c.MentionIDs)
	}
}

func TestAdd_ReplyMustMatchFile(t *testing.T) {
	env, userID, fileID := commentEnv(t)

	results, err := env.files.Upload(context.Background(), userID, nil, []UploadItem{
		{Name: "other.mp4", ContentType: "video/mp4", Body: bytes.NewReader(make([]byte, 10))},
	})
	if err != nil || results[0].Err != nil {
		t.Fatalf("Upload error: %v %v", err, results[0].Err)
	}
	otherFile := results[0].File.ID

	parent, err := env.comments.Add(context.Background(), userID, fileID, "parent", nil)
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}

	_, err = env.comments.Add(context.Background(), userID, otherFile, "reply", &parent.ID)
	if !errors.Is(err, common.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestDelete_TakesDirectRepliesOnly(t *testing.T) {
	env, userID, fileID := commentEnv(t)

	parent, err := env.comments.Add(context.Background(), userID, fileID, "parent", nil)
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}
	reply, err := env.comments.Add(context.Background(), userID, fileID, "reply", &parent.ID)
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}
	deepReply, err := env.comments.Add(context.Background(), userID, fileID, "deep", &reply.ID)
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}

	if err := env.comments.Delete(context.Background(), userID, parent.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}

	left, err := env.comments.List(context.Background(), userID, fileID)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(left) != 1 || left[0].ID != deepReply.ID {
		t.Fatalf("expected only the deep reply to survive: %+v", left)
	}
	// Its parent row is gone, so the survivor is re-rooted rather than left
	// pointing at a deleted comment.
	if left[0].ParentID != nil {
		t.Fatalf("surviving reply must be orphaned, still points at %v", *left[0].ParentID)
	}
}

func TestUpdate_OwnCommentsOnly(t *testing.T) {
	env, userID, fileID := commentEnv(t)
	other := env.addUser(t, "other@example.com")

	c, err := env.comments.Add(context.Background(), userID, fileID, "original", nil)
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}

	if _, err := env.comments.Update(context.Background(), other.ID, c.ID, "hijacked"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	updated, err := env.comments.Update(context.Background(), userID, c.ID, "edited")
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.Text != "edited" {
		t.Fatalf("unexpected text: %q", updated.Text)
	}
}

func TestList_RequiresFileAccess(t *testing.T) {
	env, userID, fileID := commentEnv(t)
	stranger := env.addUser(t, "stranger@example.com")

	if _, err := env.comments.Add(context.Background(), userID, fileID, "private note", nil); err != nil {
		t.Fatalf("Add error: %v", err)
	}

	// The file itself is invisible to the stranger, so the thread is too.
	_, err := env.comments.List(context.Background(), stranger.ID, fileID)
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
