package services

import (
	"context"
	"database/sql"
	"errors"
	"regexp"

	"github.com/Ronak-Sheladiya/pixel-vault/internal/common"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/logging"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/models"
	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/repositories/repomanager"
)

var mentionPattern = regexp.MustCompile(`@([A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,})`)

// CommentService manages discussion threads on files. A comment may reply
// to another; deleting a comment takes its direct replies with it and
// nothing deeper.
type CommentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	files       *FileService
	notifier    Notifier
	logger      logging.Logger
}

func NewCommentService(db *sql.DB, m repomanager.RepositoryManager, files *FileService,
	notifier Notifier, logger logging.Logger) *CommentService {
	return &CommentService{
		db:          db,
		repomanager: m,
		files:       files,
		notifier:    notifier,
		logger:      logger.With("service", "comments"),
	}
}

// extractMentions resolves @email tokens in text to user ids. Unknown
// addresses are ignored.
func (s *CommentService) extractMentions(ctx context.Context, text string) (ids, emails []string) {
	seen := map[string]bool{}
	for _, match := range mentionPattern.FindAllStringSubmatch(text, -1) {
		email := match[1]
		if seen[email] {
			continue
		}
		seen[email] = true
		user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
		if err != nil {
			if !errors.Is(err, common.ErrNotFound) {
				s.logger.Warn(ctx, "mention lookup failed", "email", email, "error", err)
			}
			continue
		}
		ids = append(ids, user.ID)
		emails = append(emails, email)
	}
	return ids, emails
}

// Add posts a comment on a file the caller may view. parentID threads the
// comment under an existing one on the same file.
func (s *CommentService) Add(ctx context.Context, userID, fileID, text string, parentID *string) (*models.Comment, error) {
	file, err := s.files.Get(ctx, userID, fileID)
	if err != nil {
		return nil, err
	}
	if parentID != nil {
		parent, err := s.repomanager.Comments(s.db).Get(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		if parent.FileID != fileID {
			return nil, common.ErrInvalidState
		}
	}

	mentionIDs, mentionEmails := s.extractMentions(ctx, text)

	comment, err := s.repomanager.Comments(s.db).Create(ctx, &models.Comment{
		FileID:     fileID,
		UserID:     userID,
		Text:       text,
		ParentID:   parentID,
		MentionIDs: mentionIDs,
	})
	if err != nil {
		return nil, err
	}

	s.notifyMentions(ctx, userID, file.Name, mentionEmails)

	return comment, nil
}

// notifyMentions is best effort: a failed notice never fails the comment.
func (s *CommentService) notifyMentions(ctx context.Context, commenterID, fileName string, emails []string) {
	if len(emails) == 0 {
		return
	}
	commenter, err := s.repomanager.Users(s.db).GetByID(ctx, commenterID)
	if err != nil {
		s.logger.Warn(ctx, "commenter lookup failed", "userId", commenterID, "error", err)
		return
	}
	for _, email := range emails {
		if err := s.notifier.SendMentionNotice(ctx, email, fileName, commenter.Email); err != nil {
			s.logger.Warn(ctx, "mention notice failed", "email", email, "error", err)
		}
	}
}

// List returns a file's comments oldest first, mentions attached.
func (s *CommentService) List(ctx context.Context, userID, fileID string) ([]*models.Comment, error) {
	if _, err := s.files.Get(ctx, userID, fileID); err != nil {
		return nil, err
	}
	return s.repomanager.Comments(s.db).ListByFile(ctx, fileID)
}

// Update edits the caller's own comment text.
func (s *CommentService) Update(ctx context.Context, userID, commentID, text string) (*models.Comment, error) {
	return s.repomanager.Comments(s.db).UpdateText(ctx, commentID, userID, text)
}

// Delete removes the caller's own comment and its direct replies. Replies
// of replies survive as orphans, matching the shallow thread model.
func (s *CommentService) Delete(ctx context.Context, userID, commentID string) error {
	if _, err := s.repomanager.Comments(s.db).GetOwn(ctx, commentID, userID); err != nil {
		return err
	}
	repo := s.repomanager.Comments(s.db)
	if err := repo.DeleteReplies(ctx, commentID); err != nil {
		return err
	}
	return repo.Delete(ctx, commentID)
}
