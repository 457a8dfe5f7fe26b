package services

import (
	"context"

	"github.com/Ronak-Sheladiya/pixel-vault/internal/logging"
)

// Notifier delivers account and sharing emails. Delivery is best effort:
// callers log failures and carry on, so a down mail relay never blocks
// signup or sharing.
type Notifier interface {
	SendVerification(ctx context.Context, email, token string) error
	SendPasswordReset(ctx context.Context, email, token string) error
	SendShareInvitation(ctx context.Context, email, folderName, inviterEmail string) error
	SendMentionNotice(ctx context.Context, email, fileName, commenterEmail string) error
}

// LogNotifier writes notifications to the log instead of sending mail.
// It is the default in development and in tests.
type LogNotifier struct {
	logger logging.Logger
}

func NewLogNotifier(logger logging.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendVerification(ctx context.Context, email, token string) error {
	n.logger.Info(ctx, "verification email", "to", email, "token", token)
	return nil
}

func (n *LogNotifier) SendPasswordReset(ctx context.Context, email, token string) error {
	n.logger.Info(ctx, "password reset email", "to", email, "token", token)
	return nil
}

func (n *LogNotifier) SendShareInvitation(ctx context.Context, email, folderName, inviterEmail string) error {
	n.logger.Info(ctx, "share invitation email", "to", email, "folder", folderName, "from", inviterEmail)
	return nil
}

func (n *LogNotifier) SendMentionNotice(ctx context.Context, email, fileName, commenterEmail string) error {
	n.logger.Info(ctx, "mention email", "to", email, "file", fileName, "from", commenterEmail)
	return nil
}
