package mail

import (
	"context"
	"log/slog"
)

// LogSender is a Sender that logs the email to the logger instead of sending it.
// Not meant for production: the reset link ends up in the logs.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.InfoContext(ctx, "send email",
		"from", msg.From,
		"recipient", msg.To,
		"subject", msg.Subject,
		"body", msg.Text,
	)
	return nil
}
