package mailer

import (
	"context"

	"bandhub/internal/logger"
)

// LogSender logs messages instead of delivering them. Used when SMTP is not
// configured.
type LogSender struct {
	from string
}

// NewLogSender creates a LogSender.
func NewLogSender(from string) *LogSender {
	return &LogSender{from: from}
}

// Send logs msg and always succeeds.
func (s *LogSender) Send(ctx context.Context, msg Message) error {
	logger.Get().Infow("email not delivered (SMTP not configured)",
		"from", s.from,
		"to", msg.To,
		"subject", msg.Subject,
		"text", msg.Text,
	)
	return nil
}
