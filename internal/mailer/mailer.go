// Package mailer delivers transactional and campaign email.
package mailer

import (
	"context"

	"bandhub/internal/config"
	"bandhub/internal/logger"
	"bandhub/internal/metrics"
)

// Message is a single outbound email. HTML is optional; Text is always sent
// as the plain-text part.
type Message struct {
	To             string
	ReplyTo        string
	Subject        string
	HTML           string
	Text           string
	UnsubscribeURL string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// New returns an SMTP sender when SMTP is configured and a logging sender
// otherwise.
func New(cfg *config.Config) Sender {
	if !cfg.MailConfigured() {
		logger.Get().Warn("SMTP_HOST not set, outbound email will only be logged")
		return NewLogSender(cfg.FromEmail)
	}
	return NewSMTPSender(SMTPConfig{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		Username:  cfg.SMTPUser,
		Password:  cfg.SMTPPass,
		FromName:  cfg.FromName,
		FromEmail: cfg.FromEmail,
	})
}

// Counted wraps a Sender and records every delivery in the emails_sent metric
// under kind.
func Counted(s Sender, kind string) Sender {
	return &countingSender{next: s, kind: kind}
}

type countingSender struct {
	next Sender
	kind string
}

func (c *countingSender) Send(ctx context.Context, msg Message) error {
	err := c.next.Send(ctx, msg)
	metrics.EmailsSentTotal.WithLabelValues(c.kind, metrics.Result(err)).Inc()
	return err
}
