package services

import (
	"context"
	"strings"

	apperrors "bandhub/internal/errors"
	"bandhub/internal/logger"
	"bandhub/internal/mailer"
)

// contactService forwards contact-form messages to the band's inbox.
type contactService struct {
	mail     mailer.Sender
	composer *mailer.Composer
	to       string
}

// NewContactService creates a new ContactServicer delivering to inbox.
func NewContactService(mail mailer.Sender, composer *mailer.Composer, inbox string) ContactServicer {
	return &contactService{mail: mail, composer: composer, to: inbox}
}

// SendMessage emails the band with the visitor as reply-to.
func (s *contactService) SendMessage(ctx context.Context, name, email, message string) error {
	name, email, message = strings.TrimSpace(name), strings.TrimSpace(email), strings.TrimSpace(message)
	if name == "" || email == "" || message == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "All fields are required")
	}
	if !ValidEmail(email) {
		return apperrors.ErrInvalidEmail
	}

	msg, err := s.composer.Contact(s.to, name, email, message)
	if err == nil {
		err = s.mail.Send(ctx, msg)
	}
	if err != nil {
		logger.Get().Errorw("failed to send contact message", "error", err)
		return apperrors.WithMessage(apperrors.Wrap(apperrors.ErrEmailDelivery, err), "Failed to send message")
	}
	return nil
}
