package services

import (
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "bandhub/internal/errors"
	"bandhub/internal/models"
	"bandhub/internal/uuid"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether email looks like an address.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// mailingListService handles the public mailing list.
type mailingListService struct {
	db *gorm.DB
}

// NewMailingListService creates a new MailingListServicer.
func NewMailingListService(db *gorm.DB) MailingListServicer {
	return &mailingListService{db: db}
}

// Subscribe adds email to the list or reactivates it. The insert is an upsert
// keyed by email, so repeated calls leave one subscribed row with a fresh
// subscribe time. A nil or empty name keeps the stored one.
func (s *mailingListService) Subscribe(email string, name *string) (*models.MailingListSubscriber, error) {
	if email == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Email is required")
	}
	email = normalizeEmail(email)
	if !ValidEmail(email) {
		return nil, apperrors.ErrInvalidEmail
	}
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			name = nil
		} else {
			name = &trimmed
		}
	}

	now := time.Now()
	subscriber := &models.MailingListSubscriber{
		Email:            email,
		Name:             name,
		Subscribed:       true,
		SubscribedAt:     now,
		UnsubscribeToken: uuid.NewToken(),
	}

	updates := map[string]interface{}{
		"subscribed":      true,
		"subscribed_at":   now,
		"unsubscribed_at": nil,
		"updated_at":      now,
	}
	if name != nil {
		updates["name"] = *name
	}

	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.Assignments(updates),
	}).Create(subscriber).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var stored models.MailingListSubscriber
	if err := s.db.Where("email = ?", email).First(&stored).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &stored, nil
}

// ListSubscribers returns active subscribers, most recent first.
func (s *mailingListService) ListSubscribers() ([]models.MailingListSubscriber, error) {
	var subscribers []models.MailingListSubscriber
	if err := s.db.Where("subscribed = ?", true).Order("subscribed_at DESC").Find(&subscribers).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return subscribers, nil
}

// Unsubscribe deactivates a subscriber identified by unsubscribe token or,
// when no token is given, by email.
func (s *mailingListService) Unsubscribe(email, token string) error {
	query := s.db.Model(&models.MailingListSubscriber{})
	switch {
	case token != "":
		query = query.Where("unsubscribe_token = ?", token)
	case email != "":
		query = query.Where("email = ?", normalizeEmail(email))
	default:
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Email or unsubscribe token required")
	}

	now := time.Now()
	result := query.Updates(map[string]interface{}{
		"subscribed":      false,
		"unsubscribed_at": now,
	})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrSubscriberNotFound
	}
	return nil
}

// activeSubscribers is shared with the campaign service.
func activeSubscribers(db *gorm.DB) ([]models.MailingListSubscriber, error) {
	var subscribers []models.MailingListSubscriber
	if err := db.Where("subscribed = ?", true).Order("subscribed_at ASC").Find(&subscribers).Error; err != nil {
		return nil, err
	}
	return subscribers, nil
}
