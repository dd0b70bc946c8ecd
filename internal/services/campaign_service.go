package services

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	apperrors "bandhub/internal/errors"
	"bandhub/internal/logger"
	"bandhub/internal/mailer"
	"bandhub/internal/metrics"
	"bandhub/internal/models"
)

// sendableStatuses are the states a campaign may be edited or sent from.
// FAILED campaigns are retried like drafts.
var sendableStatuses = []models.CampaignStatus{models.CampaignStatusDraft, models.CampaignStatusFailed}

// campaignService handles email campaigns.
type campaignService struct {
	db          *gorm.DB
	mail        mailer.Sender
	composer    *mailer.Composer
	concurrency int
}

// NewCampaignService creates a new CampaignServicer. concurrency bounds the
// number of deliveries in flight while sending.
func NewCampaignService(db *gorm.DB, mail mailer.Sender, composer *mailer.Composer, concurrency int) CampaignServicer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &campaignService{db: db, mail: mail, composer: composer, concurrency: concurrency}
}

// ListCampaigns returns every campaign with its sender, newest first.
func (s *campaignService) ListCampaigns() ([]models.EmailCampaign, error) {
	var campaigns []models.EmailCampaign
	if err := s.db.Preload("Sender").Order("created_at DESC").Find(&campaigns).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return campaigns, nil
}

func validateCampaign(subject, content string) error {
	if strings.TrimSpace(subject) == "" || strings.TrimSpace(content) == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Subject and content are required")
	}
	return nil
}

// CreateCampaign stores a DRAFT campaign authored by senderID.
func (s *campaignService) CreateCampaign(senderID, subject, content string, plainText *string) (*models.EmailCampaign, error) {
	if err := validateCampaign(subject, content); err != nil {
		return nil, err
	}

	campaign := &models.EmailCampaign{
		Subject:   subject,
		Content:   content,
		PlainText: plainText,
		Status:    models.CampaignStatusDraft,
		SentBy:    senderID,
	}
	if err := s.db.Create(campaign).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.getCampaign(campaign.ID)
}

func (s *campaignService) getCampaign(id string) (*models.EmailCampaign, error) {
	var campaign models.EmailCampaign
	if err := s.db.Preload("Sender").Where("id = ?", id).First(&campaign).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCampaignNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &campaign, nil
}

// UpdateCampaign edits a campaign that has not been sent.
func (s *campaignService) UpdateCampaign(id, subject, content string, plainText *string) (*models.EmailCampaign, error) {
	if id == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Campaign ID is required")
	}
	if err := validateCampaign(subject, content); err != nil {
		return nil, err
	}

	result := s.db.Model(&models.EmailCampaign{}).
		Where("id = ? AND status IN ?", id, sendableStatuses).
		Updates(map[string]interface{}{
			"subject":    subject,
			"content":    content,
			"plain_text": plainText,
		})
	if result.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}

	campaign, err := s.getCampaign(id)
	if err != nil {
		return nil, err
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.ErrCampaignNotEditable
	}
	return campaign, nil
}

// DeleteCampaign removes a campaign that has not been sent.
func (s *campaignService) DeleteCampaign(id string) error {
	if id == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Campaign ID is required")
	}

	result := s.db.Where("id = ? AND status <> ?", id, models.CampaignStatusSent).Delete(&models.EmailCampaign{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := s.getCampaign(id); err != nil {
			return err
		}
		return apperrors.ErrCampaignNotDeletable
	}
	return nil
}

// SendCampaign delivers a campaign to every subscribed address. The campaign
// is claimed with a conditional update from a sendable status to SENT, so
// concurrent requests send it at most once. If every delivery fails the
// campaign is marked FAILED and can be sent again.
func (s *campaignService) SendCampaign(ctx context.Context, id, senderID string) (*models.EmailCampaign, error) {
	if id == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Campaign ID is required")
	}

	campaign, err := s.getCampaign(id)
	if err != nil {
		return nil, err
	}
	if campaign.Status == models.CampaignStatusSent {
		return nil, apperrors.ErrCampaignAlreadySent
	}

	subscribers, err := activeSubscribers(s.db)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(subscribers) == 0 {
		return nil, apperrors.ErrNoSubscribers
	}

	now := time.Now()
	result := s.db.Model(&models.EmailCampaign{}).
		Where("id = ? AND status IN ?", id, sendableStatuses).
		Updates(map[string]interface{}{
			"status":          models.CampaignStatusSent,
			"sent_at":         now,
			"recipient_count": len(subscribers),
			"sent_by":         senderID,
		})
	if result.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.ErrCampaignAlreadySent
	}

	plainText := ""
	if campaign.PlainText != nil {
		plainText = *campaign.PlainText
	}

	var failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, sub := range subscribers {
		g.Go(func() error {
			msg, err := s.composer.Campaign(sub.Email, campaign.Subject, campaign.Content, plainText, sub.UnsubscribeToken)
			if err == nil {
				err = s.mail.Send(gctx, msg)
			}
			if err != nil {
				failed.Add(1)
				logger.Get().Warnw("campaign delivery failed", "error", err, "campaign_id", id, "subscriber_id", sub.ID)
			}
			return nil
		})
	}
	_ = g.Wait()

	if int(failed.Load()) == len(subscribers) {
		if err := s.db.Model(&models.EmailCampaign{}).Where("id = ?", id).
			Update("status", models.CampaignStatusFailed).Error; err != nil {
			logger.Get().Errorw("failed to mark campaign as failed", "error", err, "campaign_id", id)
		}
		return nil, apperrors.WithMessage(apperrors.ErrEmailDelivery, "Failed to send campaign")
	}

	metrics.CampaignsSentTotal.Inc()
	logger.Get().Infow("campaign sent",
		"campaign_id", id,
		"recipients", len(subscribers),
		"failed", failed.Load(),
	)
	return s.getCampaign(id)
}
