package models

import "time"

// CampaignStatus is the lifecycle state of an email campaign.
type CampaignStatus string

const (
	CampaignStatusDraft  CampaignStatus = "DRAFT"
	CampaignStatusSent   CampaignStatus = "SENT"
	CampaignStatusFailed CampaignStatus = "FAILED"
)

// EmailCampaign is a bulk email to every subscribed mailing-list member.
// SentBy holds the author while DRAFT and the sender once SENT. A sent
// campaign outlives its sender's account.
type EmailCampaign struct {
	Base
	Subject        string         `gorm:"not null" json:"subject"`
	Content        string         `gorm:"type:text;not null" json:"content"`
	PlainText      *string        `gorm:"type:text" json:"plainText"`
	Status         CampaignStatus `gorm:"not null;default:DRAFT;index" json:"status"`
	SentAt         *time.Time     `json:"sentAt"`
	RecipientCount int            `gorm:"not null;default:0" json:"recipientCount"`
	SentBy         string         `gorm:"type:uuid;not null;index" json:"sentBy"`

	// Relationships
	Sender User `gorm:"foreignKey:SentBy;constraint:OnDelete:RESTRICT" json:"-"`
}
