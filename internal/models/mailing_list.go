package models

import "time"

// MailingListSubscriber is a public mailing-list entry keyed by email.
type MailingListSubscriber struct {
	Base
	Email            string     `gorm:"uniqueIndex;not null" json:"email"`
	Name             *string    `json:"name"`
	Subscribed       bool       `gorm:"not null;index" json:"subscribed"`
	SubscribedAt     time.Time  `gorm:"not null" json:"subscribedAt"`
	UnsubscribedAt   *time.Time `json:"unsubscribedAt"`
	UnsubscribeToken string     `gorm:"uniqueIndex;not null" json:"-"`
}
