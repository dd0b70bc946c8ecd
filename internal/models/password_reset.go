package models

import "time"

// PasswordResetExpiry is how long a reset token stays valid after issuance.
const PasswordResetExpiry = time.Hour

// PasswordResetRequest is a single-use password reset token.
type PasswordResetRequest struct {
	Base
	Email     string    `gorm:"not null;index" json:"email"`
	Token     string    `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expiresAt"`
	Used      bool      `gorm:"not null" json:"used"`
}

// Usable reports whether the token can still be redeemed at now.
func (r *PasswordResetRequest) Usable(now time.Time) bool {
	return !r.Used && now.Before(r.ExpiresAt)
}
