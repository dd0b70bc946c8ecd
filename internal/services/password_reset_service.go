package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "bandhub/internal/errors"
	"bandhub/internal/logger"
	"bandhub/internal/mailer"
	"bandhub/internal/models"
)

// passwordResetService handles the forgot/reset password flow.
type passwordResetService struct {
	db       *gorm.DB
	mail     mailer.Sender
	composer *mailer.Composer
	now      func() time.Time
}

// NewPasswordResetService creates a new PasswordResetServicer.
func NewPasswordResetService(db *gorm.DB, mail mailer.Sender, composer *mailer.Composer) PasswordResetServicer {
	return &passwordResetService{db: db, mail: mail, composer: composer, now: time.Now}
}

func newResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// RequestReset issues a reset token and emails it. Unknown emails succeed
// silently so the endpoint cannot be used to discover accounts.
func (s *passwordResetService) RequestReset(ctx context.Context, email string) error {
	if email == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Email is required")
	}
	email = normalizeEmail(email)

	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	token, err := newResetToken()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	req := &models.PasswordResetRequest{
		Email:     email,
		Token:     token,
		ExpiresAt: s.now().Add(models.PasswordResetExpiry),
	}
	if err := s.db.Create(req).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	name := user.Name
	if name == "" {
		name = user.Username
	}
	msg, err := s.composer.PasswordReset(email, name, token)
	if err == nil {
		err = s.mail.Send(ctx, msg)
	}
	if err != nil {
		logger.Get().Errorw("failed to send password reset email", "error", err, "user_id", user.ID)
		return apperrors.WithMessage(apperrors.Wrap(apperrors.ErrEmailDelivery, err), "Failed to send reset email")
	}
	return nil
}

// ResetPassword redeems token and sets a new password. The token is marked
// used with a conditional update so it can be redeemed only once.
func (s *passwordResetService) ResetPassword(token, newPassword string) error {
	if token == "" || newPassword == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Token and password are required")
	}
	if len(newPassword) < MinPasswordLength {
		return apperrors.ErrWeakPassword
	}

	hashed, err := hashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var req models.PasswordResetRequest
		if err := tx.Where("token = ?", token).First(&req).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrInvalidResetToken
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if !req.Usable(s.now()) {
			return apperrors.ErrInvalidResetToken
		}

		result := tx.Model(&models.PasswordResetRequest{}).
			Where("id = ? AND used = ?", req.ID, false).
			Update("used", true)
		if result.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrInvalidResetToken
		}

		result = tx.Model(&models.User{}).Where("email = ?", req.Email).Update("password_hash", hashed)
		if result.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrInvalidResetToken
		}
		return nil
	})
}
