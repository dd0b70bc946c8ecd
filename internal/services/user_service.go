package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"bandhub/internal/authz"
	apperrors "bandhub/internal/errors"
	"bandhub/internal/logger"
	"bandhub/internal/mailer"
	"bandhub/internal/models"
)

// MinPasswordLength is the shortest password accepted anywhere.
const MinPasswordLength = 8

// PasswordHashCost is the bcrypt cost for stored password hashes.
var PasswordHashCost = 12

// userService handles user-related business logic.
type userService struct {
	db       *gorm.DB
	blobs    BlobStore
	mail     mailer.Sender
	composer *mailer.Composer
}

// NewUserService creates a new UserServicer. blobs is used to remove the
// files of deleted users; mail delivers welcome emails for admin-created
// accounts.
func NewUserService(db *gorm.DB, blobs BlobStore, mail mailer.Sender, composer *mailer.Composer) UserServicer {
	return &userService{db: db, blobs: blobs, mail: mail, composer: composer}
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), PasswordHashCost)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return string(hashed), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ensureUnique rejects an email or username already in use.
func (s *userService) ensureUnique(email, username string) error {
	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateEmail
	}
	if err := s.db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateUsername
	}
	return nil
}

// Signup registers a PENDING member awaiting admin approval.
func (s *userService) Signup(in SignupInput) (*models.User, error) {
	if in.Username == "" || in.Email == "" || in.Phone == "" || in.Password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "All fields are required")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, apperrors.ErrWeakPassword
	}

	email := normalizeEmail(in.Email)
	if err := s.ensureUnique(email, in.Username); err != nil {
		return nil, err
	}

	hashed, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	phone := in.Phone
	user := &models.User{
		Username:     in.Username,
		Name:         in.Username,
		Email:        email,
		Phone:        &phone,
		Role:         models.RoleMember,
		Status:       models.UserStatusPending,
		PasswordHash: hashed,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return user, nil
}

// CreateUser creates an APPROVED account on behalf of an admin and sends a
// best-effort welcome email with the initial password.
func (s *userService) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	if in.Username == "" || in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Username, name, email and password are required")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, apperrors.ErrWeakPassword
	}
	role := in.Role
	if role == "" {
		role = models.RoleMember
	}
	if role != models.RoleMember && role != models.RoleAdmin {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Role must be MEMBER or ADMIN")
	}

	email := normalizeEmail(in.Email)
	if err := s.ensureUnique(email, in.Username); err != nil {
		return nil, err
	}

	hashed, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     in.Username,
		Name:         in.Name,
		Email:        email,
		Role:         role,
		Status:       models.UserStatusApproved,
		PasswordHash: hashed,
	}
	if in.Phone != "" {
		phone := in.Phone
		user.Phone = &phone
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if s.mail != nil && s.composer != nil {
		msg, err := s.composer.Welcome(user.Email, user.Name, in.Password)
		if err == nil {
			err = s.mail.Send(ctx, msg)
		}
		if err != nil {
			logger.Get().Warnw("failed to send welcome email", "error", err, "user_id", user.ID)
		}
	}
	return user, nil
}

// Authenticate verifies credentials for login. Unknown email, an account that
// is not APPROVED and a wrong password all fail the same way.
func (s *userService) Authenticate(email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	var user models.User
	if err := s.db.Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if user.Status != models.UserStatusApproved {
		return nil, apperrors.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.db.Model(&user).UpdateColumn("last_login", now).Error; err != nil {
		logger.Get().Warnw("failed to record last login", "error", err, "user_id", user.ID)
	} else {
		user.LastLogin = &now
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(id string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email, case-insensitively.
func (s *userService) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// ListUsers returns every account, newest first.
func (s *userService) ListUsers() ([]models.User, error) {
	var users []models.User
	if err := s.db.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return users, nil
}

// ListPendingUsers returns accounts awaiting approval, newest first.
func (s *userService) ListPendingUsers() ([]models.User, error) {
	var users []models.User
	if err := s.db.Where("status = ?", models.UserStatusPending).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return users, nil
}

// SetApproval moves a PENDING user to APPROVED or REJECTED. The update is
// conditional on the current status so each user is decided once.
func (s *userService) SetApproval(userID string, status models.UserStatus) (*models.User, error) {
	if status != models.UserStatusApproved && status != models.UserStatusRejected {
		return nil, apperrors.ErrInvalidInput
	}

	result := s.db.Model(&models.User{}).
		Where("id = ? AND status = ?", userID, models.UserStatusPending).
		Update("status", status)
	if result.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}

	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.ErrUserNotPending
	}
	return user, nil
}

// DeleteUser removes an account together with its transactions, files and
// unsent campaigns. Stored file bytes are removed after the rows are gone.
func (s *userService) DeleteUser(targetID string, session *authz.Session) error {
	if err := authz.CanDeleteUser(targetID, session); err != nil {
		return err
	}

	var paths []string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("id = ?", targetID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrUserNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := tx.Model(&models.File{}).Where("uploaded_by = ?", targetID).Pluck("file_path", &paths).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		for _, model := range []struct {
			value  interface{}
			column string
		}{
			{&models.Transaction{}, "user_id"},
			{&models.File{}, "uploaded_by"},
		} {
			if err := tx.Where(model.column+" = ?", targetID).Delete(model.value).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		// Sent campaigns are kept and attributed to the deleting admin.
		if err := tx.Where("sent_by = ? AND status <> ?", targetID, models.CampaignStatusSent).
			Delete(&models.EmailCampaign{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Model(&models.EmailCampaign{}).
			Where("sent_by = ? AND status = ?", targetID, models.CampaignStatusSent).
			Update("sent_by", session.UserID).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(&user).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, p := range paths {
		if err := s.blobs.Remove(p); err != nil {
			logger.Get().Warnw("failed to remove stored file of deleted user", "error", err, "path", p, "user_id", targetID)
		}
	}
	return nil
}

// ChangePassword replaces the password after verifying the current one.
func (s *userService) ChangePassword(userID, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Current and new password required")
	}
	if len(newPassword) < MinPasswordLength {
		return apperrors.ErrWeakPassword
	}

	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return apperrors.ErrWrongPassword
	}

	hashed, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.db.Model(user).Update("password_hash", hashed).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
