package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"bandhub/internal/models"
	"bandhub/internal/uuid"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword is the plaintext password of every fixture user.
const TestPassword = "password123"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// UserOption customizes a fixture user.
type UserOption func(*models.User)

// WithRole sets the fixture user's role.
func WithRole(role models.Role) UserOption {
	return func(u *models.User) { u.Role = role }
}

// WithStatus sets the fixture user's approval status.
func WithStatus(status models.UserStatus) UserOption {
	return func(u *models.User) { u.Status = status }
}

// WithEmail sets the fixture user's email.
func WithEmail(email string) UserOption {
	return func(u *models.User) { u.Email = email }
}

// CreateTestUser creates an APPROVED member with a hashed TestPassword and a
// unique username and email.
func CreateTestUser(t *testing.T, db *gorm.DB, opts ...UserOption) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	n := nextID()
	user := &models.User{
		Username:     fmt.Sprintf("member%d", n),
		Name:         fmt.Sprintf("Member %d", n),
		Email:        fmt.Sprintf("member%d@test.com", n),
		Role:         models.RoleMember,
		Status:       models.UserStatusApproved,
		PasswordHash: string(hash),
	}
	for _, opt := range opts {
		opt(user)
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestAdmin creates an APPROVED admin.
func CreateTestAdmin(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUser(t, db, WithRole(models.RoleAdmin))
}

// CreateTestTransaction creates an expense owned by userID.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID string) *models.Transaction {
	t.Helper()

	transaction := &models.Transaction{
		Type:        models.TransactionTypeExpense,
		Amount:      decimal.RequireFromString("49.99"),
		Description: "Guitar strings",
		Category:    "Accessories",
		Date:        time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		UserID:      userID,
	}
	if err := db.Create(transaction).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return transaction
}

// CreateTestFile writes content under dir and records it as uploaded by
// userID in category.
func CreateTestFile(t *testing.T, db *gorm.DB, dir, userID, category string) *models.File {
	t.Helper()

	n := nextID()
	name := fmt.Sprintf("%d-fixture%d.txt", time.Now().UnixMilli(), n)
	path := filepath.Join(dir, name)
	content := []byte(fmt.Sprintf("fixture file %d", n))
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	file := &models.File{
		Name:         name,
		OriginalName: fmt.Sprintf("notes-%d.txt", n),
		MimeType:     "text/plain",
		Size:         int64(len(content)),
		Category:     category,
		FilePath:     path,
		UploadedBy:   userID,
		UploadedAt:   time.Now().Add(time.Duration(n) * time.Millisecond),
	}
	if err := db.Create(file).Error; err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	return file
}

// CreateTestSubscriber creates a mailing-list subscriber.
func CreateTestSubscriber(t *testing.T, db *gorm.DB, subscribed bool) *models.MailingListSubscriber {
	t.Helper()

	sub := &models.MailingListSubscriber{
		Email:            fmt.Sprintf("fan%d@test.com", nextID()),
		Subscribed:       subscribed,
		SubscribedAt:     time.Now(),
		UnsubscribeToken: uuid.NewToken(),
	}
	if !subscribed {
		now := time.Now()
		sub.UnsubscribedAt = &now
	}
	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("failed to create test subscriber: %v", err)
	}
	return sub
}

// CreateTestCampaign creates a campaign in status authored by senderID.
func CreateTestCampaign(t *testing.T, db *gorm.DB, senderID string, status models.CampaignStatus) *models.EmailCampaign {
	t.Helper()

	campaign := &models.EmailCampaign{
		Subject: fmt.Sprintf("Newsletter %d", nextID()),
		Content: "<p>New album out now</p>",
		Status:  status,
		SentBy:  senderID,
	}
	if status == models.CampaignStatusSent {
		now := time.Now()
		campaign.SentAt = &now
		campaign.RecipientCount = 1
	}
	if err := db.Create(campaign).Error; err != nil {
		t.Fatalf("failed to create test campaign: %v", err)
	}
	return campaign
}
