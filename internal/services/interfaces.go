package services

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"bandhub/internal/authz"
	"bandhub/internal/models"
	"bandhub/internal/pagination"
	"bandhub/internal/storage"
)

// SignupInput is a self-service registration request.
type SignupInput struct {
	Username string
	Email    string
	Phone    string
	Password string
}

// CreateUserInput is an admin-created account.
type CreateUserInput struct {
	Username string
	Name     string
	Email    string
	Phone    string
	Role     models.Role
	Password string
}

// UserServicer defines the contract for account, approval and credential logic.
type UserServicer interface {
	Signup(in SignupInput) (*models.User, error)
	CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error)
	Authenticate(email, password string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	ListUsers() ([]models.User, error)
	ListPendingUsers() ([]models.User, error)
	SetApproval(userID string, status models.UserStatus) (*models.User, error)
	DeleteUser(targetID string, session *authz.Session) error
	ChangePassword(userID, currentPassword, newPassword string) error
}

// PasswordResetServicer defines the forgot/reset password flow.
type PasswordResetServicer interface {
	RequestReset(ctx context.Context, email string) error
	ResetPassword(token, newPassword string) error
}

// CreateTransactionInput is a new ledger entry.
type CreateTransactionInput struct {
	Type        models.TransactionType
	Amount      decimal.Decimal
	Description string
	Category    string
	Date        time.Time
}

// TransactionServicer defines the contract for the band ledger.
type TransactionServicer interface {
	ListTransactions() ([]models.Transaction, error)
	CreateTransaction(userID string, in CreateTransactionInput) (*models.Transaction, error)
	GetTransactionByID(id string) (*models.Transaction, error)
	DeleteTransaction(id string, session *authz.Session) error
}

// UploadInput is a file received from a member.
type UploadInput struct {
	Reader       io.Reader
	OriginalName string
	MimeType     string
	Category     string
	Description  string
}

// FileServicer defines the contract for shared band files.
type FileServicer interface {
	ListFiles(category string, page pagination.PageRequest) (*pagination.PageResponse[models.File], error)
	UploadFile(userID string, in UploadInput) (*models.File, error)
	GetFileByID(id string) (*models.File, error)
	OpenFile(id string) (*models.File, *os.File, error)
	DeleteFile(id string, session *authz.Session) error
}

// MailingListServicer defines the contract for the public mailing list.
type MailingListServicer interface {
	Subscribe(email string, name *string) (*models.MailingListSubscriber, error)
	ListSubscribers() ([]models.MailingListSubscriber, error)
	Unsubscribe(email, token string) error
}

// CampaignServicer defines the contract for email campaigns.
type CampaignServicer interface {
	ListCampaigns() ([]models.EmailCampaign, error)
	CreateCampaign(senderID, subject, content string, plainText *string) (*models.EmailCampaign, error)
	UpdateCampaign(id, subject, content string, plainText *string) (*models.EmailCampaign, error)
	DeleteCampaign(id string) error
	SendCampaign(ctx context.Context, id, senderID string) (*models.EmailCampaign, error)
}

// ContactServicer forwards public contact-form messages to the band.
type ContactServicer interface {
	SendMessage(ctx context.Context, name, email, message string) error
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}

// BlobStore is the storage used for uploaded file bytes.
type BlobStore interface {
	Save(r io.Reader, originalName string) (*storage.Blob, error)
	Open(path string) (*os.File, os.FileInfo, error)
	Remove(path string) error
}
