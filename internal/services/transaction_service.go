package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"bandhub/internal/authz"
	apperrors "bandhub/internal/errors"
	"bandhub/internal/models"
)

// transactionService handles the band ledger.
type transactionService struct {
	db *gorm.DB
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{db: db}
}

// ListTransactions returns every ledger entry with its creator, newest first.
func (s *transactionService) ListTransactions() ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := s.db.Preload("User").Order("created_at DESC").Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transactions, nil
}

// CreateTransaction records a ledger entry owned by userID.
func (s *transactionService) CreateTransaction(userID string, in CreateTransactionInput) (*models.Transaction, error) {
	txType := models.TransactionType(strings.ToUpper(string(in.Type)))
	if !txType.Valid() {
		return nil, apperrors.ErrInvalidTransactionType
	}
	if in.Amount.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Amount must not be negative")
	}
	if strings.TrimSpace(in.Description) == "" || strings.TrimSpace(in.Category) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Missing required fields")
	}

	var user models.User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSessionUserGone
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	date := in.Date
	if date.IsZero() {
		date = time.Now()
	}

	transaction := &models.Transaction{
		Type:        txType,
		Amount:      in.Amount.Round(2),
		Description: in.Description,
		Category:    in.Category,
		Date:        date,
		UserID:      user.ID,
	}
	if err := s.db.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	transaction.User = user
	return transaction, nil
}

// GetTransactionByID retrieves a ledger entry with its creator.
func (s *transactionService) GetTransactionByID(id string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Preload("User").Where("id = ?", id).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// DeleteTransaction removes an entry when the session owns it or is an
// ADMIN. A missing entry is reported the same way as a foreign one.
func (s *transactionService) DeleteTransaction(id string, session *authz.Session) error {
	transaction, err := s.GetTransactionByID(id)
	if err != nil {
		if errors.Is(err, apperrors.ErrTransactionNotFound) {
			return apperrors.ErrTransactionForbidden
		}
		return err
	}
	if !authz.CanMutateOwnedResource(transaction, session) {
		return apperrors.ErrTransactionForbidden
	}

	if err := s.db.Delete(&models.Transaction{}, "id = ?", id).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
