package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "bandhub/internal/errors"
	"bandhub/internal/models"
	"bandhub/internal/services"
)

// TransactionHandler handles band ledger requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService}
}

// CreateTransactionRequest represents the request payload for creating a transaction.
// Amount accepts a JSON number or a decimal string.
type CreateTransactionRequest struct {
	Type        *string          `json:"type" binding:"omitempty,transaction_type" swaggertype:"string" example:"expense"`
	Amount      *decimal.Decimal `json:"amount" swaggertype:"number" example:"49.99"`
	Description *string          `json:"description" example:"Guitar strings"`
	Category    *string          `json:"category" example:"Accessories"`
	Date        *string          `json:"date" example:"2024-05-01"`
}

// TransactionResponse represents a ledger entry in the response.
type TransactionResponse struct {
	ID          string    `json:"id"`
	Date        string    `json:"date"`
	Type        string    `json:"type"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	AddedBy     string    `json:"addedBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CategoriesResponse lists the suggested ledger and file categories.
type CategoriesResponse struct {
	TransactionCategories []models.CategoryGroup `json:"transactionCategories"`
	FileCategories        []string               `json:"fileCategories"`
}

func newTransactionResponse(t *models.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          t.ID,
		Date:        t.Date.UTC().Format("2006-01-02"),
		Type:        strings.ToLower(string(t.Type)),
		Amount:      t.Amount.InexactFloat64(),
		Description: t.Description,
		Category:    t.Category,
		AddedBy:     t.User.Username,
		CreatedAt:   t.CreatedAt,
	}
}

// ListTransactions returns the whole band ledger
// @Summary     List transactions
// @Description Every ledger entry, newest first
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array}  TransactionResponse "Ledger entries"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	transactions, err := h.transactionService.ListTransactions()
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp := make([]TransactionResponse, 0, len(transactions))
	for i := range transactions {
		resp = append(resp, newTransactionResponse(&transactions[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// CreateTransaction records a ledger entry for the caller
// @Summary     Create a transaction
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} TransactionResponse "Transaction created"
// @Failure     400 {object} ErrorResponse "Missing required fields or invalid type"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	session, err := getSession(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindingError(err, apperrors.ErrInvalidInput, map[string]*apperrors.AppError{
			"transaction_type": apperrors.ErrInvalidTransactionType,
		}))
		return
	}
	if req.Type == nil || req.Amount == nil || req.Description == nil || req.Category == nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Missing required fields"))
		return
	}

	var date time.Time
	if req.Date != nil && *req.Date != "" {
		date, err = parseFlexibleTime(*req.Date)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid date"))
			return
		}
	}

	transaction, err := h.transactionService.CreateTransaction(session.UserID, services.CreateTransactionInput{
		Type:        models.TransactionType(*req.Type),
		Amount:      *req.Amount,
		Description: *req.Description,
		Category:    *req.Category,
		Date:        date,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newTransactionResponse(transaction))
}

// DeleteTransaction removes a ledger entry owned by the caller
// @Summary     Delete a transaction
// @Description Owners may delete their own entries, admins may delete any
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id query string true "Transaction ID"
// @Success     200 {object} MessageResponse "Transaction deleted"
// @Failure     400 {object} ErrorResponse "Transaction ID required"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the owner or transaction not found"
// @Router      /transactions [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	session, err := getSession(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	id, err := requireQuery(c, "id", "Transaction ID required")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(id, session); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(session.UserID, services.AuditDeleteTransaction, "transaction", id, c.ClientIP(), nil)
	c.JSON(http.StatusOK, MessageResponse{Message: "Transaction deleted successfully"})
}

// ListCategories returns the suggested categories
// @Summary     Suggested categories
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} CategoriesResponse "Ledger and file categories"
// @Router      /transactions/categories [get]
func (h *TransactionHandler) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, CategoriesResponse{
		TransactionCategories: models.SuggestedCategories,
		FileCategories:        models.FileCategories,
	})
}
