// Package errors provides custom error types for the bandhub API.
// All service-layer errors should use AppError so that responses stay
// consistent and never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"error"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is matches AppErrors by code so sentinels survive Wrap and WithMessage.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Unauthorized", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid username or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
	ErrAdminRequired      = &AppError{Code: "ADMIN_REQUIRED", Message: "Admin access required", StatusCode: http.StatusForbidden}
	ErrRateLimited        = &AppError{Code: "RATE_LIMITED", Message: "Too many requests, please try again later", StatusCode: http.StatusTooManyRequests}
	ErrSessionUserGone    = &AppError{Code: "SESSION_USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusUnauthorized}
)

// General errors.
var (
	ErrInvalidInput     = &AppError{Code: "INVALID_INPUT", Message: "Invalid request data", StatusCode: http.StatusBadRequest}
	ErrNotFound         = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrMethodNotAllowed = &AppError{Code: "METHOD_NOT_ALLOWED", Message: "Method not allowed", StatusCode: http.StatusMethodNotAllowed}
	ErrInternalServer   = &AppError{Code: "INTERNAL_ERROR", Message: "Internal server error", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound      = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail    = &AppError{Code: "DUPLICATE_EMAIL", Message: "An account with this email already exists", StatusCode: http.StatusBadRequest}
	ErrDuplicateUsername = &AppError{Code: "DUPLICATE_USERNAME", Message: "Username already exists", StatusCode: http.StatusBadRequest}
	ErrWeakPassword      = &AppError{Code: "WEAK_PASSWORD", Message: "Password must be at least 8 characters long", StatusCode: http.StatusBadRequest}
	ErrWrongPassword     = &AppError{Code: "WRONG_PASSWORD", Message: "Current password is incorrect", StatusCode: http.StatusBadRequest}
	ErrUserNotPending    = &AppError{Code: "USER_NOT_PENDING", Message: "User is not awaiting approval", StatusCode: http.StatusBadRequest}
	ErrCannotDeleteUser  = &AppError{Code: "CANNOT_DELETE_USER", Message: "Not authorized to delete this user or cannot delete yourself", StatusCode: http.StatusForbidden}
)

// Password reset errors.
var (
	ErrInvalidResetToken = &AppError{Code: "INVALID_RESET_TOKEN", Message: "Invalid or expired reset token", StatusCode: http.StatusBadRequest}
	ErrEmailDelivery     = &AppError{Code: "EMAIL_DELIVERY_FAILED", Message: "Failed to send email", StatusCode: http.StatusInternalServerError}
)

// Transaction errors.
var (
	ErrTransactionNotFound    = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrInvalidTransactionType = &AppError{Code: "INVALID_TRANSACTION_TYPE", Message: "Transaction type must be expense or revenue", StatusCode: http.StatusBadRequest}
	ErrTransactionForbidden   = &AppError{Code: "TRANSACTION_FORBIDDEN", Message: "Not authorized to delete this transaction or transaction not found", StatusCode: http.StatusForbidden}
)

// File errors.
var (
	ErrFileNotFound   = &AppError{Code: "FILE_NOT_FOUND", Message: "File not found", StatusCode: http.StatusNotFound}
	ErrFileMissing    = &AppError{Code: "FILE_MISSING", Message: "File not found on disk", StatusCode: http.StatusNotFound}
	ErrNoFileUploaded = &AppError{Code: "NO_FILE_UPLOADED", Message: "No file uploaded", StatusCode: http.StatusBadRequest}
	ErrFileTooLarge   = &AppError{Code: "FILE_TOO_LARGE", Message: "File exceeds the maximum upload size", StatusCode: http.StatusBadRequest}
	ErrFileForbidden  = &AppError{Code: "FILE_FORBIDDEN", Message: "Not authorized to delete this file", StatusCode: http.StatusForbidden}
)

// Mailing list errors.
var (
	ErrInvalidEmail       = &AppError{Code: "INVALID_EMAIL", Message: "Invalid email address", StatusCode: http.StatusBadRequest}
	ErrSubscriberNotFound = &AppError{Code: "SUBSCRIBER_NOT_FOUND", Message: "Subscriber not found", StatusCode: http.StatusNotFound}
)

// Campaign errors.
var (
	ErrCampaignNotFound     = &AppError{Code: "CAMPAIGN_NOT_FOUND", Message: "Campaign not found", StatusCode: http.StatusNotFound}
	ErrCampaignAlreadySent  = &AppError{Code: "CAMPAIGN_ALREADY_SENT", Message: "Campaign already sent", StatusCode: http.StatusBadRequest}
	ErrCampaignNotEditable  = &AppError{Code: "CAMPAIGN_NOT_EDITABLE", Message: "Cannot edit sent campaign", StatusCode: http.StatusBadRequest}
	ErrCampaignNotDeletable = &AppError{Code: "CAMPAIGN_NOT_DELETABLE", Message: "Cannot delete sent campaign", StatusCode: http.StatusBadRequest}
	ErrNoSubscribers        = &AppError{Code: "NO_SUBSCRIBERS", Message: "No active subscribers found", StatusCode: http.StatusBadRequest}
)
