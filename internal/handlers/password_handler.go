package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "bandhub/internal/errors"
	"bandhub/internal/services"
)

const forgotPasswordMessage = "If an account with this email exists, you will receive a password reset link."

// PasswordHandler handles the forgot/reset password flow.
type PasswordHandler struct {
	resetService services.PasswordResetServicer
}

// NewPasswordHandler creates a new PasswordHandler.
func NewPasswordHandler(resetService services.PasswordResetServicer) *PasswordHandler {
	return &PasswordHandler{resetService: resetService}
}

// ForgotPasswordRequest is the body of a reset request.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest redeems a reset token.
type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ForgotPassword emails a reset link when the account exists
// @Summary     Request a password reset
// @Description Always answers with the same message so accounts cannot be discovered
// @Tags        password
// @Accept      json
// @Produce     json
// @Param       request body ForgotPasswordRequest true "Account email"
// @Success     200 {object} MessageResponse "Generic confirmation"
// @Failure     400 {object} ErrorResponse "Email is required"
// @Failure     500 {object} ErrorResponse "Failed to send reset email"
// @Router      /forgot-password [post]
func (h *PasswordHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Email is required"))
		return
	}

	if err := h.resetService.RequestReset(c.Request.Context(), req.Email); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: forgotPasswordMessage})
}

// ResetPassword sets a new password from a reset token
// @Summary     Reset password
// @Tags        password
// @Accept      json
// @Produce     json
// @Param       request body ResetPasswordRequest true "Token and new password"
// @Success     200 {object} MessageResponse "Password reset"
// @Failure     400 {object} ErrorResponse "Missing fields, weak password or invalid token"
// @Router      /reset-password [post]
func (h *PasswordHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Token and password are required"))
		return
	}

	if err := h.resetService.ResetPassword(req.Token, req.Password); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{
		Message: "Password has been successfully reset. You can now log in with your new password.",
	})
}
