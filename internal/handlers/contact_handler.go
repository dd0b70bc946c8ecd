package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "bandhub/internal/errors"
	"bandhub/internal/services"
)

// ContactHandler forwards the public contact form.
type ContactHandler struct {
	contactService services.ContactServicer
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(contactService services.ContactServicer) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// ContactRequest is a contact-form submission.
type ContactRequest struct {
	Name    string `json:"name" binding:"max=200"`
	Email   string `json:"email" binding:"max=255"`
	Message string `json:"message" binding:"max=5000"`
}

// ContactResponse acknowledges a delivered message.
type ContactResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SendMessage emails a contact-form message to the band
// @Summary     Contact the band
// @Tags        contact
// @Accept      json
// @Produce     json
// @Param       request body ContactRequest true "Name, email and message"
// @Success     200 {object} ContactResponse "Message sent"
// @Failure     400 {object} ErrorResponse "All fields are required"
// @Failure     500 {object} ErrorResponse "Failed to send message"
// @Router      /contact [post]
func (h *ContactHandler) SendMessage(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "All fields are required"))
		return
	}

	if err := h.contactService.SendMessage(c.Request.Context(), req.Name, req.Email, req.Message); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, ContactResponse{Success: true, Message: "Message sent successfully"})
}
