package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "bandhub/internal/errors"
	"bandhub/internal/models"
	"bandhub/internal/services"
)

// MailingListHandler handles the public mailing list.
type MailingListHandler struct {
	mailingListService services.MailingListServicer
}

// NewMailingListHandler creates a new MailingListHandler.
func NewMailingListHandler(mailingListService services.MailingListServicer) *MailingListHandler {
	return &MailingListHandler{mailingListService: mailingListService}
}

// SubscribeRequest is the body of a mailing-list signup.
type SubscribeRequest struct {
	Email string  `json:"email"`
	Name  *string `json:"name"`
}

// SubscriberResponse is a mailing-list entry.
type SubscriberResponse struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         *string   `json:"name"`
	SubscribedAt time.Time `json:"subscribedAt,omitempty"`
}

func newSubscriberResponse(s *models.MailingListSubscriber) SubscriberResponse {
	return SubscriberResponse{ID: s.ID, Email: s.Email, Name: s.Name, SubscribedAt: s.SubscribedAt}
}

// ListSubscribers returns the active subscribers
// @Summary     List subscribers
// @Tags        mailing-list
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array}  SubscriberResponse "Active subscribers"
// @Failure     403 {object} ErrorResponse "Admin access required"
// @Router      /mailing-list [get]
func (h *MailingListHandler) ListSubscribers(c *gin.Context) {
	subscribers, err := h.mailingListService.ListSubscribers()
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp := make([]SubscriberResponse, 0, len(subscribers))
	for i := range subscribers {
		resp = append(resp, newSubscriberResponse(&subscribers[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// Subscribe adds or re-activates a mailing-list entry
// @Summary     Subscribe
// @Tags        mailing-list
// @Accept      json
// @Produce     json
// @Param       request body SubscribeRequest true "Email and optional name"
// @Success     200 {object} map[string]interface{} "message and subscriber"
// @Failure     400 {object} ErrorResponse "Email is required or invalid"
// @Router      /mailing-list [post]
func (h *MailingListHandler) Subscribe(c *gin.Context) {
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Email is required"))
		return
	}

	subscriber, err := h.mailingListService.Subscribe(req.Email, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Successfully subscribed to mailing list!",
		"subscriber": newSubscriberResponse(subscriber),
	})
}

// Unsubscribe removes an address by email or unsubscribe token
// @Summary     Unsubscribe
// @Tags        mailing-list
// @Produce     json
// @Param       email query string false "Subscriber email"
// @Param       token query string false "Unsubscribe token from a campaign email"
// @Success     200 {object} MessageResponse "Unsubscribed"
// @Failure     400 {object} ErrorResponse "Email or unsubscribe token required"
// @Failure     404 {object} ErrorResponse "Subscriber not found"
// @Router      /mailing-list [delete]
func (h *MailingListHandler) Unsubscribe(c *gin.Context) {
	if err := h.mailingListService.Unsubscribe(c.Query("email"), c.Query("token")); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Successfully unsubscribed from mailing list"})
}
