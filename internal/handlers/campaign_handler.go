package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "bandhub/internal/errors"
	"bandhub/internal/models"
	"bandhub/internal/services"
)

// CampaignHandler handles admin email campaigns.
type CampaignHandler struct {
	campaignService services.CampaignServicer
	auditService    services.AuditServicer
}

// NewCampaignHandler creates a new CampaignHandler.
func NewCampaignHandler(campaignService services.CampaignServicer, auditService services.AuditServicer) *CampaignHandler {
	return &CampaignHandler{campaignService: campaignService, auditService: auditService}
}

// CampaignRequest creates a campaign, or sends one when Action is "send".
type CampaignRequest struct {
	Action     string  `json:"action"`
	CampaignID string  `json:"campaignId"`
	Subject    string  `json:"subject"`
	Content    string  `json:"content"`
	PlainText  *string `json:"plainText"`
}

// UpdateCampaignRequest edits a campaign that has not been sent.
type UpdateCampaignRequest struct {
	ID        string  `json:"id"`
	Subject   string  `json:"subject"`
	Content   string  `json:"content"`
	PlainText *string `json:"plainText"`
}

// CampaignResponse is an email campaign.
type CampaignResponse struct {
	ID             string                `json:"id"`
	Subject        string                `json:"subject"`
	Content        string                `json:"content"`
	PlainText      *string               `json:"plainText"`
	Status         models.CampaignStatus `json:"status"`
	SentAt         *time.Time            `json:"sentAt"`
	RecipientCount int                   `json:"recipientCount"`
	CreatedAt      time.Time             `json:"createdAt"`
	Sender         PersonRef             `json:"sender"`
}

func newCampaignResponse(e *models.EmailCampaign) CampaignResponse {
	return CampaignResponse{
		ID:             e.ID,
		Subject:        e.Subject,
		Content:        e.Content,
		PlainText:      e.PlainText,
		Status:         e.Status,
		SentAt:         e.SentAt,
		RecipientCount: e.RecipientCount,
		CreatedAt:      e.CreatedAt,
		Sender:         PersonRef{Name: e.Sender.Name, Username: e.Sender.Username},
	}
}

// ListCampaigns returns every campaign
// @Summary     List campaigns
// @Tags        email-campaigns
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array}  CampaignResponse "Campaigns, newest first"
// @Failure     403 {object} ErrorResponse "Admin access required"
// @Router      /email-campaigns [get]
func (h *CampaignHandler) ListCampaigns(c *gin.Context) {
	campaigns, err := h.campaignService.ListCampaigns()
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp := make([]CampaignResponse, 0, len(campaigns))
	for i := range campaigns {
		resp = append(resp, newCampaignResponse(&campaigns[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// CreateOrSendCampaign creates a draft, or sends one with action=send
// @Summary     Create or send a campaign
// @Description {subject,content,plainText} creates a DRAFT; {action:"send",campaignId} emails every active subscriber once
// @Tags        email-campaigns
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CampaignRequest true "Campaign or send action"
// @Success     200 {object} map[string]interface{} "Campaign sent"
// @Success     201 {object} CampaignResponse "Campaign created"
// @Failure     400 {object} ErrorResponse "Missing fields, already sent or no subscribers"
// @Failure     403 {object} ErrorResponse "Admin access required"
// @Failure     404 {object} ErrorResponse "Campaign not found"
// @Failure     500 {object} ErrorResponse "Failed to send campaign"
// @Router      /email-campaigns [post]
func (h *CampaignHandler) CreateOrSendCampaign(c *gin.Context) {
	session, err := getSession(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.ErrInvalidInput)
		return
	}

	if req.Action == "send" {
		campaign, err := h.campaignService.SendCampaign(c.Request.Context(), req.CampaignID, session.UserID)
		if err != nil {
			respondWithError(c, err)
			return
		}
		h.auditService.Log(session.UserID, services.AuditSendCampaign, "email_campaign", campaign.ID, c.ClientIP(),
			map[string]interface{}{"recipients": campaign.RecipientCount})
		c.JSON(http.StatusOK, gin.H{
			"message":  fmt.Sprintf("Email sent to %d subscribers", campaign.RecipientCount),
			"campaign": newCampaignResponse(campaign),
		})
		return
	}

	campaign, err := h.campaignService.CreateCampaign(session.UserID, req.Subject, req.Content, req.PlainText)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newCampaignResponse(campaign))
}

// UpdateCampaign edits a draft campaign
// @Summary     Update a campaign
// @Tags        email-campaigns
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdateCampaignRequest true "Campaign changes"
// @Success     200 {object} CampaignResponse "Campaign updated"
// @Failure     400 {object} ErrorResponse "Missing fields or campaign already sent"
// @Failure     403 {object} ErrorResponse "Admin access required"
// @Failure     404 {object} ErrorResponse "Campaign not found"
// @Router      /email-campaigns [put]
func (h *CampaignHandler) UpdateCampaign(c *gin.Context) {
	var req UpdateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.ErrInvalidInput)
		return
	}

	campaign, err := h.campaignService.UpdateCampaign(req.ID, req.Subject, req.Content, req.PlainText)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCampaignResponse(campaign))
}

// DeleteCampaign removes a campaign that has not been sent
// @Summary     Delete a campaign
// @Tags        email-campaigns
// @Produce     json
// @Security    BearerAuth
// @Param       id query string true "Campaign ID"
// @Success     200 {object} MessageResponse "Campaign deleted"
// @Failure     400 {object} ErrorResponse "Campaign ID required or campaign already sent"
// @Failure     403 {object} ErrorResponse "Admin access required"
// @Failure     404 {object} ErrorResponse "Campaign not found"
// @Router      /email-campaigns [delete]
func (h *CampaignHandler) DeleteCampaign(c *gin.Context) {
	session, err := getSession(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	id, err := requireQuery(c, "id", "Campaign ID required")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.campaignService.DeleteCampaign(id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(session.UserID, services.AuditDeleteCampaign, "email_campaign", id, c.ClientIP(), nil)
	c.JSON(http.StatusOK, MessageResponse{Message: "Campaign deleted successfully"})
}
