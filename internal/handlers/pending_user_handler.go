package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "bandhub/internal/errors"
	"bandhub/internal/models"
	"bandhub/internal/services"
)

// PendingUserHandler handles the admin approval queue.
type PendingUserHandler struct {
	userService  services.UserServicer
	auditService services.AuditServicer
}

// NewPendingUserHandler creates a new PendingUserHandler.
func NewPendingUserHandler(userService services.UserServicer, auditService services.AuditServicer) *PendingUserHandler {
	return &PendingUserHandler{userService: userService, auditService: auditService}
}

// ApprovalRequest approves or rejects a pending account.
type ApprovalRequest struct {
	UserID string `json:"userId" binding:"required"`
	Action string `json:"action" binding:"required,approval_action"`
}

// ApprovalResponse confirms an approval decision.
type ApprovalResponse struct {
	Message string `json:"message"`
	Action  string `json:"action"`
	UserID  string `json:"userId"`
}

// ListPendingUsers returns accounts awaiting approval
// @Summary     List pending users
// @Tags        pending-users
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array}  UserView "Pending accounts, newest first"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Admin access required"
// @Router      /pending-users [get]
func (h *PendingUserHandler) ListPendingUsers(c *gin.Context) {
	users, err := h.userService.ListPendingUsers()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserViews(users))
}

// DecidePendingUser approves or rejects a pending account
// @Summary     Approve or reject a pending user
// @Tags        pending-users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ApprovalRequest true "userId and action (approve or reject)"
// @Success     200 {object} ApprovalResponse "Decision recorded"
// @Failure     400 {object} ErrorResponse "Invalid request data or user not pending"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Admin access required"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /pending-users [post]
func (h *PendingUserHandler) DecidePendingUser(c *gin.Context) {
	session, err := getSession(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.ErrInvalidInput)
		return
	}

	status, auditAction, verb := models.UserStatusApproved, services.AuditApproveUser, "approved"
	if req.Action == "reject" {
		status, auditAction, verb = models.UserStatusRejected, services.AuditRejectUser, "rejected"
	}

	if _, err := h.userService.SetApproval(req.UserID, status); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(session.UserID, auditAction, "user", req.UserID, c.ClientIP(),
		map[string]interface{}{"status": status})

	c.JSON(http.StatusOK, ApprovalResponse{
		Message: "User " + verb + " successfully",
		Action:  req.Action,
		UserID:  req.UserID,
	})
}
