package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"bandhub/internal/authz"
	apperrors "bandhub/internal/errors"
	"bandhub/internal/models"
	"bandhub/internal/services"
)

var errInvalidRole = apperrors.WithMessage(apperrors.ErrInvalidInput, "Role must be MEMBER or ADMIN")

// UserHandler handles account management for signed-in members.
type UserHandler struct {
	userService  services.UserServicer
	auditService services.AuditServicer
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService services.UserServicer, auditService services.AuditServicer) *UserHandler {
	return &UserHandler{userService: userService, auditService: auditService}
}

// UserActionRequest is the body of POST /users. Action selects which of the
// remaining fields apply.
type UserActionRequest struct {
	Action string `json:"action"`

	// changePassword
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`

	// createUser
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     string `json:"role" binding:"omitempty,user_role"`
	Password string `json:"password"`
}

// ListUsers returns every account to admins and an empty list to members
// @Summary     List users
// @Tags        users
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array}  UserView "All accounts (admins) or an empty list"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	session, err := getSession(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if !session.IsAdmin() {
		c.JSON(http.StatusOK, []UserView{})
		return
	}

	users, err := h.userService.ListUsers()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserViews(users))
}

// DeleteUser removes an account with its ledger entries and files
// @Summary     Delete a user
// @Tags        users
// @Produce     json
// @Security    BearerAuth
// @Param       id query string true "User ID"
// @Success     200 {object} MessageResponse "User deleted"
// @Failure     400 {object} ErrorResponse "User ID required"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not an admin or deleting yourself"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /users [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	session, err := getSession(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	id, err := requireQuery(c, "id", "User ID required")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.userService.DeleteUser(id, session); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(session.UserID, services.AuditDeleteUser, "user", id, c.ClientIP(), nil)
	c.JSON(http.StatusOK, MessageResponse{Message: "User deleted successfully"})
}

// UserAction changes the caller's password or, for admins, creates an account
// @Summary     User actions
// @Description action=changePassword {currentPassword,newPassword}; action=createUser {username,name,email,phone,role,password} (admin only)
// @Tags        users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UserActionRequest true "Action payload"
// @Success     200 {object} MessageResponse "Password updated"
// @Success     201 {object} UserView "User created"
// @Failure     400 {object} ErrorResponse "Invalid action or input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Admin access required"
// @Router      /users [post]
func (h *UserHandler) UserAction(c *gin.Context) {
	session, err := getSession(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UserActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindingError(err, apperrors.ErrInvalidInput, map[string]*apperrors.AppError{
			"user_role": errInvalidRole,
		}))
		return
	}

	switch req.Action {
	case "changePassword":
		h.changePassword(c, session, req)
	case "createUser":
		h.createUser(c, session, req)
	default:
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid action"))
	}
}

func (h *UserHandler) changePassword(c *gin.Context, session *authz.Session, req UserActionRequest) {
	if err := h.userService.ChangePassword(session.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Password updated successfully"})
}

func (h *UserHandler) createUser(c *gin.Context, session *authz.Session, req UserActionRequest) {
	if err := authz.RequireAdmin(session); err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), services.CreateUserInput{
		Username: req.Username,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Role:     models.Role(strings.ToUpper(req.Role)),
		Password: req.Password,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(session.UserID, services.AuditCreateUser, "user", user.ID, c.ClientIP(),
		map[string]interface{}{"username": user.Username, "role": user.Role})
	c.JSON(http.StatusCreated, newUserView(user))
}
