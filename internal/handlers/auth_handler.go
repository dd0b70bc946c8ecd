package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "bandhub/internal/errors"
	"bandhub/internal/metrics"
	"bandhub/internal/middleware"
	"bandhub/internal/services"
)

// AuthHandler handles signup, login and session requests.
type AuthHandler struct {
	userService services.UserServicer
	sessions    *middleware.SessionManager
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userService services.UserServicer, sessions *middleware.SessionManager) *AuthHandler {
	return &AuthHandler{userService: userService, sessions: sessions}
}

// SignupRequest represents the registration request payload
type SignupRequest struct {
	Username string `json:"username" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,max=255"`
	Phone    string `json:"phone" binding:"required,max=50"`
	Password string `json:"password" binding:"required,max=128"`
}

// SignupUser is the account created by a signup.
type SignupUser struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Phone    *string `json:"phone"`
	Role     string  `json:"role"`
}

// SignupResponse is returned after a successful signup.
type SignupResponse struct {
	Message string     `json:"message"`
	User    SignupUser `json:"user"`
}

// LoginRequest represents the login request payload. Username carries the
// account email; Email is accepted as an alias.
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionUser is the identity carried by a session.
type SessionUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// LoginResponse represents the authentication response with token
type LoginResponse struct {
	Token string      `json:"token"`
	User  SessionUser `json:"user"`
}

// CheckUserStatusRequest is the body of a status lookup.
type CheckUserStatusRequest struct {
	Email string `json:"email"`
}

// Signup registers a member account awaiting approval
// @Summary     Sign up
// @Description Create a PENDING member account. An admin must approve it before login succeeds.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body SignupRequest true "Signup data"
// @Success     201 {object} SignupResponse "Account created"
// @Failure     400 {object} ErrorResponse "Missing fields, weak password or duplicate email"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "All fields are required"))
		return
	}

	user, err := h.userService.Signup(services.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	metrics.SignupsTotal.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SignupResponse{
		Message: "Account created successfully",
		User: SignupUser{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			Phone:    user.Phone,
			Role:     string(user.Role),
		},
	})
}

// Login handles user login
// @Summary     Log in
// @Description Verify credentials of an APPROVED account and issue a session token (body and HttpOnly cookie)
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "Credentials"
// @Success     200 {object} LoginResponse "Session issued"
// @Failure     401 {object} ErrorResponse "Invalid username or password"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.ErrInvalidCredentials)
		return
	}
	email := req.Username
	if email == "" {
		email = req.Email
	}

	user, err := h.userService.Authenticate(email, req.Password)
	metrics.LoginsTotal.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		respondWithError(c, err)
		return
	}

	token, err := h.sessions.Issue(user)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	h.sessions.SetCookie(c, token)

	c.JSON(http.StatusOK, LoginResponse{
		Token: token,
		User:  SessionUser{ID: user.ID, Username: user.Username, Role: string(user.Role)},
	})
}

// Logout clears the session cookie
// @Summary     Log out
// @Description Clear the session cookie. Tokens are stateless and stay valid until they expire.
// @Tags        auth
// @Produce     json
// @Success     200 {object} MessageResponse "Logged out"
// @Router      /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	h.sessions.ClearCookie(c)
	c.JSON(http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}

// Session returns the identity of the current session
// @Summary     Current session
// @Tags        auth
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} SessionUser "Session identity"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /auth/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	session, err := getSession(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user": SessionUser{ID: session.UserID, Username: session.Username, Role: string(session.Role)},
	})
}

// CheckUserStatus reports the approval status of an account
// @Summary     Check account status
// @Description Lets the login page explain why an account cannot log in yet
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body CheckUserStatusRequest true "Account email"
// @Success     200 {object} map[string]interface{} "status and exists"
// @Failure     400 {object} ErrorResponse "Email is required"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /check-user-status [post]
func (h *AuthHandler) CheckUserStatus(c *gin.Context) {
	var req CheckUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Email is required"))
		return
	}

	user, err := h.userService.GetUserByEmail(req.Email)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": user.Status, "exists": true})
}
