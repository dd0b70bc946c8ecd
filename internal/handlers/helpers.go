package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"bandhub/internal/authz"
	apperrors "bandhub/internal/errors"
	"bandhub/internal/logger"
	"bandhub/internal/middleware"
	"bandhub/internal/models"
)

// MessageResponse is the body of operations that only report success.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// getSession returns the verified session of the request.
// Returns ErrUnauthorized if not present.
func getSession(c *gin.Context) (*authz.Session, error) {
	session := middleware.GetSession(c)
	if session == nil {
		return nil, apperrors.ErrUnauthorized
	}
	return session, nil
}

// requireQuery returns a required query parameter, failing with message when
// it is missing.
func requireQuery(c *gin.Context, name, message string) (string, error) {
	value := c.Query(name)
	if value == "" {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, message)
	}
	return value, nil
}

// bindingError maps a failed bind to the error registered for the first
// validation tag that rejected it, or to fallback.
func bindingError(err error, fallback *apperrors.AppError, byTag map[string]*apperrors.AppError) *apperrors.AppError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if appErr, ok := byTag[fe.Tag()]; ok {
				return appErr
			}
		}
	}
	return fallback
}

// parseFlexibleTime accepts a plain date or an RFC 3339 timestamp.
func parseFlexibleTime(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC 3339", value)
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, appErr)
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, apperrors.ErrInternalServer)
}

// UserView is the safe projection of a user returned by the API.
type UserView struct {
	ID        string            `json:"id"`
	Username  string            `json:"username"`
	Name      string            `json:"name"`
	Email     string            `json:"email"`
	Phone     *string           `json:"phone"`
	Role      models.Role       `json:"role"`
	Status    models.UserStatus `json:"status"`
	CreatedAt time.Time         `json:"createdAt"`
	LastLogin *time.Time        `json:"lastLogin"`
}

func newUserView(u *models.User) UserView {
	return UserView{
		ID:        u.ID,
		Username:  u.Username,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		LastLogin: u.LastLogin,
	}
}

func newUserViews(users []models.User) []UserView {
	views := make([]UserView, 0, len(users))
	for i := range users {
		views = append(views, newUserView(&users[i]))
	}
	return views
}

// PersonRef names the user behind a record.
type PersonRef struct {
	Name     string `json:"name"`
	Username string `json:"username"`
}
