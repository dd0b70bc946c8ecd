package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"bandhub/internal/authz"
	apperrors "bandhub/internal/errors"
	"bandhub/internal/models"
)

const (
	// SessionCookieName is the cookie carrying the session token.
	SessionCookieName = "session_token"

	sessionKey  = "session"
	tokenIssuer = "bandhub-api"
)

// SessionClaims are the claims signed into a session token.
type SessionClaims struct {
	UserID   string      `json:"user_id"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	jwt.RegisteredClaims
}

// SessionManager issues and verifies stateless HS256 session tokens.
type SessionManager struct {
	secret       []byte
	ttl          time.Duration
	cookieSecure bool
}

// NewSessionManager creates a SessionManager signing with secret.
func NewSessionManager(secret string, ttl time.Duration, cookieSecure bool) *SessionManager {
	return &SessionManager{secret: []byte(secret), ttl: ttl, cookieSecure: cookieSecure}
}

// Issue signs a session token for an authenticated user.
func (m *SessionManager) Issue(user *models.User) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse verifies a token's signature and expiry and returns its session.
func (m *SessionManager) Parse(tokenString string) (*authz.Session, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(tokenIssuer))

	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid session token")
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("session token has no subject")
	}

	return &authz.Session{
		UserID:   claims.UserID,
		Username: claims.Username,
		Role:     claims.Role,
	}, nil
}

// SetCookie stores the token in an HttpOnly cookie.
func (m *SessionManager) SetCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, int(m.ttl.Seconds()), "/", "", m.cookieSecure, true)
}

// ClearCookie expires the session cookie.
func (m *SessionManager) ClearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", m.cookieSecure, true)
}

// LoadSession attaches the session to the context when the request carries a
// valid token, either as a Bearer header or as the session cookie. Requests
// without one pass through untouched so public routes stay reachable.
func (m *SessionManager) LoadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			if cookie, err := c.Cookie(SessionCookieName); err == nil {
				tokenString = cookie
			}
		}

		if tokenString != "" {
			if session, err := m.Parse(tokenString); err == nil {
				c.Set(sessionKey, session)
			}
		}
		c.Next()
	}
}

// RequireSession aborts with 401 when no valid session was loaded.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetSession(c) == nil {
			abortWithError(c, apperrors.ErrUnauthorized)
			return
		}
		c.Next()
	}
}

// RequireAdmin aborts with 403 unless the session is an ADMIN. A missing
// session is also answered with 403.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := authz.RequireAdmin(GetSession(c)); err != nil {
			abortWithError(c, err.(*apperrors.AppError))
			return
		}
		c.Next()
	}
}

// GetSession returns the session loaded for this request, or nil.
func GetSession(c *gin.Context) *authz.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	session, _ := v.(*authz.Session)
	return session
}

// SetSession attaches a session to the context.
func SetSession(c *gin.Context, session *authz.Session) {
	c.Set(sessionKey, session)
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
