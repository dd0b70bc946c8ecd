package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/httprate"

	apperrors "bandhub/internal/errors"
)

// RateLimit limits requests per client IP on the routes it wraps. It adapts
// an httprate limiter to gin: the limiter either calls through to the rest of
// the chain or writes the 429 itself.
func RateLimit(requests int, window time.Duration) gin.HandlerFunc {
	limiter := httprate.NewRateLimiter(requests, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeJSONError(w, apperrors.ErrRateLimited)
		}),
	)

	return func(c *gin.Context) {
		passed := false
		limiter.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Request = r
			c.Next()
		})).ServeHTTP(c.Writer, c.Request)

		if !passed {
			c.Abort()
		}
	}
}
