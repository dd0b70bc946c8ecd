package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "bandhub/internal/errors"
	"bandhub/internal/logger"
	"bandhub/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
}

func doRequest(r *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, http.NoBody)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response body: %v", err)
	}
	return result
}

func ok(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func TestAPIKeyAuth(t *testing.T) {
	tests := []struct {
		name          string
		configuredKey string
		requestKey    string
		wantStatus    int
		wantErrorCode string
	}{
		{name: "valid_api_key", configuredKey: "metrics-key", requestKey: "metrics-key", wantStatus: http.StatusOK},
		{name: "invalid_api_key", configuredKey: "metrics-key", requestKey: "wrong-key", wantStatus: http.StatusUnauthorized, wantErrorCode: "INVALID_API_KEY"},
		{name: "missing_api_key", configuredKey: "metrics-key", wantStatus: http.StatusUnauthorized, wantErrorCode: "INVALID_API_KEY"},
		{name: "partial_match_rejected", configuredKey: "metrics-key", requestKey: "metrics", wantStatus: http.StatusUnauthorized, wantErrorCode: "INVALID_API_KEY"},
		{name: "unconfigured_is_open", configuredKey: "", requestKey: "", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/metrics", APIKeyAuth(tt.configuredKey), ok)

			headers := map[string]string{}
			if tt.requestKey != "" {
				headers["X-API-Key"] = tt.requestKey
			}
			rec := doRequest(r, http.MethodGet, "/metrics", headers)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantErrorCode != "" {
				body := parseBody(t, rec)
				if code, _ := body["code"].(string); code != tt.wantErrorCode {
					t.Errorf("error code = %q, want %q", code, tt.wantErrorCode)
				}
			}
		})
	}
}

func TestSessionManager_IssueAndParse(t *testing.T) {
	m := NewSessionManager("test-secret", time.Hour, false)
	user := &models.User{Base: models.Base{ID: "user-1"}, Username: "picker", Role: models.RoleAdmin}

	token, err := m.Issue(user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	session, err := m.Parse(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.UserID != "user-1" || session.Username != "picker" || session.Role != models.RoleAdmin {
		t.Errorf("unexpected session %+v", session)
	}
}

func TestSessionManager_RejectsForeignSignature(t *testing.T) {
	issuer := NewSessionManager("secret-a", time.Hour, false)
	verifier := NewSessionManager("secret-b", time.Hour, false)

	token, _ := issuer.Issue(&models.User{Base: models.Base{ID: "user-1"}, Role: models.RoleAdmin})
	if _, err := verifier.Parse(token); err == nil {
		t.Fatal("expected token signed with another key to be rejected")
	}
}

func TestSessionManager_RejectsExpired(t *testing.T) {
	m := NewSessionManager("secret", -time.Minute, false)
	token, _ := m.Issue(&models.User{Base: models.Base{ID: "user-1"}})
	if _, err := m.Parse(token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func setupSessionRouter(m *SessionManager) *gin.Engine {
	r := gin.New()
	r.Use(m.LoadSession())
	r.GET("/public", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"hasSession": GetSession(c) != nil})
	})
	r.GET("/private", RequireSession(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": GetSession(c).UserID})
	})
	r.GET("/admin", RequireAdmin(), ok)
	return r
}

func TestLoadSession_BearerAndCookie(t *testing.T) {
	m := NewSessionManager("secret", time.Hour, false)
	r := setupSessionRouter(m)
	token, _ := m.Issue(&models.User{Base: models.Base{ID: "user-7"}, Role: models.RoleMember})

	rec := doRequest(r, http.MethodGet, "/private", map[string]string{"Authorization": "Bearer " + token})
	if rec.Code != http.StatusOK {
		t.Fatalf("bearer: status = %d, want 200", rec.Code)
	}
	if id := parseBody(t, rec)["id"]; id != "user-7" {
		t.Errorf("bearer: id = %v, want user-7", id)
	}

	rec = doRequest(r, http.MethodGet, "/private", map[string]string{"Cookie": SessionCookieName + "=" + token})
	if rec.Code != http.StatusOK {
		t.Fatalf("cookie: status = %d, want 200", rec.Code)
	}
}

func TestRequireSession_Missing(t *testing.T) {
	r := setupSessionRouter(NewSessionManager("secret", time.Hour, false))

	rec := doRequest(r, http.MethodGet, "/private", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if msg := parseBody(t, rec)["error"]; msg != "Unauthorized" {
		t.Errorf("error = %v, want Unauthorized", msg)
	}

	rec = doRequest(r, http.MethodGet, "/private", map[string]string{"Authorization": "Bearer garbage"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("garbage token: status = %d, want 401", rec.Code)
	}

	rec = doRequest(r, http.MethodGet, "/public", nil)
	if rec.Code != http.StatusOK || parseBody(t, rec)["hasSession"] != false {
		t.Errorf("public route should pass without session")
	}
}

func TestRequireAdmin(t *testing.T) {
	m := NewSessionManager("secret", time.Hour, false)
	r := setupSessionRouter(m)
	member, _ := m.Issue(&models.User{Base: models.Base{ID: "m"}, Role: models.RoleMember})
	admin, _ := m.Issue(&models.User{Base: models.Base{ID: "a"}, Role: models.RoleAdmin})

	if rec := doRequest(r, http.MethodGet, "/admin", nil); rec.Code != http.StatusForbidden {
		t.Errorf("no session: status = %d, want 403", rec.Code)
	}
	rec := doRequest(r, http.MethodGet, "/admin", map[string]string{"Authorization": "Bearer " + member})
	if rec.Code != http.StatusForbidden {
		t.Errorf("member: status = %d, want 403", rec.Code)
	}
	if msg := parseBody(t, rec)["error"]; msg != "Admin access required" {
		t.Errorf("member: error = %v", msg)
	}
	if rec := doRequest(r, http.MethodGet, "/admin", map[string]string{"Authorization": "Bearer " + admin}); rec.Code != http.StatusOK {
		t.Errorf("admin: status = %d, want 200", rec.Code)
	}
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/app", func(c *gin.Context) {
		_ = c.Error(apperrors.Wrap(apperrors.ErrInternalServer, errors.New("db exploded")))
	})
	r.GET("/plain", func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
	})
	r.GET("/notfound", func(c *gin.Context) {
		_ = c.Error(apperrors.ErrFileNotFound)
	})

	rec := doRequest(r, http.MethodGet, "/app", nil)
	body := parseBody(t, rec)
	if rec.Code != http.StatusInternalServerError || body["error"] != "Internal server error" {
		t.Errorf("app error: got %d %v", rec.Code, body)
	}

	rec = doRequest(r, http.MethodGet, "/plain", nil)
	if rec.Code != http.StatusInternalServerError || parseBody(t, rec)["code"] != "INTERNAL_ERROR" {
		t.Errorf("plain error should map to INTERNAL_ERROR")
	}

	rec = doRequest(r, http.MethodGet, "/notfound", nil)
	if rec.Code != http.StatusNotFound || parseBody(t, rec)["error"] != "File not found" {
		t.Errorf("not found: got %d", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.POST("/login", RateLimit(2, time.Minute), ok)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", http.NoBody)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/login", http.NoBody)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if code := parseBody(t, rec)["code"]; code != "RATE_LIMITED" {
		t.Errorf("code = %v, want RATE_LIMITED", code)
	}

	other := httptest.NewRequest(http.MethodPost, "/login", http.NoBody)
	other.RemoteAddr = "10.0.0.2:1234"
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, other)
	if rec.Code != http.StatusOK {
		t.Errorf("other client: status = %d, want 200", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoMethod(MethodNotAllowed())
	r.GET("/thing", ok)

	rec := doRequest(r, http.MethodPatch, "/thing", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
	if msg := parseBody(t, rec)["error"]; msg != "Method not allowed" {
		t.Errorf("error = %v", msg)
	}
}

func TestCORS(t *testing.T) {
	newRouter := func(origins string) *gin.Engine {
		r := gin.New()
		r.Use(CORS(origins))
		r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
		r.OPTIONS("/ping", func(c *gin.Context) { c.String(http.StatusTeapot, "route reached") })
		return r
	}

	t.Run("named origins with credentials", func(t *testing.T) {
		r := newRouter("http://band.test, http://admin.band.test")

		rec := doRequest(r, "GET", "/ping", map[string]string{"Origin": "http://admin.band.test"})
		if rec.Code != http.StatusOK || rec.Body.String() != "pong" {
			t.Fatalf("expected the route to run, got %d %q", rec.Code, rec.Body.String())
		}
		if rec.Header().Get("Access-Control-Allow-Origin") != "http://admin.band.test" {
			t.Errorf("unexpected allow origin %q", rec.Header().Get("Access-Control-Allow-Origin"))
		}
		if rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
			t.Error("expected credentials header")
		}

		rec = doRequest(r, "GET", "/ping", map[string]string{"Origin": "http://other.test"})
		if rec.Header().Get("Access-Control-Allow-Origin") != "" {
			t.Error("unlisted origin must not be allowed")
		}
	})

	t.Run("wildcard", func(t *testing.T) {
		r := newRouter("*")

		rec := doRequest(r, "GET", "/ping", map[string]string{"Origin": "http://anywhere.test"})
		if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Errorf("expected wildcard origin, got %q", rec.Header().Get("Access-Control-Allow-Origin"))
		}
		if rec.Header().Get("Access-Control-Allow-Credentials") != "" {
			t.Error("wildcard must not allow credentials")
		}
	})

	t.Run("preflight stops the chain", func(t *testing.T) {
		r := newRouter("http://band.test")

		rec := doRequest(r, "OPTIONS", "/ping", map[string]string{
			"Origin":                        "http://band.test",
			"Access-Control-Request-Method": "GET",
		})
		if rec.Code == http.StatusTeapot {
			t.Fatal("preflight must not reach the route")
		}
		if rec.Header().Get("Access-Control-Allow-Methods") == "" {
			t.Error("expected allowed methods on preflight")
		}
	})
}
