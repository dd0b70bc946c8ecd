package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "bandhub/internal/errors"
	"bandhub/internal/models"
	"bandhub/internal/services"
)

// --- mock public-facing services ---

type mockMailingListService struct {
	subscribeFn       func(email string, name *string) (*models.MailingListSubscriber, error)
	listSubscribersFn func() ([]models.MailingListSubscriber, error)
	unsubscribeFn     func(email, token string) error
}

func (m *mockMailingListService) Subscribe(email string, name *string) (*models.MailingListSubscriber, error) {
	if m.subscribeFn != nil {
		return m.subscribeFn(email, name)
	}
	return &models.MailingListSubscriber{Email: email, Name: name}, nil
}

func (m *mockMailingListService) ListSubscribers() ([]models.MailingListSubscriber, error) {
	if m.listSubscribersFn != nil {
		return m.listSubscribersFn()
	}
	return []models.MailingListSubscriber{}, nil
}

func (m *mockMailingListService) Unsubscribe(email, token string) error {
	if m.unsubscribeFn != nil {
		return m.unsubscribeFn(email, token)
	}
	return nil
}

var _ services.MailingListServicer = (*mockMailingListService)(nil)

type mockPasswordResetService struct {
	requestResetFn  func(ctx context.Context, email string) error
	resetPasswordFn func(token, newPassword string) error
}

func (m *mockPasswordResetService) RequestReset(ctx context.Context, email string) error {
	if m.requestResetFn != nil {
		return m.requestResetFn(ctx, email)
	}
	return nil
}

func (m *mockPasswordResetService) ResetPassword(token, newPassword string) error {
	if m.resetPasswordFn != nil {
		return m.resetPasswordFn(token, newPassword)
	}
	return nil
}

var _ services.PasswordResetServicer = (*mockPasswordResetService)(nil)

type mockContactService struct {
	sendMessageFn func(ctx context.Context, name, email, message string) error
}

func (m *mockContactService) SendMessage(ctx context.Context, name, email, message string) error {
	if m.sendMessageFn != nil {
		return m.sendMessageFn(ctx, name, email, message)
	}
	return nil
}

var _ services.ContactServicer = (*mockContactService)(nil)

// --- tests ---

func TestMailingListHandler(t *testing.T) {
	setup := func(svc *mockMailingListService) *gin.Engine {
		h := NewMailingListHandler(svc)
		r := gin.New()
		r.GET("/mailing-list", h.ListSubscribers)
		r.POST("/mailing-list", h.Subscribe)
		r.DELETE("/mailing-list", h.Unsubscribe)
		return r
	}

	t.Run("subscribe returns subscriber", func(t *testing.T) {
		rec := doRequest(setup(&mockMailingListService{}), "POST", "/mailing-list", `{"email":"fan@example.com","name":"Fan"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["message"] != "Successfully subscribed to mailing list!" {
			t.Errorf("unexpected message %v", result["message"])
		}
		sub := result["subscriber"].(map[string]interface{})
		if sub["email"] != "fan@example.com" || sub["name"] != "Fan" {
			t.Errorf("unexpected subscriber %v", sub)
		}
	})

	t.Run("invalid email is 400", func(t *testing.T) {
		svc := &mockMailingListService{
			subscribeFn: func(string, *string) (*models.MailingListSubscriber, error) {
				return nil, apperrors.ErrInvalidEmail
			},
		}
		rec := doRequest(setup(svc), "POST", "/mailing-list", `{"email":"nope"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_EMAIL")
	})

	t.Run("unsubscribe by token", func(t *testing.T) {
		var gotEmail, gotToken string
		svc := &mockMailingListService{
			unsubscribeFn: func(email, token string) error {
				gotEmail, gotToken = email, token
				return nil
			},
		}
		rec := doRequest(setup(svc), "DELETE", "/mailing-list?token=abc", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotEmail != "" || gotToken != "abc" {
			t.Errorf("unexpected call %q %q", gotEmail, gotToken)
		}
	})

	t.Run("unknown subscriber is 404", func(t *testing.T) {
		svc := &mockMailingListService{
			unsubscribeFn: func(string, string) error { return apperrors.ErrSubscriberNotFound },
		}
		rec := doRequest(setup(svc), "DELETE", "/mailing-list?email=ghost@example.com", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("list returns subscribers", func(t *testing.T) {
		svc := &mockMailingListService{
			listSubscribersFn: func() ([]models.MailingListSubscriber, error) {
				return []models.MailingListSubscriber{{Email: "a@example.com"}, {Email: "b@example.com"}}, nil
			},
		}
		rec := doRequest(setup(svc), "GET", "/mailing-list", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if subs := parseJSONArray(t, rec); len(subs) != 2 {
			t.Errorf("expected 2 subscribers, got %d", len(subs))
		}
	})
}

func TestPasswordHandler(t *testing.T) {
	setup := func(svc *mockPasswordResetService) *gin.Engine {
		h := NewPasswordHandler(svc)
		r := gin.New()
		r.POST("/forgot-password", h.ForgotPassword)
		r.POST("/reset-password", h.ResetPassword)
		return r
	}

	t.Run("forgot password always answers generically", func(t *testing.T) {
		rec := doRequest(setup(&mockPasswordResetService{}), "POST", "/forgot-password", `{"email":"nobody@example.com"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if parseJSON(t, rec)["message"] != forgotPasswordMessage {
			t.Error("unexpected message")
		}
	})

	t.Run("forgot password without email is 400", func(t *testing.T) {
		rec := doRequest(setup(&mockPasswordResetService{}), "POST", "/forgot-password", `{}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("email failure is 500", func(t *testing.T) {
		svc := &mockPasswordResetService{
			requestResetFn: func(context.Context, string) error {
				return apperrors.WithMessage(apperrors.ErrEmailDelivery, "Failed to send reset email")
			},
		}
		rec := doRequest(setup(svc), "POST", "/forgot-password", `{"email":"member@example.com"}`)

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		assertErrorMessage(t, parseJSON(t, rec), "Failed to send reset email")
	})

	t.Run("reset succeeds", func(t *testing.T) {
		var gotToken string
		svc := &mockPasswordResetService{
			resetPasswordFn: func(token, _ string) error {
				gotToken = token
				return nil
			},
		}
		rec := doRequest(setup(svc), "POST", "/reset-password", `{"token":"t0k3n","password":"new-password"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotToken != "t0k3n" {
			t.Errorf("unexpected token %q", gotToken)
		}
	})

	t.Run("invalid token is 400", func(t *testing.T) {
		svc := &mockPasswordResetService{
			resetPasswordFn: func(string, string) error { return apperrors.ErrInvalidResetToken },
		}
		rec := doRequest(setup(svc), "POST", "/reset-password", `{"token":"used","password":"new-password"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_RESET_TOKEN")
	})
}

func TestContactHandler(t *testing.T) {
	setup := func(svc *mockContactService) *gin.Engine {
		r := gin.New()
		r.POST("/contact", NewContactHandler(svc).SendMessage)
		return r
	}

	t.Run("returns success", func(t *testing.T) {
		var gotEmail string
		svc := &mockContactService{
			sendMessageFn: func(_ context.Context, _, email, _ string) error {
				gotEmail = email
				return nil
			},
		}
		rec := doRequest(setup(svc), "POST", "/contact", `{"name":"Fan","email":"fan@example.com","message":"Play Ohio!"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		if result["success"] != true {
			t.Errorf("unexpected body %v", result)
		}
		if gotEmail != "fan@example.com" {
			t.Errorf("unexpected email %q", gotEmail)
		}
	})

	t.Run("missing fields is 400", func(t *testing.T) {
		svc := &mockContactService{
			sendMessageFn: func(context.Context, string, string, string) error {
				return apperrors.WithMessage(apperrors.ErrInvalidInput, "All fields are required")
			},
		}
		rec := doRequest(setup(svc), "POST", "/contact", `{"name":"Fan"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorMessage(t, parseJSON(t, rec), "All fields are required")
	})
}
