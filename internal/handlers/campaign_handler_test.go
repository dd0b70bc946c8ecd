package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"bandhub/internal/authz"
	apperrors "bandhub/internal/errors"
	"bandhub/internal/models"
	"bandhub/internal/services"
)

// --- mock campaign service ---

type mockCampaignService struct {
	listCampaignsFn  func() ([]models.EmailCampaign, error)
	createCampaignFn func(senderID, subject, content string, plainText *string) (*models.EmailCampaign, error)
	updateCampaignFn func(id, subject, content string, plainText *string) (*models.EmailCampaign, error)
	deleteCampaignFn func(id string) error
	sendCampaignFn   func(ctx context.Context, id, senderID string) (*models.EmailCampaign, error)
}

func (m *mockCampaignService) ListCampaigns() ([]models.EmailCampaign, error) {
	if m.listCampaignsFn != nil {
		return m.listCampaignsFn()
	}
	return []models.EmailCampaign{}, nil
}

func (m *mockCampaignService) CreateCampaign(senderID, subject, content string, plainText *string) (*models.EmailCampaign, error) {
	if m.createCampaignFn != nil {
		return m.createCampaignFn(senderID, subject, content, plainText)
	}
	return &models.EmailCampaign{}, nil
}

func (m *mockCampaignService) UpdateCampaign(id, subject, content string, plainText *string) (*models.EmailCampaign, error) {
	if m.updateCampaignFn != nil {
		return m.updateCampaignFn(id, subject, content, plainText)
	}
	return &models.EmailCampaign{}, nil
}

func (m *mockCampaignService) DeleteCampaign(id string) error {
	if m.deleteCampaignFn != nil {
		return m.deleteCampaignFn(id)
	}
	return nil
}

func (m *mockCampaignService) SendCampaign(ctx context.Context, id, senderID string) (*models.EmailCampaign, error) {
	if m.sendCampaignFn != nil {
		return m.sendCampaignFn(ctx, id, senderID)
	}
	return &models.EmailCampaign{}, nil
}

var _ services.CampaignServicer = (*mockCampaignService)(nil)

func setupCampaignRouter(handler *CampaignHandler, session *authz.Session) *gin.Engine {
	r := gin.New()
	g := r.Group("", injectSession(session))
	g.GET("/email-campaigns", handler.ListCampaigns)
	g.POST("/email-campaigns", handler.CreateOrSendCampaign)
	g.PUT("/email-campaigns", handler.UpdateCampaign)
	g.DELETE("/email-campaigns", handler.DeleteCampaign)
	return r
}

func TestCampaignHandler_Create(t *testing.T) {
	t.Run("returns 201 with draft", func(t *testing.T) {
		var gotSender string
		campaignSvc := &mockCampaignService{
			createCampaignFn: func(senderID, subject, content string, plainText *string) (*models.EmailCampaign, error) {
				gotSender = senderID
				return &models.EmailCampaign{
					Base:      models.Base{ID: "c1"},
					Subject:   subject,
					Content:   content,
					PlainText: plainText,
					Status:    models.CampaignStatusDraft,
					Sender:    models.User{Name: "Admin", Username: "admin"},
				}, nil
			},
		}
		r := setupCampaignRouter(NewCampaignHandler(campaignSvc, &mockAuditService{}), adminSession)

		rec := doRequest(r, "POST", "/email-campaigns", `{"subject":"Tour dates","content":"<p>See you</p>","plainText":"See you"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotSender != "admin-1" {
			t.Errorf("expected sender admin-1, got %q", gotSender)
		}
		result := parseJSON(t, rec)
		if result["status"] != "DRAFT" || result["plainText"] != "See you" {
			t.Errorf("unexpected body %v", result)
		}
		if result["sender"].(map[string]interface{})["username"] != "admin" {
			t.Errorf("unexpected sender %v", result["sender"])
		}
	})

	t.Run("missing content is 400", func(t *testing.T) {
		campaignSvc := &mockCampaignService{
			createCampaignFn: func(string, string, string, *string) (*models.EmailCampaign, error) {
				return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Subject and content are required")
			},
		}
		r := setupCampaignRouter(NewCampaignHandler(campaignSvc, &mockAuditService{}), adminSession)

		rec := doRequest(r, "POST", "/email-campaigns", `{"subject":"Tour dates"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorMessage(t, parseJSON(t, rec), "Subject and content are required")
	})
}

func TestCampaignHandler_Send(t *testing.T) {
	t.Run("reports recipient count", func(t *testing.T) {
		now := time.Now()
		var gotID, gotSender string
		campaignSvc := &mockCampaignService{
			sendCampaignFn: func(_ context.Context, id, senderID string) (*models.EmailCampaign, error) {
				gotID, gotSender = id, senderID
				return &models.EmailCampaign{
					Base:           models.Base{ID: id},
					Status:         models.CampaignStatusSent,
					SentAt:         &now,
					RecipientCount: 3,
				}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupCampaignRouter(NewCampaignHandler(campaignSvc, audit), adminSession)

		rec := doRequest(r, "POST", "/email-campaigns", `{"action":"send","campaignId":"c1"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotID != "c1" || gotSender != "admin-1" {
			t.Errorf("unexpected call %q %q", gotID, gotSender)
		}
		result := parseJSON(t, rec)
		if result["message"] != "Email sent to 3 subscribers" {
			t.Errorf("unexpected message %v", result["message"])
		}
		if result["campaign"].(map[string]interface{})["status"] != "SENT" {
			t.Errorf("unexpected campaign %v", result["campaign"])
		}
		if acts := audit.actions(); len(acts) != 1 || acts[0] != services.AuditSendCampaign {
			t.Errorf("unexpected audit entries %v", acts)
		}
	})

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"already sent", apperrors.ErrCampaignAlreadySent, http.StatusBadRequest, "CAMPAIGN_ALREADY_SENT"},
		{"no subscribers", apperrors.ErrNoSubscribers, http.StatusBadRequest, "NO_SUBSCRIBERS"},
		{"unknown campaign", apperrors.ErrCampaignNotFound, http.StatusNotFound, "CAMPAIGN_NOT_FOUND"},
		{"delivery failed", apperrors.WithMessage(apperrors.ErrEmailDelivery, "Failed to send campaign"), http.StatusInternalServerError, "EMAIL_DELIVERY_FAILED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			campaignSvc := &mockCampaignService{
				sendCampaignFn: func(context.Context, string, string) (*models.EmailCampaign, error) {
					return nil, tt.err
				},
			}
			r := setupCampaignRouter(NewCampaignHandler(campaignSvc, &mockAuditService{}), adminSession)

			rec := doRequest(r, "POST", "/email-campaigns", `{"action":"send","campaignId":"c1"}`)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			assertErrorCode(t, parseJSON(t, rec), tt.wantCode)
		})
	}
}

func TestCampaignHandler_UpdateAndDelete(t *testing.T) {
	t.Run("update passes id", func(t *testing.T) {
		var gotID string
		campaignSvc := &mockCampaignService{
			updateCampaignFn: func(id, subject, content string, _ *string) (*models.EmailCampaign, error) {
				gotID = id
				return &models.EmailCampaign{Base: models.Base{ID: id}, Subject: subject, Content: content}, nil
			},
		}
		r := setupCampaignRouter(NewCampaignHandler(campaignSvc, &mockAuditService{}), adminSession)

		rec := doRequest(r, "PUT", "/email-campaigns", `{"id":"c1","subject":"New","content":"Body"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotID != "c1" {
			t.Errorf("expected c1, got %q", gotID)
		}
	})

	t.Run("update of sent campaign is 400", func(t *testing.T) {
		campaignSvc := &mockCampaignService{
			updateCampaignFn: func(string, string, string, *string) (*models.EmailCampaign, error) {
				return nil, apperrors.ErrCampaignNotEditable
			},
		}
		r := setupCampaignRouter(NewCampaignHandler(campaignSvc, &mockAuditService{}), adminSession)

		rec := doRequest(r, "PUT", "/email-campaigns", `{"id":"c1","subject":"New","content":"Body"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorMessage(t, parseJSON(t, rec), "Cannot edit sent campaign")
	})

	t.Run("delete returns message", func(t *testing.T) {
		audit := &mockAuditService{}
		r := setupCampaignRouter(NewCampaignHandler(&mockCampaignService{}, audit), adminSession)

		rec := doRequest(r, "DELETE", "/email-campaigns?id=c1", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if parseJSON(t, rec)["message"] != "Campaign deleted successfully" {
			t.Error("unexpected message")
		}
		if acts := audit.actions(); len(acts) != 1 || acts[0] != services.AuditDeleteCampaign {
			t.Errorf("unexpected audit entries %v", acts)
		}
	})

	t.Run("delete without id is 400", func(t *testing.T) {
		r := setupCampaignRouter(NewCampaignHandler(&mockCampaignService{}, &mockAuditService{}), adminSession)

		rec := doRequest(r, "DELETE", "/email-campaigns", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
