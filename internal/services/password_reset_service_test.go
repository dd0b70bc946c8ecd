package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"bandhub/internal/mailer"
	"bandhub/internal/models"
	"bandhub/internal/testutil"
)

func tokenFromMail(t *testing.T, msg mailer.Message) string {
	t.Helper()
	i := strings.Index(msg.Text, "token=")
	if i < 0 {
		t.Fatalf("no token in %q", msg.Text)
	}
	return strings.Fields(msg.Text[i+len("token="):])[0]
}

func TestRequestReset(t *testing.T) {
	t.Run("known_email", func(t *testing.T) {
		env := setupEnv(t)
		user := testutil.CreateTestUser(t, env.db)
		svc := NewPasswordResetService(env.db, env.mail, env.composer)

		testutil.AssertNoError(t, svc.RequestReset(context.Background(), strings.ToUpper(user.Email)))

		sent := env.mail.Sent()
		if len(sent) != 1 || sent[0].To != user.Email {
			t.Fatalf("expected one reset email to %s, got %+v", user.Email, sent)
		}
		token := tokenFromMail(t, sent[0])
		if len(token) != 64 {
			t.Errorf("expected 64 hex chars, got %d", len(token))
		}

		var req models.PasswordResetRequest
		env.db.First(&req, "token = ?", token)
		if req.Used || time.Until(req.ExpiresAt) > time.Hour || time.Until(req.ExpiresAt) < 59*time.Minute {
			t.Errorf("unexpected reset request %+v", req)
		}
	})

	t.Run("unknown_email_is_silent", func(t *testing.T) {
		env := setupEnv(t)
		svc := NewPasswordResetService(env.db, env.mail, env.composer)

		testutil.AssertNoError(t, svc.RequestReset(context.Background(), "ghost@example.com"))
		if len(env.mail.Sent()) != 0 {
			t.Error("no email should be sent for unknown addresses")
		}
	})

	t.Run("delivery_failure", func(t *testing.T) {
		env := setupEnv(t)
		user := testutil.CreateTestUser(t, env.db)
		env.mail.Fail = func(mailer.Message) error { return errors.New("smtp down") }
		svc := NewPasswordResetService(env.db, env.mail, env.composer)

		err := svc.RequestReset(context.Background(), user.Email)
		testutil.AssertAppError(t, err, "EMAIL_DELIVERY_FAILED")
		if err.Error() != "Failed to send reset email" {
			t.Errorf("unexpected message %q", err.Error())
		}
	})

	t.Run("missing_email", func(t *testing.T) {
		env := setupEnv(t)
		err := NewPasswordResetService(env.db, env.mail, env.composer).RequestReset(context.Background(), "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestResetPassword(t *testing.T) {
	issue := func(t *testing.T, env *testEnv, user *models.User) string {
		t.Helper()
		svc := NewPasswordResetService(env.db, env.mail, env.composer)
		testutil.AssertNoError(t, svc.RequestReset(context.Background(), user.Email))
		sent := env.mail.Sent()
		return tokenFromMail(t, sent[len(sent)-1])
	}

	t.Run("valid_once", func(t *testing.T) {
		env := setupEnv(t)
		user := testutil.CreateTestUser(t, env.db)
		token := issue(t, env, user)
		svc := NewPasswordResetService(env.db, env.mail, env.composer)

		testutil.AssertNoError(t, svc.ResetPassword(token, "fresh-password"))

		var stored models.User
		env.db.First(&stored, "id = ?", user.ID)
		if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("fresh-password")) != nil {
			t.Error("expected password to be updated")
		}

		err := svc.ResetPassword(token, "another-password")
		testutil.AssertAppError(t, err, "INVALID_RESET_TOKEN")
	})

	t.Run("expired", func(t *testing.T) {
		env := setupEnv(t)
		user := testutil.CreateTestUser(t, env.db)
		token := issue(t, env, user)
		env.db.Model(&models.PasswordResetRequest{}).Where("token = ?", token).
			Update("expires_at", time.Now().Add(-time.Minute))

		err := NewPasswordResetService(env.db, env.mail, env.composer).ResetPassword(token, "fresh-password")
		testutil.AssertAppError(t, err, "INVALID_RESET_TOKEN")
	})

	t.Run("weak_password", func(t *testing.T) {
		env := setupEnv(t)
		err := NewPasswordResetService(env.db, env.mail, env.composer).ResetPassword("tok", "short")
		testutil.AssertAppError(t, err, "WEAK_PASSWORD")
	})

	t.Run("missing_fields", func(t *testing.T) {
		env := setupEnv(t)
		err := NewPasswordResetService(env.db, env.mail, env.composer).ResetPassword("", "fresh-password")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("unknown_token", func(t *testing.T) {
		env := setupEnv(t)
		err := NewPasswordResetService(env.db, env.mail, env.composer).ResetPassword("nope", "fresh-password")
		testutil.AssertAppError(t, err, "INVALID_RESET_TOKEN")
	})
}

func TestContactService(t *testing.T) {
	env := setupEnv(t)
	svc := NewContactService(env.mail, env.composer, "band@example.com")

	testutil.AssertAppError(t, svc.SendMessage(context.Background(), "", "a@example.com", "hi"), "INVALID_INPUT")
	testutil.AssertAppError(t, svc.SendMessage(context.Background(), "Ann", "nope", "hi"), "INVALID_EMAIL")

	testutil.AssertNoError(t, svc.SendMessage(context.Background(), "Ann", "ann@example.com", "Book us for June?"))
	sent := env.mail.Sent()
	if len(sent) != 1 || sent[0].To != "band@example.com" || sent[0].ReplyTo != "ann@example.com" {
		t.Fatalf("unexpected message %+v", sent)
	}

	env.mail.Fail = func(mailer.Message) error { return errors.New("smtp down") }
	err := svc.SendMessage(context.Background(), "Ann", "ann@example.com", "again")
	testutil.AssertAppError(t, err, "EMAIL_DELIVERY_FAILED")
}

func TestAuditService(t *testing.T) {
	env := setupEnv(t)
	svc := NewAuditService(env.db)

	svc.Log("admin-1", AuditDeleteFile, "file", "file-1", "127.0.0.1", map[string]interface{}{"name": "a.txt"})

	var entry models.AuditLog
	if err := env.db.First(&entry).Error; err != nil {
		t.Fatalf("expected audit entry: %v", err)
	}
	if entry.Action != AuditDeleteFile || entry.ResourceID != "file-1" || !strings.Contains(entry.Changes, "a.txt") {
		t.Errorf("unexpected audit entry %+v", entry)
	}
}
