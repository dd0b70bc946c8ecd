package services

import (
	"testing"
	"time"

	"bandhub/internal/models"
	"bandhub/internal/testutil"
)

func strPtr(s string) *string { return &s }

func TestSubscribe(t *testing.T) {
	t.Run("idempotent", func(t *testing.T) {
		env := setupEnv(t)
		svc := NewMailingListService(env.db)

		first, err := svc.Subscribe("Fan@Example.com", strPtr("Fan"))
		testutil.AssertNoError(t, err)
		second, err := svc.Subscribe("fan@example.com", nil)
		testutil.AssertNoError(t, err)

		if first.ID != second.ID {
			t.Errorf("expected the same subscriber, got %s and %s", first.ID, second.ID)
		}
		var count int64
		env.db.Model(&models.MailingListSubscriber{}).Count(&count)
		if count != 1 {
			t.Fatalf("expected one subscriber, got %d", count)
		}
		if !second.Subscribed || second.Name == nil || *second.Name != "Fan" {
			t.Errorf("unexpected subscriber %+v", second)
		}
		if first.UnsubscribeToken == "" || first.UnsubscribeToken != second.UnsubscribeToken {
			t.Error("expected a stable unsubscribe token")
		}
	})

	t.Run("resubscribe_reactivates", func(t *testing.T) {
		env := setupEnv(t)
		svc := NewMailingListService(env.db)

		first, err := svc.Subscribe("fan@example.com", nil)
		testutil.AssertNoError(t, err)
		testutil.AssertNoError(t, svc.Unsubscribe("fan@example.com", ""))
		time.Sleep(20 * time.Millisecond)

		sub, err := svc.Subscribe("fan@example.com", strPtr("Returning Fan"))
		testutil.AssertNoError(t, err)
		if !sub.SubscribedAt.After(first.SubscribedAt) {
			t.Errorf("expected subscribe time refreshed, first=%v again=%v", first.SubscribedAt, sub.SubscribedAt)
		}
		if !sub.Subscribed || sub.UnsubscribedAt != nil {
			t.Errorf("expected reactivated subscriber, got subscribed=%v unsubscribedAt=%v", sub.Subscribed, sub.UnsubscribedAt)
		}
		if *sub.Name != "Returning Fan" {
			t.Errorf("expected name update, got %s", *sub.Name)
		}
	})

	t.Run("invalid_email", func(t *testing.T) {
		env := setupEnv(t)
		svc := NewMailingListService(env.db)

		for _, email := range []string{"plainaddress", "a@b", "has space@example.com"} {
			_, err := svc.Subscribe(email, nil)
			testutil.AssertAppError(t, err, "INVALID_EMAIL")
		}
		_, err := svc.Subscribe("", nil)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestListSubscribers(t *testing.T) {
	env := setupEnv(t)
	active := testutil.CreateTestSubscriber(t, env.db, true)
	testutil.CreateTestSubscriber(t, env.db, false)

	subs, err := NewMailingListService(env.db).ListSubscribers()
	testutil.AssertNoError(t, err)
	if len(subs) != 1 || subs[0].ID != active.ID {
		t.Fatalf("expected only the active subscriber, got %+v", subs)
	}
}

func TestUnsubscribe(t *testing.T) {
	t.Run("by_token", func(t *testing.T) {
		env := setupEnv(t)
		sub := testutil.CreateTestSubscriber(t, env.db, true)

		testutil.AssertNoError(t, NewMailingListService(env.db).Unsubscribe("", sub.UnsubscribeToken))

		var stored models.MailingListSubscriber
		env.db.First(&stored, "id = ?", sub.ID)
		if stored.Subscribed || stored.UnsubscribedAt == nil {
			t.Error("expected subscriber to be deactivated")
		}
	})

	t.Run("missing_identifier", func(t *testing.T) {
		env := setupEnv(t)
		err := NewMailingListService(env.db).Unsubscribe("", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("unknown", func(t *testing.T) {
		env := setupEnv(t)
		err := NewMailingListService(env.db).Unsubscribe("nobody@example.com", "")
		testutil.AssertAppError(t, err, "SUBSCRIBER_NOT_FOUND")
	})
}
