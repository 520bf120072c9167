package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/campus-events/eventhub-api/internal/models"
	"gorm.io/gorm"
)

func seedUser(t *testing.T, db *gorm.DB, username, email string) *models.User {
	t.Helper()
	user := models.User{Username: username, Email: email, Role: models.RoleParticipant}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return &user
}

func seedRegistration(t *testing.T, db *gorm.DB, event *models.Event, user *models.User, attended bool) *models.Registration {
	t.Helper()
	reg := models.Registration{EventID: event.ID, AttendeeID: user.ID, Attended: attended}
	if err := db.Create(&reg).Error; err != nil {
		t.Fatalf("failed to create registration: %v", err)
	}
	return &reg
}

func TestFeedbackPassSendsOnce(t *testing.T) {
	db := testDB(t)
	sender := &recordingSender{}
	runner := newTestRunner(db, sender)
	now := time.Now().UTC()

	event := seedEvent(t, db, models.StatusCompleted, models.ModeOnline, 10*time.Minute)
	user := seedUser(t, db, "alice", "alice@example.com")
	reg := seedRegistration(t, db, event, user, false)

	res := runner.RunFeedbackPass(context.Background(), now, time.Minute)
	if len(res.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if res.Sent != 1 {
		t.Fatalf("expected 1 send, got %d", res.Sent)
	}
	if got := sender.sentTo(); len(got) != 1 || got[0] != "alice@example.com" {
		t.Fatalf("expected one mail to alice@example.com, got %v", got)
	}

	var reloaded models.Registration
	if err := db.First(&reloaded, reg.ID).Error; err != nil {
		t.Fatalf("failed to reload registration: %v", err)
	}
	if reloaded.FeedbackRequestSentAt == nil {
		t.Fatal("expected feedback_request_sent_at to be set after a send")
	}

	// A second pass sees the guard and sends nothing.
	second := runner.RunFeedbackPass(context.Background(), now.Add(time.Minute), time.Minute)
	if second.Sent != 0 {
		t.Errorf("second pass must not resend, sent %d", second.Sent)
	}
	if second.Skipped != 1 {
		t.Errorf("expected the guarded registration to be skipped, got %d", second.Skipped)
	}
	if got := sender.sentTo(); len(got) != 1 {
		t.Errorf("expected no further mail, got %v", got)
	}
}

func TestFeedbackPassGraceWindow(t *testing.T) {
	db := testDB(t)
	sender := &recordingSender{}
	runner := newTestRunner(db, sender)
	now := time.Now().UTC()

	event := seedEvent(t, db, models.StatusCompleted, models.ModeOnline, 3*time.Minute)
	user := seedUser(t, db, "bob", "bob@example.com")
	seedRegistration(t, db, event, user, false)

	// Ended 3 minutes ago with a 5 minute grace: not yet eligible.
	res := runner.RunFeedbackPass(context.Background(), now, 5*time.Minute)
	if res.Sent != 0 {
		t.Fatalf("event inside the grace window must not trigger sends, got %d", res.Sent)
	}

	// 3 more minutes pass and the same grace now admits the event.
	res = runner.RunFeedbackPass(context.Background(), now.Add(3*time.Minute), 5*time.Minute)
	if res.Sent != 1 {
		t.Fatalf("expected 1 send once past the grace window, got %d", res.Sent)
	}
}

func TestFeedbackPassSkips(t *testing.T) {
	db := testDB(t)
	sender := &recordingSender{}
	runner := newTestRunner(db, sender)
	now := time.Now().UTC()

	t.Run("InPersonNoShow", func(t *testing.T) {
		event := seedEvent(t, db, models.StatusCompleted, models.ModeInPerson, 10*time.Minute)
		noShow := seedUser(t, db, "noshow", "noshow@example.com")
		attendee := seedUser(t, db, "walkedin", "walkedin@example.com")
		seedRegistration(t, db, event, noShow, false)
		seedRegistration(t, db, event, attendee, true)

		res := runner.RunFeedbackPass(context.Background(), now, time.Minute)
		if res.Sent != 1 {
			t.Fatalf("expected only the checked-in attendee to be mailed, sent %d", res.Sent)
		}
		if res.Skipped != 1 {
			t.Errorf("expected the no-show to be skipped, got %d", res.Skipped)
		}
		if got := sender.sentTo(); len(got) != 1 || got[0] != "walkedin@example.com" {
			t.Errorf("expected mail to walkedin@example.com only, got %v", got)
		}
	})

	t.Run("NoEmail", func(t *testing.T) {
		event := seedEvent(t, db, models.StatusCompleted, models.ModeOnline, 10*time.Minute)
		user := seedUser(t, db, "mailless", "")
		seedRegistration(t, db, event, user, false)

		before := len(sender.sentTo())
		res := runner.RunFeedbackPass(context.Background(), now, time.Minute)
		if got := len(sender.sentTo()); got != before {
			t.Errorf("expected no mail for a user without an address, got %d new", got-before)
		}
		if res.Skipped == 0 {
			t.Error("expected the address-less registration to count as skipped")
		}
	})

	t.Run("FeedbackAlreadySubmitted", func(t *testing.T) {
		event := seedEvent(t, db, models.StatusCompleted, models.ModeOnline, 10*time.Minute)
		user := seedUser(t, db, "eager", "eager@example.com")
		seedRegistration(t, db, event, user, false)
		fb := models.Feedback{EventID: event.ID, UserID: user.ID, Rating: 4}
		if err := db.Create(&fb).Error; err != nil {
			t.Fatalf("failed to create feedback: %v", err)
		}

		before := len(sender.sentTo())
		runner.RunFeedbackPass(context.Background(), now, time.Minute)
		if got := len(sender.sentTo()); got != before {
			t.Error("a registration with submitted feedback must not be mailed")
		}
	})
}

func TestFeedbackPassSendFailureLeavesGuardUnset(t *testing.T) {
	db := testDB(t)
	sender := &recordingSender{failFor: map[string]error{
		"flaky@example.com": errors.New("smtp unavailable"),
	}}
	runner := newTestRunner(db, sender)
	now := time.Now().UTC()

	event := seedEvent(t, db, models.StatusCompleted, models.ModeOnline, 10*time.Minute)
	user := seedUser(t, db, "flaky", "flaky@example.com")
	reg := seedRegistration(t, db, event, user, false)

	res := runner.RunFeedbackPass(context.Background(), now, time.Minute)
	if res.Sent != 0 {
		t.Fatalf("failed send must not count as sent, got %d", res.Sent)
	}
	if len(res.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", res.Errors)
	}

	var reloaded models.Registration
	if err := db.First(&reloaded, reg.ID).Error; err != nil {
		t.Fatalf("failed to reload registration: %v", err)
	}
	if reloaded.FeedbackRequestSentAt != nil {
		t.Fatal("guard must stay unset after a failed send")
	}

	// Once the provider recovers, the next pass picks the registration
	// up again with no extra bookkeeping.
	sender.mu.Lock()
	sender.failFor = nil
	sender.mu.Unlock()

	res = runner.RunFeedbackPass(context.Background(), now.Add(time.Minute), time.Minute)
	if res.Sent != 1 {
		t.Fatalf("expected retry to send, got %d", res.Sent)
	}
}

// rivalSender stamps the guard itself before returning, standing in for a
// second dispatcher instance that delivered and marked the same registration
// between job collection and our guard write.
type rivalSender struct {
	db *gorm.DB
}

func (s *rivalSender) Send(_ context.Context, _, _, _, _ string) error {
	return s.db.Model(&models.Registration{}).
		Where("feedback_request_sent_at IS NULL").
		Update("feedback_request_sent_at", time.Now().UTC()).Error
}

func TestFeedbackPassLostGuardRaceCountsSkipped(t *testing.T) {
	db := testDB(t)
	runner := newTestRunner(db, &rivalSender{db: db})
	now := time.Now().UTC()

	event := seedEvent(t, db, models.StatusCompleted, models.ModeOnline, 10*time.Minute)
	user := seedUser(t, db, "contested", "contested@example.com")
	seedRegistration(t, db, event, user, false)

	res := runner.RunFeedbackPass(context.Background(), now, time.Minute)
	if len(res.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if res.Sent != 0 {
		t.Errorf("a registration marked by another dispatcher must not count as sent, got %d", res.Sent)
	}
	if res.Skipped != 1 {
		t.Errorf("expected the lost race to count as skipped, got %d", res.Skipped)
	}
}

// A hybrid event that just ended: the completion pass flips it to Completed
// and the feedback pass in the same firing mails every registrant, attendance
// notwithstanding.
func TestPassSequenceHybridEvent(t *testing.T) {
	db := testDB(t)
	sender := &recordingSender{}
	runner := newTestRunner(db, sender)
	now := time.Now().UTC()

	event := seedEvent(t, db, models.StatusApproved, models.ModeHybrid, 10*time.Minute)
	r1 := seedUser(t, db, "remote", "remote@example.com")
	r2 := seedUser(t, db, "onsite", "onsite@example.com")
	seedRegistration(t, db, event, r1, false)
	seedRegistration(t, db, event, r2, true)

	cres := runner.RunCompletionPass(now)
	if cres.Completed != 1 {
		t.Fatalf("expected the hybrid event to complete, got %d", cres.Completed)
	}

	fres := runner.RunFeedbackPass(context.Background(), now, time.Minute)
	if fres.Sent != 2 {
		t.Fatalf("expected both registrants to be mailed, sent %d", fres.Sent)
	}
	got := sender.sentTo()
	seen := map[string]bool{}
	for _, to := range got {
		seen[to] = true
	}
	if !seen["remote@example.com"] || !seen["onsite@example.com"] {
		t.Errorf("expected mail to both registrants, got %v", got)
	}
}
