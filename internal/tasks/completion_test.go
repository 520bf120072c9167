package tasks

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/campus-events/eventhub-api/internal/config"
	"github.com/campus-events/eventhub-api/internal/mailer"
	"github.com/campus-events/eventhub-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	err = db.AutoMigrate(&models.User{}, &models.Event{}, &models.Registration{}, &models.Feedback{}, &models.EventStatusChange{})
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

type sentMail struct {
	to      string
	subject string
}

// recordingSender captures every send and can be told to fail for
// specific recipients.
type recordingSender struct {
	mu      sync.Mutex
	sent    []sentMail
	failFor map[string]error
}

var _ mailer.Sender = (*recordingSender)(nil)

func (s *recordingSender) Send(ctx context.Context, to, subject, textBody, htmlBody string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failFor[to]; ok {
		return err
	}
	s.sent = append(s.sent, sentMail{to: to, subject: subject})
	return nil
}

func (s *recordingSender) sentTo() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.sent))
	for i, m := range s.sent {
		out[i] = m.to
	}
	return out
}

func newTestRunner(db *gorm.DB, sender mailer.Sender) *Runner {
	return NewRunner(db, sender, &config.Config{
		FrontendURL:            "http://frontend.test",
		MailWorkers:            2,
		MailSendTimeoutSeconds: 5,
		FeedbackGraceMinutes:   1,
	})
}

// seedEvent creates an event through the normal validated path and then
// backdates and restatuses it column-wise, the only way to get a past or
// already-Completed event into the store.
func seedEvent(t *testing.T, db *gorm.DB, status models.EventStatus, mode models.EventMode, endedAgo time.Duration) *models.Event {
	t.Helper()
	start := time.Now().UTC().Add(24 * time.Hour)
	event := models.Event{
		Title:       "Seeded Event",
		StartTime:   start,
		EndTime:     start.Add(time.Hour),
		Mode:        mode,
		StreamURL:   "https://stream.example.com/live",
		OrganizerID: 1,
		Status:      models.StatusPendingApproval,
		EntryFee:    models.FeeFree,
	}
	if err := db.Create(&event).Error; err != nil {
		t.Fatalf("failed to create event: %v", err)
	}
	cols := map[string]interface{}{"status": status}
	if endedAgo > 0 {
		end := time.Now().UTC().Add(-endedAgo)
		cols["start_time"] = end.Add(-time.Hour)
		cols["end_time"] = end
	}
	if err := db.Model(&event).UpdateColumns(cols).Error; err != nil {
		t.Fatalf("failed to backdate event: %v", err)
	}
	if err := db.First(&event, event.ID).Error; err != nil {
		t.Fatalf("failed to reload event: %v", err)
	}
	return &event
}

func TestCompletionPass(t *testing.T) {
	db := testDB(t)
	runner := newTestRunner(db, &recordingSender{})
	now := time.Now().UTC()

	ended := seedEvent(t, db, models.StatusApproved, models.ModeOnline, 10*time.Minute)
	upcoming := seedEvent(t, db, models.StatusApproved, models.ModeOnline, 0)
	pending := seedEvent(t, db, models.StatusPendingApproval, models.ModeOnline, 10*time.Minute)

	res := runner.RunCompletionPass(now)
	if len(res.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if res.Completed != 1 {
		t.Fatalf("expected 1 completed event, got %d", res.Completed)
	}

	var reloaded models.Event
	if err := db.First(&reloaded, ended.ID).Error; err != nil {
		t.Fatalf("failed to reload: %v", err)
	}
	if reloaded.Status != models.StatusCompleted {
		t.Errorf("expected ended event to be Completed, got %s", reloaded.Status)
	}

	reloaded = models.Event{}
	if err := db.First(&reloaded, upcoming.ID).Error; err != nil {
		t.Fatalf("failed to reload: %v", err)
	}
	if reloaded.Status != models.StatusApproved {
		t.Errorf("upcoming event must stay Approved, got %s", reloaded.Status)
	}

	reloaded = models.Event{}
	if err := db.First(&reloaded, pending.ID).Error; err != nil {
		t.Fatalf("failed to reload: %v", err)
	}
	if reloaded.Status != models.StatusPendingApproval {
		t.Errorf("pending event must not be completed, got %s", reloaded.Status)
	}

	var changes int64
	db.Model(&models.EventStatusChange{}).Where("event_id = ?", ended.ID).Count(&changes)
	if changes != 1 {
		t.Errorf("expected one status change record, got %d", changes)
	}
}

func TestCompletionPassIsIdempotent(t *testing.T) {
	db := testDB(t)
	runner := newTestRunner(db, &recordingSender{})
	now := time.Now().UTC()

	seedEvent(t, db, models.StatusApproved, models.ModeOnline, 10*time.Minute)

	first := runner.RunCompletionPass(now)
	if first.Completed != 1 {
		t.Fatalf("expected 1 completed on first run, got %d", first.Completed)
	}
	second := runner.RunCompletionPass(now)
	if second.Completed != 0 {
		t.Errorf("second run must be a no-op, completed %d", second.Completed)
	}
	if len(second.Errors) > 0 {
		t.Errorf("second run produced errors: %v", second.Errors)
	}
}
