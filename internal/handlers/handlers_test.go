package handlers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/campus-events/eventhub-api/internal/auth"
	"github.com/campus-events/eventhub-api/internal/config"
	"github.com/campus-events/eventhub-api/internal/mailer"
	"github.com/campus-events/eventhub-api/internal/models"
	"github.com/danielgtaylor/huma/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	db           *gorm.DB
	cfg          *config.Config
	sender       *recordingSender
	auth         *auth.AuthHandler
	events       *EventHandler
	registration *RegistrationHandler
	feedback     *FeedbackHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	err = db.AutoMigrate(&models.User{}, &models.Event{}, &models.Registration{}, &models.Feedback{}, &models.EventStatusChange{}, &models.APIKey{})
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	cfg := &config.Config{JWTSecret: "test-secret", FrontendURL: "http://frontend.test"}
	sender := &recordingSender{}
	authHandler := auth.NewAuthHandler(cfg, db)
	return &testEnv{
		db:           db,
		cfg:          cfg,
		sender:       sender,
		auth:         authHandler,
		events:       NewEventHandler(db, nil, sender, cfg, authHandler),
		registration: NewRegistrationHandler(db, sender, cfg, authHandler),
		feedback:     NewFeedbackHandler(db, authHandler),
	}
}

func (e *testEnv) createUser(t *testing.T, username, role string, staff bool) *models.User {
	t.Helper()
	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		Role:     role,
		IsStaff:  staff,
	}
	if err := e.db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return &user
}

func (e *testEnv) cookieFor(t *testing.T, user *models.User) auth.AuthInput {
	t.Helper()
	token, err := e.auth.GenerateToken(user.ID)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return auth.AuthInput{Cookie: "auth_token=" + token}
}

func (e *testEnv) createEvent(t *testing.T, organizer *models.User, status models.EventStatus, mutate func(*models.Event)) *models.Event {
	t.Helper()
	start := time.Now().UTC().Add(72 * time.Hour)
	event := models.Event{
		Title:       "Seeded Event",
		StartTime:   start,
		EndTime:     start.Add(2 * time.Hour),
		Mode:        models.ModeInPerson,
		OrganizerID: organizer.ID,
		Status:      status,
		EntryFee:    models.FeeFree,
	}
	if mutate != nil {
		mutate(&event)
	}
	if err := e.db.Create(&event).Error; err != nil {
		t.Fatalf("failed to create event: %v", err)
	}
	return &event
}

func wantStatus(t *testing.T, err error, status int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected a %d error, got nil", status)
	}
	se, ok := err.(huma.StatusError)
	if !ok {
		t.Fatalf("expected a status error, got %T: %v", err, err)
	}
	if se.GetStatus() != status {
		t.Fatalf("expected status %d, got %d: %v", status, se.GetStatus(), err)
	}
}

type sentMail struct {
	to      string
	subject string
}

type recordingSender struct {
	mu   sync.Mutex
	sent []sentMail
}

var _ mailer.Sender = (*recordingSender)(nil)

func (s *recordingSender) Send(ctx context.Context, to, subject, textBody, htmlBody string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentMail{to: to, subject: subject})
	return nil
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}
