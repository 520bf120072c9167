package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/campus-events/eventhub-api/internal/auth"
	"github.com/campus-events/eventhub-api/internal/config"
	"github.com/campus-events/eventhub-api/internal/mailer"
	"github.com/campus-events/eventhub-api/internal/models"
	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type RegistrationHandler struct {
	db          *gorm.DB
	sender      mailer.Sender
	cfg         *config.Config
	authHandler *auth.AuthHandler
}

func NewRegistrationHandler(db *gorm.DB, sender mailer.Sender, cfg *config.Config, authHandler *auth.AuthHandler) *RegistrationHandler {
	return &RegistrationHandler{db: db, sender: sender, cfg: cfg, authHandler: authHandler}
}

type RegisterRequest struct {
	auth.AuthInput
	EventID uint `path:"id"`
	Body    struct {
		PaymentConfirmed bool `json:"payment_confirmed,omitempty" doc:"Must be true for paid events; payment is simulated"`
	}
}

type RegisterResponse struct {
	Body struct {
		Message        string `json:"message"`
		RegistrationID uint   `json:"registration_id"`
		TicketCode     string `json:"ticket_code"`
	}
}

// HandleRegister signs the caller up for an Approved event, enforcing seat
// capacity and the one-registration-per-attendee rule. Paid events require a
// (simulated) payment confirmation first.
func (h *RegistrationHandler) HandleRegister(ctx context.Context, input *RegisterRequest) (*RegisterResponse, error) {
	user, err := h.authHandler.CurrentUser(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	var event models.Event
	if err := h.db.First(&event, input.EventID).Error; err != nil {
		return nil, huma.Error404NotFound("Event not found")
	}
	if event.Status != models.StatusApproved {
		return nil, huma.Error409Conflict("Registration is only open for approved events")
	}

	full, err := event.IsFull(h.db)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to check capacity")
	}
	if full {
		return nil, huma.Error409Conflict("Sorry, \"" + event.Title + "\" is already full")
	}

	var existing models.Registration
	if err := h.db.Where("event_id = ? AND attendee_id = ?", event.ID, user.ID).First(&existing).Error; err == nil {
		return nil, huma.Error409Conflict("You are already registered for \"" + event.Title + "\"")
	} else if err != gorm.ErrRecordNotFound {
		return nil, huma.Error500InternalServerError("Database error")
	}

	if event.EntryFee == models.FeePaid && !input.Body.PaymentConfirmed {
		return nil, huma.NewError(http.StatusPaymentRequired, "This event requires payment; confirm payment to register")
	}

	registration := models.Registration{
		EventID:    event.ID,
		AttendeeID: user.ID,
		Paid:       event.EntryFee == models.FeePaid,
	}
	if err := h.db.Create(&registration).Error; err != nil {
		// The unique index catches a concurrent double-signup.
		return nil, huma.Error409Conflict("You are already registered for this event")
	}

	if user.Email != "" {
		subject, text, html := registrationConfirmationMail(&event, &user, registration.TicketCode, h.cfg.FrontendURL)
		if err := h.sender.Send(ctx, user.Email, subject, text, html); err != nil {
			log.Warn().Err(err).Uint("registration_id", registration.ID).Msg("failed to send confirmation mail")
		}
	}

	res := &RegisterResponse{}
	res.Body.Message = "You have successfully registered for \"" + event.Title + "\""
	res.Body.RegistrationID = registration.ID
	res.Body.TicketCode = registration.TicketCode
	return res, nil
}

type MyRegistrationsRequest struct {
	auth.AuthInput
}

type RegistrationSummary struct {
	ID                    uint          `json:"id"`
	Event                 EventResponse `json:"event"`
	TicketCode            string        `json:"ticket_code"`
	RegisteredAt          time.Time     `json:"registered_at"`
	Attended              bool          `json:"attended"`
	AttendedAt            *time.Time    `json:"attended_at"`
	FeedbackRequestSentAt *time.Time    `json:"feedback_request_sent_at"`
}

type MyRegistrationsResponse struct {
	Body struct {
		Upcoming []RegistrationSummary `json:"upcoming"`
		Past     []RegistrationSummary `json:"past"`
	}
}

func (h *RegistrationHandler) HandleMyRegistrations(ctx context.Context, input *MyRegistrationsRequest) (*MyRegistrationsResponse, error) {
	user, err := h.authHandler.CurrentUser(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	var regs []models.Registration
	err = h.db.Preload("Event").Where("attendee_id = ?", user.ID).Find(&regs).Error
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list registrations")
	}

	now := time.Now().UTC()
	res := &MyRegistrationsResponse{}
	res.Body.Upcoming = []RegistrationSummary{}
	res.Body.Past = []RegistrationSummary{}
	for i := range regs {
		reg := &regs[i]
		summary := RegistrationSummary{
			ID:                    reg.ID,
			Event:                 eventResponse(&reg.Event),
			TicketCode:            reg.TicketCode,
			RegisteredAt:          reg.RegisteredAt,
			Attended:              reg.Attended,
			AttendedAt:            reg.AttendedAt,
			FeedbackRequestSentAt: reg.FeedbackRequestSentAt,
		}
		if reg.Event.EndTime.Before(now) {
			res.Body.Past = append(res.Body.Past, summary)
		} else {
			res.Body.Upcoming = append(res.Body.Upcoming, summary)
		}
	}
	return res, nil
}

type ParticipantsRequest struct {
	auth.AuthInput
	EventID uint `path:"id"`
}

type ParticipantEntry struct {
	RegistrationID uint       `json:"registration_id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	RegisteredAt   time.Time  `json:"registered_at"`
	Attended       bool       `json:"attended"`
	AttendedAt     *time.Time `json:"attended_at"`
}

type ParticipantsResponse struct {
	Body struct {
		Participants []ParticipantEntry `json:"participants"`
	}
}

func (h *RegistrationHandler) HandleParticipants(ctx context.Context, input *ParticipantsRequest) (*ParticipantsResponse, error) {
	user, err := h.authHandler.CurrentUser(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	var event models.Event
	if err := h.db.First(&event, input.EventID).Error; err != nil {
		return nil, huma.Error404NotFound("Event not found")
	}
	if event.OrganizerID != user.ID && !user.IsStaff {
		return nil, huma.Error403Forbidden("You do not have permission to view participants")
	}

	var regs []models.Registration
	err = h.db.Preload("Attendee").Where("event_id = ?", event.ID).Find(&regs).Error
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list participants")
	}

	res := &ParticipantsResponse{}
	res.Body.Participants = make([]ParticipantEntry, 0, len(regs))
	for i := range regs {
		reg := &regs[i]
		res.Body.Participants = append(res.Body.Participants, ParticipantEntry{
			RegistrationID: reg.ID,
			Username:       reg.Attendee.Username,
			Email:          reg.Attendee.Email,
			RegisteredAt:   reg.RegisteredAt,
			Attended:       reg.Attended,
			AttendedAt:     reg.AttendedAt,
		})
	}
	return res, nil
}
