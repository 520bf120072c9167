package handlers

import (
	"context"
	"time"

	"github.com/campus-events/eventhub-api/internal/auth"
	"github.com/campus-events/eventhub-api/internal/config"
	"github.com/campus-events/eventhub-api/internal/mailer"
	"github.com/campus-events/eventhub-api/internal/models"
	"github.com/campus-events/eventhub-api/internal/notifier"
	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const eventsPageSize = 9

type EventHandler struct {
	db          *gorm.DB
	notifier    notifier.Notifier
	sender      mailer.Sender
	cfg         *config.Config
	authHandler *auth.AuthHandler
}

func NewEventHandler(db *gorm.DB, n notifier.Notifier, sender mailer.Sender, cfg *config.Config, authHandler *auth.AuthHandler) *EventHandler {
	return &EventHandler{db: db, notifier: n, sender: sender, cfg: cfg, authHandler: authHandler}
}

type EventResponse struct {
	ID              uint      `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	Mode            string    `json:"mode"`
	Location        string    `json:"location"`
	StreamURL       string    `json:"stream_url,omitempty"`
	OrganizerID     uint      `json:"organizer_id"`
	Status          string    `json:"status"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	MaxSeats        *uint     `json:"max_seats"`
	EntryFee        string    `json:"entry_fee"`
	FeeAmountCents  *int64    `json:"fee_amount_cents"`
	BudgetCents     *int64    `json:"budget_cents"`
}

func eventResponse(e *models.Event) EventResponse {
	return EventResponse{
		ID:              e.ID,
		Title:           e.Title,
		Description:     e.Description,
		StartTime:       e.StartTime,
		EndTime:         e.EndTime,
		Mode:            string(e.Mode),
		Location:        e.Location,
		StreamURL:       e.StreamURL,
		OrganizerID:     e.OrganizerID,
		Status:          string(e.Status),
		RejectionReason: e.RejectionReason,
		MaxSeats:        e.MaxSeats,
		EntryFee:        string(e.EntryFee),
		FeeAmountCents:  e.FeeAmountCents,
		BudgetCents:     e.BudgetCents,
	}
}

type ListEventsRequest struct {
	Query  string `query:"q" doc:"Filter by title substring" required:"false"`
	Filter string `query:"filter" doc:"Mode filter: online, in-person or hybrid" required:"false"`
	Page   int    `query:"page" minimum:"1" required:"false"`
}

type ListEventsResponse struct {
	Body struct {
		Events []EventResponse `json:"events"`
		Total  int64           `json:"total"`
		Page   int             `json:"page"`
	}
}

// HandleListEvents lists Approved events only; pending and rejected drafts
// are visible to their organizer through /my/events.
func (h *EventHandler) HandleListEvents(ctx context.Context, input *ListEventsRequest) (*ListEventsResponse, error) {
	q := h.db.Model(&models.Event{}).Where("status = ?", models.StatusApproved)
	if input.Query != "" {
		q = q.Where("title LIKE ?", "%"+input.Query+"%")
	}
	switch input.Filter {
	case "online":
		q = q.Where("mode IN ?", []models.EventMode{models.ModeOnline, models.ModeHybrid})
	case "in-person":
		q = q.Where("mode IN ?", []models.EventMode{models.ModeInPerson, models.ModeHybrid})
	case "hybrid":
		q = q.Where("mode = ?", models.ModeHybrid)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to count events")
	}

	page := input.Page
	if page < 1 {
		page = 1
	}

	var events []models.Event
	err := q.Order("start_time").Limit(eventsPageSize).Offset((page - 1) * eventsPageSize).Find(&events).Error
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list events")
	}

	res := &ListEventsResponse{}
	res.Body.Events = make([]EventResponse, 0, len(events))
	for i := range events {
		res.Body.Events = append(res.Body.Events, eventResponse(&events[i]))
	}
	res.Body.Total = total
	res.Body.Page = page
	return res, nil
}

type GetEventRequest struct {
	ID uint `path:"id"`
}

type GetEventResponse struct {
	Body EventResponse
}

func (h *EventHandler) HandleGetEvent(ctx context.Context, input *GetEventRequest) (*GetEventResponse, error) {
	var event models.Event
	if err := h.db.First(&event, input.ID).Error; err != nil {
		return nil, huma.Error404NotFound("Event not found")
	}
	return &GetEventResponse{Body: eventResponse(&event)}, nil
}

type EventFields struct {
	Title          string    `json:"title" required:"true" maxLength:"200"`
	Description    string    `json:"description"`
	StartTime      time.Time `json:"start_time" required:"true"`
	EndTime        time.Time `json:"end_time" required:"true"`
	Mode           string    `json:"mode" enum:"In-Person,Online,Hybrid" required:"true"`
	StreamURL      string    `json:"stream_url,omitempty"`
	MaxSeats       *uint     `json:"max_seats,omitempty" doc:"Omit for unlimited seats"`
	EntryFee       string    `json:"entry_fee,omitempty" enum:"Free,Paid"`
	FeeAmountCents *int64    `json:"fee_amount_cents,omitempty"`
	BudgetCents    *int64    `json:"budget_cents,omitempty"`
}

type CreateEventRequest struct {
	auth.AuthInput
	Body EventFields
}

type CreateEventResponse struct {
	Body EventResponse
}

// HandleCreateEvent submits a new event for review. Only Organizer accounts
// may create events; every submission starts in Pending Approval.
func (h *EventHandler) HandleCreateEvent(ctx context.Context, input *CreateEventRequest) (*CreateEventResponse, error) {
	user, err := h.authHandler.CurrentUser(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleOrganizer {
		return nil, huma.Error403Forbidden("Only organizers can create events")
	}

	entryFee := models.EntryFee(input.Body.EntryFee)
	if entryFee == "" {
		entryFee = models.FeeFree
	}

	event := models.Event{
		Title:          input.Body.Title,
		Description:    input.Body.Description,
		StartTime:      input.Body.StartTime.UTC(),
		EndTime:        input.Body.EndTime.UTC(),
		Mode:           models.EventMode(input.Body.Mode),
		StreamURL:      input.Body.StreamURL,
		OrganizerID:    user.ID,
		Status:         models.StatusPendingApproval,
		MaxSeats:       input.Body.MaxSeats,
		EntryFee:       entryFee,
		FeeAmountCents: input.Body.FeeAmountCents,
		BudgetCents:    input.Body.BudgetCents,
	}

	if err := h.db.Create(&event).Error; err != nil {
		return nil, persistError(err, "Failed to create event")
	}

	h.recordStatusChange(&event, "", models.StatusPendingApproval, user.ID, "submitted for approval")

	if h.notifier != nil {
		if err := h.notifier.EventSubmitted(event, user); err != nil {
			log.Warn().Err(err).Uint("event_id", event.ID).Msg("failed to notify staff of submission")
		}
	}

	return &CreateEventResponse{Body: eventResponse(&event)}, nil
}

type UpdateEventRequest struct {
	auth.AuthInput
	ID   uint `path:"id"`
	Body EventFields
}

type UpdateEventResponse struct {
	Body EventResponse
}

// HandleUpdateEvent lets the organizer edit their event. Any edit resubmits
// the event for approval; a rejected event edited this way starts a fresh
// review cycle.
func (h *EventHandler) HandleUpdateEvent(ctx context.Context, input *UpdateEventRequest) (*UpdateEventResponse, error) {
	user, err := h.authHandler.CurrentUser(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	var event models.Event
	if err := h.db.First(&event, input.ID).Error; err != nil {
		return nil, huma.Error404NotFound("Event not found")
	}
	if event.OrganizerID != user.ID {
		return nil, huma.Error403Forbidden("You do not have permission to edit this event")
	}

	prev := event.Status
	event.Title = input.Body.Title
	event.Description = input.Body.Description
	event.StartTime = input.Body.StartTime.UTC()
	event.EndTime = input.Body.EndTime.UTC()
	event.Mode = models.EventMode(input.Body.Mode)
	event.StreamURL = input.Body.StreamURL
	event.MaxSeats = input.Body.MaxSeats
	if input.Body.EntryFee != "" {
		event.EntryFee = models.EntryFee(input.Body.EntryFee)
	}
	event.FeeAmountCents = input.Body.FeeAmountCents
	event.BudgetCents = input.Body.BudgetCents
	event.Status = models.StatusPendingApproval
	event.RejectionReason = ""

	if err := h.db.Save(&event).Error; err != nil {
		return nil, persistError(err, "Failed to update event")
	}

	h.recordStatusChange(&event, prev, models.StatusPendingApproval, user.ID, "updated and resubmitted")

	return &UpdateEventResponse{Body: eventResponse(&event)}, nil
}

type DeleteEventRequest struct {
	auth.AuthInput
	ID uint `path:"id"`
}

func (h *EventHandler) HandleDeleteEvent(ctx context.Context, input *DeleteEventRequest) (*struct{}, error) {
	user, err := h.authHandler.CurrentUser(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	var event models.Event
	if err := h.db.First(&event, input.ID).Error; err != nil {
		return nil, huma.Error404NotFound("Event not found")
	}
	if event.OrganizerID != user.ID {
		return nil, huma.Error403Forbidden("You do not have permission to delete this event")
	}

	if err := h.db.Delete(&event).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to delete event")
	}
	return nil, nil
}

type MyEventsRequest struct {
	auth.AuthInput
}

type OrganizerEventSummary struct {
	EventResponse
	RegistrationCount int64 `json:"registration_count"`
	CheckedInCount    int64 `json:"checked_in_count"`
}

type MyEventsResponse struct {
	Body struct {
		Events             []OrganizerEventSummary `json:"events"`
		TotalEvents        int64                   `json:"total_events"`
		PendingEvents      int64                   `json:"pending_events"`
		TotalRegistrations int64                   `json:"total_registrations"`
		TotalCheckedIn     int64                   `json:"total_checked_in"`
	}
}

// HandleMyEvents is the organizer dashboard: the caller's events with
// registration and check-in counts.
func (h *EventHandler) HandleMyEvents(ctx context.Context, input *MyEventsRequest) (*MyEventsResponse, error) {
	user, err := h.authHandler.CurrentUser(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	var events []models.Event
	err = h.db.Where("organizer_id = ?", user.ID).Order("start_time DESC").Find(&events).Error
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list events")
	}

	res := &MyEventsResponse{}
	res.Body.Events = make([]OrganizerEventSummary, 0, len(events))
	for i := range events {
		event := &events[i]
		var regCount, checkedIn int64
		h.db.Model(&models.Registration{}).Where("event_id = ?", event.ID).Count(&regCount)
		h.db.Model(&models.Registration{}).Where("event_id = ? AND attended = ?", event.ID, true).Count(&checkedIn)

		res.Body.Events = append(res.Body.Events, OrganizerEventSummary{
			EventResponse:     eventResponse(event),
			RegistrationCount: regCount,
			CheckedInCount:    checkedIn,
		})
		res.Body.TotalRegistrations += regCount
		res.Body.TotalCheckedIn += checkedIn
		if event.Status == models.StatusPendingApproval {
			res.Body.PendingEvents++
		}
	}
	res.Body.TotalEvents = int64(len(events))
	return res, nil
}

func (h *EventHandler) recordStatusChange(event *models.Event, from, to models.EventStatus, actorID uint, reason string) {
	change := models.EventStatusChange{
		EventID:    event.ID,
		FromStatus: from,
		ToStatus:   to,
		ActorID:    actorID,
		Reason:     reason,
	}
	if err := h.db.Create(&change).Error; err != nil {
		log.Warn().Err(err).Uint("event_id", event.ID).Msg("failed to record status change")
	}
}
