package handlers

import (
	"context"

	"github.com/campus-events/eventhub-api/internal/auth"
	"github.com/campus-events/eventhub-api/internal/models"
	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog/log"
)

type PendingEventsRequest struct {
	auth.AuthInput
}

type PendingEventsResponse struct {
	Body struct {
		Events []EventResponse `json:"events"`
	}
}

// HandlePendingEvents is the review queue for staff.
func (h *EventHandler) HandlePendingEvents(ctx context.Context, input *PendingEventsRequest) (*PendingEventsResponse, error) {
	if _, err := h.requireStaff(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	var events []models.Event
	err := h.db.Where("status = ?", models.StatusPendingApproval).Order("start_time").Find(&events).Error
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list pending events")
	}

	res := &PendingEventsResponse{}
	res.Body.Events = make([]EventResponse, 0, len(events))
	for i := range events {
		res.Body.Events = append(res.Body.Events, eventResponse(&events[i]))
	}
	return res, nil
}

type ApproveEventRequest struct {
	auth.AuthInput
	ID   uint `path:"id"`
	Body struct {
		Location string `json:"location" required:"true" doc:"Venue assigned to the event"`
	}
}

type ReviewResponse struct {
	Body struct {
		Message string `json:"message"`
	}
}

// HandleApproveEvent approves a pending event and assigns its location. The
// location booking is validated against other Approved events; an overlap
// rejects the approval with a field error.
func (h *EventHandler) HandleApproveEvent(ctx context.Context, input *ApproveEventRequest) (*ReviewResponse, error) {
	staff, err := h.requireStaff(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	var event models.Event
	if err := h.db.Preload("Organizer").First(&event, input.ID).Error; err != nil {
		return nil, huma.Error404NotFound("Event not found")
	}
	if event.Status != models.StatusPendingApproval {
		return nil, huma.Error409Conflict("Event is not pending approval")
	}

	prev := event.Status
	event.Status = models.StatusApproved
	event.Location = input.Body.Location
	event.RejectionReason = ""

	if err := h.db.Save(&event).Error; err != nil {
		return nil, persistError(err, "Failed to approve event")
	}

	h.recordStatusChange(&event, prev, models.StatusApproved, staff.ID, "approved, location assigned")
	h.notifyReviewOutcome(ctx, &event)

	res := &ReviewResponse{}
	res.Body.Message = "The event \"" + event.Title + "\" has been approved and a location has been assigned."
	return res, nil
}

type RejectEventRequest struct {
	auth.AuthInput
	ID   uint `path:"id"`
	Body struct {
		Reason string `json:"reason" required:"true" minLength:"1"`
	}
}

func (h *EventHandler) HandleRejectEvent(ctx context.Context, input *RejectEventRequest) (*ReviewResponse, error) {
	staff, err := h.requireStaff(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	var event models.Event
	if err := h.db.Preload("Organizer").First(&event, input.ID).Error; err != nil {
		return nil, huma.Error404NotFound("Event not found")
	}
	if event.Status != models.StatusPendingApproval {
		return nil, huma.Error409Conflict("Event is not pending approval")
	}

	prev := event.Status
	event.Status = models.StatusRejected
	event.RejectionReason = input.Body.Reason

	if err := h.db.Save(&event).Error; err != nil {
		return nil, persistError(err, "Failed to reject event")
	}

	h.recordStatusChange(&event, prev, models.StatusRejected, staff.ID, input.Body.Reason)
	h.notifyReviewOutcome(ctx, &event)

	res := &ReviewResponse{}
	res.Body.Message = "The event \"" + event.Title + "\" has been rejected."
	return res, nil
}

// notifyReviewOutcome mails the organizer and pings the staff channel. Both
// are best-effort: the state transition has already been persisted and a
// delivery failure must not roll it back.
func (h *EventHandler) notifyReviewOutcome(ctx context.Context, event *models.Event) {
	subject, text, html := eventStatusMail(event, &event.Organizer, h.cfg.FrontendURL)
	if event.Organizer.Email != "" {
		if err := h.sender.Send(ctx, event.Organizer.Email, subject, text, html); err != nil {
			log.Warn().Err(err).Uint("event_id", event.ID).Msg("failed to mail organizer about review outcome")
		}
	}
	if h.notifier != nil {
		if err := h.notifier.EventReviewed(*event); err != nil {
			log.Warn().Err(err).Uint("event_id", event.ID).Msg("failed to notify staff channel")
		}
	}
}

func (h *EventHandler) requireStaff(ctx context.Context, input auth.AuthInput) (models.User, error) {
	user, err := h.authHandler.CurrentUser(ctx, input)
	if err != nil {
		return models.User{}, err
	}
	if !user.IsStaff {
		return models.User{}, huma.Error403Forbidden("Staff access required")
	}
	return user, nil
}
