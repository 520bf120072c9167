package handlers

import (
	"context"
	"time"

	"github.com/campus-events/eventhub-api/internal/auth"
	"github.com/campus-events/eventhub-api/internal/models"
	"github.com/danielgtaylor/huma/v2"
)

type CheckInRequest struct {
	auth.AuthInput
	Body struct {
		TicketCode string `json:"ticket_code" required:"true" doc:"Code decoded from the attendee's QR ticket"`
		EventID    uint   `json:"event_id" required:"true" doc:"Event the scanner station is serving"`
	}
}

type CheckInResponse struct {
	Body struct {
		Status  string `json:"status" enum:"success,warning"`
		Message string `json:"message"`
	}
}

// HandleCheckIn marks a registration attended. Scanner stations authenticate
// with an API key belonging to the organizer; the attended flag is set once,
// a repeat scan returns a warning instead of an error.
func (h *RegistrationHandler) HandleCheckIn(ctx context.Context, input *CheckInRequest) (*CheckInResponse, error) {
	user, err := h.authHandler.CurrentUser(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	var event models.Event
	if err := h.db.First(&event, input.Body.EventID).Error; err != nil {
		return nil, huma.Error404NotFound("Event not found")
	}
	if event.OrganizerID != user.ID && !user.IsStaff {
		return nil, huma.Error403Forbidden("You do not have permission to check in attendees for this event")
	}

	var registration models.Registration
	if err := h.db.Preload("Attendee").Where("ticket_code = ?", input.Body.TicketCode).First(&registration).Error; err != nil {
		return nil, huma.Error404NotFound("Invalid ticket: registration not found")
	}
	if registration.EventID != event.ID {
		var other models.Event
		if err := h.db.First(&other, registration.EventID).Error; err == nil {
			return nil, huma.Error409Conflict("This ticket is for \"" + other.Title + "\", not the current event")
		}
		return nil, huma.Error409Conflict("This ticket is for a different event")
	}

	res := &CheckInResponse{}
	if registration.Attended {
		res.Body.Status = "warning"
		res.Body.Message = registration.Attendee.Username + " has already been checked in"
		return res, nil
	}

	now := time.Now().UTC()
	err = h.db.Model(&registration).Updates(map[string]interface{}{
		"attended":    true,
		"attended_at": now,
	}).Error
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to record check-in")
	}

	res.Body.Status = "success"
	res.Body.Message = "Checked in " + registration.Attendee.Username
	return res, nil
}
