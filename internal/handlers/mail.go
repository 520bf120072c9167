package handlers

import (
	"fmt"

	"github.com/campus-events/eventhub-api/internal/models"
)

func registrationConfirmationMail(event *models.Event, user *models.User, ticketCode, frontendURL string) (subject, text, html string) {
	subject = fmt.Sprintf("Your Ticket for %s", event.Title)
	eventURL := fmt.Sprintf("%s/events/%d", frontendURL, event.ID)

	text = fmt.Sprintf(
		"Hi %s,\n\nYou are registered for %s.\n\nWhen: %s - %s\nTicket code: %s\n\nEvent details: %s\n\nThe EventHub team",
		user.Username, event.Title,
		event.StartTime.Format("2006-01-02 15:04"), event.EndTime.Format("2006-01-02 15:04"),
		ticketCode, eventURL,
	)
	html = fmt.Sprintf(
		"<p>Hi %s,</p><p>You are registered for <strong>%s</strong>.</p><p>When: %s - %s<br>Ticket code: <code>%s</code></p><p><a href=%q>Event details</a></p><p>The EventHub team</p>",
		user.Username, event.Title,
		event.StartTime.Format("2006-01-02 15:04"), event.EndTime.Format("2006-01-02 15:04"),
		ticketCode, eventURL,
	)
	return subject, text, html
}

func eventStatusMail(event *models.Event, organizer *models.User, frontendURL string) (subject, text, html string) {
	eventURL := fmt.Sprintf("%s/events/%d", frontendURL, event.ID)

	if event.Status == models.StatusApproved {
		subject = fmt.Sprintf("Your Event %q has been Approved", event.Title)
		text = fmt.Sprintf(
			"Hi %s,\n\nGood news: %q has been approved and assigned to %s.\n\nEvent page: %s\n\nThe EventHub team",
			organizer.Username, event.Title, event.Location, eventURL,
		)
		html = fmt.Sprintf(
			"<p>Hi %s,</p><p>Good news: <strong>%s</strong> has been approved and assigned to %s.</p><p><a href=%q>Event page</a></p><p>The EventHub team</p>",
			organizer.Username, event.Title, event.Location, eventURL,
		)
		return subject, text, html
	}

	subject = fmt.Sprintf("Update on your Event: %q", event.Title)
	text = fmt.Sprintf(
		"Hi %s,\n\nUnfortunately %q was not approved.\n\nReason: %s\n\nYou can edit and resubmit the event: %s\n\nThe EventHub team",
		organizer.Username, event.Title, event.RejectionReason, eventURL,
	)
	html = fmt.Sprintf(
		"<p>Hi %s,</p><p>Unfortunately <strong>%s</strong> was not approved.</p><p>Reason: %s</p><p><a href=%q>Edit and resubmit</a></p><p>The EventHub team</p>",
		organizer.Username, event.Title, event.RejectionReason, eventURL,
	)
	return subject, text, html
}
