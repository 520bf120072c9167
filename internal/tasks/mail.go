package tasks

import (
	"fmt"

	"github.com/campus-events/eventhub-api/internal/models"
)

func feedbackRequestMail(event *models.Event, user *models.User, frontendURL string) (subject, text, html string) {
	subject = fmt.Sprintf("How was %s? We'd love your feedback!", event.Title)
	feedbackURL := fmt.Sprintf("%s/events/%d/feedback", frontendURL, event.ID)

	text = fmt.Sprintf(
		"Hi %s,\n\nThanks for being part of %s. We'd love to hear how it went.\n\nLeave your feedback here: %s\n\nThe EventHub team",
		user.Username, event.Title, feedbackURL,
	)
	html = fmt.Sprintf(
		"<p>Hi %s,</p><p>Thanks for being part of <strong>%s</strong>. We'd love to hear how it went.</p><p><a href=%q>Leave your feedback</a></p><p>The EventHub team</p>",
		user.Username, event.Title, feedbackURL,
	)
	return subject, text, html
}
