package tasks

import (
	"context"
	"time"

	"github.com/campus-events/eventhub-api/internal/config"
	"github.com/campus-events/eventhub-api/internal/mailer"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Runner executes the scheduled completion and feedback passes. It is the
// sole owner of the Approved→Completed transition; no interactive flow
// performs it.
type Runner struct {
	db          *gorm.DB
	sender      mailer.Sender
	frontendURL string
	grace       time.Duration
	workers     int
	sendTimeout time.Duration
}

func NewRunner(db *gorm.DB, sender mailer.Sender, cfg *config.Config) *Runner {
	workers := cfg.MailWorkers
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		db:          db,
		sender:      sender,
		frontendURL: cfg.FrontendURL,
		grace:       cfg.FeedbackGrace(),
		workers:     workers,
		sendTimeout: cfg.MailSendTimeout(),
	}
}

// RunPass is one scheduled firing: completion first, then feedback, so an
// event that crosses to Completed is still considered for reminders in the
// same pass.
func (r *Runner) RunPass(ctx context.Context) {
	now := time.Now().UTC()

	cres := r.RunCompletionPass(now)
	if cres.Completed > 0 || len(cres.Errors) > 0 {
		log.Info().
			Int("completed", cres.Completed).
			Int("errors", len(cres.Errors)).
			Msg("completion pass finished")
	}

	fres := r.RunFeedbackPass(ctx, now, r.grace)
	if fres.Sent > 0 || len(fres.Errors) > 0 {
		log.Info().
			Int("sent", fres.Sent).
			Int("skipped", fres.Skipped).
			Int("errors", len(fres.Errors)).
			Msg("feedback pass finished")
	}
}
