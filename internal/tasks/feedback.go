package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/campus-events/eventhub-api/internal/models"
	"github.com/rs/zerolog/log"
)

type FeedbackResult struct {
	Sent    int
	Skipped int
	Errors  []error
}

type sendJob struct {
	registrationID uint
	to             string
	subject        string
	text           string
	html           string
}

type sendOutcome struct {
	registrationID uint
	err            error
}

// RunFeedbackPass sends at most one feedback request per eligible
// registration for events whose end time plus grace has passed. Events are
// selected first, then registrations per event, so eligibility of the event
// is decided once regardless of attendee count. Sends run on a bounded
// worker pool; the guard timestamp is written only from this goroutine.
func (r *Runner) RunFeedbackPass(ctx context.Context, now time.Time, grace time.Duration) FeedbackResult {
	var result FeedbackResult

	cutoff := now.Add(-grace)
	statuses := []models.EventStatus{models.StatusApproved, models.StatusCompleted}

	var events []models.Event
	err := r.db.Where("status IN ? AND end_time <= ?", statuses, cutoff).Find(&events).Error
	if err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("select events for feedback: %w", err))
		return result
	}

	var jobs []sendJob
	for i := range events {
		event := &events[i]

		var regs []models.Registration
		err := r.db.Preload("Attendee").Where("event_id = ?", event.ID).Find(&regs).Error
		if err != nil {
			log.Error().Err(err).Uint("event_id", event.ID).Msg("failed to load registrations")
			result.Errors = append(result.Errors, fmt.Errorf("load registrations for event %d: %w", event.ID, err))
			continue
		}

		for j := range regs {
			reg := &regs[j]
			skip, err := r.shouldSkip(event, reg)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("eligibility for registration %d: %w", reg.ID, err))
				continue
			}
			if skip {
				result.Skipped++
				continue
			}
			subject, text, html := feedbackRequestMail(event, &reg.Attendee, r.frontendURL)
			jobs = append(jobs, sendJob{
				registrationID: reg.ID,
				to:             reg.Attendee.Email,
				subject:        subject,
				text:           text,
				html:           html,
			})
		}
	}

	if len(jobs) == 0 {
		return result
	}

	workers := r.workers
	if workers > len(jobs) {
		workers = len(jobs)
	}

	jobCh := make(chan sendJob)
	outCh := make(chan sendOutcome)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				outCh <- sendOutcome{job.registrationID, r.send(ctx, job)}
			}
		}()
	}
	go func() {
		for _, job := range jobs {
			jobCh <- job
		}
		close(jobCh)
		wg.Wait()
		close(outCh)
	}()

	for out := range outCh {
		if out.err != nil {
			// Guard stays unset; the registration is re-selected next pass.
			log.Error().Err(out.err).Uint("registration_id", out.registrationID).Msg("feedback request send failed")
			result.Errors = append(result.Errors, fmt.Errorf("send feedback request for registration %d: %w", out.registrationID, out.err))
			continue
		}
		// Conditional update keeps the guard atomic at the store even if a
		// second dispatcher instance raced us to the same registration.
		tx := r.db.Model(&models.Registration{}).
			Where("id = ? AND feedback_request_sent_at IS NULL", out.registrationID).
			Update("feedback_request_sent_at", now)
		if tx.Error != nil {
			// At-least-once tradeoff: the mail went out but the guard is
			// unset, so the next pass may send a duplicate.
			log.Error().Err(tx.Error).Uint("registration_id", out.registrationID).Msg("failed to mark feedback request sent")
			result.Errors = append(result.Errors, fmt.Errorf("mark registration %d sent: %w", out.registrationID, tx.Error))
			continue
		}
		if tx.RowsAffected == 0 {
			// Another dispatcher marked the registration first.
			log.Warn().Uint("registration_id", out.registrationID).Msg("feedback request guard was already set")
			result.Skipped++
			continue
		}
		result.Sent++
	}

	return result
}

func (r *Runner) shouldSkip(event *models.Event, reg *models.Registration) (bool, error) {
	if reg.FeedbackRequestSentAt != nil {
		return true, nil
	}
	submitted, err := reg.HasSubmittedFeedback(r.db)
	if err != nil {
		return false, err
	}
	if submitted {
		return true, nil
	}
	if reg.Attendee.Email == "" {
		return true, nil
	}
	// No-shows at in-person events are never reminded. Attendance is not
	// tracked for remote participation, so Online/Hybrid always qualify.
	if event.Mode == models.ModeInPerson && !reg.Attended {
		return true, nil
	}
	return false, nil
}

func (r *Runner) send(ctx context.Context, job sendJob) error {
	if r.sendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.sendTimeout)
		defer cancel()
	}
	return r.sender.Send(ctx, job.to, job.subject, job.text, job.html)
}
