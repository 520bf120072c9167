package tasks

import (
	"fmt"
	"time"

	"github.com/campus-events/eventhub-api/internal/models"
	"github.com/rs/zerolog/log"
)

type CompletionResult struct {
	Completed int
	Errors    []error
}

// RunCompletionPass advances every Approved event whose end time has passed
// to Completed. Each event is persisted on its own; one failure is recorded
// and the pass moves on. Already-Completed events never match the selection,
// so repeated passes are no-ops.
func (r *Runner) RunCompletionPass(now time.Time) CompletionResult {
	var result CompletionResult

	var events []models.Event
	err := r.db.Where("status = ? AND end_time < ?", models.StatusApproved, now).Find(&events).Error
	if err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("select events to complete: %w", err))
		return result
	}

	for i := range events {
		event := &events[i]
		prev := event.Status
		event.Status = models.StatusCompleted
		// Saved through the normal hook path, so the validator re-runs;
		// the selection filter guarantees end_time < now already holds.
		if err := r.db.Save(event).Error; err != nil {
			log.Error().Err(err).Uint("event_id", event.ID).Msg("failed to mark event completed")
			result.Errors = append(result.Errors, fmt.Errorf("complete event %d: %w", event.ID, err))
			continue
		}
		if err := r.db.Create(&models.EventStatusChange{
			EventID:    event.ID,
			FromStatus: prev,
			ToStatus:   models.StatusCompleted,
			Reason:     "end time passed",
		}).Error; err != nil {
			log.Warn().Err(err).Uint("event_id", event.ID).Msg("failed to record status change")
		}
		log.Info().Uint("event_id", event.ID).Str("title", event.Title).Msg("event completed")
		result.Completed++
	}

	return result
}
