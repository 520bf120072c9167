package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Scheduler fires a job at a fixed interval from a single background
// goroutine. It is constructed once at process start and handed to whatever
// needs to start or stop it; there is no package-level instance.
type Scheduler struct {
	interval time.Duration
	job      func(context.Context)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New builds a scheduler. A non-positive interval falls back to one minute;
// time.NewTicker would panic on it otherwise.
func New(interval time.Duration, job func(context.Context)) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{interval: interval, job: job}
}

// Start launches the ticker goroutine. Calling Start on a scheduler that is
// already running replaces the existing schedule rather than stacking a
// second one, so a double start cannot cause double firing.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	go s.run(ctx, done)
	log.Info().Dur("interval", s.interval).Msg("scheduler started")
}

// Stop halts the schedule and waits for an in-flight firing to return. It is
// safe to call on a scheduler that was never started.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Scheduler) stopLocked() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.fire(ctx)
		}
	}
}

// fire runs one job invocation. A panic inside the job is recovered so the
// schedule survives and the next tick still fires.
func (s *Scheduler) fire(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Msg("scheduled pass panicked")
		}
	}()
	s.job(ctx)
}
