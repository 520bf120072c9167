package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestSchedulerFires(t *testing.T) {
	fired := make(chan struct{}, 1)
	s := New(5*time.Millisecond, func(ctx context.Context) {
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	s.Start()
	defer s.Stop()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("job never fired")
	}
}

func TestSchedulerStopHaltsFiring(t *testing.T) {
	var count atomic.Int64
	s := New(5*time.Millisecond, func(ctx context.Context) {
		count.Add(1)
	})
	s.Start()

	deadline := time.After(2 * time.Second)
	for count.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("job never fired")
		case <-time.After(time.Millisecond):
		}
	}

	s.Stop()
	after := count.Load()
	time.Sleep(50 * time.Millisecond)
	if got := count.Load(); got != after {
		t.Errorf("job fired %d more times after Stop", got-after)
	}
}

func TestSchedulerRestartReplaces(t *testing.T) {
	var count atomic.Int64
	s := New(5*time.Millisecond, func(ctx context.Context) {
		count.Add(1)
	})

	// A second Start must replace the first schedule. If it stacked a
	// second goroutine instead, the orphan would keep firing past Stop.
	s.Start()
	s.Start()
	s.Stop()

	after := count.Load()
	time.Sleep(50 * time.Millisecond)
	if got := count.Load(); got != after {
		t.Errorf("a schedule survived Stop, %d extra firings", got-after)
	}
}

func TestSchedulerSurvivesPanickingJob(t *testing.T) {
	var count atomic.Int64
	s := New(5*time.Millisecond, func(ctx context.Context) {
		count.Add(1)
		panic("pass blew up")
	})
	s.Start()
	defer s.Stop()

	deadline := time.After(2 * time.Second)
	for count.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("expected the schedule to keep firing after a panic, got %d firings", count.Load())
		case <-time.After(time.Millisecond):
		}
	}
}

func TestSchedulerNonPositiveInterval(t *testing.T) {
	for _, interval := range []time.Duration{0, -time.Second} {
		s := New(interval, func(ctx context.Context) {})
		if s.interval != time.Minute {
			t.Errorf("interval %v: expected the one minute fallback, got %v", interval, s.interval)
		}
		s.Start()
		s.Stop()
	}
}

func TestSchedulerStopWithoutStart(t *testing.T) {
	s := New(time.Second, func(ctx context.Context) {})
	s.Stop()
	s.Stop()
}
