package scheduler

import (
	"context"
	"sync"
	"testing"
)

func TestSetSchedule_RejectsInvalidExpression(t *testing.T) {
	t.Parallel()

	s := New(t.Context(), func(context.Context) error { return nil }, nil)
	if err := s.SetSchedule("not a cron line"); err == nil {
		t.Fatal("expected invalid expression to be rejected")
	}
	if got := s.Schedule(); got != "" {
		t.Fatalf("expected no schedule installed, got %q", got)
	}
}

func TestSetSchedule_SwapsActiveEntry(t *testing.T) {
	t.Parallel()

	s := New(t.Context(), func(context.Context) error { return nil }, nil)
	if err := s.SetSchedule("*/5 * * * *"); err != nil {
		t.Fatal(err)
	}
	if got := s.Schedule(); got != "*/5 * * * *" {
		t.Fatalf("unexpected schedule %q", got)
	}

	// Setting the same expression again is a no-op.
	if err := s.SetSchedule("*/5 * * * *"); err != nil {
		t.Fatal(err)
	}

	if err := s.SetSchedule("0 * * * *"); err != nil {
		t.Fatal(err)
	}
	if got := s.Schedule(); got != "0 * * * *" {
		t.Fatalf("expected replaced schedule, got %q", got)
	}
}

func TestRunNow_OverlapGuard(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	started := make(chan struct{})
	var startedOnce sync.Once
	s := New(t.Context(), func(context.Context) error {
		startedOnce.Do(func() { close(started) })
		<-release
		return nil
	}, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := s.RunNow(t.Context()); err != nil {
			t.Errorf("first run failed: %v", err)
		}
	}()

	<-started
	if err := s.RunNow(t.Context()); err == nil {
		t.Fatal("expected second concurrent run to be refused")
	}

	close(release)
	wg.Wait()

	// The guard clears once the run finishes.
	if err := s.RunNow(t.Context()); err != nil {
		t.Fatalf("expected run after completion to succeed: %v", err)
	}
}
