package resilience

import (
	"errors"
	"testing"
	"time"
)

func TestCircuitBreaker_TripsAfterThreshold(t *testing.T) {
	t.Parallel()

	b := NewCircuitBreaker(2, time.Minute, 1)

	if err := b.Allow(); err != nil {
		t.Fatal(err)
	}
	b.RecordFailure()
	if err := b.Allow(); err != nil {
		t.Fatalf("one failure must not trip a threshold of two: %v", err)
	}
	b.RecordFailure()

	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected open circuit, got %v", err)
	}
	if got := b.State(); got != CircuitStateOpen {
		t.Fatalf("expected open state, got %s", got)
	}
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	t.Parallel()

	b := NewCircuitBreaker(2, time.Minute, 1)
	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()

	if err := b.Allow(); err != nil {
		t.Fatalf("expected closed circuit after reset, got %v", err)
	}
}

func TestCircuitBreaker_HalfOpenProbes(t *testing.T) {
	t.Parallel()

	b := NewCircuitBreaker(1, time.Minute, 1)
	b.now = func() time.Time { return time.Unix(0, 0) }
	b.RecordFailure()

	// Jump past the open timeout: the next Allow becomes the single probe.
	b.now = func() time.Time { return time.Unix(120, 0) }
	if err := b.Allow(); err != nil {
		t.Fatalf("expected half-open probe allowed, got %v", err)
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected second probe rejected, got %v", err)
	}

	b.RecordSuccess()
	if got := b.State(); got != CircuitStateClosed {
		t.Fatalf("expected closed after successful probe, got %s", got)
	}
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	t.Parallel()

	b := NewCircuitBreaker(1, time.Minute, 1)
	b.now = func() time.Time { return time.Unix(0, 0) }
	b.RecordFailure()

	b.now = func() time.Time { return time.Unix(120, 0) }
	if err := b.Allow(); err != nil {
		t.Fatal(err)
	}
	b.RecordFailure()

	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected reopened circuit, got %v", err)
	}
}

func TestSingleFlight_SharesInFlightResult(t *testing.T) {
	t.Parallel()

	var g SingleFlight

	started := make(chan struct{})
	release := make(chan struct{})
	results := make(chan string, 2)

	go func() {
		out, _, _ := g.Do("key", func() (any, error) {
			close(started)
			<-release
			return "first", nil
		})
		results <- out.(string)
	}()

	<-started
	go func() {
		out, _, shared := g.Do("key", func() (any, error) {
			return "second", nil
		})
		if !shared {
			results <- "not shared"
			return
		}
		results <- out.(string)
	}()

	// Give the second caller time to join the in-flight call before the
	// first one is released.
	time.Sleep(50 * time.Millisecond)
	close(release)
	for range 2 {
		if got := <-results; got != "first" {
			t.Fatalf("expected both callers to see the first result, got %q", got)
		}
	}
}
