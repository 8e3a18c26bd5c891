package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/domain/schedule"
)

func TestScheduleRepository_GetSetRoundTrip(t *testing.T) {
	t.Parallel()

	repo := NewScheduleRepository()

	if _, err := repo.Get(t.Context(), schedule.JobScraper); !errors.Is(err, schedule.ErrNotFound) {
		t.Fatalf("expected not-found before any Set, got %v", err)
	}

	if err := repo.Set(t.Context(), schedule.JobScraper, "*/10 * * * *"); err != nil {
		t.Fatal(err)
	}

	item, err := repo.Get(t.Context(), schedule.JobScraper)
	if err != nil {
		t.Fatal(err)
	}
	if item.CronExpression != "*/10 * * * *" || item.JobName != schedule.JobScraper {
		t.Fatalf("unexpected schedule %+v", item)
	}
	if item.UpdatedAt.IsZero() {
		t.Fatal("expected updated-at stamped")
	}
}

func TestScheduleRepository_WatchSeesChanges(t *testing.T) {
	t.Parallel()

	repo := NewScheduleRepository()

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	changes, err := repo.Watch(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if err := repo.Set(t.Context(), schedule.JobScraper, "0 * * * *"); err != nil {
		t.Fatal(err)
	}

	select {
	case _, ok := <-changes:
		if !ok {
			t.Fatal("change feed closed unexpectedly")
		}
	case <-time.After(time.Second):
		t.Fatal("expected a change signal after Set")
	}

	cancel()
	select {
	case _, ok := <-changes:
		if ok {
			// A buffered signal may still be pending; the close follows.
			_, ok = <-changes
			if ok {
				t.Fatal("expected feed closed after cancel")
			}
		}
	case <-time.After(time.Second):
		t.Fatal("expected feed closed after cancel")
	}
}
