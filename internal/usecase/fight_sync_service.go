package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/domain/fight"
	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/domain/robot"
	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/platform/logging"
)

// SourceAdapter is one upstream fight feed. FetchMatches returns every bout
// the source currently reports, already mapped to the adapter-neutral raw
// shape.
type SourceAdapter interface {
	Name() string
	FetchMatches(ctx context.Context) ([]RawMatch, error)
}

// CycleSummary describes one full sync cycle across all adapters.
type CycleSummary struct {
	StartedAt      time.Time
	Duration       time.Duration
	SourcesTotal   int
	SourcesFailed  int
	RawMatches     int
	Reconciliation ReconcileSummary
}

// FightSyncService runs the scrape-normalize-reconcile cycle. Adapters are
// fetched concurrently and fail independently: a source being down degrades
// that cycle, it never aborts it.
type FightSyncService struct {
	adapters   []SourceAdapter
	robots     robot.Repository
	normalizer *Normalizer
	reconciler *ReconcileService
	logger     *logging.Logger
}

func NewFightSyncService(
	adapters []SourceAdapter,
	robots robot.Repository,
	normalizer *Normalizer,
	reconciler *ReconcileService,
	logger *logging.Logger,
) *FightSyncService {
	if logger == nil {
		logger = logging.Default()
	}
	return &FightSyncService{
		adapters:   adapters,
		robots:     robots,
		normalizer: normalizer,
		reconciler: reconciler,
		logger:     logger,
	}
}

// RunCycle executes one sync pass. Only the robot-registry read is fatal:
// without the tracked-name set nothing downstream can be attributed, so the
// cycle reports failure and the scheduler retries on the next tick.
func (s *FightSyncService) RunCycle(ctx context.Context) (CycleSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FightSyncService.RunCycle")
	defer span.End()

	summary := CycleSummary{StartedAt: time.Now(), SourcesTotal: len(s.adapters)}

	names, err := s.robots.ListNames(ctx)
	if err != nil {
		return summary, fmt.Errorf("list tracked robots: %w", err)
	}
	ownedNames := make(map[string]struct{}, len(names))
	for _, name := range names {
		ownedNames[name] = struct{}{}
	}

	var mu sync.Mutex
	var raws []RawMatch
	failed := 0

	fetchers := pool.New().WithMaxGoroutines(len(s.adapters) + 1)
	for _, adapter := range s.adapters {
		adapter := adapter
		fetchers.Go(func() {
			matches, err := adapter.FetchMatches(ctx)
			if err != nil {
				s.logger.ErrorContext(ctx, "source fetch failed, continuing with remaining sources",
					"source", adapter.Name(), "error", err)
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}
			s.logger.InfoContext(ctx, "source fetched",
				"source", adapter.Name(), "matches", len(matches))
			mu.Lock()
			raws = append(raws, matches...)
			mu.Unlock()
		})
	}
	fetchers.Wait()
	summary.SourcesFailed = failed
	summary.RawMatches = len(raws)

	observed := make([]fight.Record, 0, len(raws))
	for _, raw := range raws {
		rec, ok := s.normalizer.Normalize(ctx, raw, ownedNames)
		if !ok {
			continue
		}
		observed = append(observed, rec)
	}

	summary.Reconciliation = s.reconciler.Reconcile(ctx, observed)
	summary.Duration = time.Since(summary.StartedAt)

	s.logger.InfoContext(ctx, "sync cycle finished",
		"duration", summary.Duration,
		"sources_total", summary.SourcesTotal,
		"sources_failed", summary.SourcesFailed,
		"raw_matches", summary.RawMatches,
		"observed", summary.Reconciliation.Observed,
		"inserted", summary.Reconciliation.Inserted,
		"updated", summary.Reconciliation.Updated,
		"ignored", summary.Reconciliation.Ignored,
		"skipped", summary.Reconciliation.Skipped,
		"notified", summary.Reconciliation.Notified,
	)
	return summary, nil
}
