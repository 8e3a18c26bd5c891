package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/robfig/cron/v3"

	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/platform/logging"
)

// Job is the unit of scheduled work, the full sync cycle in practice.
type Job func(ctx context.Context) error

// Scheduler owns a single cron entry and runs the job on it. Triggers that
// arrive while a run is still in flight are skipped: there is exactly one
// logical worker, and a slow cycle must not stack a second one behind it.
type Scheduler struct {
	cron    *cron.Cron
	job     Job
	logger  *logging.Logger
	baseCtx context.Context

	mu      sync.Mutex
	entryID cron.EntryID
	expr    string

	running atomic.Bool
}

func New(ctx context.Context, job Job, logger *logging.Logger) *Scheduler {
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return &Scheduler{
		cron:    cron.New(),
		job:     job,
		logger:  logger,
		baseCtx: ctx,
	}
}

// SetSchedule validates the expression and swaps the active entry. A run
// already in flight keeps going; only the timing of future runs changes.
func (s *Scheduler) SetSchedule(expr string) error {
	if _, err := cron.ParseStandard(expr); err != nil {
		return fmt.Errorf("parse cron expression %q: %w", expr, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entryID != 0 && s.expr == expr {
		return nil
	}

	entryID, err := s.cron.AddFunc(expr, s.trigger)
	if err != nil {
		return fmt.Errorf("schedule job: %w", err)
	}
	if s.entryID != 0 {
		s.cron.Remove(s.entryID)
	}
	s.entryID = entryID
	s.expr = expr
	s.logger.Info("schedule set", "cron", expr)
	return nil
}

// Schedule returns the active cron expression.
func (s *Scheduler) Schedule() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expr
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts future triggers and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunNow executes the job immediately on the caller's goroutine, bypassing
// the cron entry but honoring the overlap guard.
func (s *Scheduler) RunNow(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("a run is already in progress")
	}
	defer s.running.Store(false)
	return s.job(ctx)
}

func (s *Scheduler) trigger() {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn("previous run still in progress, skipping this trigger", "cron", s.Schedule())
		return
	}
	defer s.running.Store(false)

	if err := s.job(s.baseCtx); err != nil {
		s.logger.Error("scheduled run failed", "error", err)
	}
}
