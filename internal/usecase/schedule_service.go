package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/domain/schedule"
)

// ScheduleService reads and updates the scraper's cron expression. The
// expression is validated before it is stored so the scheduler never loads
// an unparsable value; the store's change feed then tells running daemons
// to reload.
type ScheduleService struct {
	schedules schedule.Repository
}

func NewScheduleService(schedules schedule.Repository) *ScheduleService {
	return &ScheduleService{schedules: schedules}
}

func (s *ScheduleService) Get(ctx context.Context, jobName string) (schedule.Schedule, error) {
	jobName = strings.TrimSpace(jobName)
	if jobName == "" {
		return schedule.Schedule{}, fmt.Errorf("%w: job name is required", ErrInvalidInput)
	}

	item, err := s.schedules.Get(ctx, jobName)
	if err != nil {
		if errors.Is(err, schedule.ErrNotFound) {
			return schedule.Schedule{}, fmt.Errorf("%w: schedule=%s", ErrNotFound, jobName)
		}
		return schedule.Schedule{}, fmt.Errorf("get schedule: %w", err)
	}
	return item, nil
}

func (s *ScheduleService) Set(ctx context.Context, jobName, cronExpression string) error {
	jobName = strings.TrimSpace(jobName)
	cronExpression = strings.TrimSpace(cronExpression)
	if jobName == "" {
		return fmt.Errorf("%w: job name is required", ErrInvalidInput)
	}
	if cronExpression == "" {
		return fmt.Errorf("%w: cron expression is required", ErrInvalidInput)
	}
	if _, err := cron.ParseStandard(cronExpression); err != nil {
		return fmt.Errorf("%w: cron expression %q: %v", ErrInvalidInput, cronExpression, err)
	}

	if err := s.schedules.Set(ctx, jobName, cronExpression); err != nil {
		return fmt.Errorf("set schedule: %w", err)
	}
	return nil
}
