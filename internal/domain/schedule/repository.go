package schedule

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a job has no stored schedule.
var ErrNotFound = errors.New("schedule not found")

type Repository interface {
	Get(ctx context.Context, jobName string) (Schedule, error)
	Set(ctx context.Context, jobName, cronExpression string) error
	// Watch emits one value per external schedule change until ctx is
	// cancelled. The feed is push-based, not polled.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
