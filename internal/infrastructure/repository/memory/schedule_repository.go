package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/domain/schedule"
)

type ScheduleRepository struct {
	mu       sync.RWMutex
	byJob    map[string]schedule.Schedule
	watchers []chan struct{}
}

func NewScheduleRepository() *ScheduleRepository {
	return &ScheduleRepository{byJob: make(map[string]schedule.Schedule)}
}

func (r *ScheduleRepository) Get(_ context.Context, jobName string) (schedule.Schedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.byJob[jobName]
	if !ok {
		return schedule.Schedule{}, schedule.ErrNotFound
	}
	return item, nil
}

func (r *ScheduleRepository) Set(_ context.Context, jobName, cronExpression string) error {
	r.mu.Lock()
	r.byJob[jobName] = schedule.Schedule{
		JobName:        jobName,
		CronExpression: cronExpression,
		UpdatedAt:      time.Now(),
	}
	watchers := append([]chan struct{}(nil), r.watchers...)
	r.mu.Unlock()

	for _, watcher := range watchers {
		select {
		case watcher <- struct{}{}:
		default:
		}
	}
	return nil
}

func (r *ScheduleRepository) Watch(ctx context.Context) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)

	r.mu.Lock()
	r.watchers = append(r.watchers, ch)
	r.mu.Unlock()

	go func() {
		<-ctx.Done()
		r.mu.Lock()
		for i, watcher := range r.watchers {
			if watcher == ch {
				r.watchers = append(r.watchers[:i], r.watchers[i+1:]...)
				break
			}
		}
		r.mu.Unlock()
		close(ch)
	}()
	return ch, nil
}
