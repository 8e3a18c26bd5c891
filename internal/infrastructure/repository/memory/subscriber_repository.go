package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/domain/subscriber"
)

type SubscriberRepository struct {
	mu      sync.RWMutex
	nextID  int64
	byToken map[string]subscriber.Subscriber
}

func NewSubscriberRepository() *SubscriberRepository {
	return &SubscriberRepository{nextID: 1, byToken: make(map[string]subscriber.Subscriber)}
}

func (r *SubscriberRepository) ListActiveTokens(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.byToken))
	for token, item := range r.byToken {
		if item.Active {
			out = append(out, token)
		}
	}
	return out, nil
}

func (r *SubscriberRepository) Register(_ context.Context, pushToken string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item, ok := r.byToken[pushToken]; ok {
		item.Active = true
		r.byToken[pushToken] = item
		return nil
	}
	r.byToken[pushToken] = subscriber.Subscriber{
		ID:        r.nextID,
		PushToken: pushToken,
		Active:    true,
		CreatedAt: time.Now(),
	}
	r.nextID++
	return nil
}

func (r *SubscriberRepository) Deactivate(_ context.Context, pushToken string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.byToken[pushToken]
	if !ok {
		return subscriber.ErrNotFound
	}
	item.Active = false
	r.byToken[pushToken] = item
	return nil
}
