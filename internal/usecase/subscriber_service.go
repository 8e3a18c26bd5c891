package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/domain/subscriber"
)

// SubscriberService manages push delivery registrations.
type SubscriberService struct {
	subscribers subscriber.Repository
}

func NewSubscriberService(subscribers subscriber.Repository) *SubscriberService {
	return &SubscriberService{subscribers: subscribers}
}

// Register stores the device token. Re-registering an existing token
// reactivates it rather than failing, so clients can register on every app
// start.
func (s *SubscriberService) Register(ctx context.Context, pushToken string) error {
	pushToken = strings.TrimSpace(pushToken)
	if pushToken == "" {
		return fmt.Errorf("%w: push token is required", ErrInvalidInput)
	}
	if err := s.subscribers.Register(ctx, pushToken); err != nil {
		return fmt.Errorf("register subscriber: %w", err)
	}
	return nil
}

func (s *SubscriberService) Deactivate(ctx context.Context, pushToken string) error {
	pushToken = strings.TrimSpace(pushToken)
	if pushToken == "" {
		return fmt.Errorf("%w: push token is required", ErrInvalidInput)
	}
	if err := s.subscribers.Deactivate(ctx, pushToken); err != nil {
		if errors.Is(err, subscriber.ErrNotFound) {
			return fmt.Errorf("%w: subscriber", ErrNotFound)
		}
		return fmt.Errorf("deactivate subscriber: %w", err)
	}
	return nil
}
