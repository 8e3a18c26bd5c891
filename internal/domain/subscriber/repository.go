package subscriber

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a push token is not registered.
var ErrNotFound = errors.New("subscriber not found")

type Repository interface {
	ListActiveTokens(ctx context.Context) ([]string, error)
	Register(ctx context.Context, pushToken string) error
	Deactivate(ctx context.Context, pushToken string) error
}
