package robot

import (
	"context"
	"errors"
)

// ErrNotFound is returned by lookups that matched no robot.
var ErrNotFound = errors.New("robot not found")

type Repository interface {
	// FindIDByName resolves a robot by exact name match. Returns the
	// store's not-found error when the name is unregistered.
	FindIDByName(ctx context.Context, name string) (int64, error)
	ListNames(ctx context.Context) ([]string, error)
	List(ctx context.Context) ([]Robot, error)
	FindByID(ctx context.Context, robotID int64) (*Robot, error)
	Create(ctx context.Context, r Robot) (int64, error)
	Update(ctx context.Context, robotID int64, r Robot) error
	Delete(ctx context.Context, robotID int64) error
	// GetOrCreate is the loose bootstrap mode some adapters used before
	// the registry was curated. The hardened pipeline never calls it.
	GetOrCreate(ctx context.Context, name string) (int64, error)
}
