package fight

import (
	"context"
	"errors"
)

// ErrNotFound is returned by lookups that matched no fight.
var ErrNotFound = errors.New("fight not found")

// Repository is the fight store. The identity triplet is enforced as a
// uniqueness constraint by the store; every write sets LastUpdated.
type Repository interface {
	// FindByIdentity returns (nil, nil) when no fight matches: absence is
	// a normal reconciliation state, not an error.
	FindByIdentity(ctx context.Context, id Identity) (*Record, error)
	// FindByID returns ErrNotFound when the id is unknown.
	FindByID(ctx context.Context, fightID int64) (*Record, error)
	ListAll(ctx context.Context) ([]Record, error)
	ListByRobot(ctx context.Context, robotID int64) ([]Record, error)
	Insert(ctx context.Context, rec Record) (int64, error)
	Update(ctx context.Context, fightID int64, rec Record) error
	UpsertByIdentity(ctx context.Context, rec Record) error
	Delete(ctx context.Context, fightID int64) error
}
