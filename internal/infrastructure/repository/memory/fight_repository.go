package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/domain/fight"
)

type FightRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]fight.Record
}

func NewFightRepository() *FightRepository {
	return &FightRepository{nextID: 1, byID: make(map[int64]fight.Record)}
}

func (r *FightRepository) FindByIdentity(_ context.Context, id fight.Identity) (*fight.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.byID {
		if rec.Identity() == id {
			out := rec
			return &out, nil
		}
	}
	return nil, nil
}

func (r *FightRepository) FindByID(_ context.Context, fightID int64) (*fight.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[fightID]
	if !ok {
		return nil, fight.ErrNotFound
	}
	out := rec
	return &out, nil
}

func (r *FightRepository) ListAll(_ context.Context) ([]fight.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]fight.Record, 0, len(r.byID))
	for _, rec := range r.byID {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *FightRepository) ListByRobot(_ context.Context, robotID int64) ([]fight.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []fight.Record
	for _, rec := range r.byID {
		if rec.OwnerRobotID == robotID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *FightRepository) Insert(_ context.Context, rec fight.Record) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec.ID = r.nextID
	rec.LastUpdated = time.Now()
	r.byID[rec.ID] = rec
	r.nextID++
	return rec.ID, nil
}

func (r *FightRepository) Update(_ context.Context, fightID int64, rec fight.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[fightID]; !ok {
		return fight.ErrNotFound
	}
	rec.ID = fightID
	rec.LastUpdated = time.Now()
	r.byID[fightID] = rec
	return nil
}

func (r *FightRepository) UpsertByIdentity(ctx context.Context, rec fight.Record) error {
	existing, err := r.FindByIdentity(ctx, rec.Identity())
	if err != nil {
		return err
	}
	if existing != nil {
		return r.Update(ctx, existing.ID, rec)
	}
	_, err = r.Insert(ctx, rec)
	return err
}

func (r *FightRepository) Delete(_ context.Context, fightID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[fightID]; !ok {
		return fight.ErrNotFound
	}
	delete(r.byID, fightID)
	return nil
}
