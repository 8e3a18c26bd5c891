package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/domain/robot"
)

type RobotRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]robot.Robot
}

func NewRobotRepository(robots []robot.Robot) *RobotRepository {
	r := &RobotRepository{nextID: 1, byID: make(map[int64]robot.Robot)}
	for _, item := range robots {
		if item.ID <= 0 {
			item.ID = r.nextID
		}
		r.byID[item.ID] = item
		if item.ID >= r.nextID {
			r.nextID = item.ID + 1
		}
	}
	return r
}

func (r *RobotRepository) FindIDByName(_ context.Context, name string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.byID {
		if item.Name == name {
			return item.ID, nil
		}
	}
	return 0, robot.ErrNotFound
}

func (r *RobotRepository) ListNames(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.byID))
	for _, item := range r.byID {
		out = append(out, item.Name)
	}
	sort.Strings(out)
	return out, nil
}

func (r *RobotRepository) List(_ context.Context) ([]robot.Robot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]robot.Robot, 0, len(r.byID))
	for _, item := range r.byID {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *RobotRepository) FindByID(_ context.Context, robotID int64) (*robot.Robot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.byID[robotID]
	if !ok {
		return nil, robot.ErrNotFound
	}
	out := item
	return &out, nil
}

func (r *RobotRepository) Create(_ context.Context, item robot.Robot) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item.ID = r.nextID
	r.byID[item.ID] = item
	r.nextID++
	return item.ID, nil
}

func (r *RobotRepository) Update(_ context.Context, robotID int64, item robot.Robot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[robotID]; !ok {
		return robot.ErrNotFound
	}
	item.ID = robotID
	r.byID[robotID] = item
	return nil
}

func (r *RobotRepository) Delete(_ context.Context, robotID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[robotID]; !ok {
		return robot.ErrNotFound
	}
	delete(r.byID, robotID)
	return nil
}

func (r *RobotRepository) GetOrCreate(ctx context.Context, name string) (int64, error) {
	if robotID, err := r.FindIDByName(ctx, name); err == nil {
		return robotID, nil
	}
	return r.Create(ctx, robot.Robot{Name: name})
}
