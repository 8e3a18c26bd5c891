package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/domain/fight"
	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/domain/robot"
)

// FightAdminService backs the admin surface: manual fight CRUD outside the
// scraping pipeline. Writes here follow the same canonical rules as the
// pipeline (normalized competition, validated outcome) so a hand-entered
// fight reconciles cleanly on the next cycle.
type FightAdminService struct {
	fights fight.Repository
	robots robot.Repository
}

func NewFightAdminService(fights fight.Repository, robots robot.Repository) *FightAdminService {
	return &FightAdminService{fights: fights, robots: robots}
}

type FightInput struct {
	OwnerRobotName  string
	OpponentName    string
	Competition     string
	Cage            *int
	FightTime       string
	DurationSeconds *int
	Outcome         string
	OutcomeType     string
}

func (s *FightAdminService) List(ctx context.Context) ([]fight.Record, error) {
	items, err := s.fights.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list fights: %w", err)
	}
	return items, nil
}

func (s *FightAdminService) ListByRobot(ctx context.Context, robotID int64) ([]fight.Record, error) {
	if robotID <= 0 {
		return nil, fmt.Errorf("%w: robot id is required", ErrInvalidInput)
	}
	if _, err := s.robots.FindByID(ctx, robotID); err != nil {
		if errors.Is(err, robot.ErrNotFound) {
			return nil, fmt.Errorf("%w: robot=%d", ErrNotFound, robotID)
		}
		return nil, fmt.Errorf("get robot: %w", err)
	}

	items, err := s.fights.ListByRobot(ctx, robotID)
	if err != nil {
		return nil, fmt.Errorf("list fights by robot: %w", err)
	}
	return items, nil
}

func (s *FightAdminService) Get(ctx context.Context, fightID int64) (fight.Record, error) {
	if fightID <= 0 {
		return fight.Record{}, fmt.Errorf("%w: fight id is required", ErrInvalidInput)
	}
	item, err := s.fights.FindByID(ctx, fightID)
	if err != nil {
		if errors.Is(err, fight.ErrNotFound) {
			return fight.Record{}, fmt.Errorf("%w: fight=%d", ErrNotFound, fightID)
		}
		return fight.Record{}, fmt.Errorf("get fight: %w", err)
	}
	return *item, nil
}

func (s *FightAdminService) Create(ctx context.Context, input FightInput) (fight.Record, error) {
	rec, err := s.buildRecord(ctx, input)
	if err != nil {
		return fight.Record{}, err
	}

	existing, err := s.fights.FindByIdentity(ctx, rec.Identity())
	if err != nil {
		return fight.Record{}, fmt.Errorf("check existing fight: %w", err)
	}
	if existing != nil {
		return fight.Record{}, fmt.Errorf("%w: fight %s vs %s in %s already exists",
			ErrInvalidInput, rec.OwnerRobotName, rec.OpponentName, rec.Competition)
	}

	fightID, err := s.fights.Insert(ctx, rec)
	if err != nil {
		return fight.Record{}, fmt.Errorf("insert fight: %w", err)
	}
	rec.ID = fightID
	return rec, nil
}

func (s *FightAdminService) Update(ctx context.Context, fightID int64, input FightInput) (fight.Record, error) {
	if fightID <= 0 {
		return fight.Record{}, fmt.Errorf("%w: fight id is required", ErrInvalidInput)
	}
	if _, err := s.fights.FindByID(ctx, fightID); err != nil {
		if errors.Is(err, fight.ErrNotFound) {
			return fight.Record{}, fmt.Errorf("%w: fight=%d", ErrNotFound, fightID)
		}
		return fight.Record{}, fmt.Errorf("get fight: %w", err)
	}

	rec, err := s.buildRecord(ctx, input)
	if err != nil {
		return fight.Record{}, err
	}
	if err := s.fights.Update(ctx, fightID, rec); err != nil {
		return fight.Record{}, fmt.Errorf("update fight: %w", err)
	}
	rec.ID = fightID
	return rec, nil
}

func (s *FightAdminService) Delete(ctx context.Context, fightID int64) error {
	if fightID <= 0 {
		return fmt.Errorf("%w: fight id is required", ErrInvalidInput)
	}
	if err := s.fights.Delete(ctx, fightID); err != nil {
		if errors.Is(err, fight.ErrNotFound) {
			return fmt.Errorf("%w: fight=%d", ErrNotFound, fightID)
		}
		return fmt.Errorf("delete fight: %w", err)
	}
	return nil
}

func (s *FightAdminService) buildRecord(ctx context.Context, input FightInput) (fight.Record, error) {
	owner := strings.TrimSpace(input.OwnerRobotName)
	opponent := strings.TrimSpace(input.OpponentName)
	if owner == "" {
		return fight.Record{}, fmt.Errorf("%w: owner robot name is required", ErrInvalidInput)
	}
	if opponent == "" {
		return fight.Record{}, fmt.Errorf("%w: opponent name is required", ErrInvalidInput)
	}

	ownerID, err := s.robots.FindIDByName(ctx, owner)
	if err != nil {
		if errors.Is(err, robot.ErrNotFound) {
			return fight.Record{}, fmt.Errorf("%w: robot=%s", ErrNotFound, owner)
		}
		return fight.Record{}, fmt.Errorf("resolve robot: %w", err)
	}

	fightTime := strings.TrimSpace(input.FightTime)
	if fightTime != "" {
		normalized, ok := NormalizeClockText(fightTime)
		if !ok {
			return fight.Record{}, fmt.Errorf("%w: fight time %q is not a wall-clock time", ErrInvalidInput, input.FightTime)
		}
		fightTime = normalized
	}

	rec := fight.Record{
		OwnerRobotName:  owner,
		OwnerRobotID:    ownerID,
		OpponentName:    opponent,
		Competition:     fight.NormalizeCompetition(input.Competition),
		Cage:            input.Cage,
		FightTime:       fightTime,
		DurationSeconds: input.DurationSeconds,
		Outcome:         fight.NormalizeOutcome(input.Outcome),
	}
	if rec.Decided() {
		rec.OutcomeType = MapOutcomeNote(input.OutcomeType)
	}
	return rec, nil
}
