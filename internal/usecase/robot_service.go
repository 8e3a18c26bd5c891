package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/domain/robot"
)

// RobotService manages the curated robot registry. The registry gates the
// whole pipeline: a fight is only attributable if one entrant is registered
// here.
type RobotService struct {
	robots robot.Repository
}

func NewRobotService(robots robot.Repository) *RobotService {
	return &RobotService{robots: robots}
}

type RobotInput struct {
	Name        string
	BuilderID   int64
	WeightClass string
	Weapon      string
	Drive       string
	TopSpeed    *float64
	WeaponSpeed *float64
}

func (s *RobotService) List(ctx context.Context) ([]robot.Robot, error) {
	items, err := s.robots.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list robots: %w", err)
	}
	return items, nil
}

func (s *RobotService) Get(ctx context.Context, robotID int64) (robot.Robot, error) {
	if robotID <= 0 {
		return robot.Robot{}, fmt.Errorf("%w: robot id is required", ErrInvalidInput)
	}
	item, err := s.robots.FindByID(ctx, robotID)
	if err != nil {
		if errors.Is(err, robot.ErrNotFound) {
			return robot.Robot{}, fmt.Errorf("%w: robot=%d", ErrNotFound, robotID)
		}
		return robot.Robot{}, fmt.Errorf("get robot: %w", err)
	}
	return *item, nil
}

func (s *RobotService) Create(ctx context.Context, input RobotInput) (robot.Robot, error) {
	item, err := buildRobot(input)
	if err != nil {
		return robot.Robot{}, err
	}

	robotID, err := s.robots.Create(ctx, item)
	if err != nil {
		return robot.Robot{}, fmt.Errorf("create robot: %w", err)
	}
	item.ID = robotID
	return item, nil
}

func (s *RobotService) Update(ctx context.Context, robotID int64, input RobotInput) (robot.Robot, error) {
	if robotID <= 0 {
		return robot.Robot{}, fmt.Errorf("%w: robot id is required", ErrInvalidInput)
	}
	item, err := buildRobot(input)
	if err != nil {
		return robot.Robot{}, err
	}

	if err := s.robots.Update(ctx, robotID, item); err != nil {
		if errors.Is(err, robot.ErrNotFound) {
			return robot.Robot{}, fmt.Errorf("%w: robot=%d", ErrNotFound, robotID)
		}
		return robot.Robot{}, fmt.Errorf("update robot: %w", err)
	}
	item.ID = robotID
	return item, nil
}

func (s *RobotService) Delete(ctx context.Context, robotID int64) error {
	if robotID <= 0 {
		return fmt.Errorf("%w: robot id is required", ErrInvalidInput)
	}
	if err := s.robots.Delete(ctx, robotID); err != nil {
		if errors.Is(err, robot.ErrNotFound) {
			return fmt.Errorf("%w: robot=%d", ErrNotFound, robotID)
		}
		return fmt.Errorf("delete robot: %w", err)
	}
	return nil
}

func buildRobot(input RobotInput) (robot.Robot, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return robot.Robot{}, fmt.Errorf("%w: robot name is required", ErrInvalidInput)
	}

	return robot.Robot{
		Name:        name,
		BuilderID:   input.BuilderID,
		WeightClass: strings.TrimSpace(input.WeightClass),
		Weapon:      strings.TrimSpace(input.Weapon),
		Drive:       strings.TrimSpace(input.Drive),
		TopSpeed:    input.TopSpeed,
		WeaponSpeed: input.WeaponSpeed,
	}, nil
}
