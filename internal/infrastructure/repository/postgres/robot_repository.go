package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/domain/robot"
	qb "github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/platform/querybuilder"
)

var robotColumns = []string{
	"robot_id",
	"robot_name",
	"builder_id",
	"weight_class",
	"weapon",
	"drive",
	"top_speed",
	"weapon_speed",
}

type RobotRepository struct {
	db *sqlx.DB
}

func NewRobotRepository(db *sqlx.DB) *RobotRepository {
	return &RobotRepository{db: db}
}

func (r *RobotRepository) FindIDByName(ctx context.Context, name string) (int64, error) {
	query, args, err := qb.Select("robot_id").From("robots").
		Where(qb.Eq("robot_name", name)).
		Limit(1).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build find robot id query: %w", err)
	}

	var robotID int64
	if err := r.db.GetContext(ctx, &robotID, query, args...); err != nil {
		if isNotFound(err) {
			return 0, fmt.Errorf("%w: name=%s", robot.ErrNotFound, name)
		}
		return 0, fmt.Errorf("find robot id by name: %w", err)
	}
	return robotID, nil
}

func (r *RobotRepository) ListNames(ctx context.Context) ([]string, error) {
	query, args, err := qb.Select("robot_name").From("robots").
		OrderBy("robot_name").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list robot names query: %w", err)
	}

	var names []string
	if err := r.db.SelectContext(ctx, &names, query, args...); err != nil {
		return nil, fmt.Errorf("list robot names: %w", err)
	}
	return names, nil
}

func (r *RobotRepository) List(ctx context.Context) ([]robot.Robot, error) {
	query, args, err := qb.Select(robotColumns...).From("robots").
		OrderBy("robot_name").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list robots query: %w", err)
	}

	var rows []robotTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list robots: %w", err)
	}

	out := make([]robot.Robot, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *RobotRepository) FindByID(ctx context.Context, robotID int64) (*robot.Robot, error) {
	query, args, err := qb.Select(robotColumns...).From("robots").
		Where(qb.Eq("robot_id", robotID)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build find robot query: %w", err)
	}

	var row robotTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return nil, robot.ErrNotFound
		}
		return nil, fmt.Errorf("find robot by id: %w", err)
	}

	item := row.toDomain()
	return &item, nil
}

func (r *RobotRepository) Create(ctx context.Context, item robot.Robot) (int64, error) {
	query, args, err := qb.InsertInto("robots").
		Columns("robot_name", "builder_id", "weight_class", "weapon", "drive", "top_speed", "weapon_speed").
		Values(
			item.Name,
			int64ToNullInt64(item.BuilderID),
			stringToNullString(item.WeightClass),
			stringToNullString(item.Weapon),
			stringToNullString(item.Drive),
			floatPtrToNullFloat64(item.TopSpeed),
			floatPtrToNullFloat64(item.WeaponSpeed),
		).
		Suffix("RETURNING robot_id").
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build insert robot query: %w", err)
	}

	var robotID int64
	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&robotID); err != nil {
		return 0, fmt.Errorf("insert robot: %w", err)
	}
	return robotID, nil
}

func (r *RobotRepository) Update(ctx context.Context, robotID int64, item robot.Robot) error {
	query, args, err := qb.Update("robots").
		Set("robot_name", item.Name).
		Set("builder_id", int64ToNullInt64(item.BuilderID)).
		Set("weight_class", stringToNullString(item.WeightClass)).
		Set("weapon", stringToNullString(item.Weapon)).
		Set("drive", stringToNullString(item.Drive)).
		Set("top_speed", floatPtrToNullFloat64(item.TopSpeed)).
		Set("weapon_speed", floatPtrToNullFloat64(item.WeaponSpeed)).
		Where(qb.Eq("robot_id", robotID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update robot query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update robot: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return robot.ErrNotFound
	}
	return nil
}

func (r *RobotRepository) Delete(ctx context.Context, robotID int64) error {
	query, args, err := qb.DeleteFrom("robots").
		Where(qb.Eq("robot_id", robotID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete robot query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete robot: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return robot.ErrNotFound
	}
	return nil
}

// GetOrCreate resolves a robot by name, registering it when missing. Kept
// for bootstrap tooling; the sync pipeline resolves strictly and skips
// unknown names instead.
func (r *RobotRepository) GetOrCreate(ctx context.Context, name string) (int64, error) {
	robotID, err := r.FindIDByName(ctx, name)
	if err == nil {
		return robotID, nil
	}
	if !errors.Is(err, robot.ErrNotFound) {
		return 0, err
	}

	query, args, err := qb.InsertInto("robots").
		Columns("robot_name").
		Values(name).
		Suffix("ON CONFLICT (robot_name) DO UPDATE SET robot_name = EXCLUDED.robot_name RETURNING robot_id").
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build get-or-create robot query: %w", err)
	}

	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&robotID); err != nil {
		return 0, fmt.Errorf("get or create robot: %w", err)
	}
	return robotID, nil
}
