package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/domain/fight"
	qb "github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/platform/querybuilder"
)

const fightJoinedTable = "fights f JOIN robots r ON r.robot_id = f.robot_id"

var fightJoinedColumns = []string{
	"f.fight_id",
	"f.robot_id",
	"r.robot_name",
	"f.opponent_name",
	"f.competition",
	"f.cage",
	"f.fight_time",
	"f.fight_duration",
	"f.outcome",
	"f.outcome_type",
	"f.last_updated",
}

type FightRepository struct {
	db *sqlx.DB
}

func NewFightRepository(db *sqlx.DB) *FightRepository {
	return &FightRepository{db: db}
}

func (r *FightRepository) FindByIdentity(ctx context.Context, id fight.Identity) (*fight.Record, error) {
	query, args, err := qb.Select(fightJoinedColumns...).From(fightJoinedTable).
		Where(
			qb.Eq("r.robot_name", id.OwnerRobotName),
			qb.Eq("f.opponent_name", id.OpponentName),
			qb.Eq("f.competition", id.Competition),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build find fight by identity query: %w", err)
	}

	var row fightTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find fight by identity: %w", err)
	}

	rec := row.toDomain()
	return &rec, nil
}

func (r *FightRepository) FindByID(ctx context.Context, fightID int64) (*fight.Record, error) {
	query, args, err := qb.Select(fightJoinedColumns...).From(fightJoinedTable).
		Where(qb.Eq("f.fight_id", fightID)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build find fight by id query: %w", err)
	}

	var row fightTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return nil, fight.ErrNotFound
		}
		return nil, fmt.Errorf("find fight by id: %w", err)
	}

	rec := row.toDomain()
	return &rec, nil
}

func (r *FightRepository) ListAll(ctx context.Context) ([]fight.Record, error) {
	query, args, err := qb.Select(fightJoinedColumns...).From(fightJoinedTable).
		OrderBy("f.last_updated DESC", "f.fight_id DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list fights query: %w", err)
	}

	var rows []fightTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list fights: %w", err)
	}

	out := make([]fight.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *FightRepository) ListByRobot(ctx context.Context, robotID int64) ([]fight.Record, error) {
	query, args, err := qb.Select(fightJoinedColumns...).From(fightJoinedTable).
		Where(qb.Eq("f.robot_id", robotID)).
		OrderBy("f.last_updated DESC", "f.fight_id DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list fights by robot query: %w", err)
	}

	var rows []fightTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list fights by robot: %w", err)
	}

	out := make([]fight.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *FightRepository) Insert(ctx context.Context, rec fight.Record) (int64, error) {
	query, args, err := qb.InsertInto("fights").
		Columns("robot_id", "opponent_name", "competition", "cage", "fight_time", "fight_duration", "outcome", "outcome_type", "last_updated").
		Values(
			rec.OwnerRobotID,
			rec.OpponentName,
			rec.Competition,
			intPtrToNullInt64(rec.Cage),
			stringToNullString(rec.FightTime),
			intPtrToNullInt64(rec.DurationSeconds),
			string(rec.Outcome),
			stringToNullString(rec.OutcomeType),
			timeToUnix(time.Now()),
		).
		Suffix("RETURNING fight_id").
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build insert fight query: %w", err)
	}

	var fightID int64
	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&fightID); err != nil {
		return 0, fmt.Errorf("insert fight: %w", err)
	}
	return fightID, nil
}

func (r *FightRepository) Update(ctx context.Context, fightID int64, rec fight.Record) error {
	query, args, err := qb.Update("fights").
		Set("opponent_name", rec.OpponentName).
		Set("competition", rec.Competition).
		Set("cage", intPtrToNullInt64(rec.Cage)).
		Set("fight_time", stringToNullString(rec.FightTime)).
		Set("fight_duration", intPtrToNullInt64(rec.DurationSeconds)).
		Set("outcome", string(rec.Outcome)).
		Set("outcome_type", stringToNullString(rec.OutcomeType)).
		Set("last_updated", timeToUnix(time.Now())).
		Where(qb.Eq("fight_id", fightID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update fight query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update fight: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fight.ErrNotFound
	}
	return nil
}

func (r *FightRepository) UpsertByIdentity(ctx context.Context, rec fight.Record) error {
	query, args, err := qb.InsertInto("fights").
		Columns("robot_id", "opponent_name", "competition", "cage", "fight_time", "fight_duration", "outcome", "outcome_type", "last_updated").
		Values(
			rec.OwnerRobotID,
			rec.OpponentName,
			rec.Competition,
			intPtrToNullInt64(rec.Cage),
			stringToNullString(rec.FightTime),
			intPtrToNullInt64(rec.DurationSeconds),
			string(rec.Outcome),
			stringToNullString(rec.OutcomeType),
			timeToUnix(time.Now()),
		).
		Suffix(`ON CONFLICT (robot_id, opponent_name, competition)
DO UPDATE SET
    cage = EXCLUDED.cage,
    fight_time = EXCLUDED.fight_time,
    fight_duration = EXCLUDED.fight_duration,
    outcome = EXCLUDED.outcome,
    outcome_type = EXCLUDED.outcome_type,
    last_updated = EXCLUDED.last_updated`).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert fight query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert fight: %w", err)
	}
	return nil
}

func (r *FightRepository) Delete(ctx context.Context, fightID int64) error {
	query, args, err := qb.DeleteFrom("fights").
		Where(qb.Eq("fight_id", fightID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete fight query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete fight: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fight.ErrNotFound
	}
	return nil
}
