package postgres

import (
	"database/sql"

	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/domain/fight"
)

type fightTableModel struct {
	FightID       int64          `db:"fight_id"`
	RobotID       int64          `db:"robot_id"`
	RobotName     string         `db:"robot_name"`
	OpponentName  string         `db:"opponent_name"`
	Competition   string         `db:"competition"`
	Cage          sql.NullInt64  `db:"cage"`
	FightTime     sql.NullString `db:"fight_time"`
	FightDuration sql.NullInt64  `db:"fight_duration"`
	Outcome       string         `db:"outcome"`
	OutcomeType   sql.NullString `db:"outcome_type"`
	LastUpdated   int64          `db:"last_updated"`
}

func (m fightTableModel) toDomain() fight.Record {
	return fight.Record{
		ID:              m.FightID,
		OwnerRobotName:  m.RobotName,
		OwnerRobotID:    m.RobotID,
		OpponentName:    m.OpponentName,
		Competition:     m.Competition,
		Cage:            nullInt64ToIntPtr(m.Cage),
		FightTime:       nullStringToString(m.FightTime),
		DurationSeconds: nullInt64ToIntPtr(m.FightDuration),
		Outcome:         fight.NormalizeOutcome(m.Outcome),
		OutcomeType:     nullStringToString(m.OutcomeType),
		LastUpdated:     unixToTime(m.LastUpdated),
	}
}
