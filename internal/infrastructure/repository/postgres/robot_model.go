package postgres

import (
	"database/sql"

	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/domain/robot"
)

type robotTableModel struct {
	RobotID     int64           `db:"robot_id"`
	RobotName   string          `db:"robot_name"`
	BuilderID   sql.NullInt64   `db:"builder_id"`
	WeightClass sql.NullString  `db:"weight_class"`
	Weapon      sql.NullString  `db:"weapon"`
	Drive       sql.NullString  `db:"drive"`
	TopSpeed    sql.NullFloat64 `db:"top_speed"`
	WeaponSpeed sql.NullFloat64 `db:"weapon_speed"`
}

func (m robotTableModel) toDomain() robot.Robot {
	return robot.Robot{
		ID:          m.RobotID,
		Name:        m.RobotName,
		BuilderID:   m.BuilderID.Int64,
		WeightClass: nullStringToString(m.WeightClass),
		Weapon:      nullStringToString(m.Weapon),
		Drive:       nullStringToString(m.Drive),
		TopSpeed:    nullFloat64ToPtr(m.TopSpeed),
		WeaponSpeed: nullFloat64ToPtr(m.WeaponSpeed),
	}
}

func int64ToNullInt64(value int64) sql.NullInt64 {
	if value <= 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: value, Valid: true}
}
