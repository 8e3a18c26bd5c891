package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/domain/schedule"
	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/platform/logging"
	qb "github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/platform/querybuilder"
)

// ScheduleChannel is the NOTIFY channel fired by the cron_schedules trigger.
const ScheduleChannel = "schedule_changes"

type scheduleTableModel struct {
	JobName        string `db:"job_name"`
	CronExpression string `db:"cron_expression"`
	UpdatedAt      int64  `db:"updated_at"`
}

// ScheduleRepository stores cron expressions and exposes a push-based
// change feed. The feed rides Postgres LISTEN/NOTIFY so schedule edits made
// by the admin surface reach running daemons without polling.
type ScheduleRepository struct {
	db          *sqlx.DB
	listenerDSN string
	logger      *logging.Logger
}

func NewScheduleRepository(db *sqlx.DB, listenerDSN string, logger *logging.Logger) *ScheduleRepository {
	if logger == nil {
		logger = logging.Default()
	}
	return &ScheduleRepository{db: db, listenerDSN: listenerDSN, logger: logger}
}

func (r *ScheduleRepository) Get(ctx context.Context, jobName string) (schedule.Schedule, error) {
	query, args, err := qb.Select("job_name", "cron_expression", "updated_at").
		From("cron_schedules").
		Where(qb.Eq("job_name", jobName)).
		ToSQL()
	if err != nil {
		return schedule.Schedule{}, fmt.Errorf("build get schedule query: %w", err)
	}

	var row scheduleTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return schedule.Schedule{}, schedule.ErrNotFound
		}
		return schedule.Schedule{}, fmt.Errorf("get schedule: %w", err)
	}

	return schedule.Schedule{
		JobName:        row.JobName,
		CronExpression: row.CronExpression,
		UpdatedAt:      unixToTime(row.UpdatedAt),
	}, nil
}

func (r *ScheduleRepository) Set(ctx context.Context, jobName, cronExpression string) error {
	query, args, err := qb.InsertInto("cron_schedules").
		Columns("job_name", "cron_expression", "updated_at").
		Values(jobName, cronExpression, timeToUnix(time.Now())).
		Suffix(`ON CONFLICT (job_name)
DO UPDATE SET
    cron_expression = EXCLUDED.cron_expression,
    updated_at = EXCLUDED.updated_at`).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set schedule query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set schedule: %w", err)
	}
	return nil
}

// Watch emits one value per schedule change until ctx is cancelled. The
// channel carries no payload: consumers re-read the schedule on each tick,
// which also absorbs coalesced and replayed notifications.
func (r *ScheduleRepository) Watch(ctx context.Context) (<-chan struct{}, error) {
	listener := pq.NewListener(r.listenerDSN, 10*time.Second, time.Minute, func(event pq.ListenerEventType, err error) {
		if err != nil {
			r.logger.Warn("schedule listener event", "event", int(event), "error", err)
		}
	})
	if err := listener.Listen(ScheduleChannel); err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("listen on %s: %w", ScheduleChannel, err)
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer func() {
			_ = listener.Close()
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case notification, ok := <-listener.Notify:
				if !ok {
					return
				}
				// A nil notification means the connection was re-established;
				// emit anyway in case a change was missed while disconnected.
				if notification != nil {
					r.logger.Debug("schedule change notification", "channel", notification.Channel)
				}
				select {
				case out <- struct{}{}:
				default:
				}
			case <-time.After(5 * time.Minute):
				go func() {
					_ = listener.Ping()
				}()
			}
		}
	}()
	return out, nil
}
