package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/domain/subscriber"
	qb "github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/platform/querybuilder"
)

type SubscriberRepository struct {
	db *sqlx.DB
}

func NewSubscriberRepository(db *sqlx.DB) *SubscriberRepository {
	return &SubscriberRepository{db: db}
}

func (r *SubscriberRepository) ListActiveTokens(ctx context.Context) ([]string, error) {
	query, args, err := qb.Select("push_token").From("push_subscribers").
		Where(qb.Eq("active", true)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list active tokens query: %w", err)
	}

	var tokens []string
	if err := r.db.SelectContext(ctx, &tokens, query, args...); err != nil {
		return nil, fmt.Errorf("list active tokens: %w", err)
	}
	return tokens, nil
}

func (r *SubscriberRepository) Register(ctx context.Context, pushToken string) error {
	query, args, err := qb.InsertInto("push_subscribers").
		Columns("push_token", "active", "created_at").
		Values(pushToken, true, timeToUnix(time.Now())).
		Suffix("ON CONFLICT (push_token) DO UPDATE SET active = TRUE").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build register subscriber query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("register subscriber: %w", err)
	}
	return nil
}

func (r *SubscriberRepository) Deactivate(ctx context.Context, pushToken string) error {
	query, args, err := qb.Update("push_subscribers").
		Set("active", false).
		Where(qb.Eq("push_token", pushToken)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build deactivate subscriber query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deactivate subscriber: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return subscriber.ErrNotFound
	}
	return nil
}
