package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/domain/fight"
	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/domain/subscriber"
	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/platform/logging"
)

const defaultPushWorkers = 8

// PushSender delivers one message to one device token.
type PushSender interface {
	Send(ctx context.Context, token, title, body string) error
}

// NotificationService broadcasts fight events to every active subscriber.
// Delivery is best effort and per-token isolated: one bad token never blocks
// the rest of the fan-out, and the caller never sees a delivery error.
type NotificationService struct {
	subscribers subscriber.Repository
	sender      PushSender
	pool        *ants.Pool
	logger      *logging.Logger
}

func NewNotificationService(
	subscribers subscriber.Repository,
	sender PushSender,
	workers int,
	logger *logging.Logger,
) (*NotificationService, error) {
	if workers <= 0 {
		workers = defaultPushWorkers
	}
	if logger == nil {
		logger = logging.Default()
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create push worker pool: %w", err)
	}

	return &NotificationService{
		subscribers: subscribers,
		sender:      sender,
		pool:        pool,
		logger:      logger,
	}, nil
}

// Close releases the worker pool. In-flight sends finish first.
func (s *NotificationService) Close() {
	if s.pool != nil {
		s.pool.Release()
	}
}

// Broadcast resolves the active token list and fans the message out. It
// blocks until every send attempt has completed so the caller's context
// still covers the deliveries.
func (s *NotificationService) Broadcast(ctx context.Context, kind NotificationKind, rec fight.Record) {
	ctx, span := startUsecaseSpan(ctx, "usecase.NotificationService.Broadcast")
	defer span.End()

	title, body, ok := buildPushMessage(kind, rec)
	if !ok {
		return
	}

	tokens, err := s.subscribers.ListActiveTokens(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "listing push subscribers failed, notification dropped",
			"kind", kind, "owner", rec.OwnerRobotName, "opponent", rec.OpponentName, "error", err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	var failed int
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, token := range tokens {
		token := token
		wg.Add(1)
		submitErr := s.pool.Submit(func() {
			defer wg.Done()
			if err := s.sender.Send(ctx, token, title, body); err != nil {
				s.logger.WarnContext(ctx, "push delivery failed",
					"kind", kind, "token", token, "error", err)
				mu.Lock()
				failed++
				mu.Unlock()
			}
		})
		if submitErr != nil {
			wg.Done()
			s.logger.WarnContext(ctx, "push submit failed",
				"kind", kind, "token", token, "error", submitErr)
			mu.Lock()
			failed++
			mu.Unlock()
		}
	}
	wg.Wait()

	s.logger.InfoContext(ctx, "push broadcast finished",
		"kind", kind, "owner", rec.OwnerRobotName, "opponent", rec.OpponentName,
		"subscribers", len(tokens), "failed", failed)
}

func buildPushMessage(kind NotificationKind, rec fight.Record) (title, body string, ok bool) {
	switch kind {
	case NotifyNewFight:
		return "New Fight Scheduled", fmt.Sprintf("%s vs %s%s", rec.OwnerRobotName, rec.OpponentName, scheduleSuffix(rec)), true
	case NotifyUpdatedFight:
		return "Fight Updated", fmt.Sprintf("%s vs %s%s", rec.OwnerRobotName, rec.OpponentName, scheduleSuffix(rec)), true
	case NotifyFightResult:
		return "Fight Result", resultBody(rec), true
	default:
		return "", "", false
	}
}

func scheduleSuffix(rec fight.Record) string {
	suffix := ""
	if rec.FightTime != "" {
		suffix += " at " + rec.FightTime
	}
	if rec.Cage != nil {
		suffix += fmt.Sprintf(" (Cage %d)", *rec.Cage)
	}
	return suffix
}

func resultBody(rec fight.Record) string {
	verb := "lost to"
	if rec.Outcome == fight.OutcomeWin {
		verb = "beat"
	}
	body := fmt.Sprintf("%s %s %s", rec.OwnerRobotName, verb, rec.OpponentName)
	if rec.OutcomeType != "" {
		body += " by " + rec.OutcomeType
	}
	return body
}
