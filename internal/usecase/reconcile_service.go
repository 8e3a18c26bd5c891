package usecase

import (
	"context"

	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/domain/fight"
	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/domain/robot"
	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/platform/logging"
)

type NotificationKind string

const (
	NotifyNone         NotificationKind = ""
	NotifyNewFight     NotificationKind = "new_fight"
	NotifyUpdatedFight NotificationKind = "updated_fight"
	NotifyFightResult  NotificationKind = "fight_result"
)

// NotificationBroadcaster fans a single logical event out to every
// registered subscriber. Best effort: it never reports failure back.
type NotificationBroadcaster interface {
	Broadcast(ctx context.Context, kind NotificationKind, rec fight.Record)
}

type reconcileAction int

const (
	actionIgnore reconcileAction = iota
	actionInsert
	actionUpdate
)

type reconcileDecision struct {
	action     reconcileAction
	notify     NotificationKind
	correction bool
}

// ReconcileSummary counts what one batch did to the store.
type ReconcileSummary struct {
	Observed int
	Inserted int
	Updated  int
	Ignored  int
	Skipped  int
	Notified int
}

func (s *ReconcileSummary) add(other ReconcileSummary) {
	s.Observed += other.Observed
	s.Inserted += other.Inserted
	s.Updated += other.Updated
	s.Ignored += other.Ignored
	s.Skipped += other.Skipped
	s.Notified += other.Notified
}

// ReconcileService merges normalized fight records into the store. It owns
// the merge decision: the store is read fresh per fight, the observation is
// classified against current state, and a notification fires only after a
// successful write. Re-running an unchanged observation set is a no-op.
type ReconcileService struct {
	fights     fight.Repository
	robots     robot.Repository
	dispatcher NotificationBroadcaster
	logger     *logging.Logger
}

func NewReconcileService(
	fights fight.Repository,
	robots robot.Repository,
	dispatcher NotificationBroadcaster,
	logger *logging.Logger,
) *ReconcileService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ReconcileService{
		fights:     fights,
		robots:     robots,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Reconcile processes each observed record independently: a failure on one
// fight never aborts the rest of the batch, and the next scheduled cycle is
// the retry for anything skipped here.
func (s *ReconcileService) Reconcile(ctx context.Context, observed []fight.Record) ReconcileSummary {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReconcileService.Reconcile")
	defer span.End()

	summary := ReconcileSummary{Observed: len(observed)}
	for _, rec := range observed {
		summary.add(s.reconcileOne(ctx, rec))
	}
	return summary
}

func (s *ReconcileService) reconcileOne(ctx context.Context, rec fight.Record) ReconcileSummary {
	rec.Competition = fight.NormalizeCompetition(rec.Competition)

	ownerID, err := s.robots.FindIDByName(ctx, rec.OwnerRobotName)
	if err != nil {
		s.logger.WarnContext(ctx, "owner robot not found, skipping fight",
			"owner", rec.OwnerRobotName,
			"opponent", rec.OpponentName,
			"competition", rec.Competition,
			"outcome", rec.Outcome,
			"error", err,
		)
		return ReconcileSummary{Skipped: 1}
	}
	rec.OwnerRobotID = ownerID

	current, err := s.fights.FindByIdentity(ctx, rec.Identity())
	if err != nil {
		s.logger.ErrorContext(ctx, "fight lookup failed, skipping fight",
			"owner", rec.OwnerRobotName,
			"opponent", rec.OpponentName,
			"competition", rec.Competition,
			"error", err,
		)
		return ReconcileSummary{Skipped: 1}
	}

	decision := classify(current, rec)
	switch decision.action {
	case actionInsert:
		fightID, err := s.fights.Insert(ctx, rec)
		if err != nil {
			s.logger.ErrorContext(ctx, "fight insert failed",
				"owner", rec.OwnerRobotName,
				"opponent", rec.OpponentName,
				"competition", rec.Competition,
				"error", err,
			)
			return ReconcileSummary{Skipped: 1}
		}
		rec.ID = fightID
		s.logger.InfoContext(ctx, "inserted fight",
			"fight_id", fightID, "owner", rec.OwnerRobotName, "opponent", rec.OpponentName)
		return s.notify(ctx, decision, rec, ReconcileSummary{Inserted: 1})

	case actionUpdate:
		if err := s.fights.Update(ctx, current.ID, rec); err != nil {
			s.logger.ErrorContext(ctx, "fight update failed",
				"fight_id", current.ID,
				"owner", rec.OwnerRobotName,
				"opponent", rec.OpponentName,
				"competition", rec.Competition,
				"error", err,
			)
			return ReconcileSummary{Skipped: 1}
		}
		rec.ID = current.ID
		if decision.correction {
			s.logger.WarnContext(ctx, "decided fight changed after the fact, treating as correction",
				"fight_id", current.ID,
				"owner", rec.OwnerRobotName,
				"opponent", rec.OpponentName,
				"previous_outcome", current.Outcome,
				"observed_outcome", rec.Outcome,
			)
		} else {
			s.logger.InfoContext(ctx, "updated fight",
				"fight_id", current.ID, "owner", rec.OwnerRobotName, "opponent", rec.OpponentName)
		}
		return s.notify(ctx, decision, rec, ReconcileSummary{Updated: 1})

	default:
		return ReconcileSummary{Ignored: 1}
	}
}

// notify dispatches after the write has succeeded. Broadcast is fire and
// forget; its failures never roll back or retry the write.
func (s *ReconcileService) notify(ctx context.Context, decision reconcileDecision, rec fight.Record, summary ReconcileSummary) ReconcileSummary {
	if decision.notify == NotifyNone || s.dispatcher == nil {
		return summary
	}
	s.dispatcher.Broadcast(ctx, decision.notify, rec)
	summary.Notified = 1
	return summary
}

// classify maps (current persisted state, new observation) to a merge
// action and notification kind:
//
//	absent                       -> insert, announce the new fight
//	pending, no schedule drift   -> ignore
//	pending, cage/time drift     -> update, schedule-change notice
//	pending, now decided         -> update, fight result
//	decided, identical           -> ignore
//	decided, any drift           -> update, correction notice (not a result)
func classify(current *fight.Record, observed fight.Record) reconcileDecision {
	if current == nil {
		return reconcileDecision{action: actionInsert, notify: NotifyNewFight}
	}

	if !current.Decided() {
		if observed.Decided() {
			return reconcileDecision{action: actionUpdate, notify: NotifyFightResult}
		}
		if scheduleDrift(*current, observed) {
			return reconcileDecision{action: actionUpdate, notify: NotifyUpdatedFight}
		}
		return reconcileDecision{action: actionIgnore}
	}

	if fieldDrift(*current, observed) {
		// A decided result is not expected to flip; if anything differs
		// this is a correction, not a new result event.
		return reconcileDecision{action: actionUpdate, notify: NotifyUpdatedFight, correction: true}
	}
	return reconcileDecision{action: actionIgnore}
}

func scheduleDrift(current, observed fight.Record) bool {
	return !equalIntPtr(current.Cage, observed.Cage) || current.FightTime != observed.FightTime
}

func fieldDrift(current, observed fight.Record) bool {
	return current.Outcome != observed.Outcome ||
		current.OutcomeType != observed.OutcomeType ||
		scheduleDrift(current, observed) ||
		!equalIntPtr(current.DurationSeconds, observed.DurationSeconds)
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
