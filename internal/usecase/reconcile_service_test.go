package usecase

import (
	"context"
	"testing"

	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/domain/fight"
	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/domain/robot"
	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/infrastructure/repository/memory"
)

type recordingBroadcaster struct {
	kinds   []NotificationKind
	records []fight.Record
}

func (b *recordingBroadcaster) Broadcast(_ context.Context, kind NotificationKind, rec fight.Record) {
	b.kinds = append(b.kinds, kind)
	b.records = append(b.records, rec)
}

func newReconcileFixture(names ...string) (*ReconcileService, *memory.FightRepository, *recordingBroadcaster) {
	seeds := make([]robot.Robot, 0, len(names))
	for _, name := range names {
		seeds = append(seeds, robot.Robot{Name: name})
	}
	fights := memory.NewFightRepository()
	broadcaster := &recordingBroadcaster{}
	svc := NewReconcileService(fights, memory.NewRobotRepository(seeds), broadcaster, nil)
	return svc, fights, broadcaster
}

func pendingObservation() fight.Record {
	cage := 2
	return fight.Record{
		OwnerRobotName: "Ripper",
		OpponentName:   "Crusher",
		Competition:    "NHRL March 2026",
		Cage:           &cage,
		FightTime:      "14:30",
		Outcome:        fight.OutcomeUndecided,
	}
}

func TestReconcile_NewFightInserted(t *testing.T) {
	svc, fights, broadcaster := newReconcileFixture("Ripper")

	summary := svc.Reconcile(t.Context(), []fight.Record{pendingObservation()})
	if summary.Inserted != 1 || summary.Notified != 1 {
		t.Fatalf("expected one insert and one notification, got %+v", summary)
	}
	if len(broadcaster.kinds) != 1 || broadcaster.kinds[0] != NotifyNewFight {
		t.Fatalf("expected new-fight notification, got %v", broadcaster.kinds)
	}

	stored, err := fights.ListAll(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 1 {
		t.Fatalf("expected one stored fight, got %d", len(stored))
	}
	if stored[0].OwnerRobotID == 0 {
		t.Fatal("expected owner robot ID resolved before insert")
	}
}

func TestReconcile_IdenticalObservationIgnored(t *testing.T) {
	svc, _, broadcaster := newReconcileFixture("Ripper")

	obs := pendingObservation()
	svc.Reconcile(t.Context(), []fight.Record{obs})

	summary := svc.Reconcile(t.Context(), []fight.Record{obs})
	if summary.Ignored != 1 || summary.Inserted != 0 || summary.Updated != 0 {
		t.Fatalf("expected identical rerun to be ignored, got %+v", summary)
	}
	if len(broadcaster.kinds) != 1 {
		t.Fatalf("expected no additional notifications, got %v", broadcaster.kinds)
	}
}

func TestReconcile_ScheduleDriftNotifiesUpdate(t *testing.T) {
	svc, fights, broadcaster := newReconcileFixture("Ripper")
	svc.Reconcile(t.Context(), []fight.Record{pendingObservation()})

	moved := pendingObservation()
	cage := 5
	moved.Cage = &cage
	moved.FightTime = "16:00"

	summary := svc.Reconcile(t.Context(), []fight.Record{moved})
	if summary.Updated != 1 {
		t.Fatalf("expected one update, got %+v", summary)
	}
	if broadcaster.kinds[len(broadcaster.kinds)-1] != NotifyUpdatedFight {
		t.Fatalf("expected updated-fight notification, got %v", broadcaster.kinds)
	}

	stored, _ := fights.ListAll(t.Context())
	if stored[0].FightTime != "16:00" || stored[0].Cage == nil || *stored[0].Cage != 5 {
		t.Fatalf("expected schedule fields rewritten, got %+v", stored[0])
	}
}

func TestReconcile_PendingToDecidedNotifiesResult(t *testing.T) {
	svc, _, broadcaster := newReconcileFixture("Ripper")
	svc.Reconcile(t.Context(), []fight.Record{pendingObservation()})

	decided := pendingObservation()
	decided.Outcome = fight.OutcomeWin
	decided.OutcomeType = fight.OutcomeTypeKO

	summary := svc.Reconcile(t.Context(), []fight.Record{decided})
	if summary.Updated != 1 || summary.Notified != 1 {
		t.Fatalf("expected one notified update, got %+v", summary)
	}
	if broadcaster.kinds[len(broadcaster.kinds)-1] != NotifyFightResult {
		t.Fatalf("expected fight-result notification, got %v", broadcaster.kinds)
	}
}

func TestReconcile_DecidedFlipIsCorrection(t *testing.T) {
	svc, fights, broadcaster := newReconcileFixture("Ripper")

	decided := pendingObservation()
	decided.Outcome = fight.OutcomeWin
	decided.OutcomeType = fight.OutcomeTypeKO
	svc.Reconcile(t.Context(), []fight.Record{decided})

	flipped := decided
	flipped.Outcome = fight.OutcomeLose

	summary := svc.Reconcile(t.Context(), []fight.Record{flipped})
	if summary.Updated != 1 {
		t.Fatalf("expected correction update, got %+v", summary)
	}
	// A flipped result is a correction notice, never a second result event.
	if broadcaster.kinds[len(broadcaster.kinds)-1] != NotifyUpdatedFight {
		t.Fatalf("expected updated-fight notification, got %v", broadcaster.kinds)
	}

	stored, _ := fights.ListAll(t.Context())
	if stored[0].Outcome != fight.OutcomeLose {
		t.Fatalf("expected outcome corrected, got %s", stored[0].Outcome)
	}

	rerun := svc.Reconcile(t.Context(), []fight.Record{flipped})
	if rerun.Ignored != 1 {
		t.Fatalf("expected corrected state to be stable, got %+v", rerun)
	}
}

func TestReconcile_UnknownOwnerSkippedOthersProcessed(t *testing.T) {
	svc, fights, _ := newReconcileFixture("Ripper")

	stray := pendingObservation()
	stray.OwnerRobotName = "Nobody"

	summary := svc.Reconcile(t.Context(), []fight.Record{stray, pendingObservation()})
	if summary.Skipped != 1 || summary.Inserted != 1 {
		t.Fatalf("expected skip to isolate one record, got %+v", summary)
	}

	stored, _ := fights.ListAll(t.Context())
	if len(stored) != 1 {
		t.Fatalf("expected one stored fight, got %d", len(stored))
	}
}

func TestReconcile_EmptyCompetitionBucketsAsUnspecified(t *testing.T) {
	svc, fights, _ := newReconcileFixture("Ripper")

	obs := pendingObservation()
	obs.Competition = ""
	svc.Reconcile(t.Context(), []fight.Record{obs})

	stored, _ := fights.ListAll(t.Context())
	if len(stored) != 1 || stored[0].Competition != fight.CompetitionUnspecified {
		t.Fatalf("expected unspecified competition bucket, got %+v", stored)
	}

	rerun := svc.Reconcile(t.Context(), []fight.Record{obs})
	if rerun.Ignored != 1 {
		t.Fatalf("expected rerun to match the stored identity, got %+v", rerun)
	}
}
