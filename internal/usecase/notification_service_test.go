package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/domain/fight"
	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/infrastructure/repository/memory"
)

type countingSender struct {
	mu       sync.Mutex
	sent     []string
	failWith map[string]error
}

func (s *countingSender) Send(_ context.Context, token, _, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, token)
	if err, ok := s.failWith[token]; ok {
		return err
	}
	return nil
}

type failingSubscriberRepo struct{}

func (failingSubscriberRepo) ListActiveTokens(context.Context) ([]string, error) {
	return nil, errors.New("store down")
}

func (failingSubscriberRepo) Register(context.Context, string) error   { return nil }
func (failingSubscriberRepo) Deactivate(context.Context, string) error { return nil }

func TestBroadcast_AttemptsEveryToken(t *testing.T) {
	subscribers := memory.NewSubscriberRepository()
	for _, token := range []string{"tok-a", "tok-b", "tok-c"} {
		if err := subscribers.Register(t.Context(), token); err != nil {
			t.Fatal(err)
		}
	}

	sender := &countingSender{failWith: map[string]error{"tok-b": errors.New("device gone")}}
	svc, err := NewNotificationService(subscribers, sender, 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer svc.Close()

	svc.Broadcast(t.Context(), NotifyNewFight, fight.Record{
		OwnerRobotName: "Ripper",
		OpponentName:   "Crusher",
	})

	if len(sender.sent) != 3 {
		t.Fatalf("expected all 3 tokens attempted despite one failure, got %d", len(sender.sent))
	}
}

func TestBroadcast_SkipsDeactivatedTokens(t *testing.T) {
	subscribers := memory.NewSubscriberRepository()
	if err := subscribers.Register(t.Context(), "tok-live"); err != nil {
		t.Fatal(err)
	}
	if err := subscribers.Register(t.Context(), "tok-dead"); err != nil {
		t.Fatal(err)
	}
	if err := subscribers.Deactivate(t.Context(), "tok-dead"); err != nil {
		t.Fatal(err)
	}

	sender := &countingSender{}
	svc, err := NewNotificationService(subscribers, sender, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer svc.Close()

	svc.Broadcast(t.Context(), NotifyFightResult, fight.Record{
		OwnerRobotName: "Ripper",
		OpponentName:   "Crusher",
		Outcome:        fight.OutcomeWin,
	})

	if len(sender.sent) != 1 || sender.sent[0] != "tok-live" {
		t.Fatalf("expected only the active token, got %v", sender.sent)
	}
}

func TestBroadcast_TokenListFailureDropsNotification(t *testing.T) {
	sender := &countingSender{}
	svc, err := NewNotificationService(failingSubscriberRepo{}, sender, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer svc.Close()

	svc.Broadcast(t.Context(), NotifyNewFight, fight.Record{
		OwnerRobotName: "Ripper",
		OpponentName:   "Crusher",
	})

	if len(sender.sent) != 0 {
		t.Fatalf("expected no sends when the token list is unavailable, got %v", sender.sent)
	}
}

func TestBuildPushMessage(t *testing.T) {
	t.Parallel()

	cage := 3
	cases := []struct {
		name  string
		kind  NotificationKind
		rec   fight.Record
		title string
		body  string
		ok    bool
	}{
		{
			name:  "new fight with schedule",
			kind:  NotifyNewFight,
			rec:   fight.Record{OwnerRobotName: "Ripper", OpponentName: "Crusher", FightTime: "14:30", Cage: &cage},
			title: "New Fight Scheduled",
			body:  "Ripper vs Crusher at 14:30 (Cage 3)",
			ok:    true,
		},
		{
			name:  "updated fight without schedule",
			kind:  NotifyUpdatedFight,
			rec:   fight.Record{OwnerRobotName: "Ripper", OpponentName: "Crusher"},
			title: "Fight Updated",
			body:  "Ripper vs Crusher",
			ok:    true,
		},
		{
			name:  "win result",
			kind:  NotifyFightResult,
			rec:   fight.Record{OwnerRobotName: "Ripper", OpponentName: "Crusher", Outcome: fight.OutcomeWin, OutcomeType: fight.OutcomeTypeKO},
			title: "Fight Result",
			body:  "Ripper beat Crusher by KO",
			ok:    true,
		},
		{
			name:  "loss without outcome type",
			kind:  NotifyFightResult,
			rec:   fight.Record{OwnerRobotName: "Ripper", OpponentName: "Crusher", Outcome: fight.OutcomeLose},
			title: "Fight Result",
			body:  "Ripper lost to Crusher",
			ok:    true,
		},
		{
			name: "unknown kind produces nothing",
			kind: NotifyNone,
			rec:  fight.Record{OwnerRobotName: "Ripper", OpponentName: "Crusher"},
			ok:   false,
		},
	}

	for _, tc := range cases {
		title, body, ok := buildPushMessage(tc.kind, tc.rec)
		if ok != tc.ok {
			t.Fatalf("%s: expected ok=%t, got %t", tc.name, tc.ok, ok)
		}
		if title != tc.title || body != tc.body {
			t.Fatalf("%s: expected %q / %q, got %q / %q", tc.name, tc.title, tc.body, title, body)
		}
	}
}
