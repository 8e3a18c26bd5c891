package brettzone

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/platform/resilience"
)

const matchesPayload = `[
  {
    "bot1_name": "Ripper",
    "bot2_name": "Crusher",
    "bot1_win": 1,
    "bot2_win": 0,
    "match_complete": 1,
    "win_method": "KO",
    "cage_name": "Cage 3",
    "match_time": 1767290700,
    "match_length": 95
  },
  {
    "bot1_name": "Hammer Time",
    "bot2_name": "Spin Cycle",
    "bot1_win": 0,
    "bot2_win": 0,
    "match_complete": 0,
    "cage_name": "Cage 1",
    "match_time": 0
  },
  {
    "bot1_name": "",
    "bot2_name": "Ghost"
  }
]`

func newTestClient(t *testing.T, handler http.Handler, retries int) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(ClientConfig{
		BaseURL:      server.URL,
		TournamentID: "nhrl-march-2026",
		MaxRetries:   retries,
	})
}

func TestFetchMatches_MapsEntries(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/getNewMatches.php" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("tournamentID"); got != "nhrl-march-2026" {
			t.Errorf("unexpected tournament id %q", got)
		}
		_, _ = w.Write([]byte(matchesPayload))
	}), 0)

	matches, err := client.FetchMatches(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected malformed entry dropped, got %d matches", len(matches))
	}

	decided := matches[0]
	if decided.EntrantA != "Ripper" || decided.EntrantB != "Crusher" {
		t.Fatalf("unexpected entrants %q vs %q", decided.EntrantA, decided.EntrantB)
	}
	if decided.WinFlagA == nil || !*decided.WinFlagA || decided.WinFlagB == nil || *decided.WinFlagB {
		t.Fatalf("unexpected win flags %v / %v", decided.WinFlagA, decided.WinFlagB)
	}
	if decided.Played == nil || !*decided.Played {
		t.Fatal("expected played marker set")
	}
	if decided.OutcomeNote != "KO" || decided.CageLabel != "Cage 3" {
		t.Fatalf("unexpected annotations %q / %q", decided.OutcomeNote, decided.CageLabel)
	}
	if decided.Epoch != 1767290700 || decided.DurationSeconds == nil || *decided.DurationSeconds != 95 {
		t.Fatalf("unexpected timing fields %d / %v", decided.Epoch, decided.DurationSeconds)
	}
	if decided.Competition != "nhrl-march-2026" || decided.Source != SourceName {
		t.Fatalf("unexpected attribution %q / %q", decided.Competition, decided.Source)
	}

	pending := matches[1]
	if pending.Played == nil || *pending.Played {
		t.Fatal("expected pending match not played")
	}
	if pending.WinFlagA == nil || *pending.WinFlagA || pending.WinFlagB == nil || *pending.WinFlagB {
		t.Fatalf("expected both win flags false, got %v / %v", pending.WinFlagA, pending.WinFlagB)
	}
}

func TestFetchMatches_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}), 2)

	matches, err := client.FetchMatches(t.Context())
	if err != nil {
		t.Fatalf("expected retry to recover: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("expected empty list, got %d", len(matches))
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("expected 2 requests, got %d", got)
	}
}

func TestFetchMatches_NonRetryableStatusFailsFast(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}), 3)

	if _, err := client.FetchMatches(t.Context()); err == nil {
		t.Fatal("expected error on 404")
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected no retries on a 404, got %d requests", got)
	}
}

func TestFetchMatches_RequiresTournamentID(t *testing.T) {
	t.Parallel()

	client := NewClient(ClientConfig{BaseURL: "http://127.0.0.1:1"})
	if _, err := client.FetchMatches(t.Context()); err == nil {
		t.Fatal("expected error without a tournament id")
	}
}

func TestFetchMatches_OpenBreakerRejects(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		BaseURL:      server.URL,
		TournamentID: "nhrl-march-2026",
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})

	if _, err := client.FetchMatches(t.Context()); err == nil {
		t.Fatal("expected first call to fail")
	}
	before := calls.Load()

	if _, err := client.FetchMatches(t.Context()); err == nil {
		t.Fatal("expected open breaker to reject")
	}
	if calls.Load() != before {
		t.Fatal("expected rejected call to skip the network")
	}
}
