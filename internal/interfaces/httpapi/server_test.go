package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"

	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/domain/robot"
	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/infrastructure/repository/memory"
	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/usecase"
)

type stubSyncRunner struct {
	summary usecase.CycleSummary
	err     error
	calls   int
}

func (s *stubSyncRunner) RunCycle(context.Context) (usecase.CycleSummary, error) {
	s.calls++
	return s.summary, s.err
}

const testAdminToken = "test-admin-token"

func newTestRouter(t *testing.T, runner *stubSyncRunner) http.Handler {
	t.Helper()

	fights := memory.NewFightRepository()
	robots := memory.NewRobotRepository([]robot.Robot{{Name: "Ripper", WeightClass: "3lb"}})

	handler := NewHandler(
		usecase.NewFightAdminService(fights, robots),
		usecase.NewRobotService(robots),
		usecase.NewScheduleService(memory.NewScheduleRepository()),
		usecase.NewSubscriberService(memory.NewSubscriberRepository()),
		runner,
		nil,
	)
	return NewRouter(handler, testAdminToken, nil)
}

func doRequest(t *testing.T, router http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) googleResponseEnvelope {
	t.Helper()

	var envelope googleResponseEnvelope
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response envelope: %v", err)
	}
	if envelope.APIVersion != googleAPIVersion {
		t.Fatalf("unexpected apiVersion %q", envelope.APIVersion)
	}
	return envelope
}

func TestRouter_Healthz(t *testing.T) {
	router := newTestRouter(t, &stubSyncRunner{})

	rec := doRequest(t, router, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	decodeEnvelope(t, rec)
}

func TestRouter_FightCRUD(t *testing.T) {
	router := newTestRouter(t, &stubSyncRunner{})

	created := doRequest(t, router, http.MethodPost, "/v1/fights",
		`{"owner_robot_name":"Ripper","opponent_name":"Crusher","competition":"NHRL March 2026","cage":2,"fight_time":"14:30"}`,
		testAdminToken)
	if created.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", created.Code, created.Body.String())
	}

	listed := doRequest(t, router, http.MethodGet, "/v1/fights", "", "")
	if listed.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", listed.Code)
	}
	envelope := decodeEnvelope(t, listed)
	items, ok := envelope.Data.([]any)
	if !ok || len(items) != 1 {
		t.Fatalf("expected one fight in the list, got %#v", envelope.Data)
	}

	updated := doRequest(t, router, http.MethodPut, "/v1/fights/1",
		`{"owner_robot_name":"Ripper","opponent_name":"Crusher","competition":"NHRL March 2026","outcome":"win","outcome_type":"KO"}`,
		testAdminToken)
	if updated.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", updated.Code, updated.Body.String())
	}

	fetched := doRequest(t, router, http.MethodGet, "/v1/fights/1", "", "")
	if fetched.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", fetched.Code)
	}
	body := fetched.Body.String()
	if !strings.Contains(body, `"outcome":"win"`) {
		t.Fatalf("expected decided outcome in response, got %s", body)
	}

	deleted := doRequest(t, router, http.MethodDelete, "/v1/fights/1", "", testAdminToken)
	if deleted.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", deleted.Code)
	}

	missing := doRequest(t, router, http.MethodGet, "/v1/fights/1", "", "")
	if missing.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", missing.Code)
	}
}

func TestRouter_MutationsRequireToken(t *testing.T) {
	router := newTestRouter(t, &stubSyncRunner{})

	rec := doRequest(t, router, http.MethodPost, "/v1/fights",
		`{"owner_robot_name":"Ripper","opponent_name":"Crusher"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestRouter_ValidationRejectsBadOutcome(t *testing.T) {
	router := newTestRouter(t, &stubSyncRunner{})

	rec := doRequest(t, router, http.MethodPost, "/v1/fights",
		`{"owner_robot_name":"Ripper","opponent_name":"Crusher","outcome":"draw"}`,
		testAdminToken)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid outcome, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_UnknownJSONFieldRejected(t *testing.T) {
	router := newTestRouter(t, &stubSyncRunner{})

	rec := doRequest(t, router, http.MethodPost, "/v1/fights",
		`{"owner_robot_name":"Ripper","opponent_name":"Crusher","surprise":true}`,
		testAdminToken)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", rec.Code)
	}
}

func TestRouter_ScheduleRoundTrip(t *testing.T) {
	router := newTestRouter(t, &stubSyncRunner{})

	missing := doRequest(t, router, http.MethodGet, "/v1/schedule", "", "")
	if missing.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before a schedule exists, got %d", missing.Code)
	}

	set := doRequest(t, router, http.MethodPut, "/v1/schedule",
		`{"cron_expression":"*/10 * * * *"}`, testAdminToken)
	if set.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", set.Code, set.Body.String())
	}

	invalid := doRequest(t, router, http.MethodPut, "/v1/schedule",
		`{"cron_expression":"every tuesday"}`, testAdminToken)
	if invalid.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad cron, got %d", invalid.Code)
	}

	got := doRequest(t, router, http.MethodGet, "/v1/schedule", "", "")
	if got.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", got.Code)
	}
	if !strings.Contains(got.Body.String(), `*/10 * * * *`) {
		t.Fatalf("expected stored expression, got %s", got.Body.String())
	}
}

func TestRouter_SubscriberLifecycle(t *testing.T) {
	router := newTestRouter(t, &stubSyncRunner{})

	registered := doRequest(t, router, http.MethodPost, "/v1/subscribers",
		`{"push_token":"ExponentPushToken[abc]"}`, "")
	if registered.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", registered.Code, registered.Body.String())
	}

	deactivated := doRequest(t, router, http.MethodDelete, "/v1/subscribers",
		`{"push_token":"ExponentPushToken[abc]"}`, "")
	if deactivated.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", deactivated.Code, deactivated.Body.String())
	}

	unknown := doRequest(t, router, http.MethodDelete, "/v1/subscribers",
		`{"push_token":"ExponentPushToken[nope]"}`, "")
	if unknown.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown token, got %d", unknown.Code)
	}
}

func TestRouter_RunScraper(t *testing.T) {
	runner := &stubSyncRunner{summary: usecase.CycleSummary{SourcesTotal: 2}}
	router := newTestRouter(t, runner)

	rec := doRequest(t, router, http.MethodPost, "/v1/scraper/run", "", testAdminToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if runner.calls != 1 {
		t.Fatalf("expected one cycle run, got %d", runner.calls)
	}
	if !strings.Contains(rec.Body.String(), `"sources_total":2`) {
		t.Fatalf("expected summary in response, got %s", rec.Body.String())
	}
}

func TestRouter_RobotFights(t *testing.T) {
	router := newTestRouter(t, &stubSyncRunner{})

	created := doRequest(t, router, http.MethodPost, "/v1/fights",
		`{"owner_robot_name":"Ripper","opponent_name":"Crusher"}`, testAdminToken)
	if created.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", created.Code, created.Body.String())
	}

	listed := doRequest(t, router, http.MethodGet, "/v1/robots/1/fights", "", "")
	if listed.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", listed.Code, listed.Body.String())
	}
	envelope := decodeEnvelope(t, listed)
	items, ok := envelope.Data.([]any)
	if !ok || len(items) != 1 {
		t.Fatalf("expected one fight for the robot, got %#v", envelope.Data)
	}

	missing := doRequest(t, router, http.MethodGet, "/v1/robots/99/fights", "", "")
	if missing.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown robot, got %d", missing.Code)
	}
}
