package httpapi

import (
	"net/http"
	"time"

	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/domain/schedule"
)

type scheduleDTO struct {
	JobName        string    `json:"job_name"`
	CronExpression string    `json:"cron_expression"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type scheduleSetRequest struct {
	CronExpression string `json:"cron_expression" validate:"required,max=120"`
}

type subscriberRequest struct {
	PushToken string `json:"push_token" validate:"required,max=200"`
}

type cycleSummaryDTO struct {
	StartedAt     time.Time `json:"started_at"`
	DurationMs    int64     `json:"duration_ms"`
	SourcesTotal  int       `json:"sources_total"`
	SourcesFailed int       `json:"sources_failed"`
	RawMatches    int       `json:"raw_matches"`
	Observed      int       `json:"observed"`
	Inserted      int       `json:"inserted"`
	Updated       int       `json:"updated"`
	Ignored       int       `json:"ignored"`
	Skipped       int       `json:"skipped"`
	Notified      int       `json:"notified"`
}

func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSchedule")
	defer span.End()

	item, err := h.scheduleService.Get(ctx, schedule.JobScraper)
	if err != nil {
		h.logger.WarnContext(ctx, "get schedule failed", "job", schedule.JobScraper, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, scheduleDTO{
		JobName:        item.JobName,
		CronExpression: item.CronExpression,
		UpdatedAt:      item.UpdatedAt,
	})
}

func (h *Handler) SetSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetSchedule")
	defer span.End()

	var req scheduleSetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.scheduleService.Set(ctx, schedule.JobScraper, req.CronExpression); err != nil {
		h.logger.WarnContext(ctx, "set schedule failed",
			"job", schedule.JobScraper, "cron", req.CronExpression, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]string{
		"job_name":        schedule.JobScraper,
		"cron_expression": req.CronExpression,
	})
}

func (h *Handler) RegisterSubscriber(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RegisterSubscriber")
	defer span.End()

	var req subscriberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.subscriberService.Register(ctx, req.PushToken); err != nil {
		h.logger.WarnContext(ctx, "register subscriber failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, map[string]string{"status": "registered"})
}

func (h *Handler) DeactivateSubscriber(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeactivateSubscriber")
	defer span.End()

	var req subscriberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.subscriberService.Deactivate(ctx, req.PushToken); err != nil {
		h.logger.WarnContext(ctx, "deactivate subscriber failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "deactivated"})
}

// RunScraper executes one sync cycle synchronously so the admin UI can show
// the outcome of the pass it just requested.
func (h *Handler) RunScraper(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunScraper")
	defer span.End()

	summary, err := h.syncRunner.RunCycle(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "manual sync cycle failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, cycleSummaryDTO{
		StartedAt:     summary.StartedAt,
		DurationMs:    summary.Duration.Milliseconds(),
		SourcesTotal:  summary.SourcesTotal,
		SourcesFailed: summary.SourcesFailed,
		RawMatches:    summary.RawMatches,
		Observed:      summary.Reconciliation.Observed,
		Inserted:      summary.Reconciliation.Inserted,
		Updated:       summary.Reconciliation.Updated,
		Ignored:       summary.Reconciliation.Ignored,
		Skipped:       summary.Reconciliation.Skipped,
		Notified:      summary.Reconciliation.Notified,
	})
}
