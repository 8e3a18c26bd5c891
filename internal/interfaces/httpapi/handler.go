package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/platform/logging"
	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/usecase"
)

// SyncRunner triggers one scrape-reconcile cycle on demand.
type SyncRunner interface {
	RunCycle(ctx context.Context) (usecase.CycleSummary, error)
}

type Handler struct {
	fightService      *usecase.FightAdminService
	robotService      *usecase.RobotService
	scheduleService   *usecase.ScheduleService
	subscriberService *usecase.SubscriberService
	syncRunner        SyncRunner
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(
	fightService *usecase.FightAdminService,
	robotService *usecase.RobotService,
	scheduleService *usecase.ScheduleService,
	subscriberService *usecase.SubscriberService,
	syncRunner SyncRunner,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		fightService:      fightService,
		robotService:      robotService,
		scheduleService:   scheduleService,
		subscriberService: subscriberService,
		syncRunner:        syncRunner,
		logger:            logger,
		validator:         validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func decodeJSON(r *http.Request, target any) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.PathValue(name))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", usecase.ErrInvalidInput, name, raw)
	}
	return id, nil
}
