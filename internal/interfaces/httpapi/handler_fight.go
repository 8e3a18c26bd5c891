package httpapi

import (
	"net/http"
	"time"

	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/domain/fight"
	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/usecase"
)

type fightDTO struct {
	ID              int64     `json:"id"`
	OwnerRobotName  string    `json:"owner_robot_name"`
	OwnerRobotID    int64     `json:"owner_robot_id"`
	OpponentName    string    `json:"opponent_name"`
	Competition     string    `json:"competition"`
	Cage            *int      `json:"cage,omitempty"`
	FightTime       string    `json:"fight_time,omitempty"`
	DurationSeconds *int      `json:"duration_seconds,omitempty"`
	Outcome         string    `json:"outcome"`
	OutcomeType     string    `json:"outcome_type,omitempty"`
	LastUpdated     time.Time `json:"last_updated"`
}

type fightUpsertRequest struct {
	OwnerRobotName  string `json:"owner_robot_name" validate:"required,max=120"`
	OpponentName    string `json:"opponent_name" validate:"required,max=120"`
	Competition     string `json:"competition" validate:"omitempty,max=120"`
	Cage            *int   `json:"cage" validate:"omitempty,min=1"`
	FightTime       string `json:"fight_time" validate:"omitempty,max=16"`
	DurationSeconds *int   `json:"duration_seconds" validate:"omitempty,min=0"`
	Outcome         string `json:"outcome" validate:"omitempty,oneof=win lose undecided"`
	OutcomeType     string `json:"outcome_type" validate:"omitempty,max=60"`
}

func fightToDTO(rec fight.Record) fightDTO {
	return fightDTO{
		ID:              rec.ID,
		OwnerRobotName:  rec.OwnerRobotName,
		OwnerRobotID:    rec.OwnerRobotID,
		OpponentName:    rec.OpponentName,
		Competition:     rec.Competition,
		Cage:            rec.Cage,
		FightTime:       rec.FightTime,
		DurationSeconds: rec.DurationSeconds,
		Outcome:         string(rec.Outcome),
		OutcomeType:     rec.OutcomeType,
		LastUpdated:     rec.LastUpdated,
	}
}

func (r fightUpsertRequest) toInput() usecase.FightInput {
	return usecase.FightInput{
		OwnerRobotName:  r.OwnerRobotName,
		OpponentName:    r.OpponentName,
		Competition:     r.Competition,
		Cage:            r.Cage,
		FightTime:       r.FightTime,
		DurationSeconds: r.DurationSeconds,
		Outcome:         r.Outcome,
		OutcomeType:     r.OutcomeType,
	}
}

func (h *Handler) ListFights(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListFights")
	defer span.End()

	fights, err := h.fightService.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list fights failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]fightDTO, 0, len(fights))
	for _, rec := range fights {
		items = append(items, fightToDTO(rec))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetFight(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetFight")
	defer span.End()

	fightID, err := pathID(r, "fightID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rec, err := h.fightService.Get(ctx, fightID)
	if err != nil {
		h.logger.WarnContext(ctx, "get fight failed", "fight_id", fightID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, fightToDTO(rec))
}

func (h *Handler) CreateFight(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateFight")
	defer span.End()

	var req fightUpsertRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	rec, err := h.fightService.Create(ctx, req.toInput())
	if err != nil {
		h.logger.WarnContext(ctx, "create fight failed",
			"owner", req.OwnerRobotName, "opponent", req.OpponentName, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, fightToDTO(rec))
}

func (h *Handler) UpdateFight(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateFight")
	defer span.End()

	fightID, err := pathID(r, "fightID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req fightUpsertRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	rec, err := h.fightService.Update(ctx, fightID, req.toInput())
	if err != nil {
		h.logger.WarnContext(ctx, "update fight failed", "fight_id", fightID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, fightToDTO(rec))
}

func (h *Handler) DeleteFight(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteFight")
	defer span.End()

	fightID, err := pathID(r, "fightID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.fightService.Delete(ctx, fightID); err != nil {
		h.logger.WarnContext(ctx, "delete fight failed", "fight_id", fightID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]int64{"deleted": fightID})
}
