package httpapi

import (
	"net/http"

	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/domain/robot"
	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/usecase"
)

type robotDTO struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	BuilderID   int64    `json:"builder_id,omitempty"`
	WeightClass string   `json:"weight_class,omitempty"`
	Weapon      string   `json:"weapon,omitempty"`
	Drive       string   `json:"drive,omitempty"`
	TopSpeed    *float64 `json:"top_speed,omitempty"`
	WeaponSpeed *float64 `json:"weapon_speed,omitempty"`
}

type robotUpsertRequest struct {
	Name        string   `json:"name" validate:"required,max=120"`
	BuilderID   int64    `json:"builder_id" validate:"omitempty,min=0"`
	WeightClass string   `json:"weight_class" validate:"omitempty,oneof=3lb 12lb"`
	Weapon      string   `json:"weapon" validate:"omitempty,max=120"`
	Drive       string   `json:"drive" validate:"omitempty,max=120"`
	TopSpeed    *float64 `json:"top_speed" validate:"omitempty,gt=0"`
	WeaponSpeed *float64 `json:"weapon_speed" validate:"omitempty,gt=0"`
}

func robotToDTO(item robot.Robot) robotDTO {
	return robotDTO{
		ID:          item.ID,
		Name:        item.Name,
		BuilderID:   item.BuilderID,
		WeightClass: item.WeightClass,
		Weapon:      item.Weapon,
		Drive:       item.Drive,
		TopSpeed:    item.TopSpeed,
		WeaponSpeed: item.WeaponSpeed,
	}
}

func (r robotUpsertRequest) toInput() usecase.RobotInput {
	return usecase.RobotInput{
		Name:        r.Name,
		BuilderID:   r.BuilderID,
		WeightClass: r.WeightClass,
		Weapon:      r.Weapon,
		Drive:       r.Drive,
		TopSpeed:    r.TopSpeed,
		WeaponSpeed: r.WeaponSpeed,
	}
}

func (h *Handler) ListRobots(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListRobots")
	defer span.End()

	robots, err := h.robotService.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list robots failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]robotDTO, 0, len(robots))
	for _, item := range robots {
		items = append(items, robotToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetRobot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetRobot")
	defer span.End()

	robotID, err := pathID(r, "robotID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.robotService.Get(ctx, robotID)
	if err != nil {
		h.logger.WarnContext(ctx, "get robot failed", "robot_id", robotID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, robotToDTO(item))
}

func (h *Handler) ListFightsByRobot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListFightsByRobot")
	defer span.End()

	robotID, err := pathID(r, "robotID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	fights, err := h.fightService.ListByRobot(ctx, robotID)
	if err != nil {
		h.logger.WarnContext(ctx, "list fights by robot failed", "robot_id", robotID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]fightDTO, 0, len(fights))
	for _, rec := range fights {
		items = append(items, fightToDTO(rec))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) CreateRobot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateRobot")
	defer span.End()

	var req robotUpsertRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.robotService.Create(ctx, req.toInput())
	if err != nil {
		h.logger.WarnContext(ctx, "create robot failed", "name", req.Name, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, robotToDTO(item))
}

func (h *Handler) UpdateRobot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateRobot")
	defer span.End()

	robotID, err := pathID(r, "robotID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req robotUpsertRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.robotService.Update(ctx, robotID, req.toInput())
	if err != nil {
		h.logger.WarnContext(ctx, "update robot failed", "robot_id", robotID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, robotToDTO(item))
}

func (h *Handler) DeleteRobot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteRobot")
	defer span.End()

	robotID, err := pathID(r, "robotID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.robotService.Delete(ctx, robotID); err != nil {
		h.logger.WarnContext(ctx, "delete robot failed", "robot_id", robotID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]int64{"deleted": robotID})
}
