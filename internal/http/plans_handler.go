package httpapi

import (
	"fmt"
	"net/http"

	"loadmap/internal/service"

	"go.uber.org/zap"
)

// PlansHandler /plans, /plans/{plan_id}, /plans/{plan_id}/rooms and its export
type PlansHandler struct {
	plans  *service.PlanService
	rooms  *service.RoomService
	logger *zap.Logger
}

func NewPlansHandler(plans *service.PlanService, rooms *service.RoomService, logger *zap.Logger) *PlansHandler {
	return &PlansHandler{plans: plans, rooms: rooms, logger: logger}
}

func (h *PlansHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := subPath(r.URL.Path, "/plans")
	switch {
	case len(parts) == 0 && r.Method == http.MethodGet:
		h.ListPlans(w, r)
	case len(parts) == 0 && r.Method == http.MethodPost:
		h.CreatePlan(w, r)
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.GetPlan(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "rooms" && r.Method == http.MethodGet:
		h.ListRooms(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "rooms" && r.Method == http.MethodPost:
		h.CreateRooms(w, r, parts[0])
	case len(parts) == 3 && parts[1] == "rooms" && parts[2] == "export" && r.Method == http.MethodGet:
		h.ExportRooms(w, r, parts[0])
	case len(parts) <= 1, len(parts) == 2 && parts[1] == "rooms", len(parts) == 3 && parts[1] == "rooms" && parts[2] == "export":
		writeMethodNotAllowed(w)
	default:
		writeNotFound(w)
	}
}

// ListPlans GET /plans
func (h *PlansHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.plans.ListPlans(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, "ListPlans", err)
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

// CreatePlan POST /plans
func (h *PlansHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req service.CreatePlanRequest
	if err := readBodyJSON(r, maxJSONBody, &req); err != nil {
		writeServiceError(w, h.logger, "CreatePlan", err)
		return
	}
	plan, err := h.plans.CreatePlan(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, "CreatePlan", err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

// GetPlan GET /plans/{plan_id}
func (h *PlansHandler) GetPlan(w http.ResponseWriter, r *http.Request, planID string) {
	plan, err := h.plans.GetPlan(r.Context(), planID)
	if err != nil {
		writeServiceError(w, h.logger, "GetPlan", err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// ListRooms GET /plans/{plan_id}/rooms
func (h *PlansHandler) ListRooms(w http.ResponseWriter, r *http.Request, planID string) {
	p, err := parseRoomQuery(r.URL.Query())
	if err != nil {
		writeServiceError(w, h.logger, "ListRooms", err)
		return
	}
	page, err := h.rooms.ListRooms(r.Context(), planID, p)
	if err != nil {
		writeServiceError(w, h.logger, "ListRooms", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

type createRoomsRequest struct {
	Rooms []service.NewRoom `json:"rooms"`
}

// CreateRooms POST /plans/{plan_id}/rooms
func (h *PlansHandler) CreateRooms(w http.ResponseWriter, r *http.Request, planID string) {
	var req createRoomsRequest
	if err := readBodyJSON(r, maxJSONBody, &req); err != nil {
		writeServiceError(w, h.logger, "CreateRooms", err)
		return
	}
	rooms, err := h.rooms.CreateRooms(r.Context(), planID, req.Rooms)
	if err != nil {
		writeServiceError(w, h.logger, "CreateRooms", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"items": rooms})
}

// ExportRooms GET /plans/{plan_id}/rooms/export
// Same filters and ordering as ListRooms, every matching row, as XLSX.
func (h *PlansHandler) ExportRooms(w http.ResponseWriter, r *http.Request, planID string) {
	p, err := parseRoomQuery(r.URL.Query())
	if err != nil {
		writeServiceError(w, h.logger, "ExportRooms", err)
		return
	}
	sel, err := h.rooms.SelectRooms(r.Context(), planID, p)
	if err != nil {
		writeServiceError(w, h.logger, "ExportRooms", err)
		return
	}
	data, err := GenerateRoomsExport(planID, sel)
	if err != nil {
		writeServiceError(w, h.logger, "ExportRooms", err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", planID+"-rooms.xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
