package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	"loadmap/internal/domain"
	"loadmap/internal/repository"
	"loadmap/internal/rules"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TableSource yields the rule table active right now.
type TableSource interface {
	Table() *rules.Table
}

// EnrichRecorder observes every batch of freshly enriched views.
type EnrichRecorder interface {
	ObserveEnriched(views []RoomView)
}

// RoomService reads a plan's rooms through the enrich and query pipeline,
// and accepts new room records from extractors.
type RoomService struct {
	rooms    repository.RoomsRepo
	plans    repository.PlansRepo
	rules    TableSource
	recorder EnrichRecorder
	newID    func() string
	logger   *zap.Logger
}

func NewRoomService(rooms repository.RoomsRepo, plans repository.PlansRepo, rules TableSource, logger *zap.Logger) *RoomService {
	return &RoomService{
		rooms:  rooms,
		plans:  plans,
		rules:  rules,
		newID:  uuid.NewString,
		logger: logger,
	}
}

// SetRecorder installs an observer for enriched views (metrics).
func (s *RoomService) SetRecorder(r EnrichRecorder) { s.recorder = r }

// ListRooms GET /plans/{plan_id}/rooms
func (s *RoomService) ListRooms(ctx context.Context, planID string, p QueryParams) (*RoomPage, error) {
	views, err := s.enrichPlan(ctx, planID, p)
	if err != nil {
		return nil, err
	}
	page := Query(views, p)
	s.logger.Debug("Rooms queried",
		zap.String("plan_id", planID),
		zap.Int("total", page.Meta.Total),
		zap.Int("count", page.Meta.Count),
	)
	return &page, nil
}

// SelectRooms the filtered and sorted rooms without paging (export).
func (s *RoomService) SelectRooms(ctx context.Context, planID string, p QueryParams) (*Selection, error) {
	views, err := s.enrichPlan(ctx, planID, p)
	if err != nil {
		return nil, err
	}
	sel := Select(views, p)
	return &sel, nil
}

// enrichPlan validates p, loads the plan's rooms and enriches all of them
// against one table snapshot.
func (s *RoomService) enrichPlan(ctx context.Context, planID string, p QueryParams) ([]RoomView, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	rooms, err := s.rooms.ListRooms(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	if len(rooms) == 0 {
		return nil, &NotFoundError{Resource: "rooms", ID: planID, Message: "No rooms found for this plan"}
	}
	views := EnrichAll(rooms, s.rules.Table())
	if s.recorder != nil {
		s.recorder.ObserveEnriched(views)
	}
	return views, nil
}

// NewRoom an incoming room record; ID is assigned by the service.
type NewRoom struct {
	RawLabel   string  `json:"raw_label"`
	Confidence float64 `json:"confidence"`
}

// CreateRooms stores rooms for an existing plan, all or nothing.
func (s *RoomService) CreateRooms(ctx context.Context, planID string, in []NewRoom) ([]domain.Room, error) {
	if len(in) == 0 {
		return nil, invalid("rooms", "at least one room is required")
	}
	out := make([]domain.Room, 0, len(in))
	for i, r := range in {
		label := strings.TrimSpace(r.RawLabel)
		if label == "" {
			return nil, invalid(fmt.Sprintf("rooms[%d].raw_label", i), "is required")
		}
		if math.IsNaN(r.Confidence) || r.Confidence < 0 || r.Confidence > 1 {
			return nil, invalid(fmt.Sprintf("rooms[%d].confidence", i), "must be within [0, 1]")
		}
		out = append(out, domain.Room{ID: s.newID(), PlanID: planID, RawLabel: label, Confidence: r.Confidence})
	}

	if _, err := s.plans.GetPlan(ctx, planID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Resource: "plan", ID: planID, Message: "Plan not found"}
		}
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	if err := s.rooms.CreateRooms(ctx, planID, out); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, &ConflictError{Resource: "room", ID: planID}
		}
		return nil, fmt.Errorf("failed to create rooms: %w", err)
	}
	s.logger.Info("Rooms created", zap.String("plan_id", planID), zap.Int("count", len(out)))
	return out, nil
}
