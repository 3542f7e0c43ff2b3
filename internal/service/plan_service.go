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

	"go.uber.org/zap"
)

// PlanService plan CRUD
type PlanService struct {
	plans  repository.PlansRepo
	logger *zap.Logger
}

func NewPlanService(plans repository.PlansRepo, logger *zap.Logger) *PlanService {
	return &PlanService{plans: plans, logger: logger}
}

// CreatePlanRequest POST /plans body
type CreatePlanRequest struct {
	Name   string  `json:"name"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Slug derives a plan id from its name: trimmed, lowercased, whitespace runs replaced by "-".
func Slug(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}

func (s *PlanService) CreatePlan(ctx context.Context, req CreatePlanRequest) (*domain.Plan, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("name", "is required")
	}
	if !positive(req.Width) {
		return nil, invalid("width", "must be > 0")
	}
	if !positive(req.Height) {
		return nil, invalid("height", "must be > 0")
	}

	plan := domain.Plan{ID: Slug(name), Name: name, Width: req.Width, Height: req.Height}
	created, err := s.plans.CreatePlan(ctx, plan)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, &ConflictError{Resource: "plan", ID: plan.ID}
		}
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}
	s.logger.Info("Plan created", zap.String("plan_id", created.ID))
	return created, nil
}

func (s *PlanService) GetPlan(ctx context.Context, planID string) (*domain.Plan, error) {
	p, err := s.plans.GetPlan(ctx, planID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Resource: "plan", ID: planID, Message: "Plan not found"}
		}
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return p, nil
}

func (s *PlanService) ListPlans(ctx context.Context) ([]domain.Plan, error) {
	plans, err := s.plans.ListPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	return plans, nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}
