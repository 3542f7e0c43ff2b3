package repository

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"loadmap/internal/domain"
)

// MemoryPlansRepo in-process plan store for dev and tests
type MemoryPlansRepo struct {
	mu    sync.RWMutex
	plans map[string]domain.Plan
}

func NewMemoryPlansRepo() *MemoryPlansRepo {
	return &MemoryPlansRepo{plans: map[string]domain.Plan{}}
}

func (r *MemoryPlansRepo) CreatePlan(_ context.Context, plan domain.Plan) (*domain.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plans[plan.ID]; ok {
		return nil, ErrDuplicate
	}
	r.plans[plan.ID] = plan
	return &plan, nil
}

func (r *MemoryPlansRepo) GetPlan(_ context.Context, planID string) (*domain.Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.plans[planID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &p, nil
}

func (r *MemoryPlansRepo) ListPlans(_ context.Context) ([]domain.Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Plan, 0, len(r.plans))
	for _, p := range r.plans {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
