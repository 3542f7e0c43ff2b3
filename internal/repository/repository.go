package repository

import (
	"context"
	"errors"

	"loadmap/internal/domain"
)

// ErrDuplicate a record with the same key already exists.
// Missing records are reported with sql.ErrNoRows.
var ErrDuplicate = errors.New("duplicate key")

// PlansRepo plan storage
type PlansRepo interface {
	CreatePlan(ctx context.Context, plan domain.Plan) (*domain.Plan, error)
	GetPlan(ctx context.Context, planID string) (*domain.Plan, error)
	ListPlans(ctx context.Context) ([]domain.Plan, error)
}

// RoomsRepo room record storage. ListRooms returns rooms in insertion order
// and an empty slice when the plan has none.
type RoomsRepo interface {
	ListRooms(ctx context.Context, planID string) ([]domain.Room, error)
	CreateRooms(ctx context.Context, planID string, rooms []domain.Room) error
}

// JobsRepo parse job status storage
type JobsRepo interface {
	SaveJob(ctx context.Context, job domain.Job) error
	GetJob(ctx context.Context, jobID string) (*domain.Job, error)
	ListJobs(ctx context.Context) ([]domain.Job, error)
}
