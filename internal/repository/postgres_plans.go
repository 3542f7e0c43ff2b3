package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"loadmap/internal/domain"

	"github.com/lib/pq"
)

// PostgresPlansRepo plans table on postgres
type PostgresPlansRepo struct {
	db *sql.DB
}

func NewPostgresPlansRepo(db *sql.DB) *PostgresPlansRepo {
	return &PostgresPlansRepo{db: db}
}

func (r *PostgresPlansRepo) CreatePlan(ctx context.Context, plan domain.Plan) (*domain.Plan, error) {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO plans (plan_id, name, width, height)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		plan.ID, plan.Name, plan.Width, plan.Height,
	).Scan(&plan.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to insert plan: %w", err)
	}
	return &plan, nil
}

func (r *PostgresPlansRepo) GetPlan(ctx context.Context, planID string) (*domain.Plan, error) {
	var p domain.Plan
	err := r.db.QueryRowContext(ctx,
		`SELECT plan_id, name, width, height, created_at FROM plans WHERE plan_id = $1`,
		planID,
	).Scan(&p.ID, &p.Name, &p.Width, &p.Height, &p.CreatedAt)
	if err != nil {
		// sql.ErrNoRows passes through unwrapped
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return &p, nil
}

func (r *PostgresPlansRepo) ListPlans(ctx context.Context) ([]domain.Plan, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT plan_id, name, width, height, created_at FROM plans ORDER BY plan_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	out := []domain.Plan{}
	for rows.Next() {
		var p domain.Plan
		if err := rows.Scan(&p.ID, &p.Name, &p.Width, &p.Height, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
