package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"loadmap/internal/domain"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS plans (
		plan_id    TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		width      REAL NOT NULL CHECK (width > 0),
		height     REAL NOT NULL CHECK (height > 0),
		created_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS rooms (
		seq        INTEGER PRIMARY KEY AUTOINCREMENT,
		room_id    TEXT NOT NULL UNIQUE,
		plan_id    TEXT NOT NULL REFERENCES plans(plan_id) ON DELETE CASCADE,
		raw_label  TEXT NOT NULL,
		confidence REAL NOT NULL CHECK (confidence >= 0 AND confidence <= 1)
	)`,
	`CREATE INDEX IF NOT EXISTS rooms_plan_seq_idx ON rooms (plan_id, seq)`,
}

// SQLiteStore plans and rooms in a single sqlite file.
// created_at is stored as unix nanoseconds.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore applies the schema and returns the store.
func NewSQLiteStore(ctx context.Context, db *sql.DB) (*SQLiteStore, error) {
	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) CreatePlan(ctx context.Context, plan domain.Plan) (*domain.Plan, error) {
	plan.CreatedAt = s.now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO plans (plan_id, name, width, height, created_at) VALUES (?, ?, ?, ?, ?)`,
		plan.ID, plan.Name, plan.Width, plan.Height, plan.CreatedAt.UnixNano(),
	)
	if err != nil {
		if isSQLiteConstraint(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to insert plan: %w", err)
	}
	return &plan, nil
}

func (s *SQLiteStore) GetPlan(ctx context.Context, planID string) (*domain.Plan, error) {
	var (
		p  domain.Plan
		ts int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT plan_id, name, width, height, created_at FROM plans WHERE plan_id = ?`, planID,
	).Scan(&p.ID, &p.Name, &p.Width, &p.Height, &ts)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	p.CreatedAt = time.Unix(0, ts).UTC()
	return &p, nil
}

func (s *SQLiteStore) ListPlans(ctx context.Context) ([]domain.Plan, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT plan_id, name, width, height, created_at FROM plans ORDER BY plan_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	out := []domain.Plan{}
	for rows.Next() {
		var (
			p  domain.Plan
			ts int64
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Width, &p.Height, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		p.CreatedAt = time.Unix(0, ts).UTC()
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ListRooms(ctx context.Context, planID string) ([]domain.Room, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT room_id, plan_id, raw_label, confidence FROM rooms WHERE plan_id = ? ORDER BY seq`, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer rows.Close()

	out := []domain.Room{}
	for rows.Next() {
		var room domain.Room
		if err := rows.Scan(&room.ID, &room.PlanID, &room.RawLabel, &room.Confidence); err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		out = append(out, room)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CreateRooms(ctx context.Context, planID string, rooms []domain.Room) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, room := range rooms {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO rooms (room_id, plan_id, raw_label, confidence) VALUES (?, ?, ?, ?)`,
			room.ID, planID, room.RawLabel, room.Confidence,
		); err != nil {
			if isSQLiteConstraint(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("failed to insert room %s: %w", room.ID, err)
		}
	}
	return tx.Commit()
}

func isSQLiteConstraint(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "PRIMARY KEY")
}
