package repository

import (
	"context"
	"database/sql"
	"fmt"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS plans (
		plan_id    TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		width      DOUBLE PRECISION NOT NULL CHECK (width > 0),
		height     DOUBLE PRECISION NOT NULL CHECK (height > 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS rooms (
		seq        BIGSERIAL PRIMARY KEY,
		room_id    TEXT NOT NULL UNIQUE,
		plan_id    TEXT NOT NULL REFERENCES plans(plan_id) ON DELETE CASCADE,
		raw_label  TEXT NOT NULL,
		confidence DOUBLE PRECISION NOT NULL CHECK (confidence >= 0 AND confidence <= 1)
	)`,
	`CREATE INDEX IF NOT EXISTS rooms_plan_seq_idx ON rooms (plan_id, seq)`,
}

// EnsurePostgresSchema creates the plans and rooms tables if missing.
func EnsurePostgresSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range postgresSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
