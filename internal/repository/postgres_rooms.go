package repository

import (
	"context"
	"database/sql"
	"fmt"

	"loadmap/internal/domain"
)

// PostgresRoomsRepo rooms table on postgres; seq keeps insertion order.
type PostgresRoomsRepo struct {
	db *sql.DB
}

func NewPostgresRoomsRepo(db *sql.DB) *PostgresRoomsRepo {
	return &PostgresRoomsRepo{db: db}
}

func (r *PostgresRoomsRepo) ListRooms(ctx context.Context, planID string) ([]domain.Room, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT room_id, plan_id, raw_label, confidence
		 FROM rooms
		 WHERE plan_id = $1
		 ORDER BY seq`,
		planID,
	)
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

func (r *PostgresRoomsRepo) CreateRooms(ctx context.Context, planID string, rooms []domain.Room) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO rooms (room_id, plan_id, raw_label, confidence) VALUES ($1, $2, $3, $4)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, room := range rooms {
		if _, err := stmt.ExecContext(ctx, room.ID, planID, room.RawLabel, room.Confidence); err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("failed to insert room %s: %w", room.ID, err)
		}
	}
	return tx.Commit()
}
