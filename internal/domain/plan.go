package domain

import "time"

// Plan architectural drawing container (plans table)
type Plan struct {
	ID        string    `db:"plan_id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Width     float64   `db:"width" json:"width"`
	Height    float64   `db:"height" json:"height"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
