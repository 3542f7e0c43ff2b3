package service

import (
	"loadmap/internal/domain"
	"loadmap/internal/rules"
)

// ReviewConfidenceThreshold rooms extracted below this confidence always need review.
const ReviewConfidenceThreshold = 0.90

// RoomView a room record plus its derived classification. Never persisted.
type RoomView struct {
	ID          string          `json:"id"`
	PlanID      string          `json:"plan_id"`
	RawLabel    string          `json:"raw_label"`
	Category    *string         `json:"category"`
	Load        *rules.LoadRule `json:"load"`
	Confidence  float64         `json:"confidence"`
	NeedsReview bool            `json:"needs_review"`
}

// Enrich classifies room against t.
// NeedsReview holds iff there is no load rule or confidence is below the threshold.
func Enrich(room domain.Room, t *rules.Table) RoomView {
	c := rules.Classify(t, room.RawLabel)
	return RoomView{
		ID:          room.ID,
		PlanID:      room.PlanID,
		RawLabel:    room.RawLabel,
		Category:    c.Category,
		Load:        c.Load,
		Confidence:  room.Confidence,
		NeedsReview: c.Load == nil || room.Confidence < ReviewConfidenceThreshold,
	}
}

// EnrichAll enriches rooms in order against a single table.
func EnrichAll(rooms []domain.Room, t *rules.Table) []RoomView {
	out := make([]RoomView, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, Enrich(r, t))
	}
	return out
}
