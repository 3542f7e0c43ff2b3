package domain

// Room raw room record as produced by a label extractor (rooms table).
// Category and load are never stored; they are derived per request.
type Room struct {
	ID         string  `db:"room_id" json:"id"`
	PlanID     string  `db:"plan_id" json:"plan_id"`
	RawLabel   string  `db:"raw_label" json:"raw_label"`
	Confidence float64 `db:"confidence" json:"confidence"`
}
