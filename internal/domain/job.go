package domain

import "time"

// JobStatus parse job lifecycle
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusDone       JobStatus = "done"
	JobStatusFailed     JobStatus = "failed"
)

// IsTerminal reports whether the job will not change again.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusDone || s == JobStatusFailed
}

// Job label extraction job over an uploaded file
type Job struct {
	JobID      string    `json:"job_id"`
	FileID     string    `json:"file_id"`
	PlanID     string    `json:"plan_id"`
	Status     JobStatus `json:"status"`
	Progress   float64   `json:"progress"`
	RoomsFound int       `json:"rooms_found"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
