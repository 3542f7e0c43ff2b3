package httpapi

import (
	"net/http"

	"loadmap/internal/service"

	"go.uber.org/zap"
)

// JobsHandler /jobs, /jobs/parse and /jobs/{job_id}
type JobsHandler struct {
	jobs   *service.JobService
	logger *zap.Logger
}

func NewJobsHandler(jobs *service.JobService, logger *zap.Logger) *JobsHandler {
	return &JobsHandler{jobs: jobs, logger: logger}
}

func (h *JobsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := subPath(r.URL.Path, "/jobs")
	switch {
	case len(parts) == 0 && r.Method == http.MethodGet:
		h.ListJobs(w, r)
	case len(parts) == 1 && parts[0] == "parse" && r.Method == http.MethodPost:
		h.StartParse(w, r)
	case len(parts) == 1 && parts[0] != "parse" && r.Method == http.MethodGet:
		h.GetJob(w, r, parts[0])
	case len(parts) <= 1:
		writeMethodNotAllowed(w)
	default:
		writeNotFound(w)
	}
}

// StartParse POST /jobs/parse?file_id=...&plan_id=...
func (h *JobsHandler) StartParse(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	job, err := h.jobs.StartParse(r.Context(), q.Get("file_id"), q.Get("plan_id"))
	if err != nil {
		writeServiceError(w, h.logger, "StartParse", err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"job_id": job.JobID, "status": job.Status})
}

// GetJob GET /jobs/{job_id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	job, err := h.jobs.GetJob(r.Context(), jobID)
	if err != nil {
		writeServiceError(w, h.logger, "GetJob", err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// ListJobs GET /jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.jobs.ListJobs(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, "ListJobs", err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}
