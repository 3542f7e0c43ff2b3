package repository

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"loadmap/internal/domain"
)

// MemoryJobsRepo in-process job status store
type MemoryJobsRepo struct {
	mu   sync.RWMutex
	jobs map[string]domain.Job
}

func NewMemoryJobsRepo() *MemoryJobsRepo {
	return &MemoryJobsRepo{jobs: map[string]domain.Job{}}
}

func (r *MemoryJobsRepo) SaveJob(_ context.Context, job domain.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.JobID] = job
	return nil
}

func (r *MemoryJobsRepo) GetJob(_ context.Context, jobID string) (*domain.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.jobs[jobID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &j, nil
}

func (r *MemoryJobsRepo) ListJobs(_ context.Context) ([]domain.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Job, 0, len(r.jobs))
	for _, j := range r.jobs {
		out = append(out, j)
	}
	sortJobs(out)
	return out, nil
}

func sortJobs(jobs []domain.Job) {
	sort.Slice(jobs, func(i, j int) bool {
		if !jobs[i].CreatedAt.Equal(jobs[j].CreatedAt) {
			return jobs[i].CreatedAt.Before(jobs[j].CreatedAt)
		}
		return jobs[i].JobID < jobs[j].JobID
	})
}
