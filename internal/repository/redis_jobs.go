package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"loadmap/internal/domain"
	"loadmap/internal/store"
)

const jobKeyPrefix = "job:"

// KVJobsRepo job status as JSON values in a KV store (redis in production).
// Entries expire after ttl.
type KVJobsRepo struct {
	kv  store.KV
	ttl time.Duration
}

func NewKVJobsRepo(kv store.KV, ttl time.Duration) *KVJobsRepo {
	return &KVJobsRepo{kv: kv, ttl: ttl}
}

func (r *KVJobsRepo) SaveJob(ctx context.Context, job domain.Job) error {
	if err := store.SetJSON(ctx, r.kv, jobKeyPrefix+job.JobID, job, r.ttl); err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}
	return nil
}

func (r *KVJobsRepo) GetJob(ctx context.Context, jobID string) (*domain.Job, error) {
	var j domain.Job
	if err := store.GetJSON(ctx, r.kv, jobKeyPrefix+jobID, &j); err != nil {
		if errors.Is(err, store.ErrMiss) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &j, nil
}

func (r *KVJobsRepo) ListJobs(ctx context.Context) ([]domain.Job, error) {
	keys, err := r.kv.ScanKeys(ctx, jobKeyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("failed to scan jobs: %w", err)
	}
	out := make([]domain.Job, 0, len(keys))
	for _, k := range keys {
		j, err := r.GetJob(ctx, strings.TrimPrefix(k, jobKeyPrefix))
		if err != nil {
			// expired between scan and get
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return nil, err
		}
		out = append(out, *j)
	}
	sortJobs(out)
	return out, nil
}
