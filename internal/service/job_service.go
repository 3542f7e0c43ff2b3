package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"loadmap/internal/domain"
	"loadmap/internal/labels"
	"loadmap/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JobService runs label extraction over uploaded files in the background
// and records progress in the jobs repository.
type JobService struct {
	jobs   repository.JobsRepo
	files  *FileService
	plans  *PlanService
	rooms  *RoomService
	newID  func() string
	now    func() time.Time
	logger *zap.Logger

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewJobService(jobs repository.JobsRepo, files *FileService, plans *PlanService, rooms *RoomService, logger *zap.Logger) *JobService {
	ctx, cancel := context.WithCancel(context.Background())
	return &JobService{
		jobs:    jobs,
		files:   files,
		plans:   plans,
		rooms:   rooms,
		newID:   uuid.NewString,
		now:     time.Now,
		logger:  logger,
		baseCtx: ctx,
		cancel:  cancel,
	}
}

// StartParse queues a parse of fileID into planID and returns immediately.
func (s *JobService) StartParse(ctx context.Context, fileID, planID string) (*domain.Job, error) {
	if strings.TrimSpace(fileID) == "" {
		return nil, invalid("file_id", "is required")
	}
	if strings.TrimSpace(planID) == "" {
		return nil, invalid("plan_id", "is required")
	}
	if _, err := s.files.Resolve(ctx, fileID); err != nil {
		return nil, err
	}
	if _, err := s.plans.GetPlan(ctx, planID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	job := domain.Job{
		JobID:     s.newID(),
		FileID:    fileID,
		PlanID:    planID,
		Status:    domain.JobStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.jobs.SaveJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to save job: %w", err)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(job)
	}()
	s.logger.Info("Parse job queued", zap.String("job_id", job.JobID), zap.String("file_id", fileID), zap.String("plan_id", planID))
	return &job, nil
}

func (s *JobService) run(job domain.Job) {
	ctx := s.baseCtx
	s.update(ctx, &job, domain.JobStatusProcessing, 0.1)

	found, err := s.extract(ctx, &job)
	if err != nil {
		job.Error = err.Error()
		s.update(ctx, &job, domain.JobStatusFailed, job.Progress)
		s.logger.Warn("Parse job failed", zap.String("job_id", job.JobID), zap.Error(err))
		return
	}
	job.RoomsFound = found
	s.update(ctx, &job, domain.JobStatusDone, 1)
	s.logger.Info("Parse job done", zap.String("job_id", job.JobID), zap.Int("rooms_found", found))
}

func (s *JobService) extract(ctx context.Context, job *domain.Job) (int, error) {
	_, rc, err := s.files.Open(ctx, job.FileID)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	candidates, err := labels.Scan(rc)
	if err != nil {
		return 0, err
	}
	s.update(ctx, job, domain.JobStatusProcessing, 0.6)
	if len(candidates) == 0 {
		return 0, nil
	}

	in := make([]NewRoom, 0, len(candidates))
	for _, c := range candidates {
		in = append(in, NewRoom{RawLabel: c.Label, Confidence: c.Confidence})
	}
	created, err := s.rooms.CreateRooms(ctx, job.PlanID, in)
	if err != nil {
		return 0, err
	}
	return len(created), nil
}

// update persists a status change; a failed write is logged and the job carries on.
func (s *JobService) update(ctx context.Context, job *domain.Job, status domain.JobStatus, progress float64) {
	job.Status = status
	job.Progress = progress
	job.UpdatedAt = s.now().UTC()
	if err := s.jobs.SaveJob(ctx, *job); err != nil {
		s.logger.Error("Failed to save job status", zap.String("job_id", job.JobID), zap.Error(err))
	}
}

func (s *JobService) GetJob(ctx context.Context, jobID string) (*domain.Job, error) {
	j, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Resource: "job", ID: jobID, Message: "Job not found"}
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return j, nil
}

func (s *JobService) ListJobs(ctx context.Context) ([]domain.Job, error) {
	jobs, err := s.jobs.ListJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

// Wait blocks until every started job has finished.
func (s *JobService) Wait() { s.wg.Wait() }

// Close cancels running jobs and waits for them to exit.
func (s *JobService) Close() {
	s.cancel()
	s.wg.Wait()
}
