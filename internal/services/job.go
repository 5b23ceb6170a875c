// Package services implements the submission contract and the job worker.
package services

import (
	"context"
	"fmt"

	"github.com/resumeforge/forge/internal/db/models"
	"github.com/resumeforge/forge/internal/db/repos"
)

// MinDescriptionLength is the minimum accepted job description length.
// Enforced at submission only; the worker never re-validates it.
const MinDescriptionLength = 100

// JobService handles job submission and reads.
type JobService struct {
	repo   *repos.JobRepository
	notify func()
}

// NewJobService creates a new job service instance
func NewJobService(repo *repos.JobRepository) *JobService {
	return &JobService{repo: repo}
}

// SetNotify registers a callback invoked after each successful submission,
// used to wake the worker without waiting for its next poll.
func (s *JobService) SetNotify(notify func()) {
	s.notify = notify
}

// Submit validates the input and creates a pending job record. It has no
// side effect beyond the single create.
func (s *JobService) Submit(ctx context.Context, sourceURL, description string) (*models.Job, error) {
	if sourceURL == "" || description == "" {
		return nil, fmt.Errorf("%w: missing required fields: url, description", ErrValidation)
	}
	if len(description) < MinDescriptionLength {
		return nil, fmt.Errorf("%w: description too short, please capture more text", ErrValidation)
	}

	job := &models.Job{
		SourceURL:   sourceURL,
		Description: description,
		Status:      models.JobStatusPending,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	if s.notify != nil {
		s.notify()
	}
	return job, nil
}

// Get retrieves a job by its public identifier
func (s *JobService) Get(ctx context.Context, uid string) (*models.Job, error) {
	return s.repo.GetByUID(ctx, uid)
}

// List returns a page of jobs, optionally filtered by status
func (s *JobService) List(ctx context.Context, status models.JobStatus, opts *models.ListOptions) ([]models.Job, error) {
	if opts.Limit <= 0 || opts.Limit > models.DefaultLimit {
		opts.Limit = models.DefaultLimit
	}
	return s.repo.List(ctx, status, opts)
}

// Count returns the number of jobs, optionally filtered by status
func (s *JobService) Count(ctx context.Context, status models.JobStatus) (int64, error) {
	return s.repo.Count(ctx, status)
}
