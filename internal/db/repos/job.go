// Package repos provides data access for the persistent entities.
package repos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/resumeforge/forge/internal/db/models"
)

// ErrJobNotFound is returned when no job matches the requested identifier.
var ErrJobNotFound = errors.New("job not found")

// JobRepository provides access to job-related database operations
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new job repository instance
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create creates a new job in the database
func (r *JobRepository) Create(ctx context.Context, job *models.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// GetByID retrieves a job by its numeric primary key
func (r *JobRepository) GetByID(ctx context.Context, id uint) (*models.Job, error) {
	var job models.Job
	err := r.db.WithContext(ctx).Where(&models.Job{Model: gorm.Model{ID: id}}).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

// GetByUID retrieves a job by its public identifier
func (r *JobRepository) GetByUID(ctx context.Context, uid string) (*models.Job, error) {
	var job models.Job
	err := r.db.WithContext(ctx).Where(&models.Job{UID: uid}).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

// List returns a page of jobs, newest first.
// If status is unknown, jobs are returned regardless of their status.
func (r *JobRepository) List(ctx context.Context, status models.JobStatus, opts *models.ListOptions) ([]models.Job, error) {
	var jobs []models.Job
	qry := &models.Job{}
	if status != models.JobStatusUnknown {
		qry.Status = status
	}

	err := r.db.WithContext(ctx).Model(&models.Job{}).
		Where(qry).
		Limit(opts.Limit).Offset(opts.Offset).
		Order(models.JobCreatedAtField + " DESC").
		Find(&jobs).Error
	return jobs, err
}

// Count returns the number of jobs, optionally filtered by status
func (r *JobRepository) Count(ctx context.Context, status models.JobStatus) (int64, error) {
	var count int64
	qry := &models.Job{}
	if status != models.JobStatusUnknown {
		qry.Status = status
	}
	err := r.db.WithContext(ctx).Model(&models.Job{}).Where(qry).Count(&count).Error
	return count, err
}

// ListPending returns up to limit pending jobs, oldest first, for the
// worker dispatcher to fan out.
func (r *JobRepository) ListPending(ctx context.Context, limit int) ([]models.Job, error) {
	var jobs []models.Job
	err := r.db.WithContext(ctx).
		Where(&models.Job{Status: models.JobStatusPending}).
		Order(models.JobCreatedAtField + " ASC").
		Limit(limit).
		Find(&jobs).Error
	return jobs, err
}

// Claim transitions a job from pending to processing with an atomic
// conditional update. It returns false when the row was not in pending,
// meaning a concurrent invocation already claimed or finished it.
func (r *JobRepository) Claim(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ? AND status = ?", id, models.JobStatusPending).
		Update(models.JobStatusField, models.JobStatusProcessing)
	if res.Error != nil {
		return false, fmt.Errorf("failed to claim job: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// MarkDone finalizes a processing job with its artifact URL and completion
// timestamp. The status guard keeps terminal states immutable.
func (r *JobRepository) MarkDone(ctx context.Context, id uint, artifactURL string) error {
	res := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ? AND status = ?", id, models.JobStatusProcessing).
		Updates(map[string]interface{}{
			"status":       models.JobStatusDone,
			"artifact_url": artifactURL,
			"completed_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to mark job done: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("mark done: %w", ErrJobNotFound)
	}
	return nil
}

// MarkError records the failure message and timestamp on a processing job.
func (r *JobRepository) MarkError(ctx context.Context, id uint, errMsg string) error {
	res := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ? AND status = ?", id, models.JobStatusProcessing).
		Updates(map[string]interface{}{
			"status":        models.JobStatusError,
			"error_message": errMsg,
			"failed_at":     time.Now().UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to mark job errored: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("mark error: %w", ErrJobNotFound)
	}
	return nil
}

// ListStaleProcessing returns processing jobs whose last update is older
// than the cutoff. These are invocations killed mid-flight.
func (r *JobRepository) ListStaleProcessing(ctx context.Context, cutoff time.Time) ([]models.Job, error) {
	var jobs []models.Job
	err := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", models.JobStatusProcessing, cutoff).
		Find(&jobs).Error
	return jobs, err
}

// RequeueStale resets processing jobs older than the cutoff back to pending
// and reports how many rows were moved.
func (r *JobRepository) RequeueStale(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("status = ? AND updated_at < ?", models.JobStatusProcessing, cutoff).
		Update(models.JobStatusField, models.JobStatusPending)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to requeue stale jobs: %w", res.Error)
	}
	return res.RowsAffected, nil
}
