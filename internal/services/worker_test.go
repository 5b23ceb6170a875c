package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/resumeforge/forge/config"
	"github.com/resumeforge/forge/internal/conversion"
	"github.com/resumeforge/forge/internal/db/models"
)

type WorkerTestSuite struct {
	ServiceTestSuite
}

func TestWorker(t *testing.T) {
	suite.Run(t, new(WorkerTestSuite))
}

func (s *WorkerTestSuite) TestProcessSuccess() {
	job := s.createPendingJob()

	s.NoError(s.worker.Process(s.ctx, job.ID))

	updated, err := s.jobRepo.GetByID(s.ctx, job.ID)
	s.NoError(err)
	s.Equal(models.JobStatusDone, updated.Status)
	s.Equal(s.store.publicURL, updated.ArtifactURL)
	s.Empty(updated.ErrorMessage)
	s.NotNil(updated.CompletedAt)
	s.Nil(updated.FailedAt)

	s.Equal(1, s.generator.calls)
	s.Equal(1, s.converter.calls)
	s.Equal(1, s.store.calls)
	s.Equal("resumes/"+job.UID+".pdf", s.store.key)
	s.Equal("application/pdf", s.store.contentType)
}

func (s *WorkerTestSuite) TestProcessIsIdempotent() {
	job := s.createPendingJob()
	s.NoError(s.worker.Process(s.ctx, job.ID))

	// Redelivery of the trigger is absorbed by the status guard
	s.NoError(s.worker.Process(s.ctx, job.ID))

	updated, err := s.jobRepo.GetByID(s.ctx, job.ID)
	s.NoError(err)
	s.Equal(models.JobStatusDone, updated.Status)
	s.Equal(1, s.generator.calls)
	s.Equal(1, s.converter.calls)
	s.Equal(1, s.store.calls)
}

func (s *WorkerTestSuite) TestProcessSkipsClaimedRecord() {
	job := s.createPendingJob()
	claimed, err := s.jobRepo.Claim(s.ctx, job.ID)
	s.NoError(err)
	s.True(claimed)

	s.NoError(s.worker.Process(s.ctx, job.ID))

	updated, err := s.jobRepo.GetByID(s.ctx, job.ID)
	s.NoError(err)
	s.Equal(models.JobStatusProcessing, updated.Status)
	s.Zero(s.generator.calls)
	s.Zero(s.converter.calls)
	s.Zero(s.store.calls)
}

func (s *WorkerTestSuite) TestGenerationFailure() {
	s.generator.err = errors.New("upstream 500: model unavailable")
	job := s.createPendingJob()

	s.NoError(s.worker.Process(s.ctx, job.ID))

	updated, err := s.jobRepo.GetByID(s.ctx, job.ID)
	s.NoError(err)
	s.Equal(models.JobStatusError, updated.Status)
	s.Contains(updated.ErrorMessage, "generation failed")
	s.Contains(updated.ErrorMessage, "model unavailable")
	s.NotNil(updated.FailedAt)
	s.Empty(updated.ArtifactURL)

	// The pipeline stops at the failed step
	s.Zero(s.converter.calls)
	s.Zero(s.store.calls)
}

func (s *WorkerTestSuite) TestEmptyGeneration() {
	s.generator.source = ""
	job := s.createPendingJob()

	s.NoError(s.worker.Process(s.ctx, job.ID))

	updated, err := s.jobRepo.GetByID(s.ctx, job.ID)
	s.NoError(err)
	s.Equal(models.JobStatusError, updated.Status)
	s.NotEmpty(updated.ErrorMessage)
	s.Zero(s.converter.calls)
	s.Zero(s.store.calls)
}

func (s *WorkerTestSuite) TestConversionMissingExport() {
	s.converter.url = ""
	s.converter.err = conversion.ErrNoExportResult
	job := s.createPendingJob()

	s.NoError(s.worker.Process(s.ctx, job.ID))

	updated, err := s.jobRepo.GetByID(s.ctx, job.ID)
	s.NoError(err)
	s.Equal(models.JobStatusError, updated.Status)
	s.Contains(updated.ErrorMessage, "conversion failed")
	s.Contains(updated.ErrorMessage, "artifact")
	s.Zero(s.store.calls)
}

func (s *WorkerTestSuite) TestStorageFailure() {
	s.store.publicURL = ""
	s.store.err = errors.New("bucket write denied")
	job := s.createPendingJob()

	s.NoError(s.worker.Process(s.ctx, job.ID))

	updated, err := s.jobRepo.GetByID(s.ctx, job.ID)
	s.NoError(err)
	s.Equal(models.JobStatusError, updated.Status)
	s.Contains(updated.ErrorMessage, "storage failed")
	s.Empty(updated.ArtifactURL)
	s.Equal(1, s.generator.calls)
	s.Equal(1, s.converter.calls)
}

// cancellingGenerator cancels the dispatcher context mid-pipeline, the way
// a shutdown signal arrives while a claimed job is running.
type cancellingGenerator struct {
	cancel context.CancelFunc
	source string
}

func (g *cancellingGenerator) TailorResume(ctx context.Context, _ string) (string, error) {
	g.cancel()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return g.source, nil
}

func (s *WorkerTestSuite) TestProcessCompletesDuringShutdown() {
	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	s.worker.generator = &cancellingGenerator{
		cancel: cancel,
		source: "\\documentclass{article}\\begin{document}tailored\\end{document}",
	}
	job := s.createPendingJob()

	s.NoError(s.worker.Process(ctx, job.ID))

	// A claimed job runs to completion; shutdown never fails it
	updated, err := s.jobRepo.GetByID(s.ctx, job.ID)
	s.NoError(err)
	s.Equal(models.JobStatusDone, updated.Status)
	s.Empty(updated.ErrorMessage)
	s.Equal(1, s.converter.calls)
	s.Equal(1, s.store.calls)
}

func (s *WorkerTestSuite) TestSweepStaleManualKeepsRecord() {
	job := s.createPendingJob()
	claimed, err := s.jobRepo.Claim(s.ctx, job.ID)
	s.NoError(err)
	s.True(claimed)

	s.ageJob(job.ID, 2*time.Hour)
	s.worker.sweepStale(s.ctx)

	updated, err := s.jobRepo.GetByID(s.ctx, job.ID)
	s.NoError(err)
	s.Equal(models.JobStatusProcessing, updated.Status)
}

func (s *WorkerTestSuite) TestSweepStaleRequeue() {
	s.worker.stalePolicy = config.StalePolicyRequeue
	job := s.createPendingJob()
	claimed, err := s.jobRepo.Claim(s.ctx, job.ID)
	s.NoError(err)
	s.True(claimed)

	s.ageJob(job.ID, 2*time.Hour)
	s.worker.sweepStale(s.ctx)

	updated, err := s.jobRepo.GetByID(s.ctx, job.ID)
	s.NoError(err)
	s.Equal(models.JobStatusPending, updated.Status)
}

func (s *WorkerTestSuite) ageJob(id uint, age time.Duration) {
	err := s.db.Model(&models.Job{}).Where("id = ?", id).
		Update("updated_at", time.Now().Add(-age)).Error
	s.Require().NoError(err)
}
