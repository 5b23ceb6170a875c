package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/resumeforge/forge/internal/db/models"
)

type JobServiceTestSuite struct {
	ServiceTestSuite
	service *JobService
}

func TestJobService(t *testing.T) {
	suite.Run(t, new(JobServiceTestSuite))
}

func (s *JobServiceTestSuite) SetupTest() {
	s.ServiceTestSuite.SetupTest()
	s.service = NewJobService(s.jobRepo)
}

func (s *JobServiceTestSuite) TestSubmit() {
	job, err := s.service.Submit(s.ctx, "https://x.test/job", testDescription)
	s.NoError(err)
	s.Len(job.UID, 36)
	s.Equal(models.JobStatusPending, job.Status)
	s.Empty(job.ArtifactURL)
	s.Empty(job.ErrorMessage)

	stored, err := s.jobRepo.GetByUID(s.ctx, job.UID)
	s.NoError(err)
	s.Equal(models.JobStatusPending, stored.Status)
}

func (s *JobServiceTestSuite) TestSubmitMissingFields() {
	_, err := s.service.Submit(s.ctx, "", testDescription)
	s.ErrorIs(err, ErrValidation)

	_, err = s.service.Submit(s.ctx, "https://x.test/job", "")
	s.ErrorIs(err, ErrValidation)
}

func (s *JobServiceTestSuite) TestSubmitShortDescription() {
	_, err := s.service.Submit(s.ctx, "https://x.test/job", strings.Repeat("a", MinDescriptionLength-1))
	s.ErrorIs(err, ErrValidation)

	// No record was created
	count, err := s.jobRepo.Count(s.ctx, models.JobStatusUnknown)
	s.NoError(err)
	s.Zero(count)
}

func (s *JobServiceTestSuite) TestSubmitNotifies() {
	notified := 0
	s.service.SetNotify(func() { notified++ })

	_, err := s.service.Submit(s.ctx, "https://x.test/job", testDescription)
	s.NoError(err)
	s.Equal(1, notified)

	// Rejected submissions never notify
	_, err = s.service.Submit(s.ctx, "https://x.test/job", "too short")
	s.Error(err)
	s.Equal(1, notified)
}

func (s *JobServiceTestSuite) TestGetAndList() {
	job, err := s.service.Submit(s.ctx, "https://x.test/job", testDescription)
	s.NoError(err)

	found, err := s.service.Get(s.ctx, job.UID)
	s.NoError(err)
	s.Equal(job.ID, found.ID)

	jobs, err := s.service.List(s.ctx, models.JobStatusPending, &models.ListOptions{})
	s.NoError(err)
	s.Len(jobs, 1)
}
