package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/resumeforge/forge/config"
	"github.com/resumeforge/forge/internal/db/models"
	"github.com/resumeforge/forge/internal/db/repos"
)

const testDescription = "We are hiring a senior platform engineer to build and operate our cloud infrastructure, CI pipelines and developer tooling."

// fakeGenerator stands in for the content generation client
type fakeGenerator struct {
	source string
	err    error
	calls  int
}

func (f *fakeGenerator) TailorResume(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.source, f.err
}

// fakeConverter stands in for the document conversion client
type fakeConverter struct {
	url   string
	err   error
	calls int
}

func (f *fakeConverter) Convert(_ context.Context, _, _, _, _ string) (string, error) {
	f.calls++
	return f.url, f.err
}

// fakeStore stands in for the artifact store
type fakeStore struct {
	publicURL   string
	err         error
	calls       int
	key         string
	contentType string
}

func (f *fakeStore) PersistFromURL(_ context.Context, _, key, contentType string) (string, error) {
	f.calls++
	f.key = key
	f.contentType = contentType
	return f.publicURL, f.err
}

// ServiceTestSuite provides a sqlite-backed base for service tests
type ServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	ctx     context.Context
	jobRepo *repos.JobRepository

	generator *fakeGenerator
	converter *fakeConverter
	store     *fakeStore
	worker    *Worker
}

func (s *ServiceTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(s.T(), err, "Failed to create in-memory database")
	require.NoError(s.T(), db.AutoMigrate(&models.Job{}))

	s.db = db
	s.ctx = context.Background()
	s.jobRepo = repos.NewJobRepository(db)

	s.generator = &fakeGenerator{source: "\\documentclass{article}\\begin{document}tailored\\end{document}"}
	s.converter = &fakeConverter{url: "https://convert.example.com/tmp/artifact.pdf"}
	s.store = &fakeStore{publicURL: "https://bucket.example.com/resumes/job.pdf"}

	s.worker = NewWorker(s.jobRepo, s.generator, s.converter, s.store, config.Config{
		WorkerConcurrency: 1,
		JobTimeout:        5 * time.Second,
		PollInterval:      10 * time.Millisecond,
		StalePolicy:       config.StalePolicyManual,
		StaleAfter:        time.Hour,
	})
}

func (s *ServiceTestSuite) TearDownTest() {
	sqlDB, err := s.db.DB()
	if err == nil && sqlDB != nil {
		_ = sqlDB.Close()
	}
}

func (s *ServiceTestSuite) createPendingJob() *models.Job {
	job := &models.Job{
		SourceURL:   "https://jobs.example.com/posting/7",
		Description: testDescription,
		Status:      models.JobStatusPending,
	}
	s.Require().NoError(s.jobRepo.Create(s.ctx, job))
	return job
}
