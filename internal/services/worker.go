package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/resumeforge/forge/config"
	"github.com/resumeforge/forge/internal/db/models"
	"github.com/resumeforge/forge/internal/db/repos"
	"github.com/resumeforge/forge/internal/logger"
	"github.com/resumeforge/forge/internal/storage"
)

const (
	// sourceFilename is the declared name of the generated input document
	sourceFilename = "resume.tex"
	// inputFormat and outputFormat are the fixed conversion format pair
	inputFormat  = "tex"
	outputFormat = "pdf"
	// artifactContentType is the content type written with every artifact
	artifactContentType = "application/pdf"

	// terminalWriteTimeout bounds the Done/Error store write. It uses a
	// fresh context so an expired invocation can still record its outcome.
	terminalWriteTimeout = 10 * time.Second
)

// Generator produces tailored document source from a job description.
type Generator interface {
	TailorResume(ctx context.Context, description string) (string, error)
}

// Converter turns document source into an artifact and returns its
// transient download URL.
type Converter interface {
	Convert(ctx context.Context, source, filename, inputFormat, outputFormat string) (string, error)
}

// ArtifactStore persists a transient artifact durably and returns its
// public URL.
type ArtifactStore interface {
	PersistFromURL(ctx context.Context, srcURL, key, contentType string) (string, error)
}

// Worker drives pending jobs through the pipeline state machine:
// pending -> processing -> done|error. It is safe against redelivery; the
// status guard plus the conditional claim make duplicate invocations no-ops.
type Worker struct {
	repo      *repos.JobRepository
	generator Generator
	converter Converter
	store     ArtifactStore

	concurrency  int
	jobTimeout   time.Duration
	pollInterval time.Duration
	stalePolicy  config.StalePolicy
	staleAfter   time.Duration

	wake chan struct{}
}

// NewWorker creates a worker over the given collaborators.
func NewWorker(repo *repos.JobRepository, generator Generator, converter Converter, store ArtifactStore, cfg config.Config) *Worker {
	return &Worker{
		repo:         repo,
		generator:    generator,
		converter:    converter,
		store:        store,
		concurrency:  cfg.WorkerConcurrency,
		jobTimeout:   cfg.JobTimeout,
		pollInterval: cfg.PollInterval,
		stalePolicy:  cfg.StalePolicy,
		staleAfter:   cfg.StaleAfter,
		wake:         make(chan struct{}, 1),
	}
}

// Wake nudges the dispatcher to fetch pending jobs immediately. Non-blocking;
// coalesces with an already-pending nudge.
func (w *Worker) Wake() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Run launches the dispatcher loop. It fetches pending jobs and fans them
// out to bounded goroutines, one invocation per record. Run returns once
// ctx is cancelled and all in-flight jobs have finished.
func (w *Worker) Run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	logger.Info("Worker started")

	sem := make(chan struct{}, w.concurrency)
	var inflight sync.WaitGroup
	lastSweep := time.Now()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Worker received shutdown signal, waiting for in-flight jobs...")
			inflight.Wait()
			logger.Info("Worker stopped")
			return
		case <-w.wake:
		case <-time.After(w.pollInterval):
		}

		if time.Since(lastSweep) >= w.staleAfter/2 {
			w.sweepStale(ctx)
			lastSweep = time.Now()
		}

		jobs, err := w.repo.ListPending(ctx, w.concurrency)
		if err != nil {
			logger.Errorf("Worker error fetching pending jobs: %v", err)
			continue
		}

		for i := range jobs {
			job := jobs[i]
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				inflight.Wait()
				return
			}

			inflight.Add(1)
			go func() {
				defer inflight.Done()
				defer func() { <-sem }()
				if err := w.Process(ctx, job.ID); err != nil {
					logger.ErrorWithFields("Job processing failed", map[string]interface{}{
						"job_id": job.UID,
						"error":  err.Error(),
					})
				}
			}()
		}
	}
}

// Process runs one invocation of the state machine for a job. Redelivered
// or already-claimed records short-circuit without collaborator calls.
// A pipeline failure is recorded once on the record and is terminal; the
// returned error only reports store-level problems.
func (w *Worker) Process(ctx context.Context, id uint) error {
	job, err := w.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	// Idempotency guard: only pending records are processed
	if job.Status != models.JobStatusPending {
		logger.Debugf("Skipping job %s with status %s", job.UID, job.Status)
		return nil
	}

	claimed, err := w.repo.Claim(ctx, job.ID)
	if err != nil {
		return err
	}
	if !claimed {
		// Lost the race to a concurrent invocation
		logger.Debugf("Job %s already claimed", job.UID)
		return nil
	}

	logger.InfoWithFields("Processing job", map[string]interface{}{"job_id": job.UID})

	// Once claimed, the job runs to completion or to its own timeout. The
	// pipeline context is detached from the dispatcher context so a process
	// shutdown drains in-flight work instead of failing it.
	pipeCtx, cancel := context.WithTimeout(context.Background(), w.jobTimeout)
	defer cancel()

	artifactURL, err := w.runPipeline(pipeCtx, job)
	if err != nil {
		return w.fail(job, err)
	}

	if err := w.finalize(job.ID, artifactURL); err != nil {
		return err
	}

	logger.InfoWithFields("Job completed", map[string]interface{}{
		"job_id":       job.UID,
		"artifact_url": artifactURL,
	})
	return nil
}

// runPipeline executes the generate -> convert -> persist sequence. The
// steps are strictly sequential; each output feeds the next.
func (w *Worker) runPipeline(ctx context.Context, job *models.Job) (string, error) {
	source, err := w.generator.TailorResume(ctx, job.Description)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	if source == "" {
		return "", fmt.Errorf("%w: empty document source", ErrGeneration)
	}

	transientURL, err := w.converter.Convert(ctx, source, sourceFilename, inputFormat, outputFormat)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrConversion, err)
	}

	artifactURL, err := w.store.PersistFromURL(ctx, transientURL, storage.ArtifactKey(job.UID), artifactContentType)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return artifactURL, nil
}

// fail records the single failure path: status error plus the preserved
// message. A fresh context is used so a timed-out invocation can still
// write its terminal state.
func (w *Worker) fail(job *models.Job, cause error) error {
	ctx, cancel := context.WithTimeout(context.Background(), terminalWriteTimeout)
	defer cancel()

	logger.WarnWithFields("Job failed", map[string]interface{}{
		"job_id": job.UID,
		"error":  cause.Error(),
	})

	if err := w.repo.MarkError(ctx, job.ID, cause.Error()); err != nil {
		return fmt.Errorf("failed to record job failure: %w", err)
	}
	return nil
}

func (w *Worker) finalize(id uint, artifactURL string) error {
	ctx, cancel := context.WithTimeout(context.Background(), terminalWriteTimeout)
	defer cancel()
	return w.repo.MarkDone(ctx, id, artifactURL)
}

// sweepStale applies the configured policy to processing records whose
// invocation died without a terminal write.
func (w *Worker) sweepStale(ctx context.Context) {
	cutoff := time.Now().Add(-w.staleAfter)

	switch w.stalePolicy {
	case config.StalePolicyRequeue:
		n, err := w.repo.RequeueStale(ctx, cutoff)
		if err != nil {
			logger.Errorf("Worker stale sweep failed: %v", err)
			return
		}
		if n > 0 {
			logger.Infof("Requeued %d stale processing jobs", n)
		}
	default:
		jobs, err := w.repo.ListStaleProcessing(ctx, cutoff)
		if err != nil {
			logger.Errorf("Worker stale sweep failed: %v", err)
			return
		}
		for _, job := range jobs {
			logger.WarnWithFields("Job stuck in processing, manual intervention required", map[string]interface{}{
				"job_id":     job.UID,
				"updated_at": job.UpdatedAt,
			})
		}
	}
}
