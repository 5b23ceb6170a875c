// Package conversion submits document source to the conversion service and
// waits for the produced artifact. The service runs a small task graph per
// job (import, convert, export) and exposes a transient download URL once
// the export task finishes.
package conversion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	// DefaultRequestTimeout bounds a single HTTP call to the service
	DefaultRequestTimeout = 30 * time.Second
	// DefaultPollInterval is the delay between job status checks
	DefaultPollInterval = 2 * time.Second
	// DefaultWaitTimeout bounds the whole wait for a conversion job
	DefaultWaitTimeout = 180 * time.Second
)

// Task names within a conversion job
const (
	taskImport  = "import-source"
	taskConvert = "convert-document"
	taskExport  = "export-result"
)

// Conversion job states reported by the service
const (
	statusFinished = "finished"
	statusError    = "error"
)

var (
	// ErrAPIKeyNotSet is returned when the client is constructed without credentials
	ErrAPIKeyNotSet = errors.New("conversion API key not set")
	// ErrNoExportResult is returned when a finished job carries no artifact URL
	ErrNoExportResult = errors.New("conversion did not return an artifact URL")
)

// Options contains configuration options for the conversion client
type Options struct {
	// BaseURL is the base URL of the conversion service
	BaseURL string
	// APIKey is the bearer token for the service
	APIKey string
	// PollInterval is the delay between status checks while waiting
	PollInterval time.Duration
	// WaitTimeout bounds the wait for job completion
	WaitTimeout time.Duration
	// RequestTimeout bounds each HTTP call
	RequestTimeout time.Duration
}

// Client talks to the conversion service.
type Client struct {
	baseURL        string
	apiKey         string
	pollInterval   time.Duration
	waitTimeout    time.Duration
	requestTimeout time.Duration
}

// NewClient creates a conversion client with the given options.
func NewClient(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, ErrAPIKeyNotSet
	}
	if opts.BaseURL == "" {
		return nil, errors.New("conversion base URL not set")
	}
	if opts.PollInterval == 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.WaitTimeout == 0 {
		opts.WaitTimeout = DefaultWaitTimeout
	}
	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}

	return &Client{
		baseURL:        opts.BaseURL,
		apiKey:         opts.APIKey,
		pollInterval:   opts.PollInterval,
		waitTimeout:    opts.WaitTimeout,
		requestTimeout: opts.RequestTimeout,
	}, nil
}

// jobEnvelope is the service's response wrapper
type jobEnvelope struct {
	Data convertJob `json:"data"`
}

type convertJob struct {
	ID     string        `json:"id"`
	Status string        `json:"status"`
	Tasks  []convertTask `json:"tasks"`
}

type convertTask struct {
	Name      string     `json:"name"`
	Operation string     `json:"operation"`
	Status    string     `json:"status"`
	Message   string     `json:"message,omitempty"`
	Result    taskResult `json:"result"`
}

type taskResult struct {
	Files []exportFile `json:"files"`
}

type exportFile struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// createJobRequest declares the import -> convert -> export task graph
type createJobRequest struct {
	Tasks map[string]map[string]interface{} `json:"tasks"`
}

// Convert submits the source text as a named input file, requests conversion
// to the output format, and blocks until the service reports a terminal
// state. It returns the transient URL of the exported artifact.
func (c *Client) Convert(ctx context.Context, source, filename, inputFormat, outputFormat string) (string, error) {
	job, err := c.createJob(ctx, source, filename, inputFormat, outputFormat)
	if err != nil {
		return "", err
	}

	finished, err := c.waitForJob(ctx, job.ID)
	if err != nil {
		return "", err
	}

	return exportURL(finished)
}

func (c *Client) createJob(ctx context.Context, source, filename, inputFormat, outputFormat string) (*convertJob, error) {
	req := createJobRequest{
		Tasks: map[string]map[string]interface{}{
			taskImport: {
				"operation": "import/raw",
				"file":      source,
				"filename":  filename,
			},
			taskConvert: {
				"operation":     "convert",
				"input":         taskImport,
				"input_format":  inputFormat,
				"output_format": outputFormat,
			},
			taskExport: {
				"operation": "export/url",
				"input":     taskConvert,
			},
		},
	}

	var envelope jobEnvelope
	if err := c.doRequest(ctx, http.MethodPost, "/v2/jobs", req, &envelope); err != nil {
		return nil, fmt.Errorf("failed to create conversion job: %w", err)
	}
	if envelope.Data.ID == "" {
		return nil, errors.New("conversion service returned no job id")
	}
	return &envelope.Data, nil
}

// waitForJob polls the job until it reaches a terminal state. The loop is
// bounded by its own wait timeout and by the caller's context.
func (c *Client) waitForJob(ctx context.Context, jobID string) (*convertJob, error) {
	ctx, cancel := context.WithTimeout(ctx, c.waitTimeout)
	defer cancel()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		var envelope jobEnvelope
		if err := c.doRequest(ctx, http.MethodGet, "/v2/jobs/"+jobID, nil, &envelope); err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("conversion job %s did not finish: %w", jobID, ctx.Err())
			}
			return nil, fmt.Errorf("failed to poll conversion job %s: %w", jobID, err)
		}

		switch envelope.Data.Status {
		case statusFinished:
			return &envelope.Data, nil
		case statusError:
			return nil, fmt.Errorf("conversion job %s failed: %s", jobID, firstTaskError(&envelope.Data))
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("conversion job %s did not finish: %w", jobID, ctx.Err())
		case <-ticker.C:
		}
	}
}

// exportURL extracts the artifact URL from the finished export task.
func exportURL(job *convertJob) (string, error) {
	for _, task := range job.Tasks {
		if task.Name != taskExport || task.Status != statusFinished {
			continue
		}
		if len(task.Result.Files) == 0 || task.Result.Files[0].URL == "" {
			return "", ErrNoExportResult
		}
		return task.Result.Files[0].URL, nil
	}
	return "", ErrNoExportResult
}

func firstTaskError(job *convertJob) string {
	for _, task := range job.Tasks {
		if task.Status == statusError && task.Message != "" {
			return task.Message
		}
	}
	return "unknown error"
}

// doRequest sends a request through a Fiber agent and decodes the response.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, body, response interface{}) error {
	fullURL := c.baseURL + endpoint

	var agent *fiber.Agent
	switch method {
	case http.MethodGet:
		agent = fiber.Get(fullURL)
	case http.MethodPost:
		agent = fiber.Post(fullURL)
	default:
		return fmt.Errorf("unsupported HTTP method: %s", method)
	}

	// Each call is bounded by its own timeout even while a larger wait
	// deadline is running, so one hung poll cannot eat the wait budget.
	timeout := c.requestTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	agent.Timeout(timeout)

	agent.Set("Authorization", "Bearer "+c.apiKey)
	agent.Set("Accept", "application/json")
	if body != nil {
		agent.JSON(body)
	}

	statusCode, respBody, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("error sending request: %w", errs[0])
	}
	if statusCode < 200 || statusCode >= 300 {
		return fmt.Errorf("conversion service returned status %d: %s", statusCode, string(respBody))
	}

	if response != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, response); err != nil {
			return fmt.Errorf("error decoding response: %w", err)
		}
	}
	return nil
}
