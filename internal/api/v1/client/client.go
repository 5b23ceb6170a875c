// Package client provides a typed HTTP client for the job API, used by the
// CLI and by tests.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/resumeforge/forge/internal/api/v1/handlers"
	"github.com/resumeforge/forge/internal/api/v1/routes"
	"github.com/resumeforge/forge/internal/db/models"
)

// DefaultTimeout is the default timeout for API requests
const DefaultTimeout = 30 * time.Second

// Client defines the interface for interacting with the job API
type Client interface {
	// SubmitJob submits a captured posting and returns the new job id
	SubmitJob(ctx context.Context, req handlers.SubmitRequest) (string, error)
	// GetJob reads a single job record
	GetJob(ctx context.Context, id string) (*models.Job, error)
	// ListJobs lists jobs with pagination and an optional status filter
	ListJobs(ctx context.Context, limit, offset int, status string) (*ListResult, error)
	// HealthCheck verifies the server is reachable
	HealthCheck(ctx context.Context) error
}

// ListResult is the decoded job listing
type ListResult struct {
	Jobs  []models.Job `json:"jobs"`
	Count int64        `json:"count"`
}

// Options contains configuration options for the API client
type Options struct {
	// BaseURL is the base URL of the API
	BaseURL string
	// Timeout is the request timeout
	Timeout time.Duration
}

// DefaultOptions returns the default client options
func DefaultOptions() *Options {
	return &Options{
		BaseURL: routes.DefaultBaseURL,
		Timeout: DefaultTimeout,
	}
}

// APIClient implements the Client interface
type APIClient struct {
	baseURL string
	timeout time.Duration
}

// NewClient creates a new API client with the given options
func NewClient(opts *Options) (Client, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}

	if _, err := url.Parse(opts.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	return &APIClient{
		baseURL: opts.BaseURL,
		timeout: opts.Timeout,
	}, nil
}

// SubmitJob submits a captured posting and returns the new job id
func (c *APIClient) SubmitJob(ctx context.Context, req handlers.SubmitRequest) (string, error) {
	var resp handlers.ResultResponse
	if err := c.executeRequest(ctx, http.MethodPost, "/api/v1/jobs", req, &resp); err != nil {
		return "", err
	}
	return resp.Result, nil
}

// GetJob reads a single job record
func (c *APIClient) GetJob(ctx context.Context, id string) (*models.Job, error) {
	var job models.Job
	if err := c.executeRequest(ctx, http.MethodGet, "/api/v1/jobs/"+id, nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// ListJobs lists jobs with pagination and an optional status filter
func (c *APIClient) ListJobs(ctx context.Context, limit, offset int, status string) (*ListResult, error) {
	endpoint := fmt.Sprintf("/api/v1/jobs?limit=%d&offset=%d", limit, offset)
	if status != "" {
		endpoint += "&status=" + url.QueryEscape(status)
	}

	var result ListResult
	if err := c.executeRequest(ctx, http.MethodGet, endpoint, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// HealthCheck verifies the server is reachable
func (c *APIClient) HealthCheck(ctx context.Context) error {
	return c.executeRequest(ctx, http.MethodGet, "/health", nil, nil)
}

// createAgent creates a new Fiber Agent for the given method and endpoint
func (c *APIClient) createAgent(ctx context.Context, method, endpoint string, body interface{}) (*fiber.Agent, error) {
	fullURL := c.baseURL + endpoint

	var agent *fiber.Agent
	switch method {
	case http.MethodGet:
		agent = fiber.Get(fullURL)
	case http.MethodPost:
		agent = fiber.Post(fullURL)
	default:
		return nil, fmt.Errorf("unsupported HTTP method: %s", method)
	}

	// Set timeout from context or client default
	if deadline, ok := ctx.Deadline(); ok {
		agent.Timeout(time.Until(deadline))
	} else {
		agent.Timeout(c.timeout)
	}

	agent.Set("Content-Type", "application/json")
	agent.Set("Accept", "application/json")

	if body != nil {
		agent.JSON(body)
	}

	return agent, nil
}

// executeRequest creates an agent, sends the request, and processes the response
func (c *APIClient) executeRequest(ctx context.Context, method, endpoint string, body, response interface{}) error {
	agent, err := c.createAgent(ctx, method, endpoint, body)
	if err != nil {
		return err
	}

	statusCode, respBody, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("error sending request: %w", errs[0])
	}

	if statusCode < 200 || statusCode >= 300 {
		var errResp handlers.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			return &fiber.Error{Code: statusCode, Message: errResp.Error}
		}
		return &fiber.Error{Code: statusCode, Message: "unknown error"}
	}

	if response != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, response); err != nil {
			return fmt.Errorf("error decoding response: %w", err)
		}
	}

	return nil
}
