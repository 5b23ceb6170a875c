// Package generation produces tailored resume LaTeX source from a captured
// job description using a chat-completion model.
package generation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

const (
	// DefaultTimeout bounds a single generation call
	DefaultTimeout = 120 * time.Second

	// maxRetries is the retry budget for rate-limited calls
	maxRetries = 3
	// baseBackoff is the first backoff interval; it doubles per attempt
	baseBackoff = 2 * time.Second
	// maxBackoff caps the backoff growth
	maxBackoff = 32 * time.Second
)

var (
	// ErrAPIKeyNotSet is returned when the client is constructed without credentials
	ErrAPIKeyNotSet = errors.New("generation API key not set")
	// ErrEmptyCompletion is returned when the model yields no usable content
	ErrEmptyCompletion = errors.New("generation returned empty content")
)

// Client calls the content generation service. The master template is fixed
// for the lifetime of the client and shared read-only across invocations.
type Client struct {
	client   openai.Client
	model    string
	template string
	timeout  time.Duration
}

// NewClient creates a generation client for the given model and master template.
func NewClient(apiKey, model, masterTemplate string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyNotSet
	}
	if masterTemplate == "" {
		return nil, errors.New("master template is empty")
	}

	return &Client{
		client:   openai.NewClient(option.WithAPIKey(apiKey)),
		model:    model,
		template: masterTemplate,
		timeout:  DefaultTimeout,
	}, nil
}

// SetTimeout overrides the per-call timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.timeout = timeout
}

// TailorResume generates resume LaTeX tailored to the job description.
// Markdown fences are stripped from the response before it is returned, so
// the result is raw document source.
func (c *Client) TailorResume(ctx context.Context, description string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	content, err := c.completeWithRetry(ctx, BuildPrompt(c.template, description))
	if err != nil {
		return "", err
	}

	latex := StripFences(content)
	if latex == "" {
		return "", ErrEmptyCompletion
	}
	return latex, nil
}

// completeWithRetry retries rate-limited calls with exponential backoff.
// Other upstream errors are surfaced immediately with their message intact.
func (c *Client) completeWithRetry(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * baseBackoff
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model: shared.ChatModel(c.model),
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			},
		})
		if err != nil {
			lastErr = err
			if isRateLimitError(err) {
				continue
			}
			return "", fmt.Errorf("generation call failed: %w", err)
		}

		if len(completion.Choices) == 0 {
			return "", ErrEmptyCompletion
		}
		return completion.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("generation retries exhausted: %w", lastErr)
}

func isRateLimitError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}
