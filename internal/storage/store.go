// Package storage persists produced artifacts in durable blob storage and
// issues publicly resolvable URLs for them.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// DefaultFetchTimeout bounds the download of a transient artifact
const DefaultFetchTimeout = 60 * time.Second

// ArtifactKey derives the deterministic object key for a job. Retried
// success-path runs overwrite the same object instead of duplicating it.
func ArtifactKey(uid string) string {
	return "resumes/" + uid + ".pdf"
}

// Store writes artifacts to an S3 bucket.
type Store struct {
	uploader   *manager.Uploader
	bucket     string
	baseURL    string
	httpClient *http.Client
}

// New creates a store for the given bucket. Credentials and region come from
// the ambient AWS configuration. baseURL overrides the public URL prefix for
// S3-compatible endpoints; when empty the standard bucket URL is used.
func New(ctx context.Context, bucket, baseURL string) (*Store, error) {
	if bucket == "" {
		return nil, errors.New("artifact bucket not set")
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, cfg.Region)
	}

	return &Store{
		uploader:   manager.NewUploader(client),
		bucket:     bucket,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultFetchTimeout},
	}, nil
}

// PersistFromURL streams the artifact at srcURL into the bucket under key
// and returns its public URL. The upload is all-or-nothing: no URL is
// returned unless the write completed.
func (s *Store) PersistFromURL(ctx context.Context, srcURL, key, contentType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srcURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build artifact fetch request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch artifact: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("artifact fetch returned status %d", resp.StatusCode)
	}

	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        resp.Body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to write artifact %s: %w", key, err)
	}

	return s.PublicURL(key), nil
}

// PublicURL returns the durable URL for an object key.
func (s *Store) PublicURL(key string) string {
	return s.baseURL + "/" + key
}
