// Package config resolves process configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/resumeforge/forge/internal/logger"
)

// Default configuration values
const (
	DefaultListenAddress = ":8080"
	DefaultModel         = "gpt-4o-mini"
	DefaultTemplatePath  = "master_resume.tex"
	DefaultConvertURL    = "https://api.cloudconvert.com"

	DefaultWorkerConcurrency = 10
	DefaultJobTimeout        = 300 * time.Second
	DefaultPollInterval      = 2 * time.Second
	DefaultStaleAfter        = 15 * time.Minute
)

// StalePolicy controls what happens to records stuck in processing.
type StalePolicy string

const (
	// StalePolicyManual leaves stuck records alone and only logs them.
	StalePolicyManual StalePolicy = "manual"
	// StalePolicyRequeue resets stuck records back to pending.
	StalePolicyRequeue StalePolicy = "requeue"
)

// ParseStalePolicy maps a string to a known policy. The second return value
// reports whether the input named one; unknown values map to manual.
func ParseStalePolicy(value string) (StalePolicy, bool) {
	switch StalePolicy(value) {
	case StalePolicyManual, StalePolicyRequeue:
		return StalePolicy(value), true
	}
	return StalePolicyManual, false
}

// Config holds the resolved configuration for the server process.
type Config struct {
	ListenAddress string

	// Content generation
	OpenAIAPIKey string
	Model        string
	TemplatePath string

	// Document conversion
	ConvertAPIKey  string
	ConvertBaseURL string

	// Artifact storage
	ArtifactBucket  string
	ArtifactBaseURL string

	// Worker
	WorkerConcurrency int
	JobTimeout        time.Duration
	PollInterval      time.Duration
	StalePolicy       StalePolicy
	StaleAfter        time.Duration
}

// Load resolves the configuration from the environment, applying defaults.
func Load() Config {
	policyStr := GetEnv("FORGE_STALE_POLICY", string(StalePolicyManual))
	stalePolicy, known := ParseStalePolicy(policyStr)
	if !known {
		logger.Warnf("Unknown stale policy '%s', falling back to '%s'", policyStr, stalePolicy)
	}

	return Config{
		ListenAddress: GetEnv("FORGE_LISTEN_ADDRESS", DefaultListenAddress),

		OpenAIAPIKey: GetEnv("OPENAI_API_KEY", ""),
		Model:        GetEnv("FORGE_GENERATION_MODEL", DefaultModel),
		TemplatePath: GetEnv("FORGE_TEMPLATE_PATH", DefaultTemplatePath),

		ConvertAPIKey:  GetEnv("CLOUDCONVERT_API_KEY", ""),
		ConvertBaseURL: GetEnv("FORGE_CONVERT_BASE_URL", DefaultConvertURL),

		ArtifactBucket:  GetEnv("FORGE_ARTIFACT_BUCKET", ""),
		ArtifactBaseURL: GetEnv("FORGE_ARTIFACT_BASE_URL", ""),

		WorkerConcurrency: GetEnvInt("FORGE_WORKER_CONCURRENCY", DefaultWorkerConcurrency),
		JobTimeout:        GetEnvDuration("FORGE_JOB_TIMEOUT", DefaultJobTimeout),
		PollInterval:      GetEnvDuration("FORGE_POLL_INTERVAL", DefaultPollInterval),
		StalePolicy:       stalePolicy,
		StaleAfter:        GetEnvDuration("FORGE_STALE_AFTER", DefaultStaleAfter),
	}
}

// GetEnv retrieves the value of an environment variable with a fallback value if not set
func GetEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// GetEnvInt retrieves an integer environment variable with a fallback value
func GetEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

// GetEnvDuration retrieves a duration environment variable with a fallback value
func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
