package domain

import (
	"net/url"
	"slices"
	"time"
)

// BackoffStrategy selects the wait between fetch retries.
type BackoffStrategy string

const (
	// BackoffNone retries immediately.
	BackoffNone BackoffStrategy = "none"
	// BackoffConstant waits a fixed interval between retries.
	BackoffConstant BackoffStrategy = "constant"
	// BackoffExponential doubles the wait after each retry, up to a maximum.
	BackoffExponential BackoffStrategy = "exponential"
)

// Config is the resolved client configuration.
type Config struct {
	API       APIConfig
	Query     QueryConfig
	Log       LogConfig
	Session   SessionConfig
	Telemetry TelemetryConfig
}

// APIConfig locates the REST backend.
type APIConfig struct {
	BaseURL   *url.URL
	Timeout   time.Duration
	UserAgent string
}

// QueryConfig tunes the query binder.
type QueryConfig struct {
	// StaleTime applies to resources without an entry in StaleTimes.
	StaleTime  time.Duration
	StaleTimes map[string]time.Duration
	Retry      RetryConfig
}

// StaleTimeFor returns the stale-after duration configured for resource.
func (q QueryConfig) StaleTimeFor(resource string) time.Duration {
	if d, ok := q.StaleTimes[resource]; ok {
		return d
	}
	return q.StaleTime
}

// RetryConfig controls how failed fetches are retried. Mutations are never retried.
type RetryConfig struct {
	// MaxRetries is the number of attempts after the first one.
	MaxRetries int
	// Statuses lists HTTP status codes considered transient. Empty means every 5xx.
	Statuses []int
	Backoff  BackoffStrategy
	Initial  time.Duration
	Max      time.Duration
}

// RetryableStatus reports whether code is configured as transient.
func (r RetryConfig) RetryableStatus(code int) bool {
	if len(r.Statuses) == 0 {
		return code >= 500
	}
	return slices.Contains(r.Statuses, code)
}

// LogConfig controls log output.
type LogConfig struct {
	JSON  bool
	Level string
}

// SessionConfig locates the persisted session cookies.
type SessionConfig struct {
	Path string
}

// TelemetryConfig toggles tracing.
type TelemetryConfig struct {
	Enabled     bool
	ServiceName string
}

// DefaultConfig returns the configuration used when no config file is found.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   &url.URL{Scheme: "http", Host: "localhost:3000", Path: "/api"},
			Timeout:   DefaultTimeout,
			UserAgent: "quill",
		},
		Query: QueryConfig{
			StaleTime:  DefaultStaleTime,
			StaleTimes: map[string]time.Duration{},
			Retry: RetryConfig{
				MaxRetries: 1,
				Backoff:    BackoffNone,
			},
		},
		Log: LogConfig{Level: "info"},
		Session: SessionConfig{
			Path: DefaultSessionPath(),
		},
		Telemetry: TelemetryConfig{ServiceName: "quill"},
	}
}
