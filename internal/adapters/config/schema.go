package config

// File represents the structure of quill.yaml and quill.toml.
type File struct {
	Version   string       `yaml:"version" toml:"version"`
	API       APIDTO       `yaml:"api" toml:"api"`
	Query     QueryDTO     `yaml:"query" toml:"query"`
	Log       LogDTO       `yaml:"log" toml:"log"`
	Session   SessionDTO   `yaml:"session" toml:"session"`
	Telemetry TelemetryDTO `yaml:"telemetry" toml:"telemetry"`
}

// APIDTO locates the REST backend.
type APIDTO struct {
	BaseURL   string `yaml:"baseUrl" toml:"baseUrl"`
	Timeout   string `yaml:"timeout" toml:"timeout"`
	UserAgent string `yaml:"userAgent" toml:"userAgent"`
}

// QueryDTO tunes staleness and retries.
type QueryDTO struct {
	StaleTime  string            `yaml:"staleTime" toml:"staleTime"`
	StaleTimes map[string]string `yaml:"staleTimes" toml:"staleTimes"`
	Retry      RetryDTO          `yaml:"retry" toml:"retry"`
}

// RetryDTO controls fetch retries. MaxRetries is a pointer so that an
// explicit zero disables retries.
type RetryDTO struct {
	MaxRetries *int   `yaml:"maxRetries" toml:"maxRetries"`
	Statuses   []int  `yaml:"statuses" toml:"statuses"`
	Backoff    string `yaml:"backoff" toml:"backoff"`
	Initial    string `yaml:"initial" toml:"initial"`
	Max        string `yaml:"max" toml:"max"`
}

// LogDTO controls log output.
type LogDTO struct {
	JSON  bool   `yaml:"json" toml:"json"`
	Level string `yaml:"level" toml:"level"`
}

// SessionDTO locates the persisted session.
type SessionDTO struct {
	Path string `yaml:"path" toml:"path"`
}

// TelemetryDTO toggles tracing.
type TelemetryDTO struct {
	Enabled     bool   `yaml:"enabled" toml:"enabled"`
	ServiceName string `yaml:"serviceName" toml:"serviceName"`
}
