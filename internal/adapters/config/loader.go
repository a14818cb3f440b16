// Package config provides the configuration loader for quill.
package config

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/quill/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ConfigLoader for quill.yaml and quill.toml.
type Loader struct {
	Logger ports.Logger
	FS     FileSystem
	Getenv func(string) string
}

// NewLoader creates a new Loader reading from the OS filesystem and environment.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{
		Logger: logger,
		FS:     NewOSFS(),
		Getenv: os.Getenv,
	}
}

// Load discovers the config file from cwd, parses it, applies environment
// overrides and validates the result. Defaults apply when no file is found.
func (l *Loader) Load(cwd string) (*domain.Config, error) {
	path, found := l.findConfiguration(cwd)

	file := &File{}
	root := cwd
	if found {
		root = filepath.Dir(path)
		if err := l.readFile(path, file); err != nil {
			return nil, err
		}
		l.Logger.Debug("loaded config from " + path)
	}

	cfg, err := resolve(file, root)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}

	if err := l.applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DiscoverRoot walks up from cwd to find the directory holding a config file.
// Returns cwd when none is found.
func (l *Loader) DiscoverRoot(cwd string) (string, error) {
	path, found := l.findConfiguration(cwd)
	if !found {
		return cwd, nil
	}
	return filepath.Dir(path), nil
}

func (l *Loader) findConfiguration(cwd string) (string, bool) {
	currentDir := cwd

	for {
		for _, name := range domain.ConfigFileNames() {
			candidate := filepath.Join(currentDir, name)
			if _, err := l.FS.Stat(candidate); err == nil {
				return candidate, true
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", false
		}
		currentDir = parentDir
	}
}

func (l *Loader) readFile(path string, target *File) error {
	data, err := l.FS.ReadFile(path)
	if err != nil {
		return zerr.With(errors.Join(domain.ErrConfigReadFailed, err), "path", path)
	}

	if filepath.Ext(path) == ".toml" {
		err = toml.Unmarshal(data, target)
	} else {
		err = yaml.Unmarshal(data, target)
	}
	if err != nil {
		return zerr.With(errors.Join(domain.ErrConfigParseFailed, err), "path", path)
	}
	return nil
}

func (l *Loader) applyEnv(cfg *domain.Config) error {
	if raw := l.Getenv(domain.EnvAPIURL); raw != "" {
		u, err := parseBaseURL(raw)
		if err != nil {
			return zerr.With(err, "env", domain.EnvAPIURL)
		}
		cfg.API.BaseURL = u
	}

	if raw := l.Getenv(domain.EnvLogJSON); raw != "" {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			return zerr.With(zerr.Wrap(domain.ErrInvalidConfig, domain.EnvLogJSON), "value", raw)
		}
		cfg.Log.JSON = enabled
	}
	return nil
}

// resolve converts the file representation into a validated domain.Config.
// Relative session paths are resolved against root.
func resolve(file *File, root string) (*domain.Config, error) {
	cfg := domain.DefaultConfig()

	if file.API.BaseURL != "" {
		u, err := parseBaseURL(file.API.BaseURL)
		if err != nil {
			return nil, err
		}
		cfg.API.BaseURL = u
	}
	if err := setDuration(&cfg.API.Timeout, file.API.Timeout, "api.timeout"); err != nil {
		return nil, err
	}
	if file.API.UserAgent != "" {
		cfg.API.UserAgent = file.API.UserAgent
	}

	if err := setDuration(&cfg.Query.StaleTime, file.Query.StaleTime, "query.staleTime"); err != nil {
		return nil, err
	}
	for resource, raw := range file.Query.StaleTimes {
		var d time.Duration
		if err := setDuration(&d, raw, "query.staleTimes."+resource); err != nil {
			return nil, err
		}
		cfg.Query.StaleTimes[resource] = d
	}

	if err := resolveRetry(&cfg.Query.Retry, file.Query.Retry); err != nil {
		return nil, err
	}

	cfg.Log.JSON = file.Log.JSON
	if file.Log.Level != "" {
		cfg.Log.Level = strings.ToLower(file.Log.Level)
	}

	if file.Session.Path != "" {
		cfg.Session.Path = file.Session.Path
	}
	if !filepath.IsAbs(cfg.Session.Path) {
		cfg.Session.Path = filepath.Join(root, cfg.Session.Path)
	}

	cfg.Telemetry.Enabled = file.Telemetry.Enabled
	if file.Telemetry.ServiceName != "" {
		cfg.Telemetry.ServiceName = file.Telemetry.ServiceName
	}

	return cfg, nil
}

func resolveRetry(cfg *domain.RetryConfig, dto RetryDTO) error {
	if dto.MaxRetries != nil {
		if *dto.MaxRetries < 0 {
			return zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "query.retry.maxRetries"), "value", *dto.MaxRetries)
		}
		cfg.MaxRetries = *dto.MaxRetries
	}

	for _, code := range dto.Statuses {
		if code < 100 || code > 599 {
			return zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "query.retry.statuses"), "value", code)
		}
	}
	cfg.Statuses = dto.Statuses

	switch strategy := domain.BackoffStrategy(strings.ToLower(dto.Backoff)); strategy {
	case "":
	case domain.BackoffNone, domain.BackoffConstant, domain.BackoffExponential:
		cfg.Backoff = strategy
	default:
		return zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "query.retry.backoff"), "value", dto.Backoff)
	}

	if err := setDuration(&cfg.Initial, dto.Initial, "query.retry.initial"); err != nil {
		return err
	}
	return setDuration(&cfg.Max, dto.Max, "query.retry.max")
}

func setDuration(target *time.Duration, raw, field string) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return zerr.With(zerr.Wrap(domain.ErrInvalidConfig, field), "value", raw)
	}
	*target = d
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidBaseURL, "parse base url"), "url", raw)
	}
	return u, nil
}
