package domain

import (
	"path/filepath"
	"time"
)

const (
	// QuillDirName is the name of the per-project state directory.
	QuillDirName = ".quill"

	// SessionFileName is the name of the persisted session file.
	SessionFileName = "session.json"

	// ConfigFileName is the name of the YAML config file.
	ConfigFileName = "quill.yaml"

	// ConfigFileNameYML is the alternate extension of the YAML config file.
	ConfigFileNameYML = "quill.yml"

	// ConfigFileNameTOML is the name of the TOML config file.
	ConfigFileNameTOML = "quill.toml"

	// EnvAPIURL overrides the configured API base URL.
	EnvAPIURL = "QUILL_API_URL"

	// EnvLogJSON switches logging to JSON when set to a true value.
	EnvLogJSON = "QUILL_LOG_JSON"

	// DefaultTimeout bounds a single HTTP request.
	DefaultTimeout = 30 * time.Second

	// DefaultStaleTime is how long fetched data is considered fresh.
	DefaultStaleTime = 30 * time.Second

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)

// ConfigFileNames lists config file names in lookup order.
func ConfigFileNames() []string {
	return []string{ConfigFileName, ConfigFileNameYML, ConfigFileNameTOML}
}

// DefaultSessionPath returns the default path of the session file.
// It joins .quill and session.json.
func DefaultSessionPath() string {
	return filepath.Join(QuillDirName, SessionFileName)
}
