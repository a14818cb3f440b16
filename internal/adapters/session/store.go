// Package session persists the API session cookies between CLI invocations.
package session

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/zerr"
)

// Store implements ports.SessionStore with a single JSON file.
type Store struct {
	path string
	mu   sync.RWMutex
}

// NewStore creates a Store backed by the file at path. The file is created on first Save.
func NewStore(path string) *Store {
	return &Store{path: filepath.Clean(path)}
}

// Path returns the location of the session file.
func (s *Store) Path() string {
	return s.path
}

// Load returns the saved session, or nil if none was saved.
func (s *Store) Load() (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(errors.Join(domain.ErrSessionReadFailed, err), "path", s.path)
	}

	var sess domain.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, zerr.With(errors.Join(domain.ErrSessionReadFailed, err), "path", s.path)
	}
	return &sess, nil
}

// Save replaces the saved session.
func (s *Store) Save(sess *domain.Session) error {
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return errors.Join(domain.ErrSessionWriteFailed, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := atomicWriteFile(s.path, data); err != nil {
		return zerr.With(errors.Join(domain.ErrSessionWriteFailed, err), "path", s.path)
	}
	return nil
}

// Clear removes the saved session. Clearing a missing session is not an error.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return zerr.With(errors.Join(domain.ErrSessionWriteFailed, err), "path", s.path)
	}
	return nil
}

// atomicWriteFile writes data to a file atomically by writing to a temp file and renaming it.
// The file is only readable by the owner since it holds credentials.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(dir, "session-*.json")
	if err != nil {
		return err
	}
	tmpName := tmpFile.Name()

	defer func() {
		if _, statErr := os.Stat(tmpName); statErr == nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return err
	}

	if err := tmpFile.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, domain.PrivateFilePerm); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
