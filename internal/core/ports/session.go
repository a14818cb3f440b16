package ports

import "go.trai.ch/quill/internal/core/domain"

// SessionStore persists the authentication cookies between CLI invocations.
//
//go:generate mockgen -source=session.go -destination=mocks/mock_session.go -package=mocks
type SessionStore interface {
	// Load returns the saved session.
	// Returns nil, nil if no session was saved.
	Load() (*domain.Session, error)

	// Save replaces the saved session.
	Save(session *domain.Session) error

	// Clear removes the saved session. Clearing a missing session is not an error.
	Clear() error
}
