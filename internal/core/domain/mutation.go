package domain

import (
	"time"

	"github.com/google/uuid"
)

// MutationStatus is the lifecycle state of a mutation invocation.
type MutationStatus string

const (
	// MutationIdle means the runner has not been invoked since creation or reset.
	MutationIdle MutationStatus = "idle"
	// MutationPending means an invocation is in flight.
	MutationPending MutationStatus = "pending"
	// MutationSucceeded means the last invocation succeeded.
	MutationSucceeded MutationStatus = "success"
	// MutationFailed means the last invocation failed.
	MutationFailed MutationStatus = "error"
)

// MutationState describes the most recent invocation of a mutation runner.
type MutationState struct {
	ID        uuid.UUID
	Status    MutationStatus
	Result    any
	Err       error
	StartedAt time.Time
	SettledAt time.Time
}

// Settled reports whether the invocation completed.
func (s MutationState) Settled() bool {
	return s.Status == MutationSucceeded || s.Status == MutationFailed
}
