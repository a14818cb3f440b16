// Package mutation runs write operations against the API and invalidates the
// affected cache entries once they succeed.
package mutation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/quill/internal/core/ports"
	"go.trai.ch/zerr"
)

// Invalidator marks cached entries stale by key prefix.
type Invalidator interface {
	Invalidate(prefix domain.QueryKey)
}

// Config describes one mutation.
type Config[In, Out any] struct {
	// Name identifies the mutation in errors, logs and spans.
	Name string
	// Do performs the request.
	Do func(ctx context.Context, in In) (Out, error)
	// Invalidates returns the key prefixes to invalidate after a successful call.
	Invalidates func(in In, out Out) []domain.QueryKey
}

// Runner executes a mutation with at most one invocation in flight.
// Mutations never write cache entries and are never retried.
type Runner[In, Out any] struct {
	cfg    Config[In, Out]
	cache  Invalidator
	logger ports.Logger
	tracer ports.Tracer
	now    func() time.Time

	mu    sync.Mutex
	state domain.MutationState
}

// New creates a Runner for cfg.
func New[In, Out any](cfg Config[In, Out], cache Invalidator, logger ports.Logger, tracer ports.Tracer) *Runner[In, Out] {
	return &Runner[In, Out]{
		cfg:    cfg,
		cache:  cache,
		logger: logger,
		tracer: tracer,
		now:    time.Now,
		state:  domain.MutationState{Status: domain.MutationIdle},
	}
}

// Name returns the mutation name.
func (r *Runner[In, Out]) Name() string {
	return r.cfg.Name
}

// Run performs the mutation. A call made while a previous one is pending is
// rejected with domain.ErrMutationInFlight. On success the configured
// invalidations are issued before Run returns. On failure the returned
// error is a *domain.MutationError and nothing is invalidated.
func (r *Runner[In, Out]) Run(ctx context.Context, in In) (Out, error) {
	var zero Out

	r.mu.Lock()
	if r.state.Status == domain.MutationPending {
		id := r.state.ID
		r.mu.Unlock()
		return zero, zerr.With(zerr.Wrap(domain.ErrMutationInFlight, r.cfg.Name), "pending", id.String())
	}
	id := uuid.New()
	r.state = domain.MutationState{ID: id, Status: domain.MutationPending, StartedAt: r.now()}
	r.mu.Unlock()

	ctx, span := r.tracer.Start(ctx, "mutation.run",
		ports.WithAttribute("mutation", r.cfg.Name),
		ports.WithAttribute("id", id.String()),
	)
	defer span.End()

	// A panic propagates to the caller but must not leave the runner pending.
	settled := false
	defer func() {
		if settled {
			return
		}
		mutErr := &domain.MutationError{Mutation: r.cfg.Name, Err: zerr.Wrap(domain.ErrMutationPanicked, r.cfg.Name)}
		span.RecordError(mutErr)
		r.settle(domain.MutationFailed, nil, mutErr)
	}()

	out, err := r.cfg.Do(ctx, in)
	if err != nil {
		mutErr := &domain.MutationError{Mutation: r.cfg.Name, Err: err}
		span.RecordError(mutErr)
		r.logger.Warn(fmt.Sprintf("%s failed: %v", r.cfg.Name, err))
		r.settle(domain.MutationFailed, nil, mutErr)
		settled = true
		return zero, mutErr
	}

	var keys []domain.QueryKey
	if r.cfg.Invalidates != nil {
		keys = r.cfg.Invalidates(in, out)
	}
	for _, key := range keys {
		r.cache.Invalidate(key)
	}
	span.SetAttribute("invalidations", len(keys))

	r.settle(domain.MutationSucceeded, out, nil)
	settled = true
	return out, nil
}

// State returns the state of the most recent invocation.
func (r *Runner[In, Out]) State() domain.MutationState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Reset returns a settled runner to idle. A pending invocation is left alone.
func (r *Runner[In, Out]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state.Status == domain.MutationPending {
		return
	}
	r.state = domain.MutationState{Status: domain.MutationIdle}
}

func (r *Runner[In, Out]) settle(status domain.MutationStatus, result any, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Status = status
	r.state.Result = result
	r.state.Err = err
	r.state.SettledAt = r.now()
}
