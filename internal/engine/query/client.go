// Package query binds query keys to fetch functions on top of the cache store:
// it de-duplicates concurrent fetches, serves stale data while revalidating,
// retries transient failures and refetches observed keys on invalidation.
package query

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/quill/internal/core/ports"
	"go.trai.ch/quill/internal/engine/cache"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

// maxFlightJoins bounds how many superseded flights a blocking fetch follows
// before giving up.
const maxFlightJoins = 3

// Fetcher loads the data for one key.
type Fetcher func(ctx context.Context) (any, error)

type observer struct {
	ctx   context.Context
	key   domain.QueryKey
	fetch Fetcher
	refs  int
}

// Client is the query binder. It is safe for concurrent use.
type Client struct {
	store     *cache.Store
	logger    ports.Logger
	tracer    ports.Tracer
	group     singleflight.Group
	retry     RetryPolicy
	staleTime func(domain.QueryKey) time.Duration
	now       func() time.Time

	mu         sync.Mutex
	observers  map[string]*observer
	removeHook func()
}

// Option configures a Client.
type Option func(*Client)

// WithRetryPolicy replaces the default retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) { c.retry = p }
}

// WithStaleTime sets one stale-after duration for every key.
func WithStaleTime(d time.Duration) Option {
	return func(c *Client) {
		c.staleTime = func(domain.QueryKey) time.Duration { return d }
	}
}

// WithStaleTimes resolves the stale-after duration per key.
func WithStaleTimes(fn func(domain.QueryKey) time.Duration) Option {
	return func(c *Client) { c.staleTime = fn }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New creates a Client over store and registers it as the store's
// invalidation hook.
func New(store *cache.Store, logger ports.Logger, tracer ports.Tracer, opts ...Option) *Client {
	c := &Client{
		store:     store,
		logger:    logger,
		tracer:    tracer,
		retry:     DefaultRetryPolicy(),
		staleTime: func(domain.QueryKey) time.Duration { return domain.DefaultStaleTime },
		now:       time.Now,
		observers: make(map[string]*observer),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.removeHook = store.OnInvalidate(c.refetchObserved)
	return c
}

// Store returns the underlying cache store.
func (c *Client) Store() *cache.Store {
	return c.store
}

// Read returns the current entry for key without blocking. If the entry is
// idle, stale or invalidated and no fetch is in flight, a background fetch is
// started; the returned entry is the one observed before that fetch began.
func (c *Client) Read(ctx context.Context, key domain.QueryKey, fetch Fetcher) domain.Entry {
	ticket := c.store.Begin(key, c.need(false))
	if ticket.Started {
		c.group.DoChan(flightKey(key, ticket.Seq), c.flight(context.WithoutCancel(ctx), key, ticket.Seq, fetch))
	}
	return ticket.Entry
}

// Fetch returns a settled entry for key. Fresh entries are returned as is;
// otherwise Fetch starts or joins the in-flight fetch and waits for it. The
// returned error is the entry's error, or ctx's error if the wait was
// abandoned. An abandoned fetch still commits its result.
func (c *Client) Fetch(ctx context.Context, key domain.QueryKey, fetch Fetcher) (domain.Entry, error) {
	return c.await(ctx, key, fetch, false)
}

// Refetch starts a new fetch for key even if the entry is fresh and waits
// for it. A fetch already in flight is superseded.
func (c *Client) Refetch(ctx context.Context, key domain.QueryKey, fetch Fetcher) (domain.Entry, error) {
	return c.await(ctx, key, fetch, true)
}

// Observe subscribes cb to key, registers fetch for refetch on invalidation
// and reads the entry. The returned function undoes the subscription.
func (c *Client) Observe(
	ctx context.Context,
	key domain.QueryKey,
	fetch Fetcher,
	cb cache.Callback,
) (domain.Entry, func()) {
	unsubscribe := c.store.Subscribe(key, cb)
	c.register(ctx, key, fetch)

	entry := c.Read(ctx, key, fetch)

	var once sync.Once
	return entry, func() {
		once.Do(func() {
			unsubscribe()
			c.unregister(key)
		})
	}
}

// Invalidate marks every entry under prefix stale. Observed keys are refetched.
func (c *Client) Invalidate(prefix domain.QueryKey) {
	c.store.Invalidate(prefix)
}

// Close detaches the client from the store.
func (c *Client) Close() {
	c.removeHook()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = make(map[string]*observer)
}

func (c *Client) await(ctx context.Context, key domain.QueryKey, fetch Fetcher, force bool) (domain.Entry, error) {
	if err := key.Validate(); err != nil {
		return domain.IdleEntry(key), err
	}

	for range maxFlightJoins {
		if c.store.Closed() {
			return domain.IdleEntry(key), domain.ErrStoreClosed
		}

		ticket := c.store.Begin(key, c.need(force))
		force = false
		if !ticket.Started && ticket.Entry.Status != domain.StatusLoading {
			return ticket.Entry, entryError(ticket.Entry)
		}

		ch := c.group.DoChan(flightKey(key, ticket.Seq), c.flight(context.WithoutCancel(ctx), key, ticket.Seq, fetch))
		select {
		case <-ctx.Done():
			return c.store.Get(key), ctx.Err()
		case res := <-ch:
			entry, _ := res.Val.(domain.Entry)
			if entry.Settled() {
				return entry, entryError(entry)
			}
		}
	}

	return c.store.Get(key), zerr.Wrap(domain.ErrFetchAbandoned, key.String())
}

// need returns the predicate deciding whether an entry requires a new fetch.
func (c *Client) need(force bool) func(domain.Entry) bool {
	return func(e domain.Entry) bool {
		if force {
			return true
		}
		switch e.Status {
		case domain.StatusIdle:
			return true
		case domain.StatusLoading:
			return e.Invalidated
		default:
			return e.Stale(c.now(), c.staleTime(e.Key))
		}
	}
}

func (c *Client) flight(ctx context.Context, key domain.QueryKey, seq uint64, fetch Fetcher) func() (any, error) {
	return func() (any, error) {
		if !c.store.Pending(key, seq) {
			return c.store.Get(key), nil
		}

		data, err := c.fetchWithRetry(ctx, key, seq, fetch)
		settledAt := c.now()

		applied := c.store.Commit(key, seq, func(e domain.Entry) domain.Entry {
			e.UpdatedAt = settledAt
			if err != nil {
				e.Status = domain.StatusError
				e.Err = err
				return e
			}
			e.Status = domain.StatusSuccess
			e.Data = data
			e.Err = nil
			e.FetchedAt = settledAt
			return e
		})
		if !applied {
			c.logger.Debug(fmt.Sprintf("discarded response for %s (seq %d)", key, seq))
		} else if err != nil {
			c.logger.Debug(fmt.Sprintf("fetch %s failed: %v", key, err))
		}

		return c.store.Get(key), nil
	}
}

func (c *Client) fetchWithRetry(ctx context.Context, key domain.QueryKey, seq uint64, fetch Fetcher) (any, error) {
	attempt := 0
	operation := func() (any, error) {
		attempt++
		spanCtx, span := c.tracer.Start(ctx, "query.fetch",
			ports.WithAttribute("key", key.String()),
			ports.WithAttribute("seq", int64(seq)), //nolint:gosec // sequence numbers stay far below MaxInt64
			ports.WithAttribute("attempt", attempt),
		)
		defer span.End()

		data, err := fetch(spanCtx)
		if err == nil {
			return data, nil
		}
		span.RecordError(err)
		if !c.retry.retryable(err) {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	notify := func(err error, wait time.Duration) {
		c.logger.Debug(fmt.Sprintf("retrying %s in %s after attempt %d: %v", key, wait, attempt, err))
	}

	data, err := backoff.Retry(ctx, operation, c.retry.options(notify)...)
	return data, unwrapPermanent(err)
}

func (c *Client) register(ctx context.Context, key domain.QueryKey, fetch Fetcher) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := key.String()
	obs, ok := c.observers[k]
	if !ok {
		obs = &observer{key: key}
		c.observers[k] = obs
	}
	obs.ctx = context.WithoutCancel(ctx)
	obs.fetch = fetch
	obs.refs++
}

func (c *Client) unregister(key domain.QueryKey) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := key.String()
	obs, ok := c.observers[k]
	if !ok {
		return
	}
	obs.refs--
	if obs.refs <= 0 {
		delete(c.observers, k)
	}
}

// refetchObserved is the store's invalidation hook. Keys are subscribed but
// only those observed through this client have a fetcher to refetch with.
func (c *Client) refetchObserved(keys []domain.QueryKey) {
	for _, key := range keys {
		c.mu.Lock()
		obs, ok := c.observers[key.String()]
		var (
			obsCtx context.Context
			fetch  Fetcher
		)
		if ok {
			obsCtx, fetch = obs.ctx, obs.fetch
		}
		c.mu.Unlock()

		if !ok {
			continue
		}
		c.Read(obsCtx, key, fetch)
	}
}

func flightKey(key domain.QueryKey, seq uint64) string {
	return key.String() + "#" + strconv.FormatUint(seq, 10)
}

func entryError(e domain.Entry) error {
	if e.Status == domain.StatusError {
		return e.Err
	}
	return nil
}
