package query

import (
	"context"
	"fmt"

	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/quill/internal/engine/cache"
	"go.trai.ch/zerr"
)

// Query is a key bound to a typed fetch function.
type Query[T any] struct {
	client *Client
	key    domain.QueryKey
	fetch  Fetcher
}

// Bind returns a typed query for key on c.
func Bind[T any](c *Client, key domain.QueryKey, fetch func(context.Context) (T, error)) *Query[T] {
	return &Query[T]{
		client: c,
		key:    key,
		fetch: func(ctx context.Context) (any, error) {
			return fetch(ctx)
		},
	}
}

// Key returns the query's key.
func (q *Query[T]) Key() domain.QueryKey {
	return q.key
}

// Get returns the query's data, fetching it first if the cached entry is
// missing or stale. On failure the previously fetched data, if any, is
// returned alongside the error.
func (q *Query[T]) Get(ctx context.Context) (T, error) {
	entry, err := q.client.Fetch(ctx, q.key, q.fetch)
	return decode[T](entry, err)
}

// Refetch fetches the query's data even if the cached entry is fresh.
func (q *Query[T]) Refetch(ctx context.Context) (T, error) {
	entry, err := q.client.Refetch(ctx, q.key, q.fetch)
	return decode[T](entry, err)
}

// Peek returns the cached entry without blocking, triggering a background
// fetch when needed.
func (q *Query[T]) Peek(ctx context.Context) domain.Entry {
	return q.client.Read(ctx, q.key, q.fetch)
}

// Observe subscribes cb to the query's entry and keeps it fresh across
// invalidations until the returned function is called.
func (q *Query[T]) Observe(ctx context.Context, cb cache.Callback) (domain.Entry, func()) {
	return q.client.Observe(ctx, q.key, q.fetch, cb)
}

// Data extracts the typed data from an entry.
func Data[T any](e domain.Entry) (T, bool) {
	v, ok := e.Data.(T)
	return v, ok
}

func decode[T any](entry domain.Entry, err error) (T, error) {
	data, ok := Data[T](entry)
	if !ok && entry.Data != nil {
		var zero T
		return zero, zerr.With(zerr.Wrap(domain.ErrUnexpectedData, entry.Key.String()), "type", fmt.Sprintf("%T", entry.Data))
	}
	return data, err
}
