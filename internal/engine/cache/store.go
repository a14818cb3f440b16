// Package cache implements the in-memory query cache: entries keyed by
// domain.QueryKey, exact-key subscriptions and prefix invalidation.
package cache

import (
	"slices"
	"sync"
	"sync/atomic"

	"go.trai.ch/quill/internal/core/domain"
)

// Callback receives the new entry after every change to a subscribed key.
type Callback func(domain.Entry)

// InvalidateHook receives the subscribed keys matched by an invalidation,
// ordered by domain.CompareKeys.
type InvalidateHook func(keys []domain.QueryKey)

// Ticket is the outcome of Begin.
type Ticket struct {
	// Seq is the sequence number of the fetch the caller should run or join.
	// Zero means no fetch was ever started for the key.
	Seq uint64
	// Started reports whether Begin issued Seq to this caller.
	Started bool
	// Entry is the entry as it was before Begin.
	Entry domain.Entry
}

type slot struct {
	entry domain.Entry
	// seq is the latest sequence number issued for the key.
	seq uint64
	// invalidatedAt is the value of seq when the key was last invalidated.
	invalidatedAt uint64
}

type subscription struct {
	cb     Callback
	active atomic.Bool
}

type subscriberList struct {
	key  domain.QueryKey
	list []*subscription
}

type hookHandle struct {
	fn InvalidateHook
}

type notification struct {
	entry domain.Entry
	subs  []*subscription
	hooks []*hookHandle
	keys  []domain.QueryKey
}

func (n notification) deliver() {
	for _, s := range n.subs {
		if s.active.Load() {
			s.cb(n.entry)
		}
	}
	if len(n.keys) > 0 {
		for _, h := range n.hooks {
			h.fn(n.keys)
		}
	}
}

// Store is a process-wide query cache with an explicit lifecycle.
//
// Notifications are delivered outside the store lock, one at a time, in the
// order the changes were applied. A callback may call back into the store;
// the resulting notifications are queued behind the current one.
type Store struct {
	mu       sync.Mutex
	entries  map[string]*slot
	subs     map[string]*subscriberList
	hooks    []*hookHandle
	queue    []notification
	draining bool
	closed   bool
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		entries: make(map[string]*slot),
		subs:    make(map[string]*subscriberList),
	}
}

// Get returns the entry for key, or an idle entry if the key was never written.
func (s *Store) Get(key domain.QueryKey) domain.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sl, ok := s.entries[key.String()]; ok {
		return sl.entry
	}
	return domain.IdleEntry(key)
}

// Set replaces the entry for key with updater's result and notifies the
// key's subscribers in registration order.
func (s *Store) Set(key domain.QueryKey, updater func(domain.Entry) domain.Entry) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	sl := s.slotLocked(key)
	s.applyLocked(sl, key, updater)
	s.mu.Unlock()

	s.drain()
}

// Begin issues a new sequence number for key and marks its entry loading when
// need reports that the current entry requires a fetch. Prior data is kept.
// need runs under the store lock and must not call back into the store.
func (s *Store) Begin(key domain.QueryKey, need func(domain.Entry) bool) Ticket {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Ticket{Entry: domain.IdleEntry(key)}
	}

	sl := s.slotLocked(key)
	prev := sl.entry
	if !need(prev) {
		s.mu.Unlock()
		return Ticket{Seq: sl.seq, Entry: prev}
	}

	sl.seq++
	seq := sl.seq
	s.applyLocked(sl, key, func(e domain.Entry) domain.Entry {
		e.Status = domain.StatusLoading
		e.Invalidated = false
		return e
	})
	s.mu.Unlock()

	s.drain()
	return Ticket{Seq: seq, Started: true, Entry: prev}
}

// Pending reports whether seq is the latest sequence issued for key and its
// fetch has not committed yet.
func (s *Store) Pending(key domain.QueryKey, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.entries[key.String()]
	return ok && sl.seq == seq && sl.entry.Status == domain.StatusLoading
}

// Commit applies updater only if seq is still the latest sequence issued for
// key. It reports whether the update was applied. An entry invalidated while
// its fetch was in flight stays invalidated after the commit.
func (s *Store) Commit(key domain.QueryKey, seq uint64, updater func(domain.Entry) domain.Entry) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	sl, ok := s.entries[key.String()]
	if !ok || sl.seq != seq {
		s.mu.Unlock()
		return false
	}
	invalidated := sl.invalidatedAt >= seq
	s.applyLocked(sl, key, func(e domain.Entry) domain.Entry {
		e = updater(e)
		e.Invalidated = invalidated
		return e
	})
	s.mu.Unlock()

	s.drain()
	return true
}

// Invalidate marks every entry whose key has prefix as a prefix stale, then
// hands the matching keys that currently have subscribers to the registered
// invalidation hooks.
func (s *Store) Invalidate(prefix domain.QueryKey) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	matched := make([]*slot, 0)
	for _, sl := range s.entries {
		if sl.entry.Key.HasPrefix(prefix) {
			matched = append(matched, sl)
		}
	}
	slices.SortFunc(matched, func(a, b *slot) int { return domain.CompareKeys(a.entry.Key, b.entry.Key) })

	for _, sl := range matched {
		sl.invalidatedAt = sl.seq
		s.applyLocked(sl, sl.entry.Key, func(e domain.Entry) domain.Entry {
			e.Invalidated = true
			return e
		})
	}

	var observed []domain.QueryKey
	for _, sub := range s.subs {
		if len(sub.list) > 0 && sub.key.HasPrefix(prefix) {
			observed = append(observed, sub.key)
		}
	}
	slices.SortFunc(observed, domain.CompareKeys)
	if len(observed) > 0 && len(s.hooks) > 0 {
		s.queue = append(s.queue, notification{
			hooks: slices.Clone(s.hooks),
			keys:  observed,
		})
	}
	s.mu.Unlock()

	s.drain()
}

// Subscribe registers cb for changes to the exact key. The returned function
// removes the subscription; calling it more than once is a no-op.
func (s *Store) Subscribe(key domain.QueryKey, cb Callback) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return func() {}
	}

	sub := &subscription{cb: cb}
	sub.active.Store(true)

	k := key.String()
	list, ok := s.subs[k]
	if !ok {
		list = &subscriberList{key: key}
		s.subs[k] = list
	}
	list.list = append(list.list, sub)

	return func() {
		if !sub.active.Swap(false) {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()

		list, ok := s.subs[k]
		if !ok {
			return
		}
		list.list = slices.DeleteFunc(list.list, func(other *subscription) bool { return other == sub })
		if len(list.list) == 0 {
			delete(s.subs, k)
		}
	}
}

// Subscribers returns the number of active subscriptions for the exact key.
func (s *Store) Subscribers(key domain.QueryKey) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if list, ok := s.subs[key.String()]; ok {
		return len(list.list)
	}
	return 0
}

// OnInvalidate registers a hook called after every invalidation that matches
// subscribed keys. The returned function removes the hook.
func (s *Store) OnInvalidate(hook InvalidateHook) (remove func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return func() {}
	}

	h := &hookHandle{fn: hook}
	s.hooks = append(s.hooks, h)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.hooks = slices.DeleteFunc(s.hooks, func(other *hookHandle) bool { return other == h })
	}
}

// Keys returns every key with an entry, parents before their descendants.
func (s *Store) Keys() []domain.QueryKey {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]domain.QueryKey, 0, len(s.entries))
	for _, sl := range s.entries {
		keys = append(keys, sl.entry.Key)
	}
	slices.SortFunc(keys, domain.CompareKeys)
	return keys
}

// Close drops all entries, subscriptions and hooks. Every later call is a no-op.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, list := range s.subs {
		for _, sub := range list.list {
			sub.active.Store(false)
		}
	}
	s.entries = make(map[string]*slot)
	s.subs = make(map[string]*subscriberList)
	s.hooks = nil
	s.queue = nil
	s.closed = true
}

// Closed reports whether Close was called.
func (s *Store) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Store) slotLocked(key domain.QueryKey) *slot {
	k := key.String()
	sl, ok := s.entries[k]
	if !ok {
		sl = &slot{entry: domain.IdleEntry(key)}
		s.entries[k] = sl
	}
	return sl
}

func (s *Store) applyLocked(sl *slot, key domain.QueryKey, updater func(domain.Entry) domain.Entry) {
	next := updater(sl.entry)
	next.Key = key
	next.Digest = domain.Digest(next.Data)
	sl.entry = next

	if list, ok := s.subs[key.String()]; ok && len(list.list) > 0 {
		s.queue = append(s.queue, notification{
			entry: next,
			subs:  slices.Clone(list.list),
		})
	}
}

// drain delivers queued notifications. Only one goroutine drains at a time;
// others return immediately and their notifications are delivered in order
// by the active drainer.
func (s *Store) drain() {
	s.mu.Lock()
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true

	for len(s.queue) > 0 {
		n := s.queue[0]
		s.queue[0] = notification{}
		s.queue = s.queue[1:]
		s.mu.Unlock()
		n.deliver()
		s.mu.Lock()
	}

	s.draining = false
	s.mu.Unlock()
}
