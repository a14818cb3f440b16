package domain

import (
	"encoding/json"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Status is the lifecycle state of a cache entry.
type Status string

const (
	// StatusIdle means the entry has never been fetched.
	StatusIdle Status = "idle"
	// StatusLoading means a fetch is in flight. Prior data stays visible.
	StatusLoading Status = "loading"
	// StatusSuccess means the last fetch succeeded.
	StatusSuccess Status = "success"
	// StatusError means the last fetch failed. Prior data stays visible.
	StatusError Status = "error"
)

// Entry is the cached state for one query key.
type Entry struct {
	Key    QueryKey
	Status Status
	Data   any
	Err    error

	// FetchedAt is the time of the last successful fetch.
	FetchedAt time.Time
	// UpdatedAt is the time the last fetch settled, successfully or not.
	UpdatedAt time.Time
	// Invalidated forces the next read to refetch regardless of age.
	Invalidated bool
	// Digest is a content hash of Data, zero when Data is nil.
	Digest uint64
}

// IdleEntry returns the default entry for a key that was never fetched.
func IdleEntry(key QueryKey) Entry {
	return Entry{Key: key, Status: StatusIdle}
}

// Settled reports whether the entry holds the outcome of a completed fetch.
func (e Entry) Settled() bool {
	return e.Status == StatusSuccess || e.Status == StatusError
}

// Stale reports whether a settled entry is older than staleAfter at now, or
// has been invalidated.
func (e Entry) Stale(now time.Time, staleAfter time.Duration) bool {
	if e.Invalidated {
		return true
	}
	if !e.Settled() {
		return false
	}
	return now.Sub(e.UpdatedAt) >= staleAfter
}

// Digest returns the xxhash of the JSON encoding of data. Values that cannot
// be encoded hash to zero.
func Digest(data any) uint64 {
	if data == nil {
		return 0
	}
	b, err := json.Marshal(data)
	if err != nil {
		return 0
	}
	return xxhash.Sum64(b)
}
