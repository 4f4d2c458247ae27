// Package cache provides time-bounded memoization of expensive computed
// results, keyed by opaque strings. An entry older than the TTL is a
// miss, not an eviction event: stale values sit in place until the next
// Set overwrites them. Concurrent callers racing on the same miss may
// both recompute and overwrite — recomputation is idempotent, so
// last-write-wins is fine and no cross-call lock is taken.
package cache

import "context"

// Cache is the injectable TTL store consumed by the engine.
type Cache interface {
	// Get returns the value and true on a fresh hit, or false on a
	// miss (absent or expired).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores a value, restarting its TTL.
	Set(ctx context.Context, key string, value []byte) error
	// Clear drops every entry.
	Clear(ctx context.Context) error
	Close() error
}
