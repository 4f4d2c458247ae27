package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is an in-process Cache for single-instance deployments and
// tests. The mutex only guards map integrity; overlapping recomputes
// still race benignly at the Set level.
type Memory struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemory creates an in-process cache with the given TTL.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get implements Cache. Expired entries are reported as misses and left
// in place for the next Set to overwrite.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok || m.now().After(e.expiresAt) {
		return nil, false, nil
	}
	return e.value, true, nil
}

// Set implements Cache.
func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	m.entries[key] = memoryEntry{value: value, expiresAt: m.now().Add(m.ttl)}
	m.mu.Unlock()
	return nil
}

// Clear implements Cache.
func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	m.entries = make(map[string]memoryEntry)
	m.mu.Unlock()
	return nil
}

// Close implements Cache.
func (m *Memory) Close() error { return nil }
