package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySetGet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Hour)

	_, ok, err := m.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok, "A fresh cache has no entries")

	require.NoError(t, m.Set(ctx, "k", []byte("v1")))
	got, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v1"), got)

	// Last write wins
	require.NoError(t, m.Set(ctx, "k", []byte("v2")))
	got, _, _ = m.Get(ctx, "k")
	assert.Equal(t, []byte("v2"), got)
}

func TestMemoryExpiryIsAMiss(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Minute)

	current := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return current }

	require.NoError(t, m.Set(ctx, "k", []byte("v")))

	_, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok, "Entry is live inside the TTL")

	current = current.Add(2 * time.Minute)
	_, ok, err = m.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "An expired entry reads as a miss, not an error")

	// A new Set revives the key.
	require.NoError(t, m.Set(ctx, "k", []byte("fresh")))
	got, ok, _ := m.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("fresh"), got)
}

func TestMemoryClear(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Hour)

	require.NoError(t, m.Set(ctx, "a", []byte("1")))
	require.NoError(t, m.Set(ctx, "b", []byte("2")))
	require.NoError(t, m.Clear(ctx))

	_, ok, _ := m.Get(ctx, "a")
	assert.False(t, ok)
	_, ok, _ = m.Get(ctx, "b")
	assert.False(t, ok)
}
