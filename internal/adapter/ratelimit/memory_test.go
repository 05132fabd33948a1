package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Allow(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		result, err := store.Allow(ctx, "tips:1.2.3.4", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.Equal(t, 3-i, result.Remaining)
	}

	result, err := store.Allow(ctx, "tips:1.2.3.4", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, result.Allowed)

	// Independent key still has headroom.
	result, err = store.Allow(ctx, "tips:5.6.7.8", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestMemoryStore_WindowRollover(t *testing.T) {
	store := NewMemoryStore()
	current := time.Now()
	store.now = func() time.Time { return current }

	ctx := context.Background()
	_, err := store.Allow(ctx, "k", 1, time.Minute)
	require.NoError(t, err)

	result, err := store.Allow(ctx, "k", 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, result.Allowed)

	current = current.Add(2 * time.Minute)

	result, err = store.Allow(ctx, "k", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestMemoryStore_SubSecondWindow(t *testing.T) {
	store := NewMemoryStore()
	current := time.Now()
	store.now = func() time.Time { return current }

	ctx := context.Background()
	result, err := store.Allow(ctx, "k", 1, 100*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.GreaterOrEqual(t, result.ResetAt, current.Unix())

	result, err = store.Allow(ctx, "k", 1, 100*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, result.Allowed)

	current = current.Add(200 * time.Millisecond)

	result, err = store.Allow(ctx, "k", 1, 100*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, result.Allowed, "a later window starts a fresh count")
}

func TestMemoryStore_ConcurrentCounting(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	const workers = 50
	var allowed int64
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := store.Allow(ctx, "shared", 10, time.Minute)
			assert.NoError(t, err)
			if result.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(10), allowed, "exactly the limit should be admitted")
}
