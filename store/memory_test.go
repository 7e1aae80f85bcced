package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/effective-security/mcptools/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_MemoryCache(t *testing.T) {
	ctx := context.Background()
	c := store.NewMemoryCache()

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	key := store.Key("current", "paris")
	assert.Equal(t, "current/paris", key)

	require.NoError(t, c.Set(ctx, key, "21°C", 0))
	v, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "21°C", v)

	require.NoError(t, c.Set(ctx, "short", "x", 10*time.Millisecond))
	v, err = c.Get(ctx, "short")
	require.NoError(t, err)
	assert.Equal(t, "x", v)

	time.Sleep(20 * time.Millisecond)
	_, err = c.Get(ctx, "short")
	assert.ErrorIs(t, err, store.ErrNotFound)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.Set(ctx, key, string(rune('a'+i)), time.Minute))
			_, err := c.Get(ctx, key)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}

func Test_MemoryCache_Locations(t *testing.T) {
	ctx := context.Background()
	c := store.NewMemoryCache()

	entries := map[string]string{}
	for range 50 {
		key := store.Key("weather", "current", gofakeit.City())
		value := gofakeit.Sentence(4)
		entries[key] = value
		require.NoError(t, c.Set(ctx, key, value, time.Minute))
	}
	for key, exp := range entries {
		v, err := c.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, exp, v)
	}
}

func Test_NoopCache(t *testing.T) {
	ctx := context.Background()
	c := store.NewNoopCache()
	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
