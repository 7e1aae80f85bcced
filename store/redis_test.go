package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/effective-security/mcptools/store"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	rediscon "github.com/testcontainers/testcontainers-go/modules/redis"
)

func Test_RedisCache(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}

	ctx := context.Background()
	redisContainer, err := rediscon.Run(ctx, "redis:7",
		testcontainers.WithConfigModifier(func(config *container.Config) {
			config.Env = []string{
				"ALLOW_EMPTY_PASSWORD=yes",
			}
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, redisContainer.Terminate(ctx))
	})

	state, err := redisContainer.State(ctx)
	require.NoError(t, err)
	require.True(t, state.Running)

	root := fmt.Sprintf("test-%d", time.Now().Unix())

	host, err := redisContainer.ConnectionString(ctx)
	require.NoError(t, err)

	options, err := redis.ParseURL(host)
	require.NoError(t, err)

	client := redis.NewClient(options)
	require.NoError(t, client.Ping(ctx).Err(), "failed to connect to Redis")

	c := store.NewRedisCache(client, root)

	_, err = c.Get(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	key := store.Key("forecast", "paris", "2025-12-22")
	require.NoError(t, c.Set(ctx, key, "8°C / 2°C, Cloudy", time.Minute))
	v, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "8°C / 2°C, Cloudy", v)

	// stored under the prefix
	raw, err := client.Get(ctx, root+"/cache/"+key).Result()
	require.NoError(t, err)
	assert.Equal(t, v, raw)

	require.NoError(t, c.Set(ctx, "short", "x", 50*time.Millisecond))
	time.Sleep(100 * time.Millisecond)
	_, err = c.Get(ctx, "short")
	assert.ErrorIs(t, err, store.ErrNotFound)

	fromURL, err := store.NewRedisCacheFromURL(ctx, host, root)
	require.NoError(t, err)
	v, err = fromURL.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "8°C / 2°C, Cloudy", v)

	_, err = store.NewRedisCacheFromURL(ctx, "not a url", root)
	assert.ErrorContains(t, err, "invalid redis URL")
}
