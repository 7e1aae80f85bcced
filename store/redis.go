package store

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/redis/go-redis/v9"
)

// The redis cache keys are namespaced as `<prefix>/cache/<key>`.
type redisCache struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisCache returns a Cache backed by redis.
func NewRedisCache(client redis.UniversalClient, prefix string) Cache {
	return &redisCache{
		client: client,
		prefix: prefix,
	}
}

// NewRedisCacheFromURL connects to the redis server at url,
// e.g. redis://localhost:6379/0
func NewRedisCacheFromURL(ctx context.Context, url, prefix string) (Cache, error) {
	options, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "invalid redis URL")
	}
	client := redis.NewClient(options)
	if err = client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "failed to connect to redis")
	}
	logger.ContextKV(ctx, xlog.DEBUG, "status", "connected", "addr", options.Addr)
	return NewRedisCache(client, prefix), nil
}

func (m *redisCache) key(key string) string {
	return Key(m.prefix, "cache", key)
}

func (m *redisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := m.client.Get(ctx, m.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", errors.Wrap(err, "failed to get value from redis")
	}
	return val, nil
}

func (m *redisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	err := m.client.Set(ctx, m.key(key), value, ttl).Err()
	if err != nil {
		return errors.Wrap(err, "failed to store value in redis")
	}
	return nil
}
