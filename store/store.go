// Package store provides the cache used in front of remote lookups,
// such as the weather API.
package store

import (
	"context"
	"path"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/mcptools", "store")

// ErrNotFound is returned by Get when the key is absent or expired.
var ErrNotFound = errors.New("not found")

// Cache stores string values with an expiration.
type Cache interface {
	// Get returns the value, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set stores the value, a zero ttl means no expiration.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Key builds a cache key from parts.
func Key(parts ...string) string {
	return path.Join(parts...)
}

type noop struct{}

// NewNoopCache returns a cache that stores nothing.
func NewNoopCache() Cache {
	return noop{}
}

func (noop) Get(context.Context, string) (string, error) {
	return "", ErrNotFound
}

func (noop) Set(context.Context, string, string, time.Duration) error {
	return nil
}
