package store

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value   string
	expires time.Time
}

type inMemory struct {
	mu      sync.RWMutex
	storage map[string]entry
}

// NewMemoryCache returns a process local cache.
func NewMemoryCache() Cache {
	return &inMemory{}
}

func (m *inMemory) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	e, ok := m.storage[key]
	m.mu.RUnlock()

	if !ok {
		return "", ErrNotFound
	}
	if !e.expires.IsZero() && !time.Now().Before(e.expires) {
		m.mu.Lock()
		// the entry may have been refreshed meanwhile
		if cur, ok := m.storage[key]; ok && cur.expires.Equal(e.expires) {
			delete(m.storage, key)
		}
		m.mu.Unlock()
		return "", ErrNotFound
	}
	return e.value, nil
}

func (m *inMemory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storage == nil {
		// create on first use
		m.storage = make(map[string]entry)
	}
	e := entry{value: value}
	if ttl > 0 {
		e.expires = time.Now().Add(ttl)
	}
	m.storage[key] = e
	return nil
}
