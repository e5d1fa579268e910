// Package snapcache stores computed curve snapshots keyed by issuer so
// restarts and sibling processes can serve the last good curves.
package snapcache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/meenmo/bondrv/curve"
)

// ErrNotFound reports a key with no cached snapshot.
var ErrNotFound = errors.New("snapcache: not found")

// Cache stores and retrieves yield curves by key.
type Cache interface {
	Put(ctx context.Context, key string, c *curve.YieldCurve, ttl time.Duration) error
	Get(ctx context.Context, key string) (*curve.YieldCurve, error)
	Close() error
}

type memoryEntry struct {
	curve   *curve.YieldCurve
	expires time.Time
}

// Memory is an in-process Cache. Zero TTL entries never expire.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemory builds an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memoryEntry), now: time.Now}
}

func (m *Memory) Put(ctx context.Context, key string, c *curve.YieldCurve, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var expires time.Time
	if ttl > 0 {
		expires = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = memoryEntry{curve: c, expires: expires}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Get(ctx context.Context, key string) (*curve.YieldCurve, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if !e.expires.IsZero() && m.now().After(e.expires) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, ErrNotFound
	}
	return e.curve, nil
}

func (m *Memory) Close() error { return nil }
