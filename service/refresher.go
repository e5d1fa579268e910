package service

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNoSnapshot reports that no snapshot has been computed yet.
var ErrNoSnapshot = errors.New("service: no snapshot yet")

// Refresher recomputes snapshots on a fixed interval and serves the latest
// good one. A failed refresh keeps the previous snapshot in place.
type Refresher struct {
	engine   *Engine
	interval time.Duration

	mu     sync.RWMutex
	latest *Snapshot
}

// NewRefresher wraps an engine with a periodic refresh loop.
func NewRefresher(engine *Engine, interval time.Duration) *Refresher {
	return &Refresher{engine: engine, interval: interval}
}

// Latest returns the most recent snapshot, or ErrNoSnapshot before the
// first successful refresh.
func (r *Refresher) Latest() (*Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.latest == nil {
		return nil, ErrNoSnapshot
	}
	return r.latest, nil
}

// RefreshNow computes one snapshot immediately and installs it.
func (r *Refresher) RefreshNow(ctx context.Context) error {
	snap, err := r.engine.Compute(ctx)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.latest = snap
	r.mu.Unlock()
	return nil
}

// Run refreshes immediately, then on every tick until the context ends.
// Refresh errors are logged by the engine's logger and do not stop the loop.
func (r *Refresher) Run(ctx context.Context) error {
	if err := r.RefreshNow(ctx); err != nil {
		r.engine.log.Error("initial refresh failed", "err", err)
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.RefreshNow(ctx); err != nil {
				r.engine.log.Error("refresh failed", "err", err)
			}
		}
	}
}
