package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/JonMunkholm/docimport/internal/reconcile"
)

// Cached keeps a snapshot of another Source for a fixed time. Both lists are
// always served from the same snapshot.
type Cached struct {
	src Source
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	snap     Snapshot
	loadedAt time.Time
	valid    bool
}

// NewCached wraps src. A non-positive ttl disables caching.
func NewCached(src Source, ttl time.Duration) *Cached {
	return &Cached{src: src, ttl: ttl, now: time.Now}
}

// Snapshot returns the cached lists, reloading them when stale.
func (c *Cached) Snapshot(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid && c.ttl > 0 && c.now().Sub(c.loadedAt) < c.ttl {
		return c.snap, nil
	}

	snap, err := Load(ctx, c.src)
	if err != nil {
		return Snapshot{}, err
	}
	c.snap, c.loadedAt, c.valid = snap, c.now(), true
	return snap, nil
}

// Invalidate forces the next call to reload.
func (c *Cached) Invalidate() {
	c.mu.Lock()
	c.valid = false
	c.mu.Unlock()
}

func (c *Cached) Disciplines(ctx context.Context) ([]reconcile.Discipline, error) {
	snap, err := c.Snapshot(ctx)
	return snap.Disciplines, err
}

func (c *Cached) DocumentTypes(ctx context.Context) ([]reconcile.DocumentType, error) {
	snap, err := c.Snapshot(ctx)
	return snap.DocumentTypes, err
}
