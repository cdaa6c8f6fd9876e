package core

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// recordCache keeps the most recently loaded rows of each table.
//
// The cached slice is handed to every caller and must be treated as
// read-only. Concurrent misses for one table share a single load, which
// runs detached from any one caller's cancellation and is bounded by
// LoadTimeout instead.
type recordCache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
	gens    map[string]uint64 // Bumped by invalidate
	epoch   uint64            // Bumped by invalidateAll
	group   singleflight.Group
}

type cacheEntry struct {
	rows     []Row
	loadedAt time.Time
}

// stamp identifies the invalidation state a load started under.
type stamp struct{ epoch, gen uint64 }

func newRecordCache(ttl time.Duration, now func() time.Time) *recordCache {
	if now == nil {
		now = time.Now
	}
	return &recordCache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]cacheEntry),
		gens:    make(map[string]uint64),
	}
}

// get returns the rows for key, loading them from src on a miss.
// hit reports whether the rows came from the cache. A caller whose ctx ends
// stops waiting without failing the others sharing the load.
func (c *recordCache) get(ctx context.Context, key string, src Source) (rows []Row, hit bool, err error) {
	if c.ttl > 0 {
		c.mu.Lock()
		e, ok := c.entries[key]
		c.mu.Unlock()
		if ok && c.now().Sub(e.loadedAt) < c.ttl {
			return e.rows, true, nil
		}
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		return c.load(loadCtx, key, src)
	})

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		return res.Val.([]Row), false, nil
	}
}

// load reads src and stores the rows unless key was invalidated meanwhile.
func (c *recordCache) load(ctx context.Context, key string, src Source) ([]Row, error) {
	c.mu.Lock()
	started := c.stampLocked(key)
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, LoadTimeout)
	defer cancel()

	loaded, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	if loaded == nil {
		loaded = []Row{}
	}
	if c.ttl > 0 {
		c.mu.Lock()
		if c.stampLocked(key) == started {
			c.entries[key] = cacheEntry{rows: loaded, loadedAt: c.now()}
		}
		c.mu.Unlock()
	}
	return loaded, nil
}

func (c *recordCache) stampLocked(key string) stamp {
	return stamp{epoch: c.epoch, gen: c.gens[key]}
}

// invalidate drops the cached rows for key. A load already in flight
// still answers its waiters but is not cached.
func (c *recordCache) invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.gens[key]++
	c.mu.Unlock()
	c.group.Forget(key)
}

// invalidateAll drops every cached table.
func (c *recordCache) invalidateAll() {
	c.mu.Lock()
	keys := make(map[string]struct{}, len(c.entries)+len(c.gens))
	for k := range c.entries {
		keys[k] = struct{}{}
	}
	for k := range c.gens {
		keys[k] = struct{}{}
	}
	c.entries = make(map[string]cacheEntry)
	c.epoch++
	c.mu.Unlock()

	for k := range keys {
		c.group.Forget(k)
	}
}
