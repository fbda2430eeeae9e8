// Package cache holds the single-slot TTL cache that fronts the
// aggregation pipeline. The whole envelope is cached or rebuilt as a
// unit; there is no per-source partial caching.
package cache

import (
	"sync"
	"time"

	"github.com/breachwatch/breachwatch/internal/model"
	"golang.org/x/sync/singleflight"
)

// rebuildKey is the constant singleflight key: there is exactly one
// cache slot, so all concurrent rebuilds collapse onto it.
const rebuildKey = "envelope"

type entry struct {
	envelope  model.Envelope
	fetchedAt time.Time
}

// Cache is a process-lifetime, in-memory TTL cache for one envelope.
// The clock is injected so tests can control expiry.
type Cache struct {
	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	entry *entry

	group singleflight.Group
}

// New creates a cache with the given TTL. A nil clock defaults to
// time.Now.
func New(ttl time.Duration, now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{ttl: ttl, now: now}
}

// Get returns the cached envelope if one exists and is still fresh.
func (c *Cache) Get() (model.Envelope, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entry == nil || c.now().Sub(c.entry.fetchedAt) >= c.ttl {
		return model.Envelope{}, false
	}
	return c.entry.envelope, true
}

// Put stores the envelope unconditionally and resets its fetch time.
// Envelopes with failed sources are cached as-is, for up to the TTL.
func (c *Cache) Put(env model.Envelope) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = &entry{envelope: env, fetchedAt: c.now()}
}

// GetOrBuild returns the cached envelope when fresh; otherwise it runs
// build and caches the result. Concurrent callers on a stale cache share
// one in-flight build rather than racing independent rebuilds. Build
// errors are returned to every waiting caller and nothing is cached.
func (c *Cache) GetOrBuild(build func() (model.Envelope, error)) (model.Envelope, error) {
	if env, ok := c.Get(); ok {
		return env, nil
	}

	v, err, _ := c.group.Do(rebuildKey, func() (any, error) {
		// A rebuild that finished while this caller was queued serves
		// the whole queue.
		if env, ok := c.Get(); ok {
			return env, nil
		}
		env, err := build()
		if err != nil {
			return model.Envelope{}, err
		}
		c.Put(env)
		return env, nil
	})
	if err != nil {
		return model.Envelope{}, err
	}
	return v.(model.Envelope), nil
}
