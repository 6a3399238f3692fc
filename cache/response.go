package cache

import (
	"context"
	"time"

	"github.com/goliatone/go-scholarship-catalog/internal/cacheinfra"
	"github.com/goliatone/go-scholarship-catalog/internal/logctx"
	"github.com/goliatone/go-scholarship-catalog/internal/metrics"
)

// Entry is a stored response body with its insertion time.
type Entry = cacheinfra.Entry

// ResponseStore is the backend behind a ResponseCache.
type ResponseStore = cacheinfra.ResponseStore

// Clock returns the current time.
type Clock func() time.Time

// NewMemoryStore returns an in-process ResponseStore.
func NewMemoryStore() ResponseStore {
	return cacheinfra.NewMemoryStore()
}

// ResponseCache stores serialized responses by fingerprint. Freshness is
// decided on read with the caller's TTL, so one entry can serve callers with
// different windows. Concurrent misses on one key may each compute and
// store; the last write wins. Backend failures are logged and count as
// misses.
type ResponseCache struct {
	store      ResponseStore
	now        Clock
	defaultTTL time.Duration
	metrics    *metrics.Metrics
}

// ResponseOption configures a ResponseCache.
type ResponseOption func(*ResponseCache)

// WithClock injects the time source.
func WithClock(now Clock) ResponseOption {
	return func(c *ResponseCache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithDefaultTTL sets the TTL used when a caller passes zero.
func WithDefaultTTL(d time.Duration) ResponseOption {
	return func(c *ResponseCache) {
		if d > 0 {
			c.defaultTTL = d
		}
	}
}

// WithMetrics records hits, misses and backend errors.
func WithMetrics(m *metrics.Metrics) ResponseOption {
	return func(c *ResponseCache) {
		c.metrics = m
	}
}

// NewResponseCache wraps store. A nil store means an in-process map.
func NewResponseCache(store ResponseStore, opts ...ResponseOption) *ResponseCache {
	if store == nil {
		store = NewMemoryStore()
	}
	c := &ResponseCache{
		store:      store,
		now:        time.Now,
		defaultTTL: DefaultTTLPolicy().Default,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the payload stored under key if it is younger than ttl.
func (c *ResponseCache) Get(ctx context.Context, key string, ttl time.Duration) ([]byte, bool) {
	const op = "cache.ResponseCache.Get"

	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	e, ok, err := c.store.Load(ctx, key)
	if err != nil {
		logctx.From(ctx).Warn("response cache load failed", "op", op, "key", key, "error", err)
		c.metrics.CacheError("load")
		c.metrics.CacheMiss()
		return nil, false
	}
	if !ok || !e.Fresh(c.now(), ttl) {
		c.metrics.CacheMiss()
		return nil, false
	}
	c.metrics.CacheHit()
	return e.Payload, true
}

// Set stores payload under key stamped with the current time.
func (c *ResponseCache) Set(ctx context.Context, key string, payload []byte) {
	const op = "cache.ResponseCache.Set"

	body := make([]byte, len(payload))
	copy(body, payload)
	err := c.store.Store(ctx, key, Entry{Key: key, Payload: body, InsertedAt: c.now()})
	if err != nil {
		logctx.From(ctx).Warn("response cache store failed", "op", op, "key", key, "error", err)
		c.metrics.CacheError("store")
		return
	}
	c.metrics.CacheStored()
}

// Len reports the number of stored entries, fresh or not.
func (c *ResponseCache) Len(ctx context.Context) int {
	n, err := c.store.Len(ctx)
	if err != nil {
		return 0
	}
	return n
}
