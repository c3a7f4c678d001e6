package core

import (
	"context"
	"log/slog"
	"path"
	"sync"

	"github.com/couchcryptid/calibrate-workbench/internal/observability"
)

// MetadataSource provides predictor metadata lookups.
type MetadataSource interface {
	Predictors(ctx context.Context, path string) ([]string, error)
	PredictorMetadata(ctx context.Context, path string) (Metadata, error)
}

// CachedMetadata wraps a MetadataSource with an in-memory LRU cache keyed
// by predictor path. Metadata is immutable for a given dataset path, so
// entries never expire; the cache is bounded by entry count only.
type CachedMetadata struct {
	inner   MetadataSource
	cache   *lruCache
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewCachedMetadata creates a cache decorator around a metadata source.
func NewCachedMetadata(inner MetadataSource, maxEntries int, logger *slog.Logger, metrics *observability.Metrics) *CachedMetadata {
	return &CachedMetadata{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		logger:  logger,
		metrics: metrics,
	}
}

// Predictors passes through to the source; the code listing is cheap and
// the backend uses it to warm its own cache.
func (c *CachedMetadata) Predictors(ctx context.Context, path string) ([]string, error) {
	return c.inner.Predictors(ctx, path)
}

// PredictorMetadata returns cached metadata when present. Only successful
// lookups are cached so a predictor that appears later can still be
// resolved on re-trigger.
func (c *CachedMetadata) PredictorMetadata(ctx context.Context, path string) (Metadata, error) {
	if md, ok := c.cache.get(path); ok {
		c.metrics.MetadataCache.WithLabelValues("hit").Inc()
		return md, nil
	}
	c.metrics.MetadataCache.WithLabelValues("miss").Inc()

	md, err := c.inner.PredictorMetadata(ctx, path)
	if err != nil {
		return md, err
	}
	c.cache.put(path, md)
	return md, nil
}

// Warmup primes the cache for every predictor found under base. It is
// fire-and-forget: individual failures are logged and skipped, and the
// first error listing the base path is the only fatal one.
func (c *CachedMetadata) Warmup(ctx context.Context, base string) error {
	codes, err := c.inner.Predictors(ctx, base)
	if err != nil {
		return err
	}
	for _, code := range codes {
		p := path.Join(base, code)
		if _, err := c.PredictorMetadata(ctx, p); err != nil {
			c.logger.Warn("metadata warmup skipped predictor", "path", p, "error", err)
		}
	}
	return nil
}

// lruCache is a small thread-safe LRU for predictor metadata.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value Metadata
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (Metadata, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return Metadata{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value Metadata) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
