// Package cache holds the two-namespace in-memory TTL store: raw fetched
// item lists and enriched detail lists, addressed by the same request
// fingerprint key. The cache exclusively owns entry lifetime and freshness
// decisions.
package cache

import (
	"sync"
	"time"

	"github.com/deusflow/tribune-news/internal/news"
)

type rawEntry struct {
	items    []news.Item
	storedAt time.Time
}

type detailsEntry struct {
	items    []news.Detail
	storedAt time.Time
}

// Cache is safe for concurrent use. Entries are immutable once stored; a
// refresh replaces the entry wholesale.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	raw     map[string]rawEntry
	details map[string]detailsEntry
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

func New(ttl time.Duration) *Cache {
	c := &Cache{
		ttl:     ttl,
		raw:     make(map[string]rawEntry),
		details: make(map[string]detailsEntry),
		now:     time.Now,
		stop:    make(chan struct{}),
	}

	// Evict expired entries every hour; freshness is still decided per read.
	go c.cleanupLoop()

	return c
}

func (c *Cache) Close() {
	c.once.Do(func() { close(c.stop) })
}

func (c *Cache) fresh(storedAt time.Time) bool {
	return c.now().Sub(storedAt) < c.ttl
}

// GetRaw returns the raw item list for key together with its stored-at
// timestamp, taken under one lock so the pair can never mix two entries.
// A stale value is still returned with fresh=false so the caller may decide
// to use it as a fallback.
func (c *Cache) GetRaw(key string) (items []news.Item, storedAt time.Time, fresh, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.raw[key]
	if !ok {
		return nil, time.Time{}, false, false
	}
	return entry.items, entry.storedAt, c.fresh(entry.storedAt), true
}

// PutRaw overwrites the raw entry, resets its timestamp to now and returns
// that timestamp: it identifies the stored list for a later PutDetailsIf.
func (c *Cache) PutRaw(key string, items []news.Item) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	storedAt := c.now()
	c.raw[key] = rawEntry{items: items, storedAt: storedAt}
	return storedAt
}

// InvalidateRaw removes the raw entry and, with it, the corresponding
// details entry: details are never more stale-tolerant than their source.
func (c *Cache) InvalidateRaw(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.raw, key)
	delete(c.details, key)
}

func (c *Cache) GetDetails(key string) (items []news.Detail, fresh, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.details[key]
	if !ok {
		return nil, false, false
	}
	return entry.items, c.fresh(entry.storedAt), true
}

func (c *Cache) PutDetails(key string, items []news.Detail) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.details[key] = detailsEntry{items: items, storedAt: c.now()}
}

// PutDetailsIf stores the details entry only while the raw entry it was
// derived from is still the current one, identified by its stored-at
// timestamp. Returns false when the raw list was invalidated or replaced in
// the meantime, in which case nothing is written.
func (c *Cache) PutDetailsIf(key string, items []news.Detail, rawStoredAt time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.raw[key]
	if !ok || !entry.storedAt.Equal(rawStoredAt) {
		return false
	}
	c.details[key] = detailsEntry{items: items, storedAt: c.now()}
	return true
}

func (c *Cache) InvalidateDetails(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.details, key)
}

func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stop:
			return
		}
	}
}

func (c *Cache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range c.raw {
		if !c.fresh(entry.storedAt) {
			delete(c.raw, key)
			delete(c.details, key)
		}
	}
	for key, entry := range c.details {
		if !c.fresh(entry.storedAt) {
			delete(c.details, key)
		}
	}
}
