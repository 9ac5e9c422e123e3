package pricing

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultTTL keeps cached prices just under the UI's 30s polling
// interval, so each poll cycle gets a fresh fetch while rapid repeated
// calls inside one cycle are deduplicated.
const DefaultTTL = 25 * time.Second

type cacheEntry struct {
	price     decimal.Decimal
	fetchedAt time.Time
}

// Cache is a per-identifier price cache with a fixed time-to-live.
// It is process-local and ephemeral; entries are idempotent snapshots
// of "price at time T", so overlapping refresh cycles writing the same
// key are harmless (last writer wins).
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

// NewCache creates a cache with the given TTL
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the cached price for key if one younger than the TTL exists
func (c *Cache) Get(key string) (decimal.Decimal, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.fetchedAt) >= c.ttl {
		return decimal.Decimal{}, false
	}
	return e.price, true
}

// Put stores a freshly fetched price under key
func (c *Cache) Put(key string, price decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{price: price, fetchedAt: c.now()}
}

// split partitions keys into cached values and the identifiers that
// still need a network fetch. The cache key is prefix+"_"+id.
func (c *Cache) split(prefix string, ids []string) (hits map[string]decimal.Decimal, misses []string) {
	hits = make(map[string]decimal.Decimal)
	for _, id := range ids {
		if price, ok := c.Get(prefix + "_" + id); ok {
			hits[id] = price
		} else {
			misses = append(misses, id)
		}
	}
	return hits, misses
}
