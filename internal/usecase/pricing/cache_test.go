package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock drives the cache's notion of time without sleeping
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestCache(ttl time.Duration) (*Cache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	cache := NewCache(ttl)
	cache.now = clock.Now
	return cache, clock
}

func TestCache_HitWithinTTL(t *testing.T) {
	cache, clock := newTestCache(25 * time.Second)

	cache.Put("crypto_bitcoin", decimal.NewFromInt(100))
	clock.Advance(24 * time.Second)

	price, ok := cache.Get("crypto_bitcoin")
	require.True(t, ok)
	assert.True(t, price.Equal(decimal.NewFromInt(100)))
}

func TestCache_ExpiresAtTTL(t *testing.T) {
	cache, clock := newTestCache(25 * time.Second)

	cache.Put("crypto_bitcoin", decimal.NewFromInt(100))
	clock.Advance(25 * time.Second)

	_, ok := cache.Get("crypto_bitcoin")
	assert.False(t, ok, "an entry exactly TTL old is stale")
}

func TestCache_MissOnUnknownKey(t *testing.T) {
	cache, _ := newTestCache(25 * time.Second)

	_, ok := cache.Get("forex_USD")
	assert.False(t, ok)
}

func TestCache_PutOverwrites(t *testing.T) {
	cache, clock := newTestCache(25 * time.Second)

	cache.Put("gold_gram", decimal.NewFromInt(2400))
	clock.Advance(20 * time.Second)
	cache.Put("gold_gram", decimal.NewFromInt(2500))
	clock.Advance(20 * time.Second)

	// the rewrite restarted the TTL
	price, ok := cache.Get("gold_gram")
	require.True(t, ok)
	assert.True(t, price.Equal(decimal.NewFromInt(2500)))
}

func TestCacheSplit_PartialHit(t *testing.T) {
	cache, _ := newTestCache(25 * time.Second)

	cache.Put("crypto_bitcoin", decimal.NewFromInt(100))

	hits, misses := cache.split("crypto", []string{"bitcoin", "ethereum"})

	require.Len(t, hits, 1)
	assert.True(t, hits["bitcoin"].Equal(decimal.NewFromInt(100)))
	assert.Equal(t, []string{"ethereum"}, misses)
}

func TestCacheSplit_PrefixesSeparateCategories(t *testing.T) {
	cache, _ := newTestCache(25 * time.Second)

	cache.Put("crypto_gold", decimal.NewFromInt(1))

	_, misses := cache.split("metal", []string{"gold"})
	assert.Equal(t, []string{"gold"}, misses, "a crypto entry must not satisfy a metal lookup")
}
