package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/urbsense/location-insight-service/internal/models"
)

// Cache defines the interface for analysis caching implementations.
// Get returns cached data if present and not expired, Set stores data with TTL.
type Cache interface {
	Get(ctx context.Context, key string) (models.LocationAnalysis, bool, error)
	Set(ctx context.Context, key string, value models.LocationAnalysis, ttl time.Duration) error
}

// Key builds the cache key for a coordinate, rounded to four decimals so
// near-identical pins share an entry.
func Key(c models.Coordinate) string {
	return fmt.Sprintf("%.4f,%.4f", c.Latitude, c.Longitude)
}

// InMemoryCache implements Cache using an in-memory map with TTL-based
// expiration. Expired entries are removed on access. Safe for concurrent use.
type InMemoryCache struct {
	mu   sync.RWMutex
	data map[string]cacheEntry
}

type cacheEntry struct {
	value     models.LocationAnalysis
	expiresAt time.Time
}

// NewInMemoryCache creates a new in-memory cache instance.
func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{
		data: make(map[string]cacheEntry),
	}
}

// Get retrieves a cached analysis for the key if present and not expired.
// Returns (data, true, nil) on cache hit, (zero, false, nil) on miss or
// expiration.
func (c *InMemoryCache) Get(ctx context.Context, key string) (models.LocationAnalysis, bool, error) {
	c.mu.RLock()
	entry, ok := c.data[key]
	c.mu.RUnlock()
	if !ok {
		return models.LocationAnalysis{}, false, nil
	}

	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.data, key)
		c.mu.Unlock()
		return models.LocationAnalysis{}, false, nil
	}

	return entry.value, true, nil
}

// Set stores an analysis in cache with the specified TTL duration.
func (c *InMemoryCache) Set(ctx context.Context, key string, value models.LocationAnalysis, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = cacheEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}
