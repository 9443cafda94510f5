package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/epeers/portfolio-optimizer/internal/models"
)

// MemoryCache provides an in-memory L1 cache for resolved price series
type MemoryCache struct {
	series map[string]seriesEntry
	mu     sync.RWMutex
	ttl    time.Duration
	now    func() time.Time
}

type seriesEntry struct {
	data      *models.PriceSeries
	fetchedAt time.Time
}

// NewMemoryCache creates a new in-memory cache whose entries expire after ttl
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		series: make(map[string]seriesEntry),
		ttl:    ttl,
		now:    time.Now,
	}
}

// seriesCacheKey identifies a series by ticker, lookback period and window end
func seriesCacheKey(ticker, period string, asOf time.Time) string {
	return ticker + "|" + period + "|" + asOf.Format(models.DateLayout)
}

// GetSeries retrieves a cached series if it is still fresh
func (c *MemoryCache) GetSeries(ticker, period string, asOf time.Time) (*models.PriceSeries, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.series[seriesCacheKey(ticker, period, asOf)]
	if !exists {
		return nil, false
	}
	if c.now().Sub(entry.fetchedAt) > c.ttl {
		return nil, false
	}
	return entry.data, true
}

// SetSeries caches a series
func (c *MemoryCache) SetSeries(ticker, period string, asOf time.Time, data *models.PriceSeries) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.series[seriesCacheKey(ticker, period, asOf)] = seriesEntry{
		data:      data,
		fetchedAt: c.now(),
	}
}

// Invalidate removes every cached period of a ticker
func (c *MemoryCache) Invalidate(ticker string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefix := ticker + "|"
	for key := range c.series {
		if strings.HasPrefix(key, prefix) {
			delete(c.series, key)
		}
	}
}

// Clear removes all cached data
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	c.series = make(map[string]seriesEntry)
	c.mu.Unlock()
}
