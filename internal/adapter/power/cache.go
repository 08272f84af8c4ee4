package power

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cattlecomfort/thi-service/internal/domain"
	"github.com/cattlecomfort/thi-service/internal/observability"
)

// Fetcher retrieves daily weather records for a coordinate and date range.
type Fetcher interface {
	FetchDaily(ctx context.Context, lat, lon float64, start, end time.Time) ([]domain.DailyRecord, error)
}

// CachedFetcher wraps a Fetcher with an in-memory LRU cache keyed by
// location and date range, so repeated assessments of the same period do
// not re-hit the POWER API.
type CachedFetcher struct {
	inner   Fetcher
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedFetcher creates a cache decorator around a fetcher.
func NewCachedFetcher(inner Fetcher, maxEntries int, metrics *observability.Metrics) *CachedFetcher {
	return &CachedFetcher{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedFetcher) FetchDaily(ctx context.Context, lat, lon float64, start, end time.Time) ([]domain.DailyRecord, error) {
	key := fmt.Sprintf("%.4f|%.4f|%s|%s", lat, lon, start.Format("20060102"), end.Format("20060102"))
	if records, ok := c.cache.get(key); ok {
		c.metrics.PowerCache.WithLabelValues("hit").Inc()
		return records, nil
	}
	c.metrics.PowerCache.WithLabelValues("miss").Inc()

	records, err := c.inner.FetchDaily(ctx, lat, lon, start, end)
	if err != nil {
		return records, err
	}
	// Only cache non-empty results so transiently missing data can be retried.
	if len(records) > 0 {
		c.cache.put(key, records)
	}
	return records, nil
}

// lruCache is a simple thread-safe LRU cache for fetched daily series.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value []domain.DailyRecord
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) ([]domain.DailyRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value []domain.DailyRecord) {
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
	evicted := c.tail
	c.remove(evicted)
	delete(c.entries, evicted.key)
}
