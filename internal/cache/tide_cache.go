package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
	"github.com/shorecast/shorecast/internal/config"
	"github.com/shorecast/shorecast/internal/models"
)

// TideRecord is the stored result for one (coordinate-bucket, day) key.
type TideRecord struct {
	LocationKey string                     `json:"locationKey" dynamodbav:"locationKey"`
	Day         string                     `json:"day" dynamodbav:"day"`
	Heights     []models.TideSample        `json:"heights" dynamodbav:"heights"`
	Extremes    []models.DailyTideExtremes `json:"extremes" dynamodbav:"extremes"`
	Attribution string                     `json:"attribution" dynamodbav:"attribution"`
	FetchedAt   int64                      `json:"fetchedAt" dynamodbav:"fetchedAt"`
	TTL         int64                      `json:"ttl" dynamodbav:"ttl"`
}

type clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// CacheEntry wraps the cached record with its expiry.
type CacheEntry struct {
	Data      *TideRecord
	ExpiresAt time.Time
}

// TideCache is a short-TTL LRU cache of normalized tide results, optionally
// backed by a DynamoDB layer that survives restarts. Staleness is detected
// lazily at read time; entries are superseded, never proactively evicted.
type TideCache struct {
	lru          *lru.Cache[string, *CacheEntry]
	dynamo       *DynamoTideCache
	ttl          time.Duration
	clock        clock
	mu           sync.RWMutex
	lruHits      uint64
	lruMisses    uint64
	dynamoHits   uint64
	dynamoMisses uint64
}

// NewTideCache creates the cache. dynamo may be nil for memory-only operation.
func NewTideCache(cfg *config.CacheConfig, dynamo *DynamoTideCache) (*TideCache, error) {
	lruCache, err := lru.New[string, *CacheEntry](cfg.TideLRUSize)
	if err != nil {
		return nil, fmt.Errorf("creating LRU cache: %w", err)
	}

	return &TideCache{
		lru:    lruCache,
		dynamo: dynamo,
		ttl:    cfg.GetTideTTL(),
		clock:  systemClock{},
	}, nil
}

// CacheKey buckets a coordinate to ~100m precision and combines it with the
// local calendar day.
func CacheKey(lat, lon float64, day time.Time) string {
	return fmt.Sprintf("%.3f,%.3f:%s", lat, lon, day.Format("2006-01-02"))
}

// Get returns the fresh record for key, or nil when absent or stale.
func (c *TideCache) Get(ctx context.Context, key string) (*TideRecord, error) {
	c.mu.Lock()
	if entry, ok := c.lru.Get(key); ok {
		if c.clock.Now().Before(entry.ExpiresAt) {
			c.lruHits++
			c.mu.Unlock()
			return entry.Data, nil
		}
		c.lru.Remove(key)
	}
	c.lruMisses++
	c.mu.Unlock()

	if c.dynamo == nil {
		return nil, nil
	}

	record, err := c.dynamo.GetRecord(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("getting tide record from DynamoDB: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if record != nil {
		c.dynamoHits++
		// Promotion keeps the record's original freshness window: the memory
		// entry expires when the persistent record does, at the latest.
		expiresAt := c.clock.Now().Add(c.ttl)
		if record.TTL > 0 {
			if capAt := time.Unix(record.TTL, 0); capAt.Before(expiresAt) {
				expiresAt = capAt
			}
		}
		c.lru.Add(key, &CacheEntry{
			Data:      record,
			ExpiresAt: expiresAt,
		})
		return record, nil
	}
	c.dynamoMisses++

	return nil, nil
}

// Save stores a freshly fetched record under key.
func (c *TideCache) Save(ctx context.Context, key string, record *TideRecord) error {
	c.mu.Lock()
	record.FetchedAt = c.clock.Now().Unix()
	c.lru.Add(key, &CacheEntry{
		Data:      record,
		ExpiresAt: c.clock.Now().Add(c.ttl),
	})
	c.mu.Unlock()

	if c.dynamo == nil {
		return nil
	}

	if err := c.dynamo.SaveRecord(ctx, *record); err != nil {
		// The memory layer already holds the record; losing the persistent
		// write only costs a refetch after restart.
		log.Warn().Err(err).Str("key", key).Msg("Persisting tide record failed")
	}
	return nil
}

// Stats returns cache hit/miss counters.
func (c *TideCache) Stats() map[string]uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return map[string]uint64{
		"lru_hits":      c.lruHits,
		"lru_misses":    c.lruMisses,
		"dynamo_hits":   c.dynamoHits,
		"dynamo_misses": c.dynamoMisses,
	}
}

// Clear removes all entries from the memory layer.
func (c *TideCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}
