// Package memory implements the metrics cache in process memory, for
// running without a database and for tests. Entries survive for the life
// of the process only.
package memory

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/couchcryptid/welfare-metrics-service/internal/domain"
)

// MetricsCache stores cache entries keyed by the composite
// district/year/month key. The entry ID is the composite key itself, which
// keeps MarkStale a direct lookup and preserves one-entry-per-key.
type MetricsCache struct {
	store *gocache.Cache
}

// NewMetricsCache creates an empty in-memory metrics cache. Entries never
// expire on their own; staleness is tracked by flag, not eviction, matching
// the persistent implementation.
func NewMetricsCache() *MetricsCache {
	return &MetricsCache{
		store: gocache.New(gocache.NoExpiration, 0),
	}
}

// Get returns the entry for the key, or (nil, nil) when absent.
func (c *MetricsCache) Get(_ context.Context, key domain.CacheKey) (*domain.CacheEntry, error) {
	v, ok := c.store.Get(entryID(key))
	if !ok {
		return nil, nil
	}
	entry := v.(domain.CacheEntry)
	return &entry, nil
}

// Upsert creates or replaces the entry for the key, resetting the stale flag.
func (c *MetricsCache) Upsert(_ context.Context, key domain.CacheKey, record domain.MetricsRecord, raw []byte, fetchedAt time.Time) (*domain.CacheEntry, error) {
	entry := domain.CacheEntry{
		ID:            entryID(key),
		DistrictID:    key.DistrictID,
		FinancialYear: key.FinancialYear,
		Month:         key.Month,
		Record:        record,
		RawData:       raw,
		FetchedAt:     fetchedAt,
		Stale:         false,
	}
	c.store.Set(entry.ID, entry, gocache.NoExpiration)
	return &entry, nil
}

// MarkStale flags the entry as stale. Unknown IDs are a no-op.
func (c *MetricsCache) MarkStale(_ context.Context, id string) error {
	v, ok := c.store.Get(id)
	if !ok {
		return nil
	}
	entry := v.(domain.CacheEntry)
	entry.Stale = true
	c.store.Set(id, entry, gocache.NoExpiration)
	return nil
}

func entryID(key domain.CacheKey) string {
	return fmt.Sprintf("%s:%s:%d", key.DistrictID, key.FinancialYear, key.Month)
}
