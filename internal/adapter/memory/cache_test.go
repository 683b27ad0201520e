package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/welfare-metrics-service/internal/domain"
)

func testKey() domain.CacheKey {
	return domain.CacheKey{DistrictID: "d-br001", FinancialYear: "2024-25", Month: 5}
}

func testRecord(workers int64) domain.MetricsRecord {
	c := domain.NewCounter(workers)
	return domain.MetricsRecord{ActiveWorkers: &c, Origin: domain.OriginUpstream}
}

func TestCache_GetMissing(t *testing.T) {
	cache := NewMetricsCache()

	entry, err := cache.Get(context.Background(), testKey())
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestCache_UpsertThenGet(t *testing.T) {
	cache := NewMetricsCache()
	fetchedAt := time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)

	stored, err := cache.Upsert(context.Background(), testKey(), testRecord(42), []byte(`{"a":1}`), fetchedAt)
	require.NoError(t, err)
	require.NotNil(t, stored)

	entry, err := cache.Get(context.Background(), testKey())
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, stored.ID, entry.ID)
	assert.Equal(t, "d-br001", entry.DistrictID)
	assert.Equal(t, fetchedAt, entry.FetchedAt)
	assert.False(t, entry.Stale)
	require.NotNil(t, entry.Record.ActiveWorkers)
	assert.Equal(t, "42", entry.Record.ActiveWorkers.String())
}

func TestCache_UpsertReplacesAndResetsStale(t *testing.T) {
	cache := NewMetricsCache()
	ctx := context.Background()

	first, err := cache.Upsert(ctx, testKey(), testRecord(1), nil, time.Now())
	require.NoError(t, err)
	require.NoError(t, cache.MarkStale(ctx, first.ID))

	second, err := cache.Upsert(ctx, testKey(), testRecord(2), nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "one entry per key")

	entry, err := cache.Get(ctx, testKey())
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.False(t, entry.Stale)
	assert.Equal(t, "2", entry.Record.ActiveWorkers.String())
}

func TestCache_MarkStale(t *testing.T) {
	cache := NewMetricsCache()
	ctx := context.Background()

	stored, err := cache.Upsert(ctx, testKey(), testRecord(7), nil, time.Now())
	require.NoError(t, err)

	require.NoError(t, cache.MarkStale(ctx, stored.ID))

	entry, err := cache.Get(ctx, testKey())
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.True(t, entry.Stale)
}

func TestCache_MarkStaleUnknownID(t *testing.T) {
	cache := NewMetricsCache()
	assert.NoError(t, cache.MarkStale(context.Background(), "no-such-entry"))
}

func TestCache_KeysAreIndependent(t *testing.T) {
	cache := NewMetricsCache()
	ctx := context.Background()

	_, err := cache.Upsert(ctx, testKey(), testRecord(1), nil, time.Now())
	require.NoError(t, err)

	other := testKey()
	other.Month = 6
	entry, err := cache.Get(ctx, other)
	require.NoError(t, err)
	assert.Nil(t, entry)
}
