package datagov

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/welfare-metrics-service/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFetch_Success(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","records":[{"district_code":"BR001","Total_No_of_Active_Workers":"123"}]}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL, 5*time.Second, testLogger())

	records, err := c.Fetch(context.Background(), "BR001", "2024-25", 5)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "BR001", records[0]["district_code"])

	assert.Equal(t, "test-key", gotQuery.Get("api-key"))
	assert.Equal(t, "json", gotQuery.Get("format"))
	assert.Equal(t, "100", gotQuery.Get("limit"))
	assert.Equal(t, "2024-25", gotQuery.Get("filters[fin_year]"))
	assert.Equal(t, "BR001", gotQuery.Get("filters[district_code]"))
}

func TestFetch_RetriesUnfilteredOnEmptyFilteredResult(t *testing.T) {
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("filters[district_code]")
		calls = append(calls, code)
		w.Header().Set("Content-Type", "application/json")
		if code != "" {
			_, _ = w.Write([]byte(`{"status":"ok","records":[]}`))
			return
		}
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"status":"ok","records":[{"district_code":"BR001"},{"district_code":"UP049"}]}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL, 5*time.Second, testLogger())

	records, err := c.Fetch(context.Background(), "BR001", "2024-25", 5)
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, []string{"BR001", ""}, calls)
}

func TestFetch_UpstreamErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL, 5*time.Second, testLogger())

	_, err := c.Fetch(context.Background(), "BR001", "2024-25", 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstreamUnavailable))
	assert.Contains(t, err.Error(), "status 502")
}

func TestFetch_APILevelError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"error","message":"invalid api key"}`))
	}))
	defer srv.Close()

	c := NewClient("bad-key", srv.URL, 5*time.Second, testLogger())

	_, err := c.Fetch(context.Background(), "BR001", "2024-25", 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstreamUnavailable))
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestFetch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL, 20*time.Millisecond, testLogger())

	_, err := c.Fetch(context.Background(), "BR001", "2024-25", 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstreamUnavailable))
}

func TestFetch_RetryBoundedByOneTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("filters[district_code]") == "" {
			// Unfiltered retry hangs well past the client's budget.
			time.Sleep(500 * time.Millisecond)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","records":[]}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL, 100*time.Millisecond, testLogger())

	start := time.Now()
	records, err := c.Fetch(context.Background(), "BR001", "2024-25", 5)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Less(t, elapsed, 300*time.Millisecond,
		"filtered query plus retry must share a single timeout budget")
}

func TestFetch_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL, 5*time.Second, testLogger())

	for i := 0; i < 5; i++ {
		_, err := c.Fetch(context.Background(), "BR001", "2024-25", 5)
		require.Error(t, err)
	}
	hitsBeforeOpen := hits

	// The breaker is open now; further calls fail without touching the
	// upstream.
	_, err := c.Fetch(context.Background(), "BR001", "2024-25", 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstreamUnavailable))
	assert.Equal(t, hitsBeforeOpen, hits)
}
