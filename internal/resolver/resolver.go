// Package resolver implements the tiered metrics-resolution pipeline:
// rate check, district lookup, fresh cache, live fetch, stale cache, and
// synthetic generation. Citizens checking entitlements must never see a
// broken screen, so every data-availability failure terminates in a
// successful response carrying degraded data plus a provenance tag; only
// invalid input and rate limiting surface as request failures.
package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/welfare-metrics-service/internal/domain"
	"github.com/couchcryptid/welfare-metrics-service/internal/observability"
)

// Source is the provenance tag on a resolution.
type Source string

const (
	SourceCache    Source = "cache"
	SourceLive     Source = "live"
	SourceFallback Source = "fallback"
)

// RateLimiter gates requests per client identifier.
type RateLimiter interface {
	Allow(clientID string) bool
}

// EventPublisher receives one event per completed resolution. Optional;
// publish failures never affect the response.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.ResolutionEvent) error
}

// Resolution is the pipeline's answer: a record, where it came from, and
// when it was fetched.
type Resolution struct {
	DistrictID    string
	District      *domain.District
	FinancialYear string
	Month         int
	Record        domain.MetricsRecord
	Source        Source
	Stale         bool
	CachedAt      time.Time
}

// Placement is the nearest-district answer for a coordinate.
type Placement struct {
	District   *domain.District
	City       *domain.FallbackCity
	DistanceKm float64
	Covered    bool
	Degraded   bool
}

// Options configures a Resolver. Districts, Cache, and Events may be nil;
// the pipeline degrades accordingly.
type Options struct {
	Districts  domain.DistrictStore
	Cache      domain.MetricsCache
	Provider   domain.MetricsProvider
	Limiter    RateLimiter
	Normalizer *domain.Normalizer
	Events     EventPublisher

	CacheTTL         time.Duration
	CoverageRadiusKm float64

	Clock   clockwork.Clock
	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// Resolver orchestrates the resolution states using injected collaborators.
type Resolver struct {
	districts  domain.DistrictStore
	cache      domain.MetricsCache
	provider   domain.MetricsProvider
	limiter    RateLimiter
	normalizer *domain.Normalizer
	events     EventPublisher

	ttl        time.Duration
	coverageKm float64

	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Resolver, applying defaults of 24h cache TTL, 50 km
// coverage radius, and the real clock.
func New(opts Options) *Resolver {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 24 * time.Hour
	}
	if opts.CoverageRadiusKm <= 0 {
		opts.CoverageRadiusKm = 50
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Resolver{
		districts:  opts.Districts,
		cache:      opts.Cache,
		provider:   opts.Provider,
		limiter:    opts.Limiter,
		normalizer: opts.Normalizer,
		events:     opts.Events,
		ttl:        opts.CacheTTL,
		coverageKm: opts.CoverageRadiusKm,
		clock:      opts.Clock,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
	}
}

// Resolve answers a metrics request. The only errors it returns are
// domain.ErrRateLimited; every other failure path produces a successful
// Resolution from a degraded source. A panic anywhere past the rate check
// is recovered into a synthetic resolution.
func (r *Resolver) Resolve(ctx context.Context, req domain.MetricsRequest) (res Resolution, err error) {
	if !r.limiter.Allow(req.ClientID) {
		r.metrics.RateLimitDecisions.WithLabelValues("denied").Inc()
		return Resolution{}, domain.ErrRateLimited
	}
	r.metrics.RateLimitDecisions.WithLabelValues("allowed").Inc()

	start := r.clock.Now()
	defer func() {
		if p := recover(); p != nil {
			r.metrics.ResolutionPanics.Inc()
			r.logger.Error("resolution panicked, serving synthetic data",
				"panic", p, "district_id", req.DistrictID)
			res = r.synthetic(req)
			err = nil
		}
		r.finish(ctx, req, res, start)
	}()

	res = r.resolve(ctx, req)
	return res, nil
}

// resolve walks DISTRICT_LOOKUP through SYNTHETIC.
func (r *Resolver) resolve(ctx context.Context, req domain.MetricsRequest) Resolution {
	// DISTRICT_LOOKUP. An unreachable store means degraded mode: the raw
	// identifier stands in for the district code and all cache interaction
	// is skipped for the rest of this request.
	var district *domain.District
	if r.districts != nil {
		d, err := r.districts.FindByID(ctx, req.DistrictID)
		if err != nil {
			r.logger.Warn("district store unreachable, continuing degraded",
				"district_id", req.DistrictID, "error", err)
		} else {
			district = d
		}
	}
	useCache := district != nil && r.cache != nil

	key := domain.CacheKey{
		DistrictID:    req.DistrictID,
		FinancialYear: req.FinancialYear,
		Month:         req.Month,
	}

	// FRESH_CACHE. An unreachable cache store is treated as a miss.
	var cached *domain.CacheEntry
	if useCache {
		entry, err := r.cache.Get(ctx, key)
		switch {
		case err != nil:
			r.metrics.CacheOps.WithLabelValues("get", "error").Inc()
			r.logger.Warn("cache lookup failed, treating as miss",
				"district_id", req.DistrictID, "error", err)
		case entry == nil:
			r.metrics.CacheOps.WithLabelValues("get", "miss").Inc()
		default:
			cached = entry
			if !entry.Stale && r.clock.Now().Sub(entry.FetchedAt) < r.ttl {
				r.metrics.CacheOps.WithLabelValues("get", "hit").Inc()
				return Resolution{
					DistrictID:    req.DistrictID,
					District:      district,
					FinancialYear: req.FinancialYear,
					Month:         req.Month,
					Record:        entry.Record,
					Source:        SourceCache,
					CachedAt:      entry.FetchedAt,
				}
			}
			r.metrics.CacheOps.WithLabelValues("get", "miss").Inc()
		}
	}

	// LIVE_FETCH.
	code := req.DistrictID
	if district != nil {
		code = district.Code
	}
	if res, ok := r.liveFetch(ctx, req, district, code, key, useCache); ok {
		return res
	}

	// STALE_CACHE. Marking the entry stale is best-effort.
	if cached != nil {
		if err := r.cache.MarkStale(ctx, cached.ID); err != nil {
			r.metrics.CacheOps.WithLabelValues("mark_stale", "error").Inc()
			r.logger.Warn("failed to mark cache entry stale",
				"entry_id", cached.ID, "error", err)
		} else {
			r.metrics.CacheOps.WithLabelValues("mark_stale", "ok").Inc()
		}
		r.logger.Info("serving stale cache entry",
			"district_id", req.DistrictID, "fetched_at", cached.FetchedAt)
		return Resolution{
			DistrictID:    req.DistrictID,
			District:      district,
			FinancialYear: req.FinancialYear,
			Month:         req.Month,
			Record:        cached.Record,
			Source:        SourceFallback,
			Stale:         true,
			CachedAt:      cached.FetchedAt,
		}
	}

	// SYNTHETIC.
	return r.synthetic(req)
}

// liveFetch calls the external provider and, on a validated district match,
// upserts the cache. Returns ok=false on any failure so the caller falls
// through to the next state; nothing is recorded on failure.
func (r *Resolver) liveFetch(ctx context.Context, req domain.MetricsRequest, district *domain.District, code string, key domain.CacheKey, useCache bool) (Resolution, bool) {
	fetchStart := r.clock.Now()
	records, err := r.provider.Fetch(ctx, code, req.FinancialYear, req.Month)
	r.metrics.ProviderDuration.Observe(r.clock.Now().Sub(fetchStart).Seconds())

	switch {
	case err != nil:
		r.metrics.ProviderRequests.WithLabelValues("error").Inc()
		r.logger.Warn("provider fetch failed",
			"district_code", code, "financial_year", req.FinancialYear, "error", err)
		return Resolution{}, false
	case len(records) == 0:
		r.metrics.ProviderRequests.WithLabelValues("empty").Inc()
		return Resolution{}, false
	}

	matched, err := r.normalizer.MatchDistrict(records, code)
	if err != nil {
		if errors.Is(err, domain.ErrDataMismatch) {
			r.metrics.ProviderRequests.WithLabelValues("mismatch").Inc()
		} else {
			r.metrics.ProviderRequests.WithLabelValues("error").Inc()
		}
		r.logger.Warn("provider returned no matching record",
			"district_code", code, "records", len(records), "error", err)
		return Resolution{}, false
	}
	r.metrics.ProviderRequests.WithLabelValues("success").Inc()

	record := r.normalizer.Normalize(matched)
	fetchedAt := r.clock.Now()

	if useCache {
		raw, _ := json.Marshal(matched)
		entry, err := r.cache.Upsert(ctx, key, record, raw, fetchedAt)
		if err != nil {
			r.metrics.CacheOps.WithLabelValues("upsert", "error").Inc()
			r.logger.Warn("cache upsert failed, returning live data uncached",
				"district_id", req.DistrictID, "error", err)
		} else {
			r.metrics.CacheOps.WithLabelValues("upsert", "ok").Inc()
			fetchedAt = entry.FetchedAt
		}
	}

	return Resolution{
		DistrictID:    req.DistrictID,
		District:      district,
		FinancialYear: req.FinancialYear,
		Month:         req.Month,
		Record:        record,
		Source:        SourceLive,
		CachedAt:      fetchedAt,
	}, true
}

func (r *Resolver) synthetic(req domain.MetricsRequest) Resolution {
	return Resolution{
		DistrictID:    req.DistrictID,
		FinancialYear: req.FinancialYear,
		Month:         req.Month,
		Record:        domain.GenerateSynthetic(req.DistrictID, req.FinancialYear, req.Month),
		Source:        SourceFallback,
		CachedAt:      r.clock.Now(),
	}
}

// finish records metrics and publishes the resolution event, if a sink is
// configured. Called for every resolution that passed the rate check.
func (r *Resolver) finish(ctx context.Context, req domain.MetricsRequest, res Resolution, start time.Time) {
	if res.Source == "" {
		return
	}
	elapsed := r.clock.Now().Sub(start)
	r.metrics.Resolutions.WithLabelValues(string(res.Source)).Inc()
	r.metrics.ResolutionDuration.Observe(elapsed.Seconds())

	if r.events == nil {
		return
	}
	event := domain.ResolutionEvent{
		ID:            uuid.NewString(),
		DistrictID:    req.DistrictID,
		FinancialYear: req.FinancialYear,
		Month:         req.Month,
		Source:        string(res.Source),
		Duration:      elapsed.Seconds(),
		ResolvedAt:    r.clock.Now(),
	}
	if err := r.events.Publish(ctx, event); err != nil {
		r.logger.Warn("resolution event publish failed", "event_id", event.ID, "error", err)
	}
}

// Locate finds the district nearest to a coordinate. When the district
// store is unreachable or empty it degrades to the hardcoded major-city
// list. Covered reflects the configured coverage radius; callers decide
// what an uncovered location means.
func (r *Resolver) Locate(ctx context.Context, point domain.Geo) Placement {
	if r.districts != nil {
		districts, err := r.districts.FindAll(ctx, domain.DistrictFilter{})
		if err != nil {
			r.logger.Warn("district store unreachable, using fallback cities", "error", err)
		} else if len(districts) > 0 {
			nearest, dist, _ := domain.Nearest(point, districts)
			r.metrics.NearestLookups.WithLabelValues("primary").Inc()
			return Placement{
				District:   &nearest,
				DistanceKm: dist,
				Covered:    dist <= r.coverageKm,
			}
		}
	}

	// The fallback list is non-empty by construction.
	nearest, dist, _ := domain.Nearest(point, domain.FallbackCities())
	r.metrics.NearestLookups.WithLabelValues("degraded").Inc()
	return Placement{
		City:       &nearest,
		DistanceKm: dist,
		Covered:    dist <= r.coverageKm,
		Degraded:   true,
	}
}

// CheckReadiness reports whether the resolver's district store is
// reachable. Stores without a Ping method are assumed ready.
func (r *Resolver) CheckReadiness(ctx context.Context) error {
	type pinger interface {
		Ping(ctx context.Context) error
	}
	if p, ok := r.districts.(pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
