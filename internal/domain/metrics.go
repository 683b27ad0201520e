package domain

import (
	"context"
	"time"
)

// Record provenance markers. Synthetic records must always be
// distinguishable from numbers that ever came from the upstream API.
const (
	OriginUpstream  = "upstream"
	OriginSynthetic = "synthetic"
)

// MetricsRecord is the canonical shape of one district/financial-year/month
// observation. Counter fields are exact unbounded integers; monetary fields
// are rupees. A nil field is explicitly absent (the upstream value was
// missing or "NA"), never zero.
type MetricsRecord struct {
	JobCardsIssued       *Counter `json:"jobCardsIssued,omitempty"`
	ActiveJobCards       *Counter `json:"activeJobCards,omitempty"`
	ActiveWorkers        *Counter `json:"activeWorkers,omitempty"`
	HouseholdsWorked     *Counter `json:"householdsWorked,omitempty"`
	PersonDaysGenerated  *Counter `json:"personDaysGenerated,omitempty"`
	WomenPersonDays      *Counter `json:"womenPersonDays,omitempty"`
	SCPersonDays         *Counter `json:"scPersonDays,omitempty"`
	STPersonDays         *Counter `json:"stPersonDays,omitempty"`
	TotalWorksStarted    *Counter `json:"totalWorksStarted,omitempty"`
	TotalWorksCompleted  *Counter `json:"totalWorksCompleted,omitempty"`
	TotalWorksInProgress *Counter `json:"totalWorksInProgress,omitempty"`

	TotalExpenditure      *float64 `json:"totalExpenditure,omitempty"`
	WageExpenditure       *float64 `json:"wageExpenditure,omitempty"`
	MaterialExpenditure   *float64 `json:"materialExpenditure,omitempty"`
	AverageDaysForPayment *float64 `json:"averageDaysForPayment,omitempty"`

	// Origin is the provenance marker: OriginUpstream or OriginSynthetic.
	Origin string `json:"origin,omitempty"`
}

// CacheKey is the composite identity of a cache entry. At most one entry
// exists per key at any time.
type CacheKey struct {
	DistrictID    string
	FinancialYear string
	Month         int
}

// CacheEntry is a stored MetricsRecord plus its identity and freshness state.
// Entries are created on first successful resolution, upserted on fresher
// fetches, and flagged stale when reused past the freshness window. The
// pipeline never deletes them.
type CacheEntry struct {
	ID            string        `json:"id"`
	DistrictID    string        `json:"districtId"`
	FinancialYear string        `json:"financialYear"`
	Month         int           `json:"month"`
	Record        MetricsRecord `json:"record"`
	RawData       []byte        `json:"-"`
	FetchedAt     time.Time     `json:"fetchedAt"`
	Stale         bool          `json:"isStale"`
}

// MetricsCache persists resolved records keyed by (district, year, month).
// Upsert must be idempotent by key: concurrent writers for the same key are
// last-write-wins, never duplicate rows.
type MetricsCache interface {
	// Get returns the entry for the key, or (nil, nil) when absent.
	Get(ctx context.Context, key CacheKey) (*CacheEntry, error)

	// Upsert creates or replaces the entry for the key, resetting the stale
	// flag, and returns the persisted entry.
	Upsert(ctx context.Context, key CacheKey, record MetricsRecord, raw []byte, fetchedAt time.Time) (*CacheEntry, error)

	// MarkStale flags an entry as stale. Failure to persist the flag is
	// non-fatal to callers.
	MarkStale(ctx context.Context, entryID string) error
}

// RawRecord is one loosely-typed upstream record. Key names, casing, and
// value types are not contractually stable.
type RawRecord map[string]any

// MetricsProvider fetches raw records from the external open-data API.
// Implementations must enforce a request timeout.
type MetricsProvider interface {
	Fetch(ctx context.Context, districtCode, financialYear string, month int) ([]RawRecord, error)
}

// ResolutionEvent describes one completed resolution, published for
// downstream analytics when an event sink is configured.
type ResolutionEvent struct {
	ID            string    `json:"id"`
	DistrictID    string    `json:"district_id"`
	FinancialYear string    `json:"financial_year"`
	Month         int       `json:"month"`
	Source        string    `json:"source"`
	Duration      float64   `json:"duration_seconds"`
	ResolvedAt    time.Time `json:"resolved_at"`
}
