package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/welfare-metrics-service/internal/domain"
)

// MetricsCache persists resolved metrics records. The composite key
// (district_id, financial_year, month) carries a unique constraint, so
// concurrent upserts for the same key are last-write-wins with no duplicate
// rows.
type MetricsCache struct {
	db *sql.DB
}

// NewMetricsCache creates a MetricsCache on an open connection pool.
func NewMetricsCache(db *sql.DB) *MetricsCache {
	return &MetricsCache{db: db}
}

const cacheColumns = `id, district_id, financial_year, month,
	job_cards_issued, active_job_cards, active_workers, households_worked,
	person_days_generated, women_person_days, sc_person_days, st_person_days,
	total_works_started, total_works_completed, total_works_in_progress,
	total_expenditure, wage_expenditure, material_expenditure, average_days_for_payment,
	origin, raw_data, fetched_at, is_stale`

// Get returns the entry for the composite key, or (nil, nil) when absent.
func (c *MetricsCache) Get(ctx context.Context, key domain.CacheKey) (*domain.CacheEntry, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT `+cacheColumns+` FROM cached_metrics
		 WHERE district_id = $1 AND financial_year = $2 AND month = $3`,
		key.DistrictID, key.FinancialYear, key.Month)

	entry, err := scanCacheEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: cache get: %s", domain.ErrStoreUnavailable, err)
	}
	return entry, nil
}

// Upsert creates or replaces the entry for the key, resetting the stale
// flag. The existing row's ID survives an update.
func (c *MetricsCache) Upsert(ctx context.Context, key domain.CacheKey, record domain.MetricsRecord, raw []byte, fetchedAt time.Time) (*domain.CacheEntry, error) {
	row := c.db.QueryRowContext(ctx,
		`INSERT INTO cached_metrics (`+cacheColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		         $16, $17, $18, $19, $20, $21, $22, FALSE)
		 ON CONFLICT (district_id, financial_year, month) DO UPDATE SET
			job_cards_issued = EXCLUDED.job_cards_issued,
			active_job_cards = EXCLUDED.active_job_cards,
			active_workers = EXCLUDED.active_workers,
			households_worked = EXCLUDED.households_worked,
			person_days_generated = EXCLUDED.person_days_generated,
			women_person_days = EXCLUDED.women_person_days,
			sc_person_days = EXCLUDED.sc_person_days,
			st_person_days = EXCLUDED.st_person_days,
			total_works_started = EXCLUDED.total_works_started,
			total_works_completed = EXCLUDED.total_works_completed,
			total_works_in_progress = EXCLUDED.total_works_in_progress,
			total_expenditure = EXCLUDED.total_expenditure,
			wage_expenditure = EXCLUDED.wage_expenditure,
			material_expenditure = EXCLUDED.material_expenditure,
			average_days_for_payment = EXCLUDED.average_days_for_payment,
			origin = EXCLUDED.origin,
			raw_data = EXCLUDED.raw_data,
			fetched_at = EXCLUDED.fetched_at,
			is_stale = FALSE
		 RETURNING id, fetched_at`,
		uuid.NewString(), key.DistrictID, key.FinancialYear, key.Month,
		counterValue(record.JobCardsIssued), counterValue(record.ActiveJobCards),
		counterValue(record.ActiveWorkers), counterValue(record.HouseholdsWorked),
		counterValue(record.PersonDaysGenerated), counterValue(record.WomenPersonDays),
		counterValue(record.SCPersonDays), counterValue(record.STPersonDays),
		counterValue(record.TotalWorksStarted), counterValue(record.TotalWorksCompleted),
		counterValue(record.TotalWorksInProgress),
		floatValue(record.TotalExpenditure), floatValue(record.WageExpenditure),
		floatValue(record.MaterialExpenditure), floatValue(record.AverageDaysForPayment),
		record.Origin, raw, fetchedAt)

	entry := &domain.CacheEntry{
		DistrictID:    key.DistrictID,
		FinancialYear: key.FinancialYear,
		Month:         key.Month,
		Record:        record,
		RawData:       raw,
	}
	if err := row.Scan(&entry.ID, &entry.FetchedAt); err != nil {
		return nil, fmt.Errorf("%w: cache upsert: %s", domain.ErrStoreUnavailable, err)
	}
	return entry, nil
}

// MarkStale flags an entry as stale.
func (c *MetricsCache) MarkStale(ctx context.Context, entryID string) error {
	_, err := c.db.ExecContext(ctx,
		`UPDATE cached_metrics SET is_stale = TRUE WHERE id = $1`, entryID)
	if err != nil {
		return fmt.Errorf("%w: mark stale %s: %s", domain.ErrStoreUnavailable, entryID, err)
	}
	return nil
}

func scanCacheEntry(row rowScanner) (*domain.CacheEntry, error) {
	var (
		entry    domain.CacheEntry
		counters [11]sql.NullString
		decimals [4]sql.NullFloat64
		origin   sql.NullString
	)
	err := row.Scan(&entry.ID, &entry.DistrictID, &entry.FinancialYear, &entry.Month,
		&counters[0], &counters[1], &counters[2], &counters[3], &counters[4],
		&counters[5], &counters[6], &counters[7], &counters[8], &counters[9], &counters[10],
		&decimals[0], &decimals[1], &decimals[2], &decimals[3],
		&origin, &entry.RawData, &entry.FetchedAt, &entry.Stale)
	if err != nil {
		return nil, err
	}

	rec := &entry.Record
	rec.JobCardsIssued = scanCounter(counters[0])
	rec.ActiveJobCards = scanCounter(counters[1])
	rec.ActiveWorkers = scanCounter(counters[2])
	rec.HouseholdsWorked = scanCounter(counters[3])
	rec.PersonDaysGenerated = scanCounter(counters[4])
	rec.WomenPersonDays = scanCounter(counters[5])
	rec.SCPersonDays = scanCounter(counters[6])
	rec.STPersonDays = scanCounter(counters[7])
	rec.TotalWorksStarted = scanCounter(counters[8])
	rec.TotalWorksCompleted = scanCounter(counters[9])
	rec.TotalWorksInProgress = scanCounter(counters[10])
	rec.TotalExpenditure = scanFloat(decimals[0])
	rec.WageExpenditure = scanFloat(decimals[1])
	rec.MaterialExpenditure = scanFloat(decimals[2])
	rec.AverageDaysForPayment = scanFloat(decimals[3])
	rec.Origin = origin.String
	return &entry, nil
}

// counterValue converts a Counter to its NUMERIC parameter, nil when absent.
func counterValue(c *domain.Counter) any {
	if c == nil {
		return nil
	}
	return c.String()
}

func floatValue(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func scanCounter(ns sql.NullString) *domain.Counter {
	if !ns.Valid {
		return nil
	}
	c, err := domain.ParseCounter(ns.String)
	if err != nil {
		return nil
	}
	return &c
}

func scanFloat(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	f := nf.Float64
	return &f
}
