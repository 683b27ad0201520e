// Package postgres implements the district store and metrics cache on
// PostgreSQL via database/sql and lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // postgres driver

	"github.com/couchcryptid/welfare-metrics-service/internal/domain"
)

// Open connects to PostgreSQL and verifies the connection.
func Open(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// DistrictStore reads district reference data.
type DistrictStore struct {
	db *sql.DB
}

// NewDistrictStore creates a DistrictStore on an open connection pool.
func NewDistrictStore(db *sql.DB) *DistrictStore {
	return &DistrictStore{db: db}
}

const districtColumns = `id, code, name, name_hindi, state_code, state_name, latitude, longitude, population`

// FindByID returns the district with the given ID, or (nil, nil) when absent.
func (s *DistrictStore) FindByID(ctx context.Context, id string) (*domain.District, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+districtColumns+` FROM districts WHERE id = $1`, id)

	d, err := scanDistrict(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find district %s: %s", domain.ErrStoreUnavailable, id, err)
	}
	return d, nil
}

// FindAll returns districts matching the filter, ordered by state and name.
func (s *DistrictStore) FindAll(ctx context.Context, filter domain.DistrictFilter) ([]domain.District, error) {
	query := `SELECT ` + districtColumns + ` FROM districts`
	args := []any{}
	if filter.StateCode != "" {
		query += ` WHERE state_code = $1`
		args = append(args, filter.StateCode)
	}
	query += ` ORDER BY state_code, name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list districts: %s", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var districts []domain.District
	for rows.Next() {
		d, err := scanDistrict(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan district: %s", domain.ErrStoreUnavailable, err)
		}
		districts = append(districts, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list districts: %s", domain.ErrStoreUnavailable, err)
	}
	return districts, nil
}

// Ping reports whether the database is reachable.
func (s *DistrictStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDistrict(row rowScanner) (*domain.District, error) {
	var (
		d          domain.District
		nameHindi  sql.NullString
		population sql.NullInt64
	)
	err := row.Scan(&d.ID, &d.Code, &d.Name, &nameHindi, &d.StateCode, &d.StateName,
		&d.Latitude, &d.Longitude, &population)
	if err != nil {
		return nil, err
	}
	d.NameHindi = nameHindi.String
	d.Population = population.Int64
	return &d, nil
}
