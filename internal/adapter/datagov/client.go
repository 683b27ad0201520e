// Package datagov fetches MGNREGA district metrics from the data.gov.in
// resource API. The upstream is slow, rate-limited, and schema-unstable;
// responses are treated as loosely-typed records and validated downstream.
package datagov

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/couchcryptid/welfare-metrics-service/internal/domain"
)

// DefaultBaseURL is the MGNREGA district performance resource endpoint.
const DefaultBaseURL = "https://api.data.gov.in/resource/ee03643a-ee4c-48c2-ac30-9f2ff26ab722"

const (
	filteredLimit   = 100
	unfilteredLimit = 50
)

// Client implements domain.MetricsProvider against the data.gov.in API.
// A circuit breaker fails fast once the upstream has been down for several
// consecutive requests, instead of burning the full timeout per caller.
type Client struct {
	apiKey     string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

// NewClient creates a data.gov.in client. The timeout bounds the whole
// fetch, unfiltered retry included, so a slow upstream never holds a caller
// longer than one configured timeout.
func NewClient(apiKey, baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "datagov",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		timeout: timeout,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		breaker: breaker,
		logger:  logger,
	}
}

// Fetch returns raw records for a district and financial year. The resource
// API has no month filter; callers key their caches by period and match
// records by district code. Errors are wrapped as
// domain.ErrUpstreamUnavailable.
func (c *Client) Fetch(ctx context.Context, districtCode, financialYear string, month int) ([]domain.RawRecord, error) {
	// One deadline across both queries. A filtered query that eats the full
	// budget leaves nothing for the retry, which is fine: that upstream is
	// not going to answer an unfiltered one either.
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, err := c.breaker.Execute(func() (any, error) {
		return c.fetch(ctx, districtCode, financialYear)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUpstreamUnavailable, err)
	}
	return result.([]domain.RawRecord), nil
}

// fetch queries with the district filter, then retries unfiltered when the
// filtered query returns nothing. The upstream's district filter has been
// observed to silently drop records; the unfiltered result set is matched
// by district code downstream, so a broader response is safe.
func (c *Client) fetch(ctx context.Context, districtCode, financialYear string) ([]domain.RawRecord, error) {
	records, err := c.query(ctx, districtCode, financialYear, filteredLimit)
	if err == nil && len(records) > 0 {
		return records, nil
	}

	if districtCode != "" {
		c.logger.Debug("filtered query returned nothing, retrying unfiltered",
			"district_code", districtCode, "financial_year", financialYear, "error", err)
		unfiltered, retryErr := c.query(ctx, "", financialYear, unfilteredLimit)
		if retryErr == nil && len(unfiltered) > 0 {
			return unfiltered, nil
		}
	}

	if err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) query(ctx context.Context, districtCode, financialYear string, limit int) ([]domain.RawRecord, error) {
	params := url.Values{
		"api-key":           {c.apiKey},
		"format":            {"json"},
		"limit":             {strconv.Itoa(limit)},
		"filters[fin_year]": {financialYear},
	}
	if districtCode != "" {
		params.Set("filters[district_code]", districtCode)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "welfare-metrics-service/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("datagov request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("datagov API error: status %d: %s", resp.StatusCode, body)
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if payload.Status == "error" {
		return nil, fmt.Errorf("datagov API error: %s", payload.Message)
	}
	return payload.Records, nil
}

// data.gov.in resource API response envelope.
type response struct {
	Status  string             `json:"status"`
	Message string             `json:"message"`
	Records []domain.RawRecord `json:"records"`
}
