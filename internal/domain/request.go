package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// financialYearRe matches the "YYYY-YY" notation, e.g. "2024-25".
var financialYearRe = regexp.MustCompile(`^(\d{4})-(\d{2})$`)

// MetricsRequest is a fully-populated, validated resolution request. All
// defaulting happens in NormalizeRequest so the pipeline never guesses.
type MetricsRequest struct {
	DistrictID    string
	FinancialYear string
	Month         int
	ClientID      string
}

// NormalizeRequest validates raw request parameters and fills defaults: the
// current Indian financial year when financialYear is empty and the current
// calendar month when month is empty. Returns ErrInvalidInput for a missing
// district identifier, a malformed financial year, or a month outside 1-12.
func NormalizeRequest(districtID, financialYear, month, clientID string) (MetricsRequest, error) {
	districtID = strings.TrimSpace(districtID)
	if districtID == "" {
		return MetricsRequest{}, fmt.Errorf("%w: district identifier is required", ErrInvalidInput)
	}

	now := clock.Now()

	financialYear = strings.TrimSpace(financialYear)
	if financialYear == "" {
		financialYear = FinancialYearAt(now)
	} else if !ValidFinancialYear(financialYear) {
		return MetricsRequest{}, fmt.Errorf("%w: malformed financial year %q", ErrInvalidInput, financialYear)
	}

	m := int(now.Month())
	if s := strings.TrimSpace(month); s != "" {
		parsed, err := strconv.Atoi(s)
		if err != nil || parsed < 1 || parsed > 12 {
			return MetricsRequest{}, fmt.Errorf("%w: month must be 1-12, got %q", ErrInvalidInput, s)
		}
		m = parsed
	}

	if clientID == "" {
		clientID = "unknown"
	}

	return MetricsRequest{
		DistrictID:    districtID,
		FinancialYear: financialYear,
		Month:         m,
		ClientID:      clientID,
	}, nil
}

// FinancialYearAt returns the Indian financial year (April-March) containing
// the given time, in "YYYY-YY" notation.
func FinancialYearAt(t time.Time) string {
	year := t.Year()
	if t.Month() < time.April {
		year--
	}
	return fmt.Sprintf("%d-%02d", year, (year+1)%100)
}

// ValidFinancialYear reports whether s is a well-formed "YYYY-YY" financial
// year whose suffix is the year after the prefix.
func ValidFinancialYear(s string) bool {
	m := financialYearRe.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	start, _ := strconv.Atoi(m[1])
	end, _ := strconv.Atoi(m[2])
	return (start+1)%100 == end
}
