// Command genfallback prints the deterministic synthetic metrics record for
// a district and period as JSON. Useful for inspecting what users would see
// when every other data source is down.
//
// Usage:
//
//	genfallback -district BR001 -fy 2024-25 -month 5
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/couchcryptid/welfare-metrics-service/internal/domain"
)

func main() {
	districtID := flag.String("district", "", "district identifier (required)")
	fy := flag.String("fy", "", "financial year YYYY-YY (default: current)")
	month := flag.Int("month", int(time.Now().Month()), "month 1-12")
	flag.Parse()

	if *districtID == "" {
		fmt.Fprintln(os.Stderr, "genfallback: -district is required")
		flag.Usage()
		os.Exit(2)
	}
	if *month < 1 || *month > 12 {
		fmt.Fprintf(os.Stderr, "genfallback: month must be 1-12, got %d\n", *month)
		os.Exit(2)
	}
	year := *fy
	if year == "" {
		year = domain.FinancialYearAt(time.Now())
	} else if !domain.ValidFinancialYear(year) {
		fmt.Fprintf(os.Stderr, "genfallback: malformed financial year %q\n", year)
		os.Exit(2)
	}

	record := domain.GenerateSynthetic(*districtID, year, *month)

	out := struct {
		DistrictID    string `json:"districtId"`
		FinancialYear string `json:"financialYear"`
		Month         int    `json:"month"`
		domain.MetricsRecord
	}{
		DistrictID:    *districtID,
		FinancialYear: year,
		Month:         *month,
		MetricsRecord: record,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "genfallback: %v\n", err)
		os.Exit(1)
	}
}
