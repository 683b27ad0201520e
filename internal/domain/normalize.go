package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Canonical field names. Upstream key names map onto these through the
// alias table.
const (
	FieldJobCardsIssued        = "jobCardsIssued"
	FieldActiveJobCards        = "activeJobCards"
	FieldActiveWorkers         = "activeWorkers"
	FieldHouseholdsWorked      = "householdsWorked"
	FieldPersonDaysGenerated   = "personDaysGenerated"
	FieldWomenPersonDays       = "womenPersonDays"
	FieldSCPersonDays          = "scPersonDays"
	FieldSTPersonDays          = "stPersonDays"
	FieldTotalWorksStarted     = "totalWorksStarted"
	FieldTotalWorksCompleted   = "totalWorksCompleted"
	FieldTotalWorksInProgress  = "totalWorksInProgress"
	FieldTotalExpenditure      = "totalExpenditure"
	FieldWageExpenditure       = "wageExpenditure"
	FieldMaterialExpenditure   = "materialExpenditure"
	FieldAverageDaysForPayment = "averageDaysForPayment"
	FieldDistrictCode          = "districtCode"
	FieldDistrictName          = "districtName"
)

// FieldAliases maps a canonical field to an ordered list of candidate
// upstream keys; the first key present in a record wins. The upstream
// schema has shifted casing conventions over time, so this is configuration,
// not a contract.
type FieldAliases map[string][]string

// UnitScales maps a canonical decimal field to a multiplier applied after
// parsing, e.g. lakhs to rupees. Fields without an entry scale by 1.
type UnitScales map[string]float64

// DefaultFieldAliases returns the upstream key names observed on the
// data.gov.in MGNREGA resource, in both historical casings. Update from
// live observation when the provider shifts again.
func DefaultFieldAliases() FieldAliases {
	return FieldAliases{
		FieldJobCardsIssued:        {"Total_No_of_JobCards_issued", "total_no_of_jobcards_issued"},
		FieldActiveJobCards:        {"Total_No_of_Active_Job_Cards", "total_no_of_active_job_cards"},
		FieldActiveWorkers:         {"Total_No_of_Active_Workers", "total_no_of_active_workers"},
		FieldHouseholdsWorked:      {"Total_Households_Worked", "total_households_worked"},
		FieldPersonDaysGenerated:   {"Persondays_of_Central_Liability_so_far", "persondays_of_central_liability_so_far"},
		FieldWomenPersonDays:       {"Women_Persondays", "women_persondays"},
		FieldSCPersonDays:          {"SC_persondays", "sc_persondays"},
		FieldSTPersonDays:          {"ST_persondays", "st_persondays"},
		FieldTotalWorksStarted:     {"Total_No_of_Works_Takenup", "total_no_of_works_takenup"},
		FieldTotalWorksCompleted:   {"Number_of_Completed_Works", "number_of_completed_works"},
		FieldTotalWorksInProgress:  {"Number_of_Ongoing_Works", "number_of_ongoing_works"},
		FieldTotalExpenditure:      {"Total_Exp", "total_exp"},
		FieldWageExpenditure:       {"Wages", "wages"},
		FieldMaterialExpenditure:   {"Material_and_skilled_Wages", "material_and_skilled_wages"},
		FieldAverageDaysForPayment: {"Average_days_of_employment_provided_per_Household", "average_days_of_employment_provided_per_household"},
		FieldDistrictCode:          {"district_code", "District_Code"},
		FieldDistrictName:          {"district_name", "District_Name"},
	}
}

// DefaultUnitScales converts the monetary columns from lakhs to rupees and
// the payment-delay column from the upstream per-household employment-days
// approximation to days.
func DefaultUnitScales() UnitScales {
	return UnitScales{
		FieldTotalExpenditure:      100000,
		FieldWageExpenditure:       100000,
		FieldMaterialExpenditure:   100000,
		FieldAverageDaysForPayment: 0.1,
	}
}

// Normalizer converts heterogeneous upstream records into canonical
// MetricsRecords. Pure: no I/O, no shared state mutation.
type Normalizer struct {
	aliases FieldAliases
	scales  UnitScales
}

// NewNormalizer creates a Normalizer with the given alias and scale tables.
func NewNormalizer(aliases FieldAliases, scales UnitScales) *Normalizer {
	return &Normalizer{aliases: aliases, scales: scales}
}

// Normalize produces a MetricsRecord from one raw upstream record. Every
// field is either populated or explicitly absent; unparseable values become
// absent, never a type error and never zero.
func (n *Normalizer) Normalize(raw RawRecord) MetricsRecord {
	return MetricsRecord{
		JobCardsIssued:       n.counter(raw, FieldJobCardsIssued),
		ActiveJobCards:       n.counter(raw, FieldActiveJobCards),
		ActiveWorkers:        n.counter(raw, FieldActiveWorkers),
		HouseholdsWorked:     n.counter(raw, FieldHouseholdsWorked),
		PersonDaysGenerated:  n.counter(raw, FieldPersonDaysGenerated),
		WomenPersonDays:      n.counter(raw, FieldWomenPersonDays),
		SCPersonDays:         n.counter(raw, FieldSCPersonDays),
		STPersonDays:         n.counter(raw, FieldSTPersonDays),
		TotalWorksStarted:    n.counter(raw, FieldTotalWorksStarted),
		TotalWorksCompleted:  n.counter(raw, FieldTotalWorksCompleted),
		TotalWorksInProgress: n.counter(raw, FieldTotalWorksInProgress),

		TotalExpenditure:      n.decimal(raw, FieldTotalExpenditure),
		WageExpenditure:       n.decimal(raw, FieldWageExpenditure),
		MaterialExpenditure:   n.decimal(raw, FieldMaterialExpenditure),
		AverageDaysForPayment: n.decimal(raw, FieldAverageDaysForPayment),

		Origin: OriginUpstream,
	}
}

// DistrictCode extracts the district code from a raw record via the alias
// table, or "" when absent.
func (n *Normalizer) DistrictCode(raw RawRecord) string {
	v, ok := n.lookup(raw, FieldDistrictCode)
	if !ok {
		return ""
	}
	switch code := v.(type) {
	case string:
		return strings.TrimSpace(code)
	case float64:
		return strconv.FormatInt(int64(code), 10)
	default:
		return ""
	}
}

// MatchDistrict finds the record whose district code exactly matches the
// requested code. The provider often returns mixed districts; returning
// ErrDataMismatch here is what keeps the pipeline from silently serving a
// different district's numbers.
func (n *Normalizer) MatchDistrict(records []RawRecord, code string) (RawRecord, error) {
	for _, rec := range records {
		if n.DistrictCode(rec) == code {
			return rec, nil
		}
	}
	return nil, fmt.Errorf("%w: code %q in %d records", ErrDataMismatch, code, len(records))
}

// lookup returns the first present alias value for a canonical field.
func (n *Normalizer) lookup(raw RawRecord, canonical string) (any, bool) {
	for _, key := range n.aliases[canonical] {
		if v, ok := raw[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (n *Normalizer) counter(raw RawRecord, canonical string) *Counter {
	v, ok := n.lookup(raw, canonical)
	if !ok {
		return nil
	}
	return parseCounterValue(v)
}

func (n *Normalizer) decimal(raw RawRecord, canonical string) *float64 {
	v, ok := n.lookup(raw, canonical)
	if !ok {
		return nil
	}
	parsed := parseDecimalValue(v)
	if parsed == nil {
		return nil
	}
	if scale, ok := n.scales[canonical]; ok {
		scaled := *parsed * scale
		return &scaled
	}
	return parsed
}

// parseCounterValue parses an upstream counter value. "NA", empty, negative,
// and unparseable values are absent. String values are stripped of grouping
// separators and any other non-digit characters before parsing.
func parseCounterValue(v any) *Counter {
	switch val := v.(type) {
	case string:
		s := strings.TrimSpace(val)
		if s == "" || strings.EqualFold(s, "NA") || strings.Contains(s, "-") {
			return nil
		}
		digits := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, s)
		if digits == "" {
			return nil
		}
		c, err := ParseCounter(digits)
		if err != nil {
			return nil
		}
		return &c
	case float64:
		if val < 0 {
			return nil
		}
		c := NewCounter(int64(val))
		return &c
	case int:
		if val < 0 {
			return nil
		}
		c := NewCounter(int64(val))
		return &c
	case int64:
		if val < 0 {
			return nil
		}
		c := NewCounter(val)
		return &c
	default:
		return nil
	}
}

// parseDecimalValue parses an upstream decimal value with the same absence
// rules as counters: negatives are absent, not sign-flipped. Thousands
// separators are stripped.
func parseDecimalValue(v any) *float64 {
	switch val := v.(type) {
	case string:
		s := strings.TrimSpace(val)
		if s == "" || strings.EqualFold(s, "NA") {
			return nil
		}
		s = strings.Map(func(r rune) rune {
			if (r >= '0' && r <= '9') || r == '.' || r == '-' {
				return r
			}
			return -1
		}, s)
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f < 0 {
			return nil
		}
		return &f
	case float64:
		if val < 0 {
			return nil
		}
		f := val
		return &f
	case int:
		if val < 0 {
			return nil
		}
		f := float64(val)
		return &f
	case int64:
		if val < 0 {
			return nil
		}
		f := float64(val)
		return &f
	default:
		return nil
	}
}
