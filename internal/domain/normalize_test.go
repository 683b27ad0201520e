package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultNormalizer() *Normalizer {
	return NewNormalizer(DefaultFieldAliases(), DefaultUnitScales())
}

func TestNormalize_NAIsAbsentNotZero(t *testing.T) {
	n := defaultNormalizer()

	rec := n.Normalize(RawRecord{
		"Total_No_of_JobCards_issued": "NA",
		"Total_Exp":                   "NA",
		"Women_Persondays":            "",
		"SC_persondays":               nil,
	})

	assert.Nil(t, rec.JobCardsIssued)
	assert.Nil(t, rec.TotalExpenditure)
	assert.Nil(t, rec.WomenPersonDays)
	assert.Nil(t, rec.SCPersonDays)
}

func TestNormalize_CommaGroupedCounter(t *testing.T) {
	n := defaultNormalizer()

	rec := n.Normalize(RawRecord{"Total_No_of_Active_Workers": "1,23,456"})

	require.NotNil(t, rec.ActiveWorkers)
	assert.Equal(t, "123456", rec.ActiveWorkers.String())
}

func TestNormalize_NumericJSONValues(t *testing.T) {
	n := defaultNormalizer()

	rec := n.Normalize(RawRecord{
		"Total_No_of_Active_Workers": float64(54321),
		"Wages":                      float64(2.5),
	})

	require.NotNil(t, rec.ActiveWorkers)
	assert.Equal(t, "54321", rec.ActiveWorkers.String())
	require.NotNil(t, rec.WageExpenditure)
	assert.InDelta(t, 250000, *rec.WageExpenditure, 1e-6) // 2.5 lakh
}

func TestNormalize_AliasFallbackOrder(t *testing.T) {
	n := defaultNormalizer()

	// Only the legacy lowercase key is present.
	rec := n.Normalize(RawRecord{"total_no_of_jobcards_issued": "500"})

	require.NotNil(t, rec.JobCardsIssued)
	assert.Equal(t, "500", rec.JobCardsIssued.String())
}

func TestNormalize_LakhConversion(t *testing.T) {
	n := defaultNormalizer()

	rec := n.Normalize(RawRecord{"Total_Exp": "12.5"})

	require.NotNil(t, rec.TotalExpenditure)
	assert.InDelta(t, 1250000, *rec.TotalExpenditure, 1e-6)
}

func TestNormalize_PaymentDelayScale(t *testing.T) {
	n := defaultNormalizer()

	rec := n.Normalize(RawRecord{"Average_days_of_employment_provided_per_Household": "85"})

	require.NotNil(t, rec.AverageDaysForPayment)
	assert.InDelta(t, 8.5, *rec.AverageDaysForPayment, 1e-9)
}

func TestNormalize_NegativeValuesAreAbsent(t *testing.T) {
	n := defaultNormalizer()

	rec := n.Normalize(RawRecord{
		"Total_No_of_Active_Workers": "-500",
		"Total_Exp":                  "-12.5",
		"Wages":                      float64(-3),
	})

	assert.Nil(t, rec.ActiveWorkers)
	assert.Nil(t, rec.TotalExpenditure, "a negative decimal must not come back sign-flipped")
	assert.Nil(t, rec.WageExpenditure)
}

func TestNormalize_CustomScaleTable(t *testing.T) {
	// Scales are configuration: an identity table must leave values as-is.
	n := NewNormalizer(DefaultFieldAliases(), UnitScales{})

	rec := n.Normalize(RawRecord{"Total_Exp": "12.5"})

	require.NotNil(t, rec.TotalExpenditure)
	assert.InDelta(t, 12.5, *rec.TotalExpenditure, 1e-9)
}

func TestNormalize_MarksUpstreamOrigin(t *testing.T) {
	rec := defaultNormalizer().Normalize(RawRecord{})
	assert.Equal(t, OriginUpstream, rec.Origin)
}

func TestDistrictCode_BothCasings(t *testing.T) {
	n := defaultNormalizer()

	assert.Equal(t, "BR001", n.DistrictCode(RawRecord{"district_code": "BR001"}))
	assert.Equal(t, "BR001", n.DistrictCode(RawRecord{"District_Code": " BR001 "}))
	assert.Equal(t, "1234", n.DistrictCode(RawRecord{"district_code": float64(1234)}))
	assert.Empty(t, n.DistrictCode(RawRecord{}))
}

func TestMatchDistrict_ExactMatch(t *testing.T) {
	n := defaultNormalizer()
	records := []RawRecord{
		{"district_code": "UP001", "Wages": "1"},
		{"district_code": "BR001", "Wages": "2"},
	}

	matched, err := n.MatchDistrict(records, "BR001")
	require.NoError(t, err)
	assert.Equal(t, "2", matched["Wages"])
}

func TestMatchDistrict_NoMatchIsDataMismatch(t *testing.T) {
	n := defaultNormalizer()
	records := []RawRecord{{"district_code": "UP001"}}

	_, err := n.MatchDistrict(records, "BR001")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDataMismatch))
}
