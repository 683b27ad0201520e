package domain

// Synthetic generation constants. Tuned to produce plausible figures for an
// average Indian district; this is a last-resort approximation, not a
// forecast.
const (
	syntheticBasePopulation = 500000
	ruralPopulationShare    = 0.75
	eligibleHouseholdShare  = 0.30
	jobCardCoverage         = 0.80
	activeJobCardShare      = 0.85
	workerParticipation     = 0.35
	householdsPerWorker     = 0.90
	materialCostRatio       = 0.40
)

// GenerateSynthetic fabricates a metrics record for a district and period.
// Deterministic: identical inputs always produce identical output, so
// repeated failures for the same district and period show stable numbers
// and tests can assert exact values. All counters derive from a chain of
// base quantities (rural population, eligible households, job cards, active
// workers, person-days) so cross-field ratios stay internally consistent:
// active workers never exceed job cards issued, and the women/SC/ST
// person-day shares each stay below the total.
func GenerateSynthetic(districtID, financialYear string, month int) MetricsRecord {
	seed := checksum(districtID) + int64(month)*123

	// Population scale: 0.7-1.3 around the base district.
	populationFactor := 0.7 + float64(seed%60)/100
	ruralPopulation := int64(syntheticBasePopulation * ruralPopulationShare * populationFactor)
	eligibleHouseholds := int64(float64(ruralPopulation) * eligibleHouseholdShare)
	jobCardsIssued := int64(float64(eligibleHouseholds) * jobCardCoverage)

	// Demand peaks in the summer months and dips during the monsoon.
	seasonalMultiplier := 1.0
	switch {
	case month >= 4 && month <= 6:
		seasonalMultiplier = 1.4
	case month >= 7 && month <= 9:
		seasonalMultiplier = 0.8
	}
	activeWorkers := int64(float64(jobCardsIssued) * workerParticipation * seasonalMultiplier)

	// 15-20 days of employment per active worker.
	avgDaysPerWorker := 15 + seed%6
	personDays := activeWorkers * avgDaysPerWorker

	// Demographic shares: women 48-58%, SC 16-21%, ST 8-12%.
	womenShare := 0.48 + float64(seed%10)/100
	scShare := 0.16 + float64(seed%5)/100
	stShare := 0.08 + float64(seed%4)/100

	// Works: 30-50 per lakh of rural population, 60-80% completed.
	totalWorks := ruralPopulation / 100000 * (30 + seed%20)
	completionRate := 0.6 + float64(seed%20)/100
	worksCompleted := int64(float64(totalWorks) * completionRate)

	// Wages: Rs 200-250 per person-day, with material spend on top.
	avgWagePerDay := float64(200 + seed%50)
	wageExpenditure := float64(personDays) * avgWagePerDay
	materialExpenditure := wageExpenditure * materialCostRatio / (1 - materialCostRatio)
	totalExpenditure := wageExpenditure + materialExpenditure
	paymentDelayDays := float64(7 + seed%8)

	return MetricsRecord{
		JobCardsIssued:       counterOf(jobCardsIssued),
		ActiveJobCards:       counterOf(int64(float64(jobCardsIssued) * activeJobCardShare)),
		ActiveWorkers:        counterOf(activeWorkers),
		HouseholdsWorked:     counterOf(int64(float64(activeWorkers) * householdsPerWorker)),
		PersonDaysGenerated:  counterOf(personDays),
		WomenPersonDays:      counterOf(int64(float64(personDays) * womenShare)),
		SCPersonDays:         counterOf(int64(float64(personDays) * scShare)),
		STPersonDays:         counterOf(int64(float64(personDays) * stShare)),
		TotalWorksStarted:    counterOf(totalWorks),
		TotalWorksCompleted:  counterOf(worksCompleted),
		TotalWorksInProgress: counterOf(totalWorks - worksCompleted),

		TotalExpenditure:      floatOf(totalExpenditure),
		WageExpenditure:       floatOf(wageExpenditure),
		MaterialExpenditure:   floatOf(materialExpenditure),
		AverageDaysForPayment: floatOf(paymentDelayDays),

		Origin: OriginSynthetic,
	}
}

// checksum sums the byte values of s. Collisions are fine: the seed only
// needs to vary between districts, not identify them.
func checksum(s string) int64 {
	var sum int64
	for i := 0; i < len(s); i++ {
		sum += int64(s[i])
	}
	return sum
}

func counterOf(i int64) *Counter {
	c := NewCounter(i)
	return &c
}

func floatOf(f float64) *float64 {
	return &f
}
