package service

import (
	"fmt"
	"math"

	"rse/internal/domain"
)

// GenerateAlternatives proposes remediation options for a non-compliant
// validation result. Pure: all inputs are already-resolved data.
//
// All three strategies are computed together so the caller can present a
// ranked menu; ranking by cost is the caller's responsibility. Returns an
// empty menu when the result is already compliant, whatever the cost
// parameters.
func GenerateAlternatives(result *domain.ValidationResult, rules *domain.RSERules, costs domain.CostParameters) *domain.AlternativesResult {
	if result == nil || result.IsCompliant || rules == nil {
		return &domain.AlternativesResult{
			HasAlternatives: false,
			Alternatives:    []domain.Alternative{},
		}
	}

	totalHours := result.AdjustedTrip.TotalMinutes() / 60

	// The duty span is what the second crew member is paid for. When the
	// amplitude violation carries the real span, prefer it over driving time.
	amplitudeHours := totalHours
	excessHours := 0.0
	for _, v := range result.Violations {
		if v.Kind == domain.ViolationDailyAmplitudeExceeded && v.Actual > amplitudeHours {
			amplitudeHours = v.Actual
		}
		if excess := v.Actual - v.Limit; excess > excessHours {
			excessHours = excess
		}
	}

	doubleCrew := domain.Alternative{
		Type: domain.AlternativeDoubleCrew,
		Description: fmt.Sprintf(
			"Two drivers share the load over the full %.1fh duty span so neither breaches daily limits",
			amplitudeHours),
		CostDelta: clampCost(costs.DriverHourlyCost * amplitudeHours),
	}

	relay := domain.Alternative{
		Type: domain.AlternativeRelayDriver,
		Description: fmt.Sprintf(
			"A relay driver takes over partway through, covering the %.1fh beyond the limit",
			excessHours),
		CostDelta: clampCost(costs.DriverHourlyCost * excessHours),
	}

	nights := extraNights(totalHours, rules.MaxDailyAmplitudeHours)
	multiDay := domain.Alternative{
		Type: domain.AlternativeMultiDaySplit,
		Description: fmt.Sprintf(
			"Split the mission across %d duty day(s) with overnight rest (%d night(s))",
			nights+1, nights),
		CostDelta: clampCost(float64(nights) * (costs.HotelCostPerNight + costs.MealAllowancePerDay)),
	}

	return &domain.AlternativesResult{
		HasAlternatives:    true,
		Alternatives:       []domain.Alternative{doubleCrew, relay, multiDay},
		OriginalViolations: result.Violations,
	}
}

// extraNights returns how many overnight stops a multi-day split needs.
func extraNights(totalHours, maxAmplitudeHours float64) int {
	if maxAmplitudeHours <= 0 {
		return 1
	}
	nights := int(math.Ceil(totalHours/maxAmplitudeHours)) - 1
	if nights < 0 {
		nights = 0
	}
	return nights
}

// clampCost keeps remediation deltas non-negative; the strategies only ever
// add resources to the baseline.
func clampCost(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}
