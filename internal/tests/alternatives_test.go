package tests

import (
	"testing"

	"rse/internal/domain"
	"rse/internal/service"
)

func violatedResult(totalMinutes float64, violations ...domain.Violation) *domain.ValidationResult {
	return &domain.ValidationResult{
		AdjustedTrip: &domain.TripAnalysis{Service: &domain.TripSegment{DurationMinutes: totalMinutes}},
		Violations:   violations,
		IsCompliant:  len(violations) == 0,
		HasRules:     true,
	}
}

func TestGenerateAlternatives_CompliantResultYieldsNoMenu(t *testing.T) {
	rules := standardRules()

	// Whatever the cost parameters, a compliant trip needs no remediation.
	for _, costs := range []domain.CostParameters{
		{},
		domain.DefaultCostParameters(),
		{DriverHourlyCost: 500, HotelCostPerNight: 1000, MealAllowancePerDay: 200},
	} {
		result := service.GenerateAlternatives(violatedResult(480), rules, costs)

		if result.HasAlternatives {
			t.Error("compliant trip must not yield alternatives")
		}
		if len(result.Alternatives) != 0 {
			t.Errorf("expected empty alternatives, got %d", len(result.Alternatives))
		}
	}
}

func TestGenerateAlternatives_AllThreeStrategiesReturned(t *testing.T) {
	rules := standardRules()
	costs := domain.DefaultCostParameters()

	violated := violatedResult(600, domain.Violation{
		Kind:   domain.ViolationDailyDrivingExceeded,
		Actual: 10,
		Limit:  9,
		Unit:   "hours",
	})

	result := service.GenerateAlternatives(violated, rules, costs)

	if !result.HasAlternatives {
		t.Fatal("expected alternatives for a violated trip")
	}
	if len(result.Alternatives) != 3 {
		t.Fatalf("expected 3 alternatives, got %d", len(result.Alternatives))
	}

	seen := map[domain.AlternativeType]bool{}
	for _, a := range result.Alternatives {
		seen[a.Type] = true
	}
	for _, want := range []domain.AlternativeType{
		domain.AlternativeDoubleCrew,
		domain.AlternativeRelayDriver,
		domain.AlternativeMultiDaySplit,
	} {
		if !seen[want] {
			t.Errorf("missing alternative type %s", want)
		}
	}

	if len(result.OriginalViolations) != 1 {
		t.Errorf("expected original violations carried through, got %d", len(result.OriginalViolations))
	}
}

func TestGenerateAlternatives_CostDeltasNonNegative(t *testing.T) {
	rules := standardRules()

	violated := violatedResult(780,
		domain.Violation{Kind: domain.ViolationDailyDrivingExceeded, Actual: 13, Limit: 9, Unit: "hours"},
		domain.Violation{Kind: domain.ViolationDailyAmplitudeExceeded, Actual: 14, Limit: 12, Unit: "hours"},
	)

	grids := []domain.CostParameters{
		{},
		{DriverHourlyCost: 35},
		{HotelCostPerNight: 90, MealAllowancePerDay: 40},
		domain.DefaultCostParameters(),
		{DriverHourlyCost: 0.01, HotelCostPerNight: 0.01, MealAllowancePerDay: 0.01},
	}

	for _, costs := range grids {
		result := service.GenerateAlternatives(violated, rules, costs)
		for _, a := range result.Alternatives {
			if a.CostDelta < 0 {
				t.Errorf("%s cost delta %.2f is negative for costs %+v", a.Type, a.CostDelta, costs)
			}
		}
	}
}

func TestGenerateAlternatives_RelayCheaperThanDoubleCrewOnSmallMargin(t *testing.T) {
	rules := standardRules()
	costs := domain.DefaultCostParameters()

	// 9.5h of driving: only 0.5h over the limit.
	violated := violatedResult(570, domain.Violation{
		Kind:   domain.ViolationDailyDrivingExceeded,
		Actual: 9.5,
		Limit:  9,
		Unit:   "hours",
	})

	result := service.GenerateAlternatives(violated, rules, costs)

	byType := map[domain.AlternativeType]domain.Alternative{}
	for _, a := range result.Alternatives {
		byType[a.Type] = a
	}

	relay := byType[domain.AlternativeRelayDriver]
	double := byType[domain.AlternativeDoubleCrew]

	if relay.CostDelta >= double.CostDelta {
		t.Errorf("relay (%.2f) should be cheaper than double crew (%.2f) on a small margin",
			relay.CostDelta, double.CostDelta)
	}
	// Relay covers only the 0.5h excess.
	if want := costs.DriverHourlyCost * 0.5; relay.CostDelta != want {
		t.Errorf("relay cost delta = %.2f, want %.2f", relay.CostDelta, want)
	}
}

func TestGenerateAlternatives_MultiDayNights(t *testing.T) {
	rules := standardRules() // 12h max amplitude
	costs := domain.CostParameters{HotelCostPerNight: 100, MealAllowancePerDay: 50}

	// 20h total: ceil(20/12)-1 = 1 extra night.
	violated := violatedResult(1200, domain.Violation{
		Kind:   domain.ViolationDailyDrivingExceeded,
		Actual: 20,
		Limit:  9,
		Unit:   "hours",
	})

	result := service.GenerateAlternatives(violated, rules, costs)

	var multiDay *domain.Alternative
	for i := range result.Alternatives {
		if result.Alternatives[i].Type == domain.AlternativeMultiDaySplit {
			multiDay = &result.Alternatives[i]
		}
	}
	if multiDay == nil {
		t.Fatal("expected a MULTI_DAY_SPLIT alternative")
	}
	if want := 150.0; multiDay.CostDelta != want {
		t.Errorf("multi-day cost delta = %.2f, want %.2f (1 night)", multiDay.CostDelta, want)
	}
}

func TestGenerateAlternatives_DoubleCrewUsesAmplitudeSpan(t *testing.T) {
	rules := standardRules()
	costs := domain.CostParameters{DriverHourlyCost: 10}

	// The amplitude violation carries the real 14h duty span; the second
	// crew member is paid for all of it.
	violated := violatedResult(600,
		domain.Violation{Kind: domain.ViolationDailyAmplitudeExceeded, Actual: 14, Limit: 12, Unit: "hours"},
	)

	result := service.GenerateAlternatives(violated, rules, costs)

	for _, a := range result.Alternatives {
		if a.Type == domain.AlternativeDoubleCrew {
			if want := 140.0; a.CostDelta != want {
				t.Errorf("double crew cost delta = %.2f, want %.2f", a.CostDelta, want)
			}
			return
		}
	}
	t.Fatal("expected a DOUBLE_CREW alternative")
}
