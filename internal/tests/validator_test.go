package tests

import (
	"testing"
	"time"

	"rse/internal/domain"
	"rse/internal/service"
)

func floatPtr(v float64) *float64 { return &v }

func standardRules() *domain.RSERules {
	return &domain.RSERules{
		ID:                          "rules-1",
		OrganizationID:              "org-1",
		LicenseCategoryID:           "lic-d",
		LicenseCategoryCode:         "D",
		MaxDailyDrivingHours:        9,
		MaxDailyAmplitudeHours:      12,
		BreakMinutesPerDrivingBlock: 45,
		DrivingBlockHoursForBreak:   4.5,
	}
}

func heavyInput(trip *domain.TripAnalysis) service.ValidationInput {
	return service.ValidationInput{
		OrganizationID:     "org-1",
		RegulatoryCategory: domain.RegulatoryCategoryHeavy,
		Trip:               trip,
		PickupAt:           time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestValidate_LightAlwaysCompliant(t *testing.T) {
	rules := standardRules()

	// Even an absurd 40h trip passes for LIGHT vehicles.
	for _, minutes := range []float64{0, 60, 600, 2400} {
		input := service.ValidationInput{
			OrganizationID:     "org-1",
			RegulatoryCategory: domain.RegulatoryCategoryLight,
			Trip:               &domain.TripAnalysis{Service: &domain.TripSegment{DurationMinutes: minutes}},
			PickupAt:           time.Now(),
		}

		result := service.Validate(input, rules)

		if !result.IsCompliant {
			t.Errorf("LIGHT trip of %.0f min should be compliant", minutes)
		}
		if len(result.Violations) != 0 || len(result.Warnings) != 0 {
			t.Errorf("LIGHT trip of %.0f min should have no violations/warnings", minutes)
		}
	}
}

func TestValidate_HeavyWithoutRulesDegradesToCompliant(t *testing.T) {
	// Pinned behavior: a HEAVY vehicle with no configured rule set passes.
	// Absence of configuration must never block operations; HasRules=false
	// is the only signal. Do not "fix" this without changing the contract.
	input := heavyInput(&domain.TripAnalysis{Service: &domain.TripSegment{DurationMinutes: 900}})

	result := service.Validate(input, nil)

	if !result.IsCompliant {
		t.Error("HEAVY trip without rules must degrade to compliant")
	}
	if result.HasRules {
		t.Error("HasRules must stay false when no rule set is configured")
	}
	if len(result.Violations) != 0 || len(result.Warnings) != 0 {
		t.Error("no violations or warnings expected without rules")
	}
}

func TestValidate_DailyDrivingExceeded(t *testing.T) {
	// 10h of service against a 9h limit.
	input := heavyInput(&domain.TripAnalysis{Service: &domain.TripSegment{DurationMinutes: 600}})

	result := service.Validate(input, standardRules())

	if result.IsCompliant {
		t.Fatal("expected non-compliant result")
	}
	if len(result.Violations) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(result.Violations))
	}
	v := result.Violations[0]
	if v.Kind != domain.ViolationDailyDrivingExceeded {
		t.Errorf("expected DAILY_DRIVING_EXCEEDED, got %s", v.Kind)
	}
	if v.Actual != 10 {
		t.Errorf("expected actual 10h, got %.2f", v.Actual)
	}
	if v.Limit != 9 {
		t.Errorf("expected limit 9h, got %.2f", v.Limit)
	}
}

func TestValidate_SpeedCapInflatesDuration(t *testing.T) {
	// 500km in 300min implies 100km/h; an 80km/h cap stretches the segment
	// to 375min (6.25h), which is compliant against the 9h limit.
	rules := standardRules()
	rules.CappedAverageSpeedKmh = floatPtr(80)

	input := heavyInput(&domain.TripAnalysis{
		Service: &domain.TripSegment{DurationMinutes: 300, DistanceKm: floatPtr(500)},
	})

	result := service.Validate(input, rules)

	if !result.IsCompliant {
		t.Fatalf("expected compliant result, got violations %v", result.Violations)
	}
	got := result.AdjustedTrip.Service.DurationMinutes
	if got != 375 {
		t.Errorf("expected adjusted duration 375 min, got %.0f", got)
	}
	// Warning expected: 6.25h of driving exceeds the 4.5h block.
	if len(result.Warnings) != 1 || result.Warnings[0].Kind != domain.WarningBreakRequired {
		t.Errorf("expected a BREAK_REQUIRED warning, got %v", result.Warnings)
	}
}

func TestValidate_SpeedCapNeverDecreasesDuration(t *testing.T) {
	rules := standardRules()
	rules.CappedAverageSpeedKmh = floatPtr(80)

	cases := []struct {
		name            string
		durationMinutes float64
		distanceKm      *float64
		wantAdjusted    float64
	}{
		{"slower than cap untouched", 120, floatPtr(100), 120},     // 50km/h
		{"exactly at cap untouched", 60, floatPtr(80), 60},         // 80km/h
		{"above cap inflated", 60, floatPtr(120), 90},              // 120km/h -> 120/80*60
		{"no distance untouched", 30, nil, 30},
		{"rounding goes up", 60, floatPtr(100), 75},                // 100/80*60 = 75 exact
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := heavyInput(&domain.TripAnalysis{
				Service: &domain.TripSegment{DurationMinutes: tc.durationMinutes, DistanceKm: tc.distanceKm},
			})

			result := service.Validate(input, rules)

			got := result.AdjustedTrip.Service.DurationMinutes
			if got != tc.wantAdjusted {
				t.Errorf("adjusted duration = %.2f, want %.2f", got, tc.wantAdjusted)
			}
			if got < tc.durationMinutes {
				t.Errorf("speed cap decreased duration from %.2f to %.2f", tc.durationMinutes, got)
			}
		})
	}
}

func TestValidate_SpeedCapRoundsUpToWholeMinute(t *testing.T) {
	rules := standardRules()
	rules.CappedAverageSpeedKmh = floatPtr(90)

	// 100km at 90km/h is 66.67min; rounding must go up, never down.
	input := heavyInput(&domain.TripAnalysis{
		Service: &domain.TripSegment{DurationMinutes: 50, DistanceKm: floatPtr(100)},
	})

	result := service.Validate(input, rules)

	got := result.AdjustedTrip.Service.DurationMinutes
	if got != 67 {
		t.Errorf("expected 67 min (rounded up), got %.2f", got)
	}
}

func TestValidate_AmplitudeFromDropoff(t *testing.T) {
	rules := standardRules()

	pickup := time.Date(2025, 6, 1, 6, 0, 0, 0, time.UTC)
	dropoff := pickup.Add(13 * time.Hour) // 13h amplitude vs 12h limit

	input := service.ValidationInput{
		OrganizationID:     "org-1",
		RegulatoryCategory: domain.RegulatoryCategoryHeavy,
		Trip:               &domain.TripAnalysis{Service: &domain.TripSegment{DurationMinutes: 300}},
		PickupAt:           pickup,
		EstimatedDropoffAt: &dropoff,
	}

	result := service.Validate(input, rules)

	if result.IsCompliant {
		t.Fatal("expected amplitude violation")
	}
	if len(result.Violations) != 1 || result.Violations[0].Kind != domain.ViolationDailyAmplitudeExceeded {
		t.Fatalf("expected DAILY_AMPLITUDE_EXCEEDED, got %v", result.Violations)
	}
	if result.Violations[0].Actual != 13 {
		t.Errorf("expected actual 13h, got %.2f", result.Violations[0].Actual)
	}
}

func TestValidate_MissingDropoffFallsBackToDuration(t *testing.T) {
	// Without a dropoff estimate, amplitude equals total adjusted duration
	// and an 8h trip stays under both the 9h driving and 12h amplitude caps.
	input := heavyInput(&domain.TripAnalysis{
		Approach: &domain.TripSegment{DurationMinutes: 60},
		Service:  &domain.TripSegment{DurationMinutes: 360},
		Return:   &domain.TripSegment{DurationMinutes: 60},
	})

	result := service.Validate(input, standardRules())

	if !result.IsCompliant {
		t.Fatalf("expected compliant result, got %v", result.Violations)
	}
}

func TestValidate_ZeroDurationTripCompliant(t *testing.T) {
	input := heavyInput(&domain.TripAnalysis{})

	result := service.Validate(input, standardRules())

	if !result.IsCompliant || len(result.Warnings) != 0 {
		t.Error("zero-duration trip must be trivially compliant")
	}
}

func TestValidate_BreakRequiredIsWarningNotViolation(t *testing.T) {
	// 5h of driving crosses the 4.5h block but stays under the 9h limit.
	input := heavyInput(&domain.TripAnalysis{Service: &domain.TripSegment{DurationMinutes: 300}})

	result := service.Validate(input, standardRules())

	if !result.IsCompliant {
		t.Fatal("a break requirement must not block the mission")
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(result.Warnings))
	}
	w := result.Warnings[0]
	if w.Kind != domain.WarningBreakRequired {
		t.Errorf("expected BREAK_REQUIRED, got %s", w.Kind)
	}
	if w.Limit != 4.5 {
		t.Errorf("expected block limit 4.5h, got %.2f", w.Limit)
	}
}

func TestValidate_ViolationsMonotonicInLoad(t *testing.T) {
	// Growing the trip while holding rules fixed never turns a violation
	// back into compliance.
	rules := standardRules()
	violatedBefore := false

	for minutes := 60.0; minutes <= 1200; minutes += 60 {
		input := heavyInput(&domain.TripAnalysis{Service: &domain.TripSegment{DurationMinutes: minutes}})
		result := service.Validate(input, rules)

		if violatedBefore && result.IsCompliant {
			t.Fatalf("trip of %.0f min compliant after a shorter trip violated", minutes)
		}
		if !result.IsCompliant {
			violatedBefore = true
		}
	}

	if !violatedBefore {
		t.Fatal("expected the longest trips to violate")
	}
}

func TestSummary(t *testing.T) {
	cases := []struct {
		name   string
		result *domain.ValidationResult
		want   string
	}{
		{
			"compliant",
			&domain.ValidationResult{IsCompliant: true},
			"Compliant",
		},
		{
			"compliant with warning",
			&domain.ValidationResult{IsCompliant: true, Warnings: []domain.Warning{{}}},
			"Compliant with 1 warning(s)",
		},
		{
			"violations and warnings",
			&domain.ValidationResult{Violations: []domain.Violation{{}, {}}, Warnings: []domain.Warning{{}}},
			"2 violation(s), 1 warning(s)",
		},
	}

	for _, tc := range cases {
		if got := service.Summary(tc.result); got != tc.want {
			t.Errorf("%s: Summary() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestValidateInput_RejectsNegativeDurations(t *testing.T) {
	input := heavyInput(&domain.TripAnalysis{Service: &domain.TripSegment{DurationMinutes: -5}})

	if err := service.ValidateInput(input); err != service.ErrInvalidTrip {
		t.Errorf("expected ErrInvalidTrip, got %v", err)
	}
}

func TestValidateInput_RejectsDropoffBeforePickup(t *testing.T) {
	input := heavyInput(&domain.TripAnalysis{Service: &domain.TripSegment{DurationMinutes: 300}})
	dropoff := input.PickupAt.Add(-time.Hour)
	input.EstimatedDropoffAt = &dropoff

	if err := service.ValidateInput(input); err != service.ErrInvalidTrip {
		t.Errorf("expected ErrInvalidTrip for a dropoff before pickup, got %v", err)
	}

	// A dropoff equal to pickup is degenerate but not malformed; amplitude
	// falls back to trip duration.
	same := input.PickupAt
	input.EstimatedDropoffAt = &same
	if err := service.ValidateInput(input); err != nil {
		t.Errorf("expected dropoff == pickup to pass input validation, got %v", err)
	}
}
