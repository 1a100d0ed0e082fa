package tests

import (
	"context"
	"testing"
	"time"

	"rse/internal/domain"
	"rse/internal/repository"
	"rse/internal/service"
)

func newResolverFixture() (*MockRuleRepository, *MockVehicleCategoryRepository, *service.RuleResolver) {
	ruleRepo := NewMockRuleRepository()
	vehicleRepo := NewMockVehicleCategoryRepository()
	return ruleRepo, vehicleRepo, service.NewRuleResolver(ruleRepo, vehicleRepo, nil)
}

func TestResolve_LightNeverResolves(t *testing.T) {
	ctx := context.Background()
	ruleRepo, _, resolver := newResolverFixture()
	ruleRepo.AddRules(standardRules())

	lic := "lic-d"
	rules, err := resolver.Resolve(ctx, "org-1", domain.RegulatoryCategoryLight, &lic)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rules != nil {
		t.Error("LIGHT must never resolve to a rule set, even with one configured")
	}
}

func TestResolve_LicenseCategoryWins(t *testing.T) {
	ctx := context.Background()
	ruleRepo, _, resolver := newResolverFixture()

	direct := standardRules()
	ruleRepo.AddRules(direct)

	capped := standardRules()
	capped.ID = "rules-capped"
	capped.LicenseCategoryID = "lic-other"
	capped.CappedAverageSpeedKmh = floatPtr(80)
	ruleRepo.AddRules(capped)

	lic := "lic-d"
	rules, err := resolver.Resolve(ctx, "org-1", domain.RegulatoryCategoryHeavy, &lic)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rules == nil || rules.ID != "rules-1" {
		t.Errorf("expected the license category rule set, got %+v", rules)
	}
}

func TestResolve_FallsBackToSpeedCappedRules(t *testing.T) {
	ctx := context.Background()
	ruleRepo, _, resolver := newResolverFixture()

	capped := standardRules()
	capped.ID = "rules-capped"
	capped.LicenseCategoryID = "lic-other"
	capped.CappedAverageSpeedKmh = floatPtr(80)
	ruleRepo.AddRules(capped)

	// Unconfigured license category falls back to the org's capped rule set.
	lic := "lic-unconfigured"
	rules, err := resolver.Resolve(ctx, "org-1", domain.RegulatoryCategoryHeavy, &lic)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rules == nil || rules.ID != "rules-capped" {
		t.Errorf("expected fallback to the speed-capped rule set, got %+v", rules)
	}

	// No license category at all takes the same fallback.
	rules, err = resolver.Resolve(ctx, "org-1", domain.RegulatoryCategoryHeavy, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rules == nil || rules.ID != "rules-capped" {
		t.Errorf("expected fallback without a license category, got %+v", rules)
	}
}

func TestResolve_NothingConfiguredIsNilNil(t *testing.T) {
	ctx := context.Background()
	_, _, resolver := newResolverFixture()

	rules, err := resolver.Resolve(ctx, "org-1", domain.RegulatoryCategoryHeavy, nil)
	if err != nil {
		t.Fatalf("missing configuration must not be an error: %v", err)
	}
	if rules != nil {
		t.Error("expected nil rules with nothing configured")
	}
}

func TestResolveForVehicle(t *testing.T) {
	ctx := context.Background()
	ruleRepo, vehicleRepo, resolver := newResolverFixture()

	ruleRepo.AddRules(standardRules())
	lic := "lic-d"
	vehicleRepo.AddCategory(&domain.VehicleCategory{
		ID:                 "vc-bus",
		OrganizationID:     "org-1",
		Name:               "Coach",
		RegulatoryCategory: domain.RegulatoryCategoryHeavy,
		LicenseCategoryID:  &lic,
	})

	vc, rules, err := resolver.ResolveForVehicle(ctx, "org-1", "vc-bus")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vc.Name != "Coach" {
		t.Errorf("unexpected vehicle category %+v", vc)
	}
	if rules == nil || rules.ID != "rules-1" {
		t.Errorf("expected the rule set resolved through the vehicle, got %+v", rules)
	}

	if _, _, err := resolver.ResolveForVehicle(ctx, "org-1", "vc-missing"); err != repository.ErrNotFound {
		t.Errorf("expected ErrNotFound for an unknown vehicle category, got %v", err)
	}
}

func TestUpsertRules_ValidatesAndAssignsID(t *testing.T) {
	ctx := context.Background()
	ruleRepo, vehicleRepo, _ := newResolverFixture()
	resolver := service.NewRuleResolver(ruleRepo, vehicleRepo, nil)
	svc := service.NewComplianceService(resolver, ruleRepo, nil, domain.DefaultCostParameters())

	rules := &domain.RSERules{
		OrganizationID:         "org-1",
		LicenseCategoryID:      "lic-d",
		MaxDailyDrivingHours:   9,
		MaxDailyAmplitudeHours: 12,
	}

	saved, err := svc.UpsertRules(ctx, rules)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.ID == "" {
		t.Error("expected an assigned ID")
	}
	if saved.UpdatedAt.IsZero() {
		t.Error("expected UpdatedAt to be set")
	}
	if ruleRepo.UpsertCallCount != 1 {
		t.Errorf("expected 1 upsert, got %d", ruleRepo.UpsertCallCount)
	}

	invalid := []*domain.RSERules{
		{LicenseCategoryID: "lic-d", MaxDailyDrivingHours: 9, MaxDailyAmplitudeHours: 12},
		{OrganizationID: "org-1", MaxDailyDrivingHours: 9, MaxDailyAmplitudeHours: 12},
		{OrganizationID: "org-1", LicenseCategoryID: "lic-d", MaxDailyDrivingHours: 0, MaxDailyAmplitudeHours: 12},
		{OrganizationID: "org-1", LicenseCategoryID: "lic-d", MaxDailyDrivingHours: 9, MaxDailyAmplitudeHours: -1},
	}
	for i, r := range invalid {
		if _, err := svc.UpsertRules(ctx, r); err == nil {
			t.Errorf("case %d: expected a validation error", i)
		}
	}

	capped := &domain.RSERules{
		OrganizationID:         "org-1",
		LicenseCategoryID:      "lic-d",
		MaxDailyDrivingHours:   9,
		MaxDailyAmplitudeHours: 12,
		CappedAverageSpeedKmh:  floatPtr(-80),
	}
	if _, err := svc.UpsertRules(ctx, capped); err != service.ErrInvalidRuleSet {
		t.Errorf("expected ErrInvalidRuleSet for a negative speed cap, got %v", err)
	}
}

func TestAlternatives_PerOrganizationCostsWithFallback(t *testing.T) {
	ctx := context.Background()
	ruleRepo, vehicleRepo, _ := newResolverFixture()
	ruleRepo.AddRules(standardRules())

	costRepo := NewMockCostParameterRepository()
	costRepo.SetCosts("org-1", domain.CostParameters{
		DriverHourlyCost:    50,
		HotelCostPerNight:   120,
		MealAllowancePerDay: 60,
	})

	resolver := service.NewRuleResolver(ruleRepo, vehicleRepo, nil)
	svc := service.NewComplianceService(resolver, ruleRepo, costRepo, domain.DefaultCostParameters())

	lic := "lic-d"
	// 10h of driving: 1h over the limit, relay covers the excess.
	input := service.ValidationInput{
		OrganizationID:     "org-1",
		RegulatoryCategory: domain.RegulatoryCategoryHeavy,
		LicenseCategoryID:  &lic,
		Trip:               &domain.TripAnalysis{Service: &domain.TripSegment{DurationMinutes: 600}},
		PickupAt:           time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
	}

	result, err := svc.Alternatives(ctx, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, a := range result.Alternatives {
		if a.Type == domain.AlternativeRelayDriver && a.CostDelta != 50 {
			t.Errorf("relay delta = %.2f, want 50 (organization hourly rate)", a.CostDelta)
		}
	}

	// An organization without configured costs gets the fallback rate.
	other := standardRules()
	other.OrganizationID = "org-2"
	ruleRepo.AddRules(other)
	input.OrganizationID = "org-2"

	result, err = svc.Alternatives(ctx, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, a := range result.Alternatives {
		if a.Type == domain.AlternativeRelayDriver && a.CostDelta != 35 {
			t.Errorf("relay delta = %.2f, want 35 (fallback hourly rate)", a.CostDelta)
		}
	}
}

func TestAlternatives_LightShortCircuits(t *testing.T) {
	ctx := context.Background()
	ruleRepo, vehicleRepo, _ := newResolverFixture()
	resolver := service.NewRuleResolver(ruleRepo, vehicleRepo, nil)
	svc := service.NewComplianceService(resolver, ruleRepo, nil, domain.DefaultCostParameters())

	result, err := svc.Alternatives(ctx, service.ValidationInput{
		OrganizationID:     "org-1",
		RegulatoryCategory: domain.RegulatoryCategoryLight,
		Trip:               &domain.TripAnalysis{Service: &domain.TripSegment{DurationMinutes: 2400}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.HasAlternatives || len(result.Alternatives) != 0 {
		t.Error("LIGHT must short-circuit to an empty menu")
	}
}
