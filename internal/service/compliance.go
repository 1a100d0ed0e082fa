package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"rse/internal/domain"
	"rse/internal/repository"
)

// ComplianceService wires rule resolution to the pure validation and
// alternative-generation functions, and owns rule-set administration.
type ComplianceService struct {
	resolver *RuleResolver
	ruleRepo repository.RuleRepository
	costRepo repository.CostParameterRepository // optional
	costs    domain.CostParameters
}

// NewComplianceService creates a new ComplianceService. costRepo may be nil,
// in which case every organization uses the fallback cost parameters.
func NewComplianceService(resolver *RuleResolver, ruleRepo repository.RuleRepository, costRepo repository.CostParameterRepository, costs domain.CostParameters) *ComplianceService {
	return &ComplianceService{
		resolver: resolver,
		ruleRepo: ruleRepo,
		costRepo: costRepo,
		costs:    costs,
	}
}

// ValidateTrip resolves the applicable rule set and validates the trip.
func (s *ComplianceService) ValidateTrip(ctx context.Context, input ValidationInput) (*domain.ValidationResult, error) {
	if err := ValidateInput(input); err != nil {
		return nil, err
	}

	rules, err := s.resolver.Resolve(ctx, input.OrganizationID, input.RegulatoryCategory, input.LicenseCategoryID)
	if err != nil {
		return nil, err
	}

	return Validate(input, rules), nil
}

// Alternatives validates the trip and, when violated, generates the
// remediation menu. LIGHT vehicles short-circuit to an empty menu without
// running validation.
func (s *ComplianceService) Alternatives(ctx context.Context, input ValidationInput) (*domain.AlternativesResult, error) {
	if input.RegulatoryCategory == domain.RegulatoryCategoryLight {
		return &domain.AlternativesResult{
			HasAlternatives: false,
			Alternatives:    []domain.Alternative{},
		}, nil
	}

	if err := ValidateInput(input); err != nil {
		return nil, err
	}

	rules, err := s.resolver.Resolve(ctx, input.OrganizationID, input.RegulatoryCategory, input.LicenseCategoryID)
	if err != nil {
		return nil, err
	}

	result := Validate(input, rules)
	return GenerateAlternatives(result, rules, s.costsFor(ctx, input.OrganizationID)), nil
}

// costsFor resolves the organization's cost parameters, falling back to the
// service-wide defaults when none are configured or the lookup fails. A cost
// lookup must never fail alternative generation.
func (s *ComplianceService) costsFor(ctx context.Context, organizationID string) domain.CostParameters {
	if s.costRepo == nil {
		return s.costs
	}
	costs, err := s.costRepo.GetByOrganization(ctx, organizationID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Printf("cost parameter lookup failed for organization %s: %v", organizationID, err)
		}
		return s.costs
	}
	return *costs
}

// RulesForLicenseCategory returns the configured rule set, or
// repository.ErrNotFound when none exists.
func (s *ComplianceService) RulesForLicenseCategory(ctx context.Context, organizationID, licenseCategoryID string) (*domain.RSERules, error) {
	return s.resolver.GetByLicenseCategory(ctx, organizationID, licenseCategoryID)
}

// RulesForVehicle returns the vehicle category together with its resolved
// rule set, which may be nil when nothing is configured.
func (s *ComplianceService) RulesForVehicle(ctx context.Context, organizationID, vehicleCategoryID string) (*domain.VehicleCategory, *domain.RSERules, error) {
	return s.resolver.ResolveForVehicle(ctx, organizationID, vehicleCategoryID)
}

// AllRules lists every configured rule set for the organization.
func (s *ComplianceService) AllRules(ctx context.Context, organizationID string) ([]*domain.RSERules, error) {
	return s.ruleRepo.GetAll(ctx, organizationID)
}

// UpsertRules creates or replaces the rule set for a license category and
// invalidates its cache entry.
func (s *ComplianceService) UpsertRules(ctx context.Context, rules *domain.RSERules) (*domain.RSERules, error) {
	if rules.OrganizationID == "" {
		return nil, ErrInvalidOrganizationID
	}
	if rules.LicenseCategoryID == "" ||
		rules.MaxDailyDrivingHours <= 0 ||
		rules.MaxDailyAmplitudeHours <= 0 ||
		rules.BreakMinutesPerDrivingBlock < 0 ||
		rules.DrivingBlockHoursForBreak < 0 {
		return nil, ErrInvalidRuleSet
	}
	if rules.CappedAverageSpeedKmh != nil && *rules.CappedAverageSpeedKmh <= 0 {
		return nil, ErrInvalidRuleSet
	}

	if rules.ID == "" {
		rules.ID = uuid.New().String()
	}
	rules.UpdatedAt = time.Now()

	if err := s.ruleRepo.Upsert(ctx, rules); err != nil {
		return nil, err
	}

	s.resolver.Invalidate(ctx, rules.OrganizationID, rules.LicenseCategoryID)
	return rules, nil
}
