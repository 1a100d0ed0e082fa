package service

import (
	"context"
	"errors"
	"log"

	"rse/internal/domain"
	"rse/internal/redis"
	"rse/internal/repository"
)

// RuleResolver resolves the applicable RSE rule set for a validation or
// cumulative check, with a Redis cache in front of the database.
//
// Resolution order mirrors the operational data model: an explicit license
// category wins; a HEAVY vehicle without one falls back to the first
// organization rule set carrying a capped speed. LIGHT vehicles never
// resolve to a rule set.
type RuleResolver struct {
	ruleRepo    repository.RuleRepository
	vehicleRepo repository.VehicleCategoryRepository
	rulesCache  redis.RulesCacheInterface
}

// NewRuleResolver creates a new RuleResolver. rulesCache may be nil, in which
// case every lookup hits the database.
func NewRuleResolver(
	ruleRepo repository.RuleRepository,
	vehicleRepo repository.VehicleCategoryRepository,
	rulesCache redis.RulesCacheInterface,
) *RuleResolver {
	return &RuleResolver{
		ruleRepo:    ruleRepo,
		vehicleRepo: vehicleRepo,
		rulesCache:  rulesCache,
	}
}

// Resolve returns the rule set for the given category and optional license
// category. A nil result with a nil error means no rule set is configured,
// which downstream degrades to compliant.
func (r *RuleResolver) Resolve(ctx context.Context, organizationID string, category domain.RegulatoryCategory, licenseCategoryID *string) (*domain.RSERules, error) {
	if category == domain.RegulatoryCategoryLight {
		return nil, nil
	}

	if licenseCategoryID != nil && *licenseCategoryID != "" {
		rules, err := r.byLicenseCategory(ctx, organizationID, *licenseCategoryID)
		if err == nil && rules != nil {
			return rules, nil
		}
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		// Not configured for this license category, fall through.
	}

	rules, err := r.ruleRepo.FirstWithSpeedCap(ctx, organizationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return rules, nil
}

// ResolveForVehicle resolves the vehicle category and its applicable rule
// set. The vehicle category must exist within the organization.
func (r *RuleResolver) ResolveForVehicle(ctx context.Context, organizationID, vehicleCategoryID string) (*domain.VehicleCategory, *domain.RSERules, error) {
	vc, err := r.vehicleRepo.GetByID(ctx, organizationID, vehicleCategoryID)
	if err != nil {
		return nil, nil, err
	}

	rules, err := r.Resolve(ctx, organizationID, vc.RegulatoryCategory, vc.LicenseCategoryID)
	if err != nil {
		return nil, nil, err
	}
	return vc, rules, nil
}

// GetByLicenseCategory fetches a rule set through the cache. Returns
// repository.ErrNotFound when none is configured.
func (r *RuleResolver) GetByLicenseCategory(ctx context.Context, organizationID, licenseCategoryID string) (*domain.RSERules, error) {
	return r.byLicenseCategory(ctx, organizationID, licenseCategoryID)
}

func (r *RuleResolver) byLicenseCategory(ctx context.Context, organizationID, licenseCategoryID string) (*domain.RSERules, error) {
	if r.rulesCache != nil {
		cached, err := r.rulesCache.Get(ctx, organizationID, licenseCategoryID)
		if err != nil {
			// Cache trouble is not a lookup failure.
			log.Printf("rules cache get failed: %v", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	rules, err := r.ruleRepo.GetByLicenseCategory(ctx, organizationID, licenseCategoryID)
	if err != nil {
		return nil, err
	}

	if r.rulesCache != nil {
		if err := r.rulesCache.Set(ctx, rules); err != nil {
			log.Printf("rules cache set failed: %v", err)
		}
	}
	return rules, nil
}

// Invalidate drops the cached rule set after an upsert.
func (r *RuleResolver) Invalidate(ctx context.Context, organizationID, licenseCategoryID string) {
	if r.rulesCache == nil {
		return
	}
	if err := r.rulesCache.Invalidate(ctx, organizationID, licenseCategoryID); err != nil {
		log.Printf("rules cache invalidate failed: %v", err)
	}
}
