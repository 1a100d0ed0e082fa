package repository

import (
	"context"

	"rse/internal/domain"
)

// RuleRepository defines the persistence operations for RSE rule sets.
// All lookups are tenant-scoped by organization ID.
type RuleRepository interface {
	// GetByLicenseCategory retrieves the rule set configured for a license
	// category. Returns ErrNotFound when none is configured.
	GetByLicenseCategory(ctx context.Context, organizationID, licenseCategoryID string) (*domain.RSERules, error)

	// GetAll retrieves every configured rule set for the organization.
	GetAll(ctx context.Context, organizationID string) ([]*domain.RSERules, error)

	// FirstWithSpeedCap retrieves the first organization rule set that has a
	// capped average speed configured. This mirrors how heavy-vehicle rules
	// are resolved when no explicit license-category link exists.
	FirstWithSpeedCap(ctx context.Context, organizationID string) (*domain.RSERules, error)

	// Upsert creates or replaces the rule set for a license category.
	Upsert(ctx context.Context, rules *domain.RSERules) error
}

// VehicleCategoryRepository defines lookups for vehicle categories.
type VehicleCategoryRepository interface {
	// GetByID retrieves a vehicle category within the organization.
	GetByID(ctx context.Context, organizationID, id string) (*domain.VehicleCategory, error)
}
