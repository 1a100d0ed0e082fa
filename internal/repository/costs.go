package repository

import (
	"context"

	"rse/internal/domain"
)

// CostParameterRepository defines lookups for organization-specific cost
// parameters used by alternative generation.
type CostParameterRepository interface {
	// GetByOrganization retrieves the cost parameters configured for the
	// organization. Returns ErrNotFound when none are configured, in which
	// case callers fall back to defaults.
	GetByOrganization(ctx context.Context, organizationID string) (*domain.CostParameters, error)
}
