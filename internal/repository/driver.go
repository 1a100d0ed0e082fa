package repository

import (
	"context"

	"rse/internal/domain"
)

// DriverRepository defines the persistence operations for drivers.
type DriverRepository interface {
	// GetByID retrieves a driver within the organization.
	// Returns ErrNotFound for drivers belonging to other tenants.
	GetByID(ctx context.Context, organizationID, id string) (*domain.Driver, error)
}
