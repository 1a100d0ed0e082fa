package postgres

import (
	"context"
	"database/sql"
	"errors"

	"rse/internal/domain"
	"rse/internal/repository"
)

// CostParameterRepository is a PostgreSQL implementation of
// repository.CostParameterRepository.
type CostParameterRepository struct {
	q Querier
}

// NewCostParameterRepository creates a new PostgreSQL cost parameter repository.
func NewCostParameterRepository(db *sql.DB) *CostParameterRepository {
	return &CostParameterRepository{q: db}
}

// GetByOrganization retrieves the cost parameters configured for the organization.
func (r *CostParameterRepository) GetByOrganization(ctx context.Context, organizationID string) (*domain.CostParameters, error) {
	query := `
		SELECT driver_hourly_cost, hotel_cost_per_night, meal_allowance_per_day
		FROM organization_cost_parameters
		WHERE organization_id = $1
	`

	var costs domain.CostParameters
	err := r.q.QueryRowContext(ctx, query, organizationID).Scan(
		&costs.DriverHourlyCost,
		&costs.HotelCostPerNight,
		&costs.MealAllowancePerDay,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &costs, nil
}
