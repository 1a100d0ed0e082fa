package postgres

import (
	"context"
	"database/sql"
	"errors"

	"rse/internal/domain"
	"rse/internal/repository"
)

// DriverRepository is a PostgreSQL implementation of repository.DriverRepository.
type DriverRepository struct {
	q Querier
}

// NewDriverRepository creates a new PostgreSQL driver repository.
func NewDriverRepository(db *sql.DB) *DriverRepository {
	return &DriverRepository{q: db}
}

// GetByID retrieves a driver within the organization.
func (r *DriverRepository) GetByID(ctx context.Context, organizationID, id string) (*domain.Driver, error) {
	query := `
		SELECT id, organization_id, name, phone, license_category_id, status
		FROM drivers
		WHERE organization_id = $1 AND id = $2
	`

	var driver domain.Driver
	var licenseCategoryID sql.NullString

	err := r.q.QueryRowContext(ctx, query, organizationID, id).Scan(
		&driver.ID,
		&driver.OrganizationID,
		&driver.Name,
		&driver.Phone,
		&licenseCategoryID,
		&driver.Status,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if licenseCategoryID.Valid {
		driver.LicenseCategoryID = &licenseCategoryID.String
	}

	return &driver, nil
}
