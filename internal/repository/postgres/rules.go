package postgres

import (
	"context"
	"database/sql"
	"errors"

	"rse/internal/domain"
	"rse/internal/repository"
)

// RuleRepository is a PostgreSQL implementation of repository.RuleRepository.
type RuleRepository struct {
	q Querier
}

// NewRuleRepository creates a new PostgreSQL rule repository.
func NewRuleRepository(db *sql.DB) *RuleRepository {
	return &RuleRepository{q: db}
}

const ruleColumns = `
	id, organization_id, license_category_id, license_category_code,
	max_daily_driving_hours, max_daily_amplitude_hours,
	break_minutes_per_driving_block, driving_block_hours_for_break,
	capped_average_speed_kmh, updated_at
`

// GetByLicenseCategory retrieves the rule set configured for a license category.
func (r *RuleRepository) GetByLicenseCategory(ctx context.Context, organizationID, licenseCategoryID string) (*domain.RSERules, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM rse_rules
		WHERE organization_id = $1 AND license_category_id = $2
	`
	return r.scanOne(r.q.QueryRowContext(ctx, query, organizationID, licenseCategoryID))
}

// FirstWithSpeedCap retrieves the first rule set with a capped average speed.
func (r *RuleRepository) FirstWithSpeedCap(ctx context.Context, organizationID string) (*domain.RSERules, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM rse_rules
		WHERE organization_id = $1 AND capped_average_speed_kmh IS NOT NULL
		ORDER BY updated_at DESC
		LIMIT 1
	`
	return r.scanOne(r.q.QueryRowContext(ctx, query, organizationID))
}

// GetAll retrieves every configured rule set for the organization.
func (r *RuleRepository) GetAll(ctx context.Context, organizationID string) ([]*domain.RSERules, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM rse_rules
		WHERE organization_id = $1
		ORDER BY license_category_code
	`

	rows, err := r.q.QueryContext(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.RSERules
	for rows.Next() {
		rules, err := scanRules(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rules)
	}
	return result, rows.Err()
}

// Upsert creates or replaces the rule set for a license category.
func (r *RuleRepository) Upsert(ctx context.Context, rules *domain.RSERules) error {
	query := `
		INSERT INTO rse_rules (
			id, organization_id, license_category_id, license_category_code,
			max_daily_driving_hours, max_daily_amplitude_hours,
			break_minutes_per_driving_block, driving_block_hours_for_break,
			capped_average_speed_kmh, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (organization_id, license_category_id) DO UPDATE SET
			license_category_code = EXCLUDED.license_category_code,
			max_daily_driving_hours = EXCLUDED.max_daily_driving_hours,
			max_daily_amplitude_hours = EXCLUDED.max_daily_amplitude_hours,
			break_minutes_per_driving_block = EXCLUDED.break_minutes_per_driving_block,
			driving_block_hours_for_break = EXCLUDED.driving_block_hours_for_break,
			capped_average_speed_kmh = EXCLUDED.capped_average_speed_kmh,
			updated_at = EXCLUDED.updated_at
	`

	var cappedSpeed sql.NullFloat64
	if rules.CappedAverageSpeedKmh != nil {
		cappedSpeed = sql.NullFloat64{Float64: *rules.CappedAverageSpeedKmh, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		rules.ID,
		rules.OrganizationID,
		rules.LicenseCategoryID,
		rules.LicenseCategoryCode,
		rules.MaxDailyDrivingHours,
		rules.MaxDailyAmplitudeHours,
		rules.BreakMinutesPerDrivingBlock,
		rules.DrivingBlockHoursForBreak,
		cappedSpeed,
		rules.UpdatedAt,
	)
	return err
}

func (r *RuleRepository) scanOne(row *sql.Row) (*domain.RSERules, error) {
	rules, err := scanRules(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return rules, nil
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRules(s scanner) (*domain.RSERules, error) {
	var rules domain.RSERules
	var cappedSpeed sql.NullFloat64

	err := s.Scan(
		&rules.ID,
		&rules.OrganizationID,
		&rules.LicenseCategoryID,
		&rules.LicenseCategoryCode,
		&rules.MaxDailyDrivingHours,
		&rules.MaxDailyAmplitudeHours,
		&rules.BreakMinutesPerDrivingBlock,
		&rules.DrivingBlockHoursForBreak,
		&cappedSpeed,
		&rules.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if cappedSpeed.Valid {
		rules.CappedAverageSpeedKmh = &cappedSpeed.Float64
	}

	return &rules, nil
}

// VehicleCategoryRepository is a PostgreSQL implementation of
// repository.VehicleCategoryRepository.
type VehicleCategoryRepository struct {
	q Querier
}

// NewVehicleCategoryRepository creates a new PostgreSQL vehicle category repository.
func NewVehicleCategoryRepository(db *sql.DB) *VehicleCategoryRepository {
	return &VehicleCategoryRepository{q: db}
}

// GetByID retrieves a vehicle category within the organization.
func (r *VehicleCategoryRepository) GetByID(ctx context.Context, organizationID, id string) (*domain.VehicleCategory, error) {
	query := `
		SELECT id, organization_id, name, regulatory_category, license_category_id
		FROM vehicle_categories
		WHERE organization_id = $1 AND id = $2
	`

	var vc domain.VehicleCategory
	var licenseCategoryID sql.NullString

	err := r.q.QueryRowContext(ctx, query, organizationID, id).Scan(
		&vc.ID,
		&vc.OrganizationID,
		&vc.Name,
		&vc.RegulatoryCategory,
		&licenseCategoryID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if licenseCategoryID.Valid {
		vc.LicenseCategoryID = &licenseCategoryID.String
	}

	return &vc, nil
}
