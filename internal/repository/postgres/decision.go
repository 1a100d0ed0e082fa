package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"rse/internal/domain"
	"rse/internal/repository"
)

// DecisionRepository is a PostgreSQL implementation of repository.DecisionRepository.
// Inserts only: the audit trail has no update or delete path.
type DecisionRepository struct {
	q Querier
}

// NewDecisionRepository creates a new PostgreSQL decision repository.
func NewDecisionRepository(db *sql.DB) *DecisionRepository {
	return &DecisionRepository{q: db}
}

// Create appends one decision record.
func (r *DecisionRepository) Create(ctx context.Context, decision *domain.ComplianceDecision) error {
	query := `
		INSERT INTO compliance_decisions (
			id, organization_id, driver_id, quote_id, mission_id,
			vehicle_category_id, regulatory_category, decision,
			violations, warnings, reason,
			driving_minutes_snapshot, amplitude_minutes_snapshot, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	violations, err := json.Marshal(decision.Violations)
	if err != nil {
		return err
	}
	warnings, err := json.Marshal(decision.Warnings)
	if err != nil {
		return err
	}

	var quoteID, missionID, vehicleCategoryID sql.NullString
	if decision.QuoteID != nil {
		quoteID = sql.NullString{String: *decision.QuoteID, Valid: true}
	}
	if decision.MissionID != nil {
		missionID = sql.NullString{String: *decision.MissionID, Valid: true}
	}
	if decision.VehicleCategoryID != nil {
		vehicleCategoryID = sql.NullString{String: *decision.VehicleCategoryID, Valid: true}
	}

	_, err = r.q.ExecContext(ctx, query,
		decision.ID,
		decision.OrganizationID,
		decision.DriverID,
		quoteID,
		missionID,
		vehicleCategoryID,
		decision.RegulatoryCategory,
		decision.Decision,
		violations,
		warnings,
		decision.Reason,
		decision.CountersSnapshot.DrivingMinutes,
		decision.CountersSnapshot.AmplitudeMinutes,
		decision.CreatedAt,
	)
	return err
}

// List retrieves decision records for the organization, newest first.
func (r *DecisionRepository) List(ctx context.Context, organizationID string, filter repository.DecisionFilter) ([]*domain.ComplianceDecision, error) {
	query := `
		SELECT id, organization_id, driver_id, quote_id, mission_id,
		       vehicle_category_id, regulatory_category, decision,
		       violations, warnings, reason,
		       driving_minutes_snapshot, amplitude_minutes_snapshot, created_at
		FROM compliance_decisions
		WHERE organization_id = $1
		  AND ($2 = '' OR driver_id = $2)
		  AND ($3::date IS NULL OR created_at::date = $3::date)
		ORDER BY created_at DESC
		LIMIT 200
	`

	var date sql.NullString
	if filter.Date != nil {
		date = sql.NullString{String: filter.Date.Format("2006-01-02"), Valid: true}
	}

	rows, err := r.q.QueryContext(ctx, query, organizationID, filter.DriverID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var decisions []*domain.ComplianceDecision
	for rows.Next() {
		var d domain.ComplianceDecision
		var quoteID, missionID, vehicleCategoryID sql.NullString
		var violations, warnings []byte
		if err := rows.Scan(
			&d.ID,
			&d.OrganizationID,
			&d.DriverID,
			&quoteID,
			&missionID,
			&vehicleCategoryID,
			&d.RegulatoryCategory,
			&d.Decision,
			&violations,
			&warnings,
			&d.Reason,
			&d.CountersSnapshot.DrivingMinutes,
			&d.CountersSnapshot.AmplitudeMinutes,
			&d.CreatedAt,
		); err != nil {
			return nil, err
		}
		if quoteID.Valid {
			d.QuoteID = &quoteID.String
		}
		if missionID.Valid {
			d.MissionID = &missionID.String
		}
		if vehicleCategoryID.Valid {
			d.VehicleCategoryID = &vehicleCategoryID.String
		}
		if err := json.Unmarshal(violations, &d.Violations); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(warnings, &d.Warnings); err != nil {
			return nil, err
		}
		decisions = append(decisions, &d)
	}
	return decisions, rows.Err()
}
