package postgres

import (
	"context"
	"database/sql"
	"time"

	"rse/internal/domain"
)

// ActivityRepository is a PostgreSQL implementation of repository.ActivityRepository.
type ActivityRepository struct {
	q Querier
}

// NewActivityRepository creates a new PostgreSQL activity repository.
func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{q: db}
}

// NewActivityRepositoryWithTx creates an activity repository using a transaction.
func NewActivityRepositoryWithTx(tx *sql.Tx) *ActivityRepository {
	return &ActivityRepository{q: tx}
}

// SumForDriverDate aggregates driving and amplitude minutes over all
// non-cancelled activities for a driver on a calendar day.
func (r *ActivityRepository) SumForDriverDate(ctx context.Context, organizationID, driverID string, date time.Time) (domain.DayCounters, error) {
	query := `
		SELECT COALESCE(SUM(driving_minutes), 0), COALESCE(SUM(amplitude_minutes), 0)
		FROM driver_activities
		WHERE organization_id = $1 AND driver_id = $2
		  AND activity_date = $3::date
		  AND status <> 'CANCELLED'
	`

	var counters domain.DayCounters
	err := r.q.QueryRowContext(ctx, query, organizationID, driverID, date.Format("2006-01-02")).Scan(
		&counters.DrivingMinutes,
		&counters.AmplitudeMinutes,
	)
	if err != nil {
		return domain.DayCounters{}, err
	}
	return counters, nil
}

// ListForDriverDate retrieves the activities for a driver on a calendar day.
func (r *ActivityRepository) ListForDriverDate(ctx context.Context, organizationID, driverID string, date time.Time) ([]*domain.DriverActivity, error) {
	query := `
		SELECT id, organization_id, driver_id, quote_id, mission_id,
		       activity_date, driving_minutes, amplitude_minutes, status, created_at
		FROM driver_activities
		WHERE organization_id = $1 AND driver_id = $2 AND activity_date = $3::date
		ORDER BY created_at
	`

	rows, err := r.q.QueryContext(ctx, query, organizationID, driverID, date.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []*domain.DriverActivity
	for rows.Next() {
		var a domain.DriverActivity
		var quoteID, missionID sql.NullString
		if err := rows.Scan(
			&a.ID,
			&a.OrganizationID,
			&a.DriverID,
			&quoteID,
			&missionID,
			&a.Date,
			&a.DrivingMinutes,
			&a.AmplitudeMinutes,
			&a.Status,
			&a.CreatedAt,
		); err != nil {
			return nil, err
		}
		if quoteID.Valid {
			a.QuoteID = &quoteID.String
		}
		if missionID.Valid {
			a.MissionID = &missionID.String
		}
		activities = append(activities, &a)
	}
	return activities, rows.Err()
}

// Create persists a new committed activity.
func (r *ActivityRepository) Create(ctx context.Context, activity *domain.DriverActivity) error {
	query := `
		INSERT INTO driver_activities (
			id, organization_id, driver_id, quote_id, mission_id,
			activity_date, driving_minutes, amplitude_minutes, status, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6::date, $7, $8, $9, $10)
	`

	var quoteID, missionID sql.NullString
	if activity.QuoteID != nil {
		quoteID = sql.NullString{String: *activity.QuoteID, Valid: true}
	}
	if activity.MissionID != nil {
		missionID = sql.NullString{String: *activity.MissionID, Valid: true}
	}

	status := activity.Status
	if status == "" {
		status = domain.ActivityStatusConfirmed
	}

	_, err := r.q.ExecContext(ctx, query,
		activity.ID,
		activity.OrganizationID,
		activity.DriverID,
		quoteID,
		missionID,
		activity.Date.Format("2006-01-02"),
		activity.DrivingMinutes,
		activity.AmplitudeMinutes,
		status,
		activity.CreatedAt,
	)
	return err
}
