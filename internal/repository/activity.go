package repository

import (
	"context"
	"time"

	"rse/internal/domain"
)

// ActivityRepository defines the persistence operations for committed driver
// activities. Counters are always aggregated from these rows on demand, so
// they never drift from the source missions.
type ActivityRepository interface {
	// SumForDriverDate aggregates driving and amplitude minutes over all
	// non-cancelled activities for a driver on a calendar day.
	SumForDriverDate(ctx context.Context, organizationID, driverID string, date time.Time) (domain.DayCounters, error)

	// ListForDriverDate retrieves the underlying activities for a driver on
	// a calendar day.
	ListForDriverDate(ctx context.Context, organizationID, driverID string, date time.Time) ([]*domain.DriverActivity, error)

	// Create persists a new committed activity.
	Create(ctx context.Context, activity *domain.DriverActivity) error
}
