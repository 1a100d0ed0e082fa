package domain

import "time"

// DriverStatus represents the employment status of a driver.
type DriverStatus string

const (
	DriverStatusActive   DriverStatus = "ACTIVE"
	DriverStatusInactive DriverStatus = "INACTIVE"
)

// Driver represents a chauffeur in the system.
type Driver struct {
	ID                string
	OrganizationID    string
	Name              string
	Phone             string
	LicenseCategoryID *string
	Status            DriverStatus
}

// ActivityStatus represents the lifecycle state of a committed activity.
type ActivityStatus string

const (
	ActivityStatusPlanned   ActivityStatus = "PLANNED"
	ActivityStatusConfirmed ActivityStatus = "CONFIRMED"
	ActivityStatusCancelled ActivityStatus = "CANCELLED"
)

// DriverActivity is one committed block of work for a driver on a calendar
// day. Cumulative counters are always recomputed from these rows, never kept
// as a separately maintained running total.
type DriverActivity struct {
	ID               string
	OrganizationID   string
	DriverID         string
	QuoteID          *string
	MissionID        *string
	Date             time.Time // calendar day, time part ignored
	DrivingMinutes   float64
	AmplitudeMinutes float64
	Status           ActivityStatus
	CreatedAt        time.Time
}
