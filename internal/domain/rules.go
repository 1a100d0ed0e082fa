package domain

import "time"

// RSERules is the driving-time/rest-time rule set configured for a license
// category. Immutable for the duration of a validation call.
type RSERules struct {
	ID                  string
	OrganizationID      string
	LicenseCategoryID   string
	LicenseCategoryCode string

	// MaxDailyDrivingHours is the hard ceiling on cumulative driving time
	// within a duty day, in decimal hours.
	MaxDailyDrivingHours float64

	// MaxDailyAmplitudeHours caps the span from duty start to duty end,
	// waiting and service time included.
	MaxDailyAmplitudeHours float64

	// BreakMinutesPerDrivingBlock is the mandatory break length once a
	// driving block reaches DrivingBlockHoursForBreak.
	BreakMinutesPerDrivingBlock int
	DrivingBlockHoursForBreak   float64

	// CappedAverageSpeedKmh, when set, inflates any segment whose implied
	// average speed exceeds the cap. The cap never shortens a segment.
	CappedAverageSpeedKmh *float64

	UpdatedAt time.Time
}

// MaxDailyDrivingMinutes returns the driving ceiling scaled to minutes.
func (r *RSERules) MaxDailyDrivingMinutes() float64 {
	return r.MaxDailyDrivingHours * 60
}

// MaxDailyAmplitudeMinutes returns the amplitude ceiling scaled to minutes.
func (r *RSERules) MaxDailyAmplitudeMinutes() float64 {
	return r.MaxDailyAmplitudeHours * 60
}

// LicenseCategory identifies a driving-license class (B, C, D, ...).
type LicenseCategory struct {
	ID             string
	OrganizationID string
	Code           string
	Label          string
}

// VehicleCategory is a tenant-defined vehicle class carrying the regulatory
// category used for rule resolution.
type VehicleCategory struct {
	ID                 string
	OrganizationID     string
	Name               string
	RegulatoryCategory RegulatoryCategory
	LicenseCategoryID  *string // optional explicit link to a license category
}
