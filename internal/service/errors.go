package service

import "errors"

var (
	// ErrInvalidOrganizationID is returned when the organization ID is empty.
	ErrInvalidOrganizationID = errors.New("invalid organization id")

	// ErrInvalidDriverID is returned when the driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidRegulatoryCategory is returned for an unrecognized regulatory category.
	ErrInvalidRegulatoryCategory = errors.New("invalid regulatory category")

	// ErrInvalidTrip is returned when a trip analysis is missing or carries
	// negative durations or distances.
	ErrInvalidTrip = errors.New("invalid trip analysis")

	// ErrInvalidMinutes is returned when additional minutes are negative.
	ErrInvalidMinutes = errors.New("additional minutes must be non-negative")

	// ErrInvalidRuleSet is returned when a rule set to upsert carries
	// non-positive limits.
	ErrInvalidRuleSet = errors.New("invalid rule set")

	// ErrDriverCheckInProgress is returned when another cumulative check for
	// the same driver and day holds the advisory lock.
	ErrDriverCheckInProgress = errors.New("cumulative check already in progress for driver")

	// ErrActivityBlocked is returned when committing an activity is refused
	// because the cumulative check came back BLOCKED.
	ErrActivityBlocked = errors.New("activity blocked by cumulative compliance check")
)
