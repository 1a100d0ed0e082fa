package domain

import "time"

// ViolationKind identifies a hard rule breach.
type ViolationKind string

const (
	ViolationDailyDrivingExceeded        ViolationKind = "DAILY_DRIVING_EXCEEDED"
	ViolationDailyAmplitudeExceeded      ViolationKind = "DAILY_AMPLITUDE_EXCEEDED"
	ViolationCumulativeDrivingExceeded   ViolationKind = "CUMULATIVE_DRIVING_EXCEEDED"
	ViolationCumulativeAmplitudeExceeded ViolationKind = "CUMULATIVE_AMPLITUDE_EXCEEDED"
)

// WarningKind identifies an advisory condition that never blocks on its own.
type WarningKind string

const (
	WarningBreakRequired       WarningKind = "BREAK_REQUIRED"
	WarningCumulativeNearLimit WarningKind = "CUMULATIVE_NEAR_LIMIT"
)

// Violation is a hard breach of an RSE limit. Actual and Limit carry the
// magnitudes that triggered it so callers can assert on numbers, not just kinds.
type Violation struct {
	Kind    ViolationKind
	Message string
	Actual  float64
	Limit   float64
	Unit    string // "hours" or "minutes"
}

// Warning is an advisory condition reported alongside a validation.
type Warning struct {
	Kind    WarningKind
	Message string
	Actual  float64
	Limit   float64
	Unit    string
}

// ValidationResult is the outcome of validating one trip against a rule set.
type ValidationResult struct {
	AdjustedTrip *TripAnalysis
	Violations   []Violation
	Warnings     []Warning
	IsCompliant  bool

	// HasRules distinguishes "rule satisfied" from "no rule configured".
	// A missing rule set degrades to compliant but must stay visible to
	// operators.
	HasRules bool
}

// Decision is the staffing decision derived from a cumulative check.
type Decision string

const (
	DecisionApproved Decision = "APPROVED"
	DecisionWarning  Decision = "WARNING"
	DecisionBlocked  Decision = "BLOCKED"
)

// DeriveDecision maps violations and warnings to a decision: any violation
// blocks, otherwise any warning downgrades approval to a flagged pass.
func DeriveDecision(violations []Violation, warnings []Warning) Decision {
	if len(violations) > 0 {
		return DecisionBlocked
	}
	if len(warnings) > 0 {
		return DecisionWarning
	}
	return DecisionApproved
}

// DayCounters aggregates a driver's committed load for one calendar day.
type DayCounters struct {
	DrivingMinutes   float64
	AmplitudeMinutes float64
}

// Add returns the counters with additional minutes applied.
func (c DayCounters) Add(drivingMinutes, amplitudeMinutes float64) DayCounters {
	return DayCounters{
		DrivingMinutes:   c.DrivingMinutes + drivingMinutes,
		AmplitudeMinutes: c.AmplitudeMinutes + amplitudeMinutes,
	}
}

// ComplianceDecision is one append-only audit record of a staffing decision.
// Records are never updated or deleted so past decisions stay reconstructable
// even after rule changes.
type ComplianceDecision struct {
	ID                 string
	OrganizationID     string
	DriverID           string
	QuoteID            *string
	MissionID          *string
	VehicleCategoryID  *string
	RegulatoryCategory RegulatoryCategory
	Decision           Decision
	Violations         []Violation
	Warnings           []Warning
	Reason             string
	CountersSnapshot   DayCounters
	CreatedAt          time.Time
}
