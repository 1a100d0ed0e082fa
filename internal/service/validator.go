package service

import (
	"fmt"
	"math"
	"time"

	"rse/internal/domain"
)

// ValidationInput carries one mission through RSE validation.
type ValidationInput struct {
	OrganizationID     string
	VehicleCategoryID  string
	RegulatoryCategory domain.RegulatoryCategory
	LicenseCategoryID  *string
	Trip               *domain.TripAnalysis
	PickupAt           time.Time
	EstimatedDropoffAt *time.Time
}

// Validate checks one trip against an RSE rule set. Pure and deterministic:
// no I/O, no clock reads, safe for concurrent use.
//
// LIGHT vehicles are categorically exempt. A HEAVY vehicle with no configured
// rule set also passes: absence of configuration must never block operations.
// HasRules stays false in both cases so operators can tell the difference.
func Validate(input ValidationInput, rules *domain.RSERules) *domain.ValidationResult {
	if input.RegulatoryCategory == domain.RegulatoryCategoryLight || rules == nil {
		return &domain.ValidationResult{
			AdjustedTrip: input.Trip.Clone(),
			IsCompliant:  true,
			HasRules:     false,
		}
	}

	adjusted := applySpeedCap(input.Trip, rules.CappedAverageSpeedKmh)

	drivingMinutes := adjusted.TotalMinutes()
	drivingHours := drivingMinutes / 60

	amplitudeMinutes := drivingMinutes
	if input.EstimatedDropoffAt != nil {
		if span := input.EstimatedDropoffAt.Sub(input.PickupAt).Minutes(); span > 0 {
			amplitudeMinutes = span
		}
	}
	amplitudeHours := amplitudeMinutes / 60

	var violations []domain.Violation
	var warnings []domain.Warning

	if drivingHours > rules.MaxDailyDrivingHours {
		violations = append(violations, domain.Violation{
			Kind: domain.ViolationDailyDrivingExceeded,
			Message: fmt.Sprintf("daily driving time %.2fh exceeds the %.2fh limit",
				drivingHours, rules.MaxDailyDrivingHours),
			Actual: drivingHours,
			Limit:  rules.MaxDailyDrivingHours,
			Unit:   "hours",
		})
	}

	if amplitudeHours > rules.MaxDailyAmplitudeHours {
		violations = append(violations, domain.Violation{
			Kind: domain.ViolationDailyAmplitudeExceeded,
			Message: fmt.Sprintf("daily amplitude %.2fh exceeds the %.2fh limit",
				amplitudeHours, rules.MaxDailyAmplitudeHours),
			Actual: amplitudeHours,
			Limit:  rules.MaxDailyAmplitudeHours,
			Unit:   "hours",
		})
	}

	// Continuous driving is approximated by total driving time: intra-trip
	// breaks are not modelled. The break is an operational need, not a block.
	if rules.DrivingBlockHoursForBreak > 0 && drivingHours > rules.DrivingBlockHoursForBreak {
		warnings = append(warnings, domain.Warning{
			Kind: domain.WarningBreakRequired,
			Message: fmt.Sprintf("driving time %.2fh exceeds the %.2fh continuous block, a %d min break is required",
				drivingHours, rules.DrivingBlockHoursForBreak, rules.BreakMinutesPerDrivingBlock),
			Actual: drivingHours,
			Limit:  rules.DrivingBlockHoursForBreak,
			Unit:   "hours",
		})
	}

	return &domain.ValidationResult{
		AdjustedTrip: adjusted,
		Violations:   violations,
		Warnings:     warnings,
		IsCompliant:  len(violations) == 0,
		HasRules:     true,
	}
}

// applySpeedCap recomputes segment durations whose implied average speed
// exceeds the cap. Recomputed durations round up to the next whole minute:
// the cap models a conservative speed assumption, so it may only ever
// lengthen a segment, and rounding down could mask a real violation.
func applySpeedCap(trip *domain.TripAnalysis, cappedSpeedKmh *float64) *domain.TripAnalysis {
	adjusted := trip.Clone()
	if adjusted == nil {
		return &domain.TripAnalysis{}
	}
	if cappedSpeedKmh == nil || *cappedSpeedKmh <= 0 {
		return adjusted
	}

	changed := false
	for _, seg := range adjusted.Segments() {
		if seg.DistanceKm == nil || *seg.DistanceKm <= 0 {
			continue
		}
		capped := math.Ceil(*seg.DistanceKm / *cappedSpeedKmh * 60)
		if capped > seg.DurationMinutes {
			seg.DurationMinutes = capped
			changed = true
		}
	}

	// An explicit total from the segmenter is stale once segments grew.
	if changed {
		adjusted.TotalDurationMinutes = nil
	}
	return adjusted
}

// Summary derives a short human-readable string from a validation result.
func Summary(result *domain.ValidationResult) string {
	if result.IsCompliant {
		if len(result.Warnings) > 0 {
			return fmt.Sprintf("Compliant with %d warning(s)", len(result.Warnings))
		}
		return "Compliant"
	}
	return fmt.Sprintf("%d violation(s), %d warning(s)", len(result.Violations), len(result.Warnings))
}

// ValidateInput rejects malformed trips before they reach the pure validator.
func ValidateInput(input ValidationInput) error {
	if input.OrganizationID == "" {
		return ErrInvalidOrganizationID
	}
	if !input.RegulatoryCategory.IsValid() {
		return ErrInvalidRegulatoryCategory
	}
	if input.Trip == nil {
		return ErrInvalidTrip
	}
	for _, seg := range input.Trip.Segments() {
		if seg.DurationMinutes < 0 {
			return ErrInvalidTrip
		}
		if seg.DistanceKm != nil && *seg.DistanceKm < 0 {
			return ErrInvalidTrip
		}
	}
	if input.Trip.TotalDurationMinutes != nil && *input.Trip.TotalDurationMinutes < 0 {
		return ErrInvalidTrip
	}
	if input.EstimatedDropoffAt != nil && input.EstimatedDropoffAt.Before(input.PickupAt) {
		return ErrInvalidTrip
	}
	return nil
}
