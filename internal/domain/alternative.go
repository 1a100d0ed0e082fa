package domain

// AlternativeType identifies a remediation strategy for a non-compliant mission.
type AlternativeType string

const (
	// AlternativeDoubleCrew staffs two drivers for the whole duty span.
	AlternativeDoubleCrew AlternativeType = "DOUBLE_CREW"
	// AlternativeRelayDriver hands the vehicle over partway through the trip.
	AlternativeRelayDriver AlternativeType = "RELAY_DRIVER"
	// AlternativeMultiDaySplit breaks the mission across duty days with
	// overnight rest.
	AlternativeMultiDaySplit AlternativeType = "MULTI_DAY_SPLIT"
)

// Alternative is one priced remediation option. CostDelta is the additional
// cost versus the single-driver single-day baseline, never negative.
type Alternative struct {
	Type        AlternativeType
	Description string
	CostDelta   float64
}

// AlternativesResult bundles the remediation menu for a failed validation.
// Ranking by cost is left to the caller.
type AlternativesResult struct {
	HasAlternatives    bool
	Alternatives       []Alternative
	OriginalViolations []Violation
}

// CostParameters drives alternative cost estimation, resolved per organization.
type CostParameters struct {
	DriverHourlyCost    float64
	HotelCostPerNight   float64
	MealAllowancePerDay float64
}

// DefaultCostParameters returns the fallback cost parameters used when an
// organization has not configured its own.
func DefaultCostParameters() CostParameters {
	return CostParameters{
		DriverHourlyCost:    35.0,
		HotelCostPerNight:   90.0,
		MealAllowancePerDay: 40.0,
	}
}
