package domain

// RegulatoryCategory determines which driving-time regulation applies to a vehicle.
type RegulatoryCategory string

const (
	// RegulatoryCategoryLight covers vehicles exempt from RSE driving-time rules.
	RegulatoryCategoryLight RegulatoryCategory = "LIGHT"
	// RegulatoryCategoryHeavy covers vehicles subject to RSE driving-time rules.
	RegulatoryCategoryHeavy RegulatoryCategory = "HEAVY"
)

// IsValid returns true if the category is a recognized value.
func (c RegulatoryCategory) IsValid() bool {
	return c == RegulatoryCategoryLight || c == RegulatoryCategoryHeavy
}

// TripSegment is one leg of a mission with its estimated duration and distance.
type TripSegment struct {
	DurationMinutes float64
	DistanceKm      *float64 // nil when distance is unknown for this leg
}

// TripAnalysis is the segmented breakdown of a mission, produced upstream by
// the trip segmenter. Any segment may be nil when not applicable to the trip.
type TripAnalysis struct {
	Approach *TripSegment // deadhead to pickup
	Service  *TripSegment // billable leg
	Return   *TripSegment // deadhead after drop-off

	// TotalDurationMinutes overrides the derived total when set.
	TotalDurationMinutes *float64
}

// Segments returns the present segments in approach, service, return order.
func (t *TripAnalysis) Segments() []*TripSegment {
	var segs []*TripSegment
	for _, s := range []*TripSegment{t.Approach, t.Service, t.Return} {
		if s != nil {
			segs = append(segs, s)
		}
	}
	return segs
}

// TotalMinutes returns the total trip duration, deriving it from the present
// segments when no explicit total was provided.
func (t *TripAnalysis) TotalMinutes() float64 {
	if t.TotalDurationMinutes != nil {
		return *t.TotalDurationMinutes
	}
	var total float64
	for _, s := range t.Segments() {
		total += s.DurationMinutes
	}
	return total
}

// Clone returns a deep copy so duration adjustments never mutate caller input.
func (t *TripAnalysis) Clone() *TripAnalysis {
	if t == nil {
		return nil
	}
	out := &TripAnalysis{
		Approach: cloneSegment(t.Approach),
		Service:  cloneSegment(t.Service),
		Return:   cloneSegment(t.Return),
	}
	if t.TotalDurationMinutes != nil {
		v := *t.TotalDurationMinutes
		out.TotalDurationMinutes = &v
	}
	return out
}

func cloneSegment(s *TripSegment) *TripSegment {
	if s == nil {
		return nil
	}
	out := &TripSegment{DurationMinutes: s.DurationMinutes}
	if s.DistanceKm != nil {
		v := *s.DistanceKm
		out.DistanceKm = &v
	}
	return out
}
