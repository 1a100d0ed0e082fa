package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rse/internal/domain"
	"rse/internal/redis"
	"rse/internal/repository"
)

// CounterService tracks cumulative driving and amplitude minutes per driver
// and calendar day, and records staffing decisions in the append-only audit
// trail.
//
// Counters are recomputed from committed activity rows on every call rather
// than kept as a running total, so they can never drift from the source
// missions. The cost is a read-then-decide race between two concurrent
// operations for the same driver and day; the check-and-log and commit paths
// close it with a per-driver-per-day advisory lock when a lock store is
// configured. Plain reads stay lock-free.
type CounterService struct {
	activityRepo repository.ActivityRepository
	driverRepo   repository.DriverRepository
	decisionRepo repository.DecisionRepository
	resolver     *RuleResolver
	lockStore    redis.LockStoreInterface // optional

	nearLimitRatio float64
	lockTTL        time.Duration
}

// NewCounterService creates a new CounterService. lockStore may be nil, in
// which case concurrent checks for the same driver and day are not
// serialized.
func NewCounterService(
	activityRepo repository.ActivityRepository,
	driverRepo repository.DriverRepository,
	decisionRepo repository.DecisionRepository,
	resolver *RuleResolver,
	lockStore redis.LockStoreInterface,
	nearLimitRatio float64,
	lockTTL time.Duration,
) *CounterService {
	if nearLimitRatio <= 0 || nearLimitRatio > 1 {
		nearLimitRatio = 0.90
	}
	return &CounterService{
		activityRepo:   activityRepo,
		driverRepo:     driverRepo,
		decisionRepo:   decisionRepo,
		resolver:       resolver,
		lockStore:      lockStore,
		nearLimitRatio: nearLimitRatio,
		lockTTL:        lockTTL,
	}
}

// CumulativeCheckRequest projects additional minutes onto a driver's day.
type CumulativeCheckRequest struct {
	OrganizationID             string
	DriverID                   string
	Date                       time.Time
	RegulatoryCategory         domain.RegulatoryCategory
	LicenseCategoryID          *string
	AdditionalDrivingMinutes   float64
	AdditionalAmplitudeMinutes float64
}

// CumulativeCheckResult is the outcome of a cumulative compliance check.
type CumulativeCheckResult struct {
	IsCompliant       bool
	HasRules          bool
	Violations        []domain.Violation
	Warnings          []domain.Warning
	ExistingCounters  domain.DayCounters
	ProjectedCounters domain.DayCounters
	Decision          domain.Decision
}

// CheckCumulative aggregates the driver's committed day, projects the
// additional minutes and compares against the resolved daily limits.
// Violations carry both the existing and the requested contribution so the
// audit trail is self-explanatory.
func (s *CounterService) CheckCumulative(ctx context.Context, req CumulativeCheckRequest) (*CumulativeCheckResult, error) {
	if err := s.validateCheckRequest(req); err != nil {
		return nil, err
	}

	driver, err := s.driverRepo.GetByID(ctx, req.OrganizationID, req.DriverID)
	if err != nil {
		return nil, err
	}

	existing, err := s.activityRepo.SumForDriverDate(ctx, req.OrganizationID, req.DriverID, req.Date)
	if err != nil {
		return nil, err
	}
	projected := existing.Add(req.AdditionalDrivingMinutes, req.AdditionalAmplitudeMinutes)

	licenseCategoryID := req.LicenseCategoryID
	if licenseCategoryID == nil {
		licenseCategoryID = driver.LicenseCategoryID
	}

	rules, err := s.resolver.Resolve(ctx, req.OrganizationID, req.RegulatoryCategory, licenseCategoryID)
	if err != nil {
		return nil, err
	}

	result := &CumulativeCheckResult{
		ExistingCounters:  existing,
		ProjectedCounters: projected,
	}

	if rules == nil {
		// No configured rule set degrades to compliant; HasRules stays
		// false so "nothing configured" never reads as "rule satisfied".
		result.IsCompliant = true
		result.Decision = domain.DecisionApproved
		return result, nil
	}
	result.HasRules = true

	result.Violations, result.Warnings = s.compareCounters(existing, req, projected, rules)
	result.IsCompliant = len(result.Violations) == 0
	result.Decision = domain.DeriveDecision(result.Violations, result.Warnings)
	return result, nil
}

func (s *CounterService) compareCounters(existing domain.DayCounters, req CumulativeCheckRequest, projected domain.DayCounters, rules *domain.RSERules) ([]domain.Violation, []domain.Warning) {
	var violations []domain.Violation
	var warnings []domain.Warning

	drivingLimit := rules.MaxDailyDrivingMinutes()
	amplitudeLimit := rules.MaxDailyAmplitudeMinutes()

	if projected.DrivingMinutes > drivingLimit {
		violations = append(violations, domain.Violation{
			Kind: domain.ViolationCumulativeDrivingExceeded,
			Message: fmt.Sprintf("projected daily driving %.0f min exceeds the %.0f min limit (existing %.0f + requested %.0f)",
				projected.DrivingMinutes, drivingLimit, existing.DrivingMinutes, req.AdditionalDrivingMinutes),
			Actual: projected.DrivingMinutes,
			Limit:  drivingLimit,
			Unit:   "minutes",
		})
	} else if projected.DrivingMinutes >= s.nearLimitRatio*drivingLimit && projected.DrivingMinutes > 0 {
		warnings = append(warnings, domain.Warning{
			Kind: domain.WarningCumulativeNearLimit,
			Message: fmt.Sprintf("projected daily driving %.0f min is within %.0f%% of the %.0f min limit",
				projected.DrivingMinutes, s.nearLimitRatio*100, drivingLimit),
			Actual: projected.DrivingMinutes,
			Limit:  drivingLimit,
			Unit:   "minutes",
		})
	}

	if projected.AmplitudeMinutes > amplitudeLimit {
		violations = append(violations, domain.Violation{
			Kind: domain.ViolationCumulativeAmplitudeExceeded,
			Message: fmt.Sprintf("projected daily amplitude %.0f min exceeds the %.0f min limit (existing %.0f + requested %.0f)",
				projected.AmplitudeMinutes, amplitudeLimit, existing.AmplitudeMinutes, req.AdditionalAmplitudeMinutes),
			Actual: projected.AmplitudeMinutes,
			Limit:  amplitudeLimit,
			Unit:   "minutes",
		})
	} else if projected.AmplitudeMinutes >= s.nearLimitRatio*amplitudeLimit && projected.AmplitudeMinutes > 0 {
		warnings = append(warnings, domain.Warning{
			Kind: domain.WarningCumulativeNearLimit,
			Message: fmt.Sprintf("projected daily amplitude %.0f min is within %.0f%% of the %.0f min limit",
				projected.AmplitudeMinutes, s.nearLimitRatio*100, amplitudeLimit),
			Actual: projected.AmplitudeMinutes,
			Limit:  amplitudeLimit,
			Unit:   "minutes",
		})
	}

	return violations, warnings
}

// LogOptions controls audit logging on the check-and-log path.
type LogOptions struct {
	Enabled           bool
	QuoteID           *string
	MissionID         *string
	VehicleCategoryID *string
	Reason            string
}

// CheckAndLogResult bundles a check with its audit-logging outcome.
// LogError is populated when logging was requested but the insert failed;
// the decision itself is still returned (the failure must not be hidden,
// nor may it discard a computed decision).
type CheckAndLogResult struct {
	*CumulativeCheckResult
	DecisionLogged bool
	LogError       string
}

// CheckAndLog runs a cumulative check and, when requested, appends the
// decision to the audit trail. The whole read-decide-log sequence holds the
// driver-day advisory lock so two concurrent assignments cannot both approve
// against the same committed totals.
func (s *CounterService) CheckAndLog(ctx context.Context, req CumulativeCheckRequest, opts LogOptions) (*CheckAndLogResult, error) {
	release, err := s.lockDriverDay(ctx, req.DriverID, req.Date)
	if err != nil {
		return nil, err
	}
	defer release()

	check, err := s.CheckCumulative(ctx, req)
	if err != nil {
		return nil, err
	}

	result := &CheckAndLogResult{CumulativeCheckResult: check}
	if !opts.Enabled {
		return result, nil
	}

	decision := &domain.ComplianceDecision{
		ID:                 uuid.New().String(),
		OrganizationID:     req.OrganizationID,
		DriverID:           req.DriverID,
		QuoteID:            opts.QuoteID,
		MissionID:          opts.MissionID,
		VehicleCategoryID:  opts.VehicleCategoryID,
		RegulatoryCategory: req.RegulatoryCategory,
		Decision:           check.Decision,
		Violations:         check.Violations,
		Warnings:           check.Warnings,
		Reason:             opts.Reason,
		CountersSnapshot:   check.ProjectedCounters,
		CreatedAt:          time.Now(),
	}

	if err := s.decisionRepo.Create(ctx, decision); err != nil {
		result.LogError = err.Error()
		return result, nil
	}
	result.DecisionLogged = true
	return result, nil
}

// LogDecision appends one audit record. Records are never updated or
// deleted; repeated calls always produce distinct rows.
func (s *CounterService) LogDecision(ctx context.Context, decision *domain.ComplianceDecision) error {
	if decision.OrganizationID == "" {
		return ErrInvalidOrganizationID
	}
	if decision.DriverID == "" {
		return ErrInvalidDriverID
	}
	if decision.ID == "" {
		decision.ID = uuid.New().String()
	}
	if decision.CreatedAt.IsZero() {
		decision.CreatedAt = time.Now()
	}
	return s.decisionRepo.Create(ctx, decision)
}

// Decisions lists audit records for compliance review, newest first.
func (s *CounterService) Decisions(ctx context.Context, organizationID string, filter repository.DecisionFilter) ([]*domain.ComplianceDecision, error) {
	if organizationID == "" {
		return nil, ErrInvalidOrganizationID
	}
	return s.decisionRepo.List(ctx, organizationID, filter)
}

// DriverCounterView is the display shape of a driver's day: committed
// totals plus remaining capacity under the resolved rule set.
type DriverCounterView struct {
	Counters                  domain.DayCounters
	HasRules                  bool
	RemainingDrivingMinutes   *float64
	RemainingAmplitudeMinutes *float64
}

// DriverCounters returns the current aggregated counters for a driver and
// day, with remaining capacity when a rule set applies.
func (s *CounterService) DriverCounters(ctx context.Context, organizationID, driverID string, date time.Time, category domain.RegulatoryCategory, licenseCategoryID *string) (*DriverCounterView, error) {
	if organizationID == "" {
		return nil, ErrInvalidOrganizationID
	}
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	driver, err := s.driverRepo.GetByID(ctx, organizationID, driverID)
	if err != nil {
		return nil, err
	}

	counters, err := s.activityRepo.SumForDriverDate(ctx, organizationID, driverID, date)
	if err != nil {
		return nil, err
	}

	view := &DriverCounterView{Counters: counters}

	if licenseCategoryID == nil {
		licenseCategoryID = driver.LicenseCategoryID
	}
	rules, err := s.resolver.Resolve(ctx, organizationID, category, licenseCategoryID)
	if err != nil {
		return nil, err
	}
	if rules != nil {
		view.HasRules = true
		remainingDriving := clampRemaining(rules.MaxDailyDrivingMinutes() - counters.DrivingMinutes)
		remainingAmplitude := clampRemaining(rules.MaxDailyAmplitudeMinutes() - counters.AmplitudeMinutes)
		view.RemainingDrivingMinutes = &remainingDriving
		view.RemainingAmplitudeMinutes = &remainingAmplitude
	}
	return view, nil
}

// CommitActivityRequest records a committed activity for a driver.
type CommitActivityRequest struct {
	OrganizationID     string
	DriverID           string
	Date               time.Time
	RegulatoryCategory domain.RegulatoryCategory
	LicenseCategoryID  *string
	QuoteID            *string
	MissionID          *string
	DrivingMinutes     float64
	AmplitudeMinutes   float64

	// Force commits even when the cumulative check is BLOCKED; the check
	// result is still returned so the override is visible.
	Force bool
}

// CommitActivity runs a cumulative check and, unless blocked (or forced),
// persists the activity the counters will aggregate from then on. The whole
// check-then-insert sequence holds the driver-day lock: this is the path that
// writes the rows the counters are recomputed from, so two concurrent commits
// must never both read the same committed totals.
// Returns ErrActivityBlocked together with the check result when refused.
func (s *CounterService) CommitActivity(ctx context.Context, req CommitActivityRequest) (*domain.DriverActivity, *CumulativeCheckResult, error) {
	release, err := s.lockDriverDay(ctx, req.DriverID, req.Date)
	if err != nil {
		return nil, nil, err
	}
	defer release()

	check, err := s.CheckCumulative(ctx, CumulativeCheckRequest{
		OrganizationID:             req.OrganizationID,
		DriverID:                   req.DriverID,
		Date:                       req.Date,
		RegulatoryCategory:         req.RegulatoryCategory,
		LicenseCategoryID:          req.LicenseCategoryID,
		AdditionalDrivingMinutes:   req.DrivingMinutes,
		AdditionalAmplitudeMinutes: req.AmplitudeMinutes,
	})
	if err != nil {
		return nil, nil, err
	}

	if check.Decision == domain.DecisionBlocked && !req.Force {
		return nil, check, ErrActivityBlocked
	}

	activity := &domain.DriverActivity{
		ID:               uuid.New().String(),
		OrganizationID:   req.OrganizationID,
		DriverID:         req.DriverID,
		QuoteID:          req.QuoteID,
		MissionID:        req.MissionID,
		Date:             req.Date,
		DrivingMinutes:   req.DrivingMinutes,
		AmplitudeMinutes: req.AmplitudeMinutes,
		Status:           domain.ActivityStatusConfirmed,
		CreatedAt:        time.Now(),
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		return nil, check, err
	}
	return activity, check, nil
}

// lockDriverDay acquires the per-driver-per-day advisory lock and returns the
// release func. With no lock store configured the release is a no-op and
// callers run optimistically.
func (s *CounterService) lockDriverDay(ctx context.Context, driverID string, date time.Time) (func(), error) {
	if s.lockStore == nil {
		return func() {}, nil
	}
	locked, err := s.lockStore.AcquireDriverDayLock(ctx, driverID, date, s.lockTTL)
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, ErrDriverCheckInProgress
	}
	return func() { s.lockStore.ReleaseDriverDayLock(ctx, driverID, date) }, nil
}

func (s *CounterService) validateCheckRequest(req CumulativeCheckRequest) error {
	if req.OrganizationID == "" {
		return ErrInvalidOrganizationID
	}
	if req.DriverID == "" {
		return ErrInvalidDriverID
	}
	if !req.RegulatoryCategory.IsValid() {
		return ErrInvalidRegulatoryCategory
	}
	if req.AdditionalDrivingMinutes < 0 || req.AdditionalAmplitudeMinutes < 0 {
		return ErrInvalidMinutes
	}
	return nil
}

func clampRemaining(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
