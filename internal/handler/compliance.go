package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rse/internal/domain"
	"rse/internal/repository"
	"rse/internal/service"
)

// ComplianceHandler handles HTTP requests for RSE compliance.
type ComplianceHandler struct {
	complianceService *service.ComplianceService
	counterService    *service.CounterService
}

// NewComplianceHandler creates a new ComplianceHandler.
func NewComplianceHandler(complianceService *service.ComplianceService, counterService *service.CounterService) *ComplianceHandler {
	return &ComplianceHandler{
		complianceService: complianceService,
		counterService:    counterService,
	}
}

// TripSegmentDTO is the wire shape of one trip leg.
type TripSegmentDTO struct {
	DurationMinutes float64  `json:"durationMinutes"`
	DistanceKm      *float64 `json:"distanceKm,omitempty"`
}

// TripSegmentsDTO groups the optional legs of a trip.
type TripSegmentsDTO struct {
	Approach *TripSegmentDTO `json:"approach,omitempty"`
	Service  *TripSegmentDTO `json:"service,omitempty"`
	Return   *TripSegmentDTO `json:"return,omitempty"`
}

// TripAnalysisDTO is the wire shape of a segmented trip.
type TripAnalysisDTO struct {
	Segments             TripSegmentsDTO `json:"segments"`
	TotalDurationMinutes *float64        `json:"totalDurationMinutes,omitempty"`
}

// ValidateRequest is the HTTP request body for compliance validation.
type ValidateRequest struct {
	VehicleCategoryID  string           `json:"vehicleCategoryId"`
	RegulatoryCategory string           `json:"regulatoryCategory"`
	LicenseCategoryID  *string          `json:"licenseCategoryId,omitempty"`
	TripAnalysis       *TripAnalysisDTO `json:"tripAnalysis"`
	PickupAt           time.Time        `json:"pickupAt"`
	EstimatedDropoffAt *time.Time       `json:"estimatedDropoffAt,omitempty"`
}

// ViolationDTO is the wire shape of a violation.
type ViolationDTO struct {
	Kind    string  `json:"kind"`
	Message string  `json:"message"`
	Actual  float64 `json:"actual"`
	Limit   float64 `json:"limit"`
	Unit    string  `json:"unit"`
}

// WarningDTO is the wire shape of a warning.
type WarningDTO struct {
	Kind    string  `json:"kind"`
	Message string  `json:"message"`
	Actual  float64 `json:"actual"`
	Limit   float64 `json:"limit"`
	Unit    string  `json:"unit"`
}

// ValidateResponse is the HTTP response for compliance validation.
type ValidateResponse struct {
	AdjustedTripAnalysis TripAnalysisDTO `json:"adjustedTripAnalysis"`
	Violations           []ViolationDTO  `json:"violations"`
	Warnings             []WarningDTO    `json:"warnings"`
	IsCompliant          bool            `json:"isCompliant"`
	HasRules             bool            `json:"hasRules"`
	Summary              string          `json:"summary"`
}

// Validate handles POST /v1/compliance/validate
func (h *ComplianceHandler) Validate(c *gin.Context) {
	orgID, ok := organizationID(c)
	if !ok {
		return
	}

	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	input, err := toValidationInput(orgID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.complianceService.ValidateTrip(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toValidateResponse(result))
}

// AlternativesResponse is the HTTP response for alternative generation.
type AlternativesResponse struct {
	HasAlternatives    bool             `json:"hasAlternatives"`
	Alternatives       []AlternativeDTO `json:"alternatives"`
	OriginalViolations []ViolationDTO   `json:"originalViolations,omitempty"`
	Message            string           `json:"message,omitempty"`
}

// AlternativeDTO is the wire shape of one remediation option.
type AlternativeDTO struct {
	Type        string  `json:"type"`
	Description string  `json:"description"`
	CostDelta   float64 `json:"costDelta"`
}

// Alternatives handles POST /v1/compliance/alternatives
func (h *ComplianceHandler) Alternatives(c *gin.Context) {
	orgID, ok := organizationID(c)
	if !ok {
		return
	}

	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	// LIGHT vehicles never need remediation; skip validation entirely.
	if domain.RegulatoryCategory(req.RegulatoryCategory) == domain.RegulatoryCategoryLight {
		respondJSON(c, http.StatusOK, AlternativesResponse{
			HasAlternatives: false,
			Alternatives:    []AlternativeDTO{},
			Message:         "RSE alternatives only apply to HEAVY vehicles",
		})
		return
	}

	input, err := toValidationInput(orgID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.complianceService.Alternatives(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := AlternativesResponse{
		HasAlternatives:    result.HasAlternatives,
		Alternatives:       make([]AlternativeDTO, 0, len(result.Alternatives)),
		OriginalViolations: toViolationDTOs(result.OriginalViolations),
	}
	for _, a := range result.Alternatives {
		resp.Alternatives = append(resp.Alternatives, AlternativeDTO{
			Type:        string(a.Type),
			Description: a.Description,
			CostDelta:   a.CostDelta,
		})
	}
	if !result.HasAlternatives {
		resp.Message = "trip is compliant, no alternatives needed"
	}

	respondJSON(c, http.StatusOK, resp)
}

// RulesResponse is the wire shape of a rule set.
type RulesResponse struct {
	ID                          string   `json:"id"`
	LicenseCategoryID           string   `json:"licenseCategoryId"`
	LicenseCategoryCode         string   `json:"licenseCategoryCode"`
	MaxDailyDrivingHours        float64  `json:"maxDailyDrivingHours"`
	MaxDailyAmplitudeHours      float64  `json:"maxDailyAmplitudeHours"`
	BreakMinutesPerDrivingBlock int      `json:"breakMinutesPerDrivingBlock"`
	DrivingBlockHoursForBreak   float64  `json:"drivingBlockHoursForBreak"`
	CappedAverageSpeedKmh       *float64 `json:"cappedAverageSpeedKmh"`
}

// GetRules handles GET /v1/compliance/rules/license/:licenseCategoryId
func (h *ComplianceHandler) GetRules(c *gin.Context) {
	orgID, ok := organizationID(c)
	if !ok {
		return
	}

	rules, err := h.complianceService.RulesForLicenseCategory(c.Request.Context(), orgID, c.Param("licenseCategoryId"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRulesResponse(rules))
}

// UpsertRulesRequest is the HTTP request body for rule-set administration.
type UpsertRulesRequest struct {
	LicenseCategoryCode         string   `json:"licenseCategoryCode"`
	MaxDailyDrivingHours        float64  `json:"maxDailyDrivingHours"`
	MaxDailyAmplitudeHours      float64  `json:"maxDailyAmplitudeHours"`
	BreakMinutesPerDrivingBlock int      `json:"breakMinutesPerDrivingBlock"`
	DrivingBlockHoursForBreak   float64  `json:"drivingBlockHoursForBreak"`
	CappedAverageSpeedKmh       *float64 `json:"cappedAverageSpeedKmh,omitempty"`
}

// UpsertRules handles PUT /v1/compliance/rules/license/:licenseCategoryId
func (h *ComplianceHandler) UpsertRules(c *gin.Context) {
	orgID, ok := organizationID(c)
	if !ok {
		return
	}

	var req UpsertRulesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	rules, err := h.complianceService.UpsertRules(c.Request.Context(), &domain.RSERules{
		OrganizationID:              orgID,
		LicenseCategoryID:           c.Param("licenseCategoryId"),
		LicenseCategoryCode:         req.LicenseCategoryCode,
		MaxDailyDrivingHours:        req.MaxDailyDrivingHours,
		MaxDailyAmplitudeHours:      req.MaxDailyAmplitudeHours,
		BreakMinutesPerDrivingBlock: req.BreakMinutesPerDrivingBlock,
		DrivingBlockHoursForBreak:   req.DrivingBlockHoursForBreak,
		CappedAverageSpeedKmh:       req.CappedAverageSpeedKmh,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRulesResponse(rules))
}

// VehicleRulesResponse pairs a vehicle category with its resolved rule set.
type VehicleRulesResponse struct {
	VehicleCategory VehicleCategoryDTO `json:"vehicleCategory"`
	Rules           *RulesResponse     `json:"rules"`
	HasRules        bool               `json:"hasRules"`
}

// VehicleCategoryDTO is the wire shape of a vehicle category.
type VehicleCategoryDTO struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	RegulatoryCategory string  `json:"regulatoryCategory"`
	LicenseCategoryID  *string `json:"licenseCategoryId,omitempty"`
}

// GetVehicleRules handles GET /v1/compliance/rules/vehicle/:vehicleCategoryId
func (h *ComplianceHandler) GetVehicleRules(c *gin.Context) {
	orgID, ok := organizationID(c)
	if !ok {
		return
	}

	vc, rules, err := h.complianceService.RulesForVehicle(c.Request.Context(), orgID, c.Param("vehicleCategoryId"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := VehicleRulesResponse{
		VehicleCategory: VehicleCategoryDTO{
			ID:                 vc.ID,
			Name:               vc.Name,
			RegulatoryCategory: string(vc.RegulatoryCategory),
			LicenseCategoryID:  vc.LicenseCategoryID,
		},
		HasRules: rules != nil,
	}
	if rules != nil {
		r := toRulesResponse(rules)
		resp.Rules = &r
	}

	respondJSON(c, http.StatusOK, resp)
}

// ListRules handles GET /v1/compliance/rules
func (h *ComplianceHandler) ListRules(c *gin.Context) {
	orgID, ok := organizationID(c)
	if !ok {
		return
	}

	// The optional vehicleCategoryId filter narrows to that vehicle's
	// resolved rule set.
	if vehicleCategoryID := c.Query("vehicleCategoryId"); vehicleCategoryID != "" {
		_, rules, err := h.complianceService.RulesForVehicle(c.Request.Context(), orgID, vehicleCategoryID)
		if err != nil {
			respondError(c, err)
			return
		}
		result := []RulesResponse{}
		if rules != nil {
			result = append(result, toRulesResponse(rules))
		}
		respondJSON(c, http.StatusOK, result)
		return
	}

	all, err := h.complianceService.AllRules(c.Request.Context(), orgID)
	if err != nil {
		respondError(c, err)
		return
	}

	result := make([]RulesResponse, 0, len(all))
	for _, rules := range all {
		result = append(result, toRulesResponse(rules))
	}
	respondJSON(c, http.StatusOK, result)
}

// CheckCumulativeRequest is the HTTP request body for a cumulative check.
type CheckCumulativeRequest struct {
	DriverID                   string  `json:"driverId"`
	Date                       string  `json:"date,omitempty"` // YYYY-MM-DD, defaults to today
	RegulatoryCategory         string  `json:"regulatoryCategory"`
	LicenseCategoryID          *string `json:"licenseCategoryId,omitempty"`
	AdditionalDrivingMinutes   float64 `json:"additionalDrivingMinutes"`
	AdditionalAmplitudeMinutes float64 `json:"additionalAmplitudeMinutes,omitempty"`
	QuoteID                    *string `json:"quoteId,omitempty"`
	MissionID                  *string `json:"missionId,omitempty"`
	VehicleCategoryID          *string `json:"vehicleCategoryId,omitempty"`
	LogDecision                bool    `json:"logDecision"`
	Reason                     string  `json:"reason,omitempty"`
}

// CountersDTO is the wire shape of day counters.
type CountersDTO struct {
	DrivingMinutes   float64 `json:"drivingMinutes"`
	AmplitudeMinutes float64 `json:"amplitudeMinutes"`
}

// CheckCumulativeResponse is the HTTP response for a cumulative check.
type CheckCumulativeResponse struct {
	IsCompliant       bool           `json:"isCompliant"`
	HasRules          bool           `json:"hasRules"`
	Violations        []ViolationDTO `json:"violations"`
	Warnings          []WarningDTO   `json:"warnings"`
	ExistingCounters  CountersDTO    `json:"existingCounters"`
	ProjectedCounters CountersDTO    `json:"projectedCounters"`
	Decision          string         `json:"decision"`
	DecisionLogged    bool           `json:"decisionLogged"`
	LogError          string         `json:"logError,omitempty"`
}

// CheckCumulative handles POST /v1/compliance/check-cumulative
func (h *ComplianceHandler) CheckCumulative(c *gin.Context) {
	orgID, ok := organizationID(c)
	if !ok {
		return
	}

	var req CheckCumulativeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	date := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid date, expected YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	result, err := h.counterService.CheckAndLog(c.Request.Context(),
		service.CumulativeCheckRequest{
			OrganizationID:             orgID,
			DriverID:                   req.DriverID,
			Date:                       date,
			RegulatoryCategory:         domain.RegulatoryCategory(req.RegulatoryCategory),
			LicenseCategoryID:          req.LicenseCategoryID,
			AdditionalDrivingMinutes:   req.AdditionalDrivingMinutes,
			AdditionalAmplitudeMinutes: req.AdditionalAmplitudeMinutes,
		},
		service.LogOptions{
			Enabled:           req.LogDecision,
			QuoteID:           req.QuoteID,
			MissionID:         req.MissionID,
			VehicleCategoryID: req.VehicleCategoryID,
			Reason:            req.Reason,
		})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, CheckCumulativeResponse{
		IsCompliant:       result.IsCompliant,
		HasRules:          result.HasRules,
		Violations:        toViolationDTOs(result.Violations),
		Warnings:          toWarningDTOs(result.Warnings),
		ExistingCounters:  CountersDTO(result.ExistingCounters),
		ProjectedCounters: CountersDTO(result.ProjectedCounters),
		Decision:          string(result.Decision),
		DecisionLogged:    result.DecisionLogged,
		LogError:          result.LogError,
	})
}

// DecisionResponse is the wire shape of one audit record.
type DecisionResponse struct {
	ID                 string         `json:"id"`
	DriverID           string         `json:"driverId"`
	QuoteID            *string        `json:"quoteId,omitempty"`
	MissionID          *string        `json:"missionId,omitempty"`
	VehicleCategoryID  *string        `json:"vehicleCategoryId,omitempty"`
	RegulatoryCategory string         `json:"regulatoryCategory"`
	Decision           string         `json:"decision"`
	Violations         []ViolationDTO `json:"violations"`
	Warnings           []WarningDTO   `json:"warnings"`
	Reason             string         `json:"reason,omitempty"`
	CountersSnapshot   CountersDTO    `json:"countersSnapshot"`
	CreatedAt          string         `json:"createdAt"`
}

// ListDecisions handles GET /v1/compliance/decisions
func (h *ComplianceHandler) ListDecisions(c *gin.Context) {
	orgID, ok := organizationID(c)
	if !ok {
		return
	}

	filter := repository.DecisionFilter{DriverID: c.Query("driverId")}
	if rawDate := c.Query("date"); rawDate != "" {
		parsed, err := time.Parse("2006-01-02", rawDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid date, expected YYYY-MM-DD"})
			return
		}
		filter.Date = &parsed
	}

	decisions, err := h.counterService.Decisions(c.Request.Context(), orgID, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	result := make([]DecisionResponse, 0, len(decisions))
	for _, d := range decisions {
		result = append(result, DecisionResponse{
			ID:                 d.ID,
			DriverID:           d.DriverID,
			QuoteID:            d.QuoteID,
			MissionID:          d.MissionID,
			VehicleCategoryID:  d.VehicleCategoryID,
			RegulatoryCategory: string(d.RegulatoryCategory),
			Decision:           string(d.Decision),
			Violations:         toViolationDTOs(d.Violations),
			Warnings:           toWarningDTOs(d.Warnings),
			Reason:             d.Reason,
			CountersSnapshot:   CountersDTO(d.CountersSnapshot),
			CreatedAt:          d.CreatedAt.Format(time.RFC3339),
		})
	}
	respondJSON(c, http.StatusOK, result)
}

// ─── mapping helpers ───

func toValidationInput(orgID string, req ValidateRequest) (service.ValidationInput, error) {
	category := domain.RegulatoryCategory(req.RegulatoryCategory)
	if !category.IsValid() {
		return service.ValidationInput{}, service.ErrInvalidRegulatoryCategory
	}
	if req.TripAnalysis == nil {
		return service.ValidationInput{}, service.ErrInvalidTrip
	}

	return service.ValidationInput{
		OrganizationID:     orgID,
		VehicleCategoryID:  req.VehicleCategoryID,
		RegulatoryCategory: category,
		LicenseCategoryID:  req.LicenseCategoryID,
		Trip:               toTripAnalysis(req.TripAnalysis),
		PickupAt:           req.PickupAt,
		EstimatedDropoffAt: req.EstimatedDropoffAt,
	}, nil
}

func toTripAnalysis(dto *TripAnalysisDTO) *domain.TripAnalysis {
	return &domain.TripAnalysis{
		Approach:             toTripSegment(dto.Segments.Approach),
		Service:              toTripSegment(dto.Segments.Service),
		Return:               toTripSegment(dto.Segments.Return),
		TotalDurationMinutes: dto.TotalDurationMinutes,
	}
}

func toTripSegment(dto *TripSegmentDTO) *domain.TripSegment {
	if dto == nil {
		return nil
	}
	return &domain.TripSegment{
		DurationMinutes: dto.DurationMinutes,
		DistanceKm:      dto.DistanceKm,
	}
}

func toTripAnalysisDTO(trip *domain.TripAnalysis) TripAnalysisDTO {
	var dto TripAnalysisDTO
	if trip == nil {
		return dto
	}
	dto.Segments.Approach = toTripSegmentDTO(trip.Approach)
	dto.Segments.Service = toTripSegmentDTO(trip.Service)
	dto.Segments.Return = toTripSegmentDTO(trip.Return)
	total := trip.TotalMinutes()
	dto.TotalDurationMinutes = &total
	return dto
}

func toTripSegmentDTO(seg *domain.TripSegment) *TripSegmentDTO {
	if seg == nil {
		return nil
	}
	return &TripSegmentDTO{
		DurationMinutes: seg.DurationMinutes,
		DistanceKm:      seg.DistanceKm,
	}
}

func toValidateResponse(result *domain.ValidationResult) ValidateResponse {
	return ValidateResponse{
		AdjustedTripAnalysis: toTripAnalysisDTO(result.AdjustedTrip),
		Violations:           toViolationDTOs(result.Violations),
		Warnings:             toWarningDTOs(result.Warnings),
		IsCompliant:          result.IsCompliant,
		HasRules:             result.HasRules,
		Summary:              service.Summary(result),
	}
}

func toViolationDTOs(violations []domain.Violation) []ViolationDTO {
	result := make([]ViolationDTO, 0, len(violations))
	for _, v := range violations {
		result = append(result, ViolationDTO{
			Kind:    string(v.Kind),
			Message: v.Message,
			Actual:  v.Actual,
			Limit:   v.Limit,
			Unit:    v.Unit,
		})
	}
	return result
}

func toWarningDTOs(warnings []domain.Warning) []WarningDTO {
	result := make([]WarningDTO, 0, len(warnings))
	for _, w := range warnings {
		result = append(result, WarningDTO{
			Kind:    string(w.Kind),
			Message: w.Message,
			Actual:  w.Actual,
			Limit:   w.Limit,
			Unit:    w.Unit,
		})
	}
	return result
}

func toRulesResponse(rules *domain.RSERules) RulesResponse {
	return RulesResponse{
		ID:                          rules.ID,
		LicenseCategoryID:           rules.LicenseCategoryID,
		LicenseCategoryCode:         rules.LicenseCategoryCode,
		MaxDailyDrivingHours:        rules.MaxDailyDrivingHours,
		MaxDailyAmplitudeHours:      rules.MaxDailyAmplitudeHours,
		BreakMinutesPerDrivingBlock: rules.BreakMinutesPerDrivingBlock,
		DrivingBlockHoursForBreak:   rules.DrivingBlockHoursForBreak,
		CappedAverageSpeedKmh:       rules.CappedAverageSpeedKmh,
	}
}
