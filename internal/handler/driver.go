package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rse/internal/domain"
	"rse/internal/service"
)

// DriverHandler handles HTTP requests for driver counters and activities.
type DriverHandler struct {
	counterService *service.CounterService
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(counterService *service.CounterService) *DriverHandler {
	return &DriverHandler{counterService: counterService}
}

// DriverCountersResponse is the HTTP response for a driver's day counters.
type DriverCountersResponse struct {
	DriverID                  string      `json:"driverId"`
	Date                      string      `json:"date"`
	Counters                  CountersDTO `json:"counters"`
	HasRules                  bool        `json:"hasRules"`
	RemainingDrivingMinutes   *float64    `json:"remainingDrivingMinutes,omitempty"`
	RemainingAmplitudeMinutes *float64    `json:"remainingAmplitudeMinutes,omitempty"`
}

// GetCounters handles GET /v1/drivers/:id/counters
func (h *DriverHandler) GetCounters(c *gin.Context) {
	orgID, ok := organizationID(c)
	if !ok {
		return
	}
	driverID := c.Param("id")

	date := time.Now()
	if rawDate := c.Query("date"); rawDate != "" {
		parsed, err := time.Parse("2006-01-02", rawDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid date, expected YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	category := domain.RegulatoryCategory(c.DefaultQuery("regulatoryCategory", string(domain.RegulatoryCategoryHeavy)))
	if !category.IsValid() {
		respondError(c, service.ErrInvalidRegulatoryCategory)
		return
	}

	var licenseCategoryID *string
	if v := c.Query("licenseCategoryId"); v != "" {
		licenseCategoryID = &v
	}

	view, err := h.counterService.DriverCounters(c.Request.Context(), orgID, driverID, date, category, licenseCategoryID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, DriverCountersResponse{
		DriverID:                  driverID,
		Date:                      date.Format("2006-01-02"),
		Counters:                  CountersDTO(view.Counters),
		HasRules:                  view.HasRules,
		RemainingDrivingMinutes:   view.RemainingDrivingMinutes,
		RemainingAmplitudeMinutes: view.RemainingAmplitudeMinutes,
	})
}

// CommitActivityRequest is the HTTP request body for committing an activity.
type CommitActivityRequest struct {
	Date               string  `json:"date"` // YYYY-MM-DD
	RegulatoryCategory string  `json:"regulatoryCategory"`
	LicenseCategoryID  *string `json:"licenseCategoryId,omitempty"`
	QuoteID            *string `json:"quoteId,omitempty"`
	MissionID          *string `json:"missionId,omitempty"`
	DrivingMinutes     float64 `json:"drivingMinutes"`
	AmplitudeMinutes   float64 `json:"amplitudeMinutes,omitempty"`
	Force              bool    `json:"force,omitempty"`
}

// CommitActivityResponse is the HTTP response for a committed activity.
type CommitActivityResponse struct {
	ActivityID string                  `json:"activityId"`
	Check      CheckCumulativeResponse `json:"check"`
}

// blockedActivityResponse reports a refused commit with the evidence.
type blockedActivityResponse struct {
	Error      string         `json:"error"`
	Decision   string         `json:"decision"`
	Violations []ViolationDTO `json:"violations"`
}

// CommitActivity handles POST /v1/drivers/:id/activities
func (h *DriverHandler) CommitActivity(c *gin.Context) {
	orgID, ok := organizationID(c)
	if !ok {
		return
	}
	driverID := c.Param("id")

	var req CommitActivityRequest
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

	activity, check, err := h.counterService.CommitActivity(c.Request.Context(), service.CommitActivityRequest{
		OrganizationID:     orgID,
		DriverID:           driverID,
		Date:               date,
		RegulatoryCategory: domain.RegulatoryCategory(req.RegulatoryCategory),
		LicenseCategoryID:  req.LicenseCategoryID,
		QuoteID:            req.QuoteID,
		MissionID:          req.MissionID,
		DrivingMinutes:     req.DrivingMinutes,
		AmplitudeMinutes:   req.AmplitudeMinutes,
		Force:              req.Force,
	})
	if err != nil {
		if errors.Is(err, service.ErrActivityBlocked) && check != nil {
			c.JSON(http.StatusConflict, blockedActivityResponse{
				Error:      err.Error(),
				Decision:   string(check.Decision),
				Violations: toViolationDTOs(check.Violations),
			})
			return
		}
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, CommitActivityResponse{
		ActivityID: activity.ID,
		Check: CheckCumulativeResponse{
			IsCompliant:       check.IsCompliant,
			HasRules:          check.HasRules,
			Violations:        toViolationDTOs(check.Violations),
			Warnings:          toWarningDTOs(check.Warnings),
			ExistingCounters:  CountersDTO(check.ExistingCounters),
			ProjectedCounters: CountersDTO(check.ProjectedCounters),
			Decision:          string(check.Decision),
		},
	})
}
