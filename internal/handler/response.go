package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"rse/internal/repository"
	"rse/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// organizationHeader carries the tenant scope resolved by the upstream
// session layer. Every request must be scoped to one organization.
const organizationHeader = "X-Organization-ID"

// organizationID extracts the tenant scope from the request, answering 400
// itself when the header is missing.
func organizationID(c *gin.Context) (string, bool) {
	orgID := c.GetHeader(organizationHeader)
	if orgID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing " + organizationHeader + " header"})
		return "", false
	}
	return orgID, true
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidOrganizationID),
		errors.Is(err, service.ErrInvalidDriverID),
		errors.Is(err, service.ErrInvalidRegulatoryCategory),
		errors.Is(err, service.ErrInvalidTrip),
		errors.Is(err, service.ErrInvalidMinutes),
		errors.Is(err, service.ErrInvalidRuleSet):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrDriverCheckInProgress),
		errors.Is(err, service.ErrActivityBlocked):
		return http.StatusConflict

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
