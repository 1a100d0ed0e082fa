package repository

import (
	"context"
	"time"

	"rse/internal/domain"
)

// DecisionFilter narrows audit-trail listings.
type DecisionFilter struct {
	DriverID string
	Date     *time.Time
}

// DecisionRepository defines the persistence operations for the compliance
// audit trail. The trail is append-only: there is deliberately no update or
// delete operation.
type DecisionRepository interface {
	// Create appends one decision record.
	Create(ctx context.Context, decision *domain.ComplianceDecision) error

	// List retrieves decision records for the organization, newest first.
	List(ctx context.Context, organizationID string, filter DecisionFilter) ([]*domain.ComplianceDecision, error)
}
