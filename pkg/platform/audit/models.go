package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventCategory classifies audit events by their primary purpose so stores
// can apply different retention.
type EventCategory string

const (
	// CategoryCompliance covers destructive or data-disclosing actions.
	CategoryCompliance EventCategory = "compliance"
	// CategorySecurity covers refused or abusive behaviour.
	CategorySecurity EventCategory = "security"
	// CategoryOperations covers routine pipeline activity.
	CategoryOperations EventCategory = "operations"
)

// Action names a recorded bulk-check action.
type Action string

const (
	ActionBulkCheckSubmitted Action = "bulk_check_submitted"
	ActionBulkCheckThrottled Action = "bulk_check_throttled"
	ActionBulkCheckDeleted   Action = "bulk_check_deleted"
	ActionBulkCheckExported  Action = "bulk_check_exported"
)

var actionCategories = map[Action]EventCategory{
	ActionBulkCheckSubmitted: CategoryOperations,
	ActionBulkCheckThrottled: CategorySecurity,
	ActionBulkCheckDeleted:   CategoryCompliance,
	ActionBulkCheckExported:  CategoryCompliance,
}

// Category returns the category for this action.
// Unknown actions default to CategoryOperations.
func (a Action) Category() EventCategory {
	if cat, ok := actionCategories[a]; ok {
		return cat
	}
	return CategoryOperations
}

// Event is emitted by the bulk-check orchestrator to capture key actions.
// It carries no candidate PII: names, dates of birth and NI numbers never
// reach the audit trail.
type Event struct {
	ID             uuid.UUID
	Category       EventCategory
	Action         Action
	Timestamp      time.Time
	Actor          string // submitting operator, usually an email
	OrganisationID string
	Resource       string // bulk check id or filename
	RequestID      string
	Detail         string
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}
