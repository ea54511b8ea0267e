package audit

import (
	"context"
	"log/slog"

	"eligibility/pkg/attrs"
	"eligibility/pkg/requestcontext"
)

// Emitter accepts audit events. Emission never fails the caller.
type Emitter interface {
	Emit(ctx context.Context, event Event)
}

// LogAudit logs an audit event to the structured logger and hands it to the
// emitter. Actor, organisation and resource are lifted from attrList keys
// (actor, organisation_id, bulk_check_id or filename, detail).
func LogAudit(ctx context.Context, logger *slog.Logger, emitter Emitter, action Action, attrList ...any) {
	requestID := requestcontext.RequestID(ctx)
	if requestID != "" {
		attrList = append(attrList, "request_id", requestID)
	}

	if logger != nil {
		args := append(attrList, "event", string(action), "log_type", "audit")
		logger.InfoContext(ctx, string(action), args...)
	}

	if emitter == nil {
		return
	}

	emitter.Emit(ctx, Event{
		Action:         action,
		Actor:          attrs.ExtractString(attrList, "actor"),
		OrganisationID: attrs.ExtractString(attrList, "organisation_id"),
		Resource:       extractResource(attrList),
		RequestID:      requestID,
		Detail:         attrs.ExtractString(attrList, "detail"),
	})
}

func extractResource(attrList []any) string {
	for _, key := range []string{"bulk_check_id", "filename"} {
		if val := attrs.ExtractString(attrList, key); val != "" {
			return val
		}
	}
	return ""
}
