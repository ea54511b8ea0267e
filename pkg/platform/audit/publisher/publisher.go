// Package publisher stamps audit events and writes them to a store without
// ever failing the business operation that produced them.
package publisher

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	audit "eligibility/pkg/platform/audit"
	"eligibility/pkg/requestcontext"
)

// Publisher emits audit events synchronously. Store failures are logged and
// swallowed.
type Publisher struct {
	store  audit.Store
	logger *slog.Logger
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets a logger for persistence failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher creates a publisher over store.
func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit fills in id, timestamp and category, then appends the event.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) {
	if p == nil || p.store == nil {
		return
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.Category == "" {
		event.Category = event.Action.Category()
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	if err := p.store.Append(ctx, event); err != nil && p.logger != nil {
		p.logger.ErrorContext(ctx, "audit persistence failed",
			"action", string(event.Action),
			"organisation_id", event.OrganisationID,
			"error", err,
		)
	}
}
