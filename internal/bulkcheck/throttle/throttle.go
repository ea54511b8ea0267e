// Package throttle counts bulk upload attempts per session over a fixed
// window that resets lazily on the next attempt.
package throttle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eligibility/internal/bulkcheck/models"
	"eligibility/internal/session"
	id "eligibility/pkg/domain"
	dErrors "eligibility/pkg/domain-errors"
	"eligibility/pkg/platform/sentinel"
	"eligibility/pkg/requestcontext"
)

// SessionKey is where the attempt counter lives in the session store.
const SessionKey = "bulk_submissions"

const (
	DefaultLimit  = 5
	DefaultWindow = time.Hour
)

// Decision is the outcome of one registered attempt.
type Decision struct {
	Allowed         bool
	AttemptCount    int
	Limit           int
	WindowStartedAt time.Time
}

type Throttle struct {
	store  session.Store
	limit  int
	window time.Duration
	logger *slog.Logger
}

type Option func(*Throttle)

// WithLimit sets the attempts allowed per window. Non-positive values are ignored.
func WithLimit(limit int) Option {
	return func(t *Throttle) {
		if limit > 0 {
			t.limit = limit
		}
	}
}

// WithWindow sets the window length. Non-positive values are ignored.
func WithWindow(window time.Duration) Option {
	return func(t *Throttle) {
		if window > 0 {
			t.window = window
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(t *Throttle) {
		t.logger = logger
	}
}

func New(store session.Store, opts ...Option) (*Throttle, error) {
	if store == nil {
		return nil, fmt.Errorf("session store is required")
	}

	t := &Throttle{
		store:  store,
		limit:  DefaultLimit,
		window: DefaultWindow,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Limit returns the attempts allowed per window.
func (t *Throttle) Limit() int { return t.limit }

// RegisterAttempt counts one attempt for the session and reports whether it
// is within the limit. A window that has fully elapsed restarts at now before
// counting. Rejected attempts still count.
func (t *Throttle) RegisterAttempt(ctx context.Context, sessionID id.SessionID) (Decision, error) {
	if sessionID.IsNil() {
		return Decision{}, dErrors.New(dErrors.CodeUnauthorized, "session is required")
	}
	now := requestcontext.Now(ctx)

	state, found, err := session.GetJSON[models.SubmissionThrottleState](ctx, t.store, sessionID, SessionKey)
	switch {
	case errors.Is(err, sentinel.ErrInvalidState):
		if t.logger != nil {
			t.logger.WarnContext(ctx, "discarding unreadable throttle state", "error", err)
		}
		found = false
	case err != nil:
		return Decision{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read submission throttle")
	}

	if !found || !now.Before(state.WindowStartedAt.Add(t.window)) {
		state = models.SubmissionThrottleState{WindowStartedAt: now}
	}
	state.AttemptCount++

	if err := session.SetJSON(ctx, t.store, sessionID, SessionKey, state); err != nil {
		return Decision{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record submission attempt")
	}

	return Decision{
		Allowed:         state.AttemptCount <= t.limit,
		AttemptCount:    state.AttemptCount,
		Limit:           t.limit,
		WindowStartedAt: state.WindowStartedAt,
	}, nil
}
