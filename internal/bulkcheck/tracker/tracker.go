// Package tracker classifies job progress and remembers which job a session
// is currently watching.
package tracker

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"eligibility/internal/bulkcheck/models"
	"eligibility/internal/session"
	id "eligibility/pkg/domain"
	dErrors "eligibility/pkg/domain-errors"
	"eligibility/pkg/platform/sentinel"
)

// PointerKey is where the current status URL lives in the session store.
const PointerKey = "bulk_check_url"

// IsComplete reports whether every record of the job has been processed.
func IsComplete(p models.Progress) bool {
	return p.Completed >= p.Total
}

// State maps a poll onto the job lifecycle: polling until every record is
// processed, complete after.
func State(p models.Progress) models.JobState {
	if IsComplete(p) {
		return models.JobComplete
	}
	return models.JobPolling
}

// JobIDFromStatusURL returns the second-to-last "/"-separated segment of a
// status URL's path, e.g. "job-1" for "bulk-check/job-1/status". A trailing
// slash counts as an empty last segment. It returns "" when the path has no
// separator.
func JobIDFromStatusURL(statusURL string) string {
	path := strings.TrimSpace(statusURL)
	if u, err := url.Parse(path); err == nil {
		path = u.Path
	}
	segments := strings.Split(path, "/")
	if len(segments) < 2 {
		return ""
	}
	return segments[len(segments)-2]
}

// Pointer stores the session's current status URL.
type Pointer struct {
	store session.Store
}

func NewPointer(store session.Store) *Pointer {
	return &Pointer{store: store}
}

// Set records the status URL of a freshly submitted job.
func (p *Pointer) Set(ctx context.Context, sessionID id.SessionID, statusURL string) error {
	if err := p.store.Set(ctx, sessionID, PointerKey, []byte(statusURL)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remember bulk check")
	}
	return nil
}

// Current returns the tracked status URL. found is false when nothing is tracked.
func (p *Pointer) Current(ctx context.Context, sessionID id.SessionID) (statusURL string, found bool, err error) {
	raw, err := p.store.Get(ctx, sessionID, PointerKey)
	if errors.Is(err, sentinel.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read current bulk check")
	}
	statusURL = strings.TrimSpace(string(raw))
	return statusURL, statusURL != "", nil
}

// Clear forgets the tracked job once it has completed.
func (p *Pointer) Clear(ctx context.Context, sessionID id.SessionID) error {
	if err := p.store.Remove(ctx, sessionID, PointerKey); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear current bulk check")
	}
	return nil
}
