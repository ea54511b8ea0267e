// Package domain holds identifier primitives shared across bulk-check packages.
//
// Identifiers are parsed once at a trust boundary (token claims, URL params)
// and carried as distinct types afterwards so they cannot be swapped by accident.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "eligibility/pkg/domain-errors"
)

// maxBulkCheckIDLength bounds opaque job identifiers taken from URLs.
const maxBulkCheckIDLength = 128

// SessionID identifies an operator's interactive session.
type SessionID uuid.UUID

// BulkCheckID is the remote service's identifier for one bulk job. The value
// is opaque to this service.
type BulkCheckID string

// OrganisationID identifies the operator's organisation.
type OrganisationID string

// ParseSessionID parses a non-nil UUID.
func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s, "session ID")
	if err != nil {
		return SessionID{}, err
	}
	return SessionID(u), nil
}

// NewSessionID returns a random session id.
func NewSessionID() SessionID { return SessionID(uuid.New()) }

func (id SessionID) String() string { return uuid.UUID(id).String() }

// IsNil reports whether the id is the zero UUID.
func (id SessionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// ParseBulkCheckID trims s and rejects blank, oversized or path-like values.
func ParseBulkCheckID(s string) (BulkCheckID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "bulk check ID is required")
	}
	if len(s) > maxBulkCheckIDLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "bulk check ID is too long")
	}
	if strings.ContainsAny(s, "/?#\\ \x00") {
		return "", dErrors.New(dErrors.CodeInvalidInput, "bulk check ID contains invalid characters")
	}
	return BulkCheckID(s), nil
}

func (id BulkCheckID) String() string { return string(id) }

// IsNil reports whether the id is empty.
func (id BulkCheckID) IsNil() bool { return id == "" }

func (id OrganisationID) String() string { return string(id) }

// IsNil reports whether the id is empty.
func (id OrganisationID) IsNil() bool { return id == "" }

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" must not be nil")
	}
	return u, nil
}
