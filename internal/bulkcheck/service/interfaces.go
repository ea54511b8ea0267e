package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"eligibility/internal/bulkcheck/checkservice"
	"eligibility/internal/bulkcheck/models"
	"eligibility/internal/bulkcheck/throttle"
	id "eligibility/pkg/domain"
)

// CheckService is the remote eligibility check service.
type CheckService interface {
	SubmitBulk(ctx context.Context, records []models.CandidateRecord, meta models.SubmissionMeta) (*models.BulkJob, error)
	PollProgress(ctx context.Context, statusURL string) (models.Progress, error)
	FetchResults(ctx context.Context, jobID id.BulkCheckID) ([]models.OutcomeRow, error)
	SearchBulkChecks(ctx context.Context, organisationID id.OrganisationID) ([]models.BulkCheckSummary, error)
	DeleteBulkCheck(ctx context.Context, jobID id.BulkCheckID) (checkservice.DeleteResponse, error)
}

// Throttle counts upload attempts per session.
type Throttle interface {
	RegisterAttempt(ctx context.Context, sessionID id.SessionID) (throttle.Decision, error)
}

// StatusPointer remembers the status URL of the session's latest job.
type StatusPointer interface {
	Set(ctx context.Context, sessionID id.SessionID, statusURL string) error
	Current(ctx context.Context, sessionID id.SessionID) (string, bool, error)
	Clear(ctx context.Context, sessionID id.SessionID) error
}
