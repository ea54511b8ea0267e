// Package models holds the value types that flow through the bulk-check pipeline.
package models

import (
	"time"
)

// CandidateRecord is one validated CSV row ready for submission.
type CandidateRecord struct {
	Sequence                int    `json:"sequence"`
	LastName                string `json:"lastName"`
	DateOfBirth             string `json:"dateOfBirth"`
	NationalInsuranceNumber string `json:"nationalInsuranceNumber"`
}

// RowError reports one validation failure against a physical CSV line.
// The header is line 1, the first data row line 2.
type RowError struct {
	LineNumber int    `json:"line_number"`
	Message    string `json:"message"`
}

// ParseResult is the outcome of ingesting one file. When FatalMessage is set
// the whole file was rejected and the other fields carry nothing usable.
type ParseResult struct {
	ValidRecords []CandidateRecord
	Errors       []RowError
	FatalMessage string
}

// Fatal reports whether the file was rejected outright.
func (r ParseResult) Fatal() bool {
	return r.FatalMessage != ""
}

// Usable returns the records and row errors, or empty slices for a fatal result.
func (r ParseResult) Usable() ([]CandidateRecord, []RowError) {
	if r.Fatal() {
		return nil, nil
	}
	return r.ValidRecords, r.Errors
}

// SubmissionMeta travels with a batch. LocalAuthorityID is set only for
// local-authority operators.
type SubmissionMeta struct {
	Filename         string  `json:"filename"`
	SubmittedBy      string  `json:"submittedBy"`
	LocalAuthorityID *string `json:"localAuthorityId,omitempty"`
}

// JobState is the lifecycle of a remote bulk job as seen from here.
type JobState string

const (
	JobSubmitted JobState = "submitted"
	JobPolling   JobState = "polling"
	JobComplete  JobState = "complete"
)

// BulkJob is the handle returned by a successful submission.
type BulkJob struct {
	ID         string
	StatusURL  string
	ResultsURL string
	State      JobState
}

// Progress is one poll of a job's status.
type Progress struct {
	Completed int
	Total     int
}

// Bulk check status labels shown in the history listing.
const (
	StatusCompleted  = "Completed"
	StatusInProgress = "In progress"
	StatusNotStarted = "Not started"
	StatusFailed     = "Failed"
	StatusUnknown    = "Unknown"
)

// EligibilityTypeFreeSchoolMeals is the only eligibility type this pipeline lists.
const EligibilityTypeFreeSchoolMeals = "FreeSchoolMeals"

// BulkCheckSummary is one prior submission in the history listing.
type BulkCheckSummary struct {
	ID               string
	Filename         string
	NumberOfRecords  *int
	FinalNameInCheck *string
	SubmittedDate    time.Time
	SubmittedBy      string
	Status           string
	EligibilityType  string
}

// Outcome codes returned by the check service.
const (
	OutcomeParentNotFound = "parentNotFound"
	OutcomeEligible       = "eligible"
	OutcomeNotEligible    = "notEligible"
	OutcomeError          = "error"
)

// OutcomeRow is one result line of a completed job, with the raw status code.
type OutcomeRow struct {
	LastName                string
	DateOfBirth             string
	NationalInsuranceNumber string
	Status                  string
}

// ExportKind selects the export row shape.
type ExportKind string

const (
	ExportKindBasic           ExportKind = "basic"
	ExportKindWorkingFamilies ExportKind = "working_families"
)

// BasicExportRow is the free-school-meals basic outcome line.
type BasicExportRow struct {
	LastName                string
	DateOfBirth             string
	NationalInsuranceNumber string
	Outcome                 string
}

// WorkingFamiliesExportRow is the working-families outcome line. The pipeline
// never produces it; callers must pick the shape explicitly.
type WorkingFamiliesExportRow struct {
	EligibilityCode    string
	ChildFirstName     string
	ChildLastName      string
	ChildDateOfBirth   string
	ParentNINO         string
	ValidityStartDate  string
	ValidityEndDate    string
	GracePeriodEndDate string
	Outcome            string
}

// ExportRow is a tagged variant: exactly one payload matches Kind.
type ExportRow struct {
	Kind            ExportKind
	Basic           *BasicExportRow
	WorkingFamilies *WorkingFamiliesExportRow
}

// SubmissionThrottleState is the per-session attempt counter.
type SubmissionThrottleState struct {
	AttemptCount    int       `json:"attempt_count"`
	WindowStartedAt time.Time `json:"window_started_at"`
}

// Page is one page of a listing. Page numbers start at 1.
type Page[T any] struct {
	Items        []T
	Page         int
	PageSize     int
	TotalRecords int
	TotalPages   int
}
