// Package service composes the bulk-check pipeline per inbound request and
// turns component failures into operator-facing outcomes.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"strings"

	"eligibility/internal/bulkcheck/checkservice"
	"eligibility/internal/bulkcheck/export"
	"eligibility/internal/bulkcheck/history"
	"eligibility/internal/bulkcheck/ingest"
	"eligibility/internal/bulkcheck/models"
	"eligibility/internal/bulkcheck/tracker"
	"eligibility/internal/platform/metrics"
	id "eligibility/pkg/domain"
	dErrors "eligibility/pkg/domain-errors"
	"eligibility/pkg/platform/audit"
	"eligibility/pkg/requestcontext"
)

// Operator-facing messages.
const (
	MessageNoFile          = "Please select a file to upload"
	MessageNotCSV          = "Please upload a CSV file"
	MessageNoValidRecords  = "The file contains no valid records."
	MessageThrottled       = "You have exceeded the maximum number of bulk upload attempts. Please try again later."
	MessageSubmitFailed    = "An error occurred while submitting the bulk check. Please try again."
	MessageNoJob           = "No bulk check is in progress."
	MessageStatusFailed    = "An error occurred while checking the bulk check status. Please try again."
	MessageNoResults       = "No results found for this bulk check."
	MessageResultsFailed   = "Error loading results."
	MessageDownloadFailed  = "Error downloading results."
	MessageHistoryFailed   = "Error loading bulk check history. Please try again."
	MessageInvalidID       = "Invalid bulk check ID."
	MessageDeleteFailed    = "Error deleting bulk check."
	MessageDeleteRefused   = "Failed to delete bulk check."
	MessageDeleteSucceeded = "Bulk check deleted successfully."
)

const (
	DefaultMaxUploadBytes  int64 = 10 << 20
	DefaultErrorsToDisplay       = 20

	csvContentType       = "text/csv"
	documentTemplatePath = "/downloads/bulk-check-template-fsm-basic.csv"
)

type Service struct {
	checks          CheckService
	throttle        Throttle
	pointer         StatusPointer
	parser          *ingest.Parser
	history         *history.Service
	auditor         audit.Emitter
	metrics         *metrics.Metrics
	logger          *slog.Logger
	maxUploadBytes  int64
	errorsToDisplay int
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithParser(parser *ingest.Parser) Option {
	return func(s *Service) {
		if parser != nil {
			s.parser = parser
		}
	}
}

func WithAuditEmitter(emitter audit.Emitter) Option {
	return func(s *Service) {
		s.auditor = emitter
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithMaxUploadBytes sets the exclusive upload size ceiling.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// WithErrorsToDisplay caps the row errors returned for a rejected file.
func WithErrorsToDisplay(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.errorsToDisplay = n
		}
	}
}

func New(checks CheckService, throttle Throttle, pointer StatusPointer, opts ...Option) (*Service, error) {
	if checks == nil {
		return nil, errors.New("check service is required")
	}
	if throttle == nil {
		return nil, errors.New("throttle is required")
	}
	if pointer == nil {
		return nil, errors.New("status pointer is required")
	}

	s := &Service{
		checks:          checks,
		throttle:        throttle,
		pointer:         pointer,
		parser:          ingest.New(),
		logger:          slog.New(slog.DiscardHandler),
		maxUploadBytes:  DefaultMaxUploadBytes,
		errorsToDisplay: DefaultErrorsToDisplay,
	}
	for _, opt := range opts {
		opt(s)
	}

	h, err := history.New(checks, history.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}
	s.history = h
	return s, nil
}

// =============================================================================
// Upload
// =============================================================================

// Upload is one file as received from the operator.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadOutcome tells a submitted batch from a file with row errors.
type UploadOutcome string

const (
	UploadSubmitted UploadOutcome = "submitted"
	UploadDataIssue UploadOutcome = "data_issue"
)

// UploadResult describes an accepted upload. For data issues Errors holds at
// most the display cap; TotalErrorCount is the full count.
type UploadResult struct {
	Outcome         UploadOutcome
	Filename        string
	NumberOfRecords int
	BulkCheckID     string
	StatusURL       string
	Message         string
	Errors          []models.RowError
	TotalErrorCount int
}

// Upload validates the file and, when every row is valid, submits it.
// Rejections that need no row detail come back as coded errors; row
// errors come back as a data_issue result and nothing is submitted.
func (s *Service) Upload(ctx context.Context, upload Upload) (*UploadResult, error) {
	if err := s.precheck(upload); err != nil {
		s.metrics.RecordUpload(metrics.OutcomeRejected)
		return nil, err
	}

	parsed := s.parser.Parse(ctx, upload.Body)
	if parsed.Fatal() {
		s.metrics.RecordUpload(metrics.OutcomeFatal)
		s.logger.InfoContext(ctx, "bulk check file rejected",
			"filename", upload.Filename,
			"reason", parsed.FatalMessage,
		)
		return nil, dErrors.New(dErrors.CodeBadRequest, parsed.FatalMessage)
	}

	records, rowErrors := parsed.Usable()
	if len(rowErrors) > 0 {
		s.metrics.RecordUpload(metrics.OutcomeDataIssue)
		s.metrics.RecordRows(0, len(rowErrors))
		shown := rowErrors[:min(len(rowErrors), s.errorsToDisplay)]
		return &UploadResult{
			Outcome:         UploadDataIssue,
			Filename:        upload.Filename,
			Message:         fmt.Sprintf("The file contains %d error(s). Please correct them and try again.", len(rowErrors)),
			Errors:          append([]models.RowError(nil), shown...),
			TotalErrorCount: len(rowErrors),
		}, nil
	}
	if len(records) == 0 {
		s.metrics.RecordUpload(metrics.OutcomeEmpty)
		return nil, dErrors.New(dErrors.CodeBadRequest, MessageNoValidRecords)
	}

	identity := requestcontext.Identity(ctx)
	sessionID := requestcontext.SessionID(ctx)

	decision, err := s.throttle.RegisterAttempt(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		s.metrics.RecordUpload(metrics.OutcomeThrottled)
		s.metrics.IncrementThrottleRejections()
		audit.LogAudit(ctx, s.logger, s.auditor, audit.ActionBulkCheckThrottled,
			"actor", identity.SubmittedBy(),
			"organisation_id", identity.OrganisationID.String(),
			"filename", upload.Filename,
			"detail", fmt.Sprintf("attempt %d of %d", decision.AttemptCount, decision.Limit),
		)
		return nil, dErrors.New(dErrors.CodeTooManyRequests, MessageThrottled)
	}

	meta := models.SubmissionMeta{
		Filename:         upload.Filename,
		SubmittedBy:      identity.SubmittedBy(),
		LocalAuthorityID: identity.LocalAuthorityID(),
	}
	job, err := s.checks.SubmitBulk(ctx, records, meta)
	if err != nil {
		s.metrics.RecordUpload(metrics.OutcomeRemoteFail)
		s.logger.ErrorContext(ctx, "bulk check submission failed",
			"filename", upload.Filename,
			"records", len(records),
			"category", string(checkservice.CategoryOf(err)),
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, MessageSubmitFailed)
	}

	if err := s.pointer.Set(ctx, sessionID, job.StatusURL); err != nil {
		s.logger.WarnContext(ctx, "failed to remember bulk check status URL",
			"bulk_check_id", job.ID,
			"status_url", job.StatusURL,
			"error", err,
		)
	}

	s.metrics.RecordUpload(metrics.OutcomeSubmitted)
	s.metrics.RecordRows(len(records), 0)
	audit.LogAudit(ctx, s.logger, s.auditor, audit.ActionBulkCheckSubmitted,
		"actor", meta.SubmittedBy,
		"organisation_id", identity.OrganisationID.String(),
		"bulk_check_id", job.ID,
		"detail", fmt.Sprintf("%d records from %s", len(records), upload.Filename),
	)

	return &UploadResult{
		Outcome:         UploadSubmitted,
		Filename:        upload.Filename,
		NumberOfRecords: len(records),
		BulkCheckID:     job.ID,
		StatusURL:       job.StatusURL,
	}, nil
}

func (s *Service) precheck(upload Upload) error {
	if upload.Body == nil || strings.TrimSpace(upload.Filename) == "" {
		return dErrors.New(dErrors.CodeBadRequest, MessageNoFile)
	}
	if upload.Size >= s.maxUploadBytes {
		return FileTooLarge(s.maxUploadBytes)
	}
	mediaType, _, err := mime.ParseMediaType(upload.ContentType)
	if err != nil || !strings.EqualFold(mediaType, csvContentType) {
		return dErrors.New(dErrors.CodeBadRequest, MessageNotCSV)
	}
	return nil
}

// FileTooLarge is the rejection for an upload of maxBytes or more.
func FileTooLarge(maxBytes int64) error {
	return dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("File size must be less than %dMB", maxBytes>>20))
}

// =============================================================================
// Status
// =============================================================================

// StatusResult is one progress observation.
type StatusResult struct {
	BulkCheckID string
	StatusURL   string
	State       models.JobState
	Complete    bool
	Completed   int
	Total       int
}

// Status polls a job once. With an empty jobID it follows the session's
// current status URL, and clears it once the job is complete.
func (s *Service) Status(ctx context.Context, jobID string) (*StatusResult, error) {
	sessionID := requestcontext.SessionID(ctx)
	fromPointer := strings.TrimSpace(jobID) == ""

	var statusURL string
	if fromPointer {
		current, found, err := s.pointer.Current(ctx, sessionID)
		if err != nil {
			s.logger.WarnContext(ctx, "failed to read bulk check status URL", "error", err)
		}
		if !found || current == "" {
			return nil, dErrors.New(dErrors.CodeNotFound, MessageNoJob)
		}
		statusURL = current
	} else {
		parsed, err := id.ParseBulkCheckID(jobID)
		if err != nil {
			return nil, dErrors.New(dErrors.CodeNotFound, MessageNoJob)
		}
		statusURL = checkservice.StatusPath(parsed)
	}

	progress, err := s.checks.PollProgress(ctx, statusURL)
	if err != nil {
		s.logger.ErrorContext(ctx, "bulk check status poll failed",
			"status_url", statusURL,
			"category", string(checkservice.CategoryOf(err)),
			"error", err,
		)
		if checkservice.IsNotFound(err) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, MessageNoJob)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, MessageStatusFailed)
	}

	result := &StatusResult{
		BulkCheckID: strings.TrimSpace(jobID),
		StatusURL:   statusURL,
		State:       tracker.State(progress),
		Complete:    tracker.IsComplete(progress),
		Completed:   progress.Completed,
		Total:       progress.Total,
	}
	if result.BulkCheckID == "" {
		result.BulkCheckID = tracker.JobIDFromStatusURL(statusURL)
	}

	if result.Complete && fromPointer {
		if err := s.pointer.Clear(ctx, sessionID); err != nil {
			s.logger.WarnContext(ctx, "failed to clear bulk check status URL",
				"bulk_check_id", result.BulkCheckID,
				"error", err,
			)
		}
	}
	return result, nil
}

// =============================================================================
// Results and export
// =============================================================================

// Results returns a job's outcomes with display labels.
func (s *Service) Results(ctx context.Context, jobID string) ([]models.ExportRow, error) {
	rows, err := s.loadResults(ctx, jobID, MessageResultsFailed)
	if err != nil {
		return nil, err
	}
	return export.ToExportRows(rows), nil
}

// ExportFile is a rendered CSV download.
type ExportFile struct {
	Filename string
	Content  []byte
	Rows     int
}

// Export renders a job's outcomes as CSV.
func (s *Service) Export(ctx context.Context, jobID string) (*ExportFile, error) {
	rows, err := s.loadResults(ctx, jobID, MessageDownloadFailed)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, export.ToExportRows(rows)); err != nil {
		s.logger.ErrorContext(ctx, "failed to render bulk check export",
			"bulk_check_id", jobID,
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, MessageDownloadFailed)
	}

	identity := requestcontext.Identity(ctx)
	audit.LogAudit(ctx, s.logger, s.auditor, audit.ActionBulkCheckExported,
		"actor", identity.SubmittedBy(),
		"organisation_id", identity.OrganisationID.String(),
		"bulk_check_id", jobID,
		"detail", fmt.Sprintf("%d rows", len(rows)),
	)

	return &ExportFile{
		Filename: export.Filename(requestcontext.Now(ctx)),
		Content:  buf.Bytes(),
		Rows:     len(rows),
	}, nil
}

// loadResults treats a bad id, a missing job and an empty result set alike.
func (s *Service) loadResults(ctx context.Context, jobID, failureMessage string) ([]models.OutcomeRow, error) {
	parsed, err := id.ParseBulkCheckID(jobID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeNotFound, MessageNoResults)
	}

	rows, err := s.checks.FetchResults(ctx, parsed)
	if err != nil {
		if checkservice.IsNotFound(err) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, MessageNoResults)
		}
		s.logger.ErrorContext(ctx, "bulk check results fetch failed",
			"bulk_check_id", parsed.String(),
			"category", string(checkservice.CategoryOf(err)),
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, failureMessage)
	}
	if len(rows) == 0 {
		return nil, dErrors.New(dErrors.CodeNotFound, MessageNoResults)
	}
	return rows, nil
}

// =============================================================================
// History
// =============================================================================

// History lists the caller's organisation's checks. A caller without an
// organisation sees an empty first page.
func (s *Service) History(ctx context.Context, page, pageSize int) (models.Page[models.BulkCheckSummary], error) {
	identity := requestcontext.Identity(ctx)
	if identity.OrganisationID.IsNil() {
		s.logger.WarnContext(ctx, "no organisation on identity for bulk check history")
		return history.Paginate([]models.BulkCheckSummary{}, page, pageSize), nil
	}

	result, err := s.history.List(ctx, identity.OrganisationID, page, pageSize)
	if err != nil {
		s.logger.ErrorContext(ctx, "bulk check history search failed",
			"organisation_id", identity.OrganisationID.String(),
			"category", string(checkservice.CategoryOf(err)),
			"error", err,
		)
		return models.Page[models.BulkCheckSummary]{}, dErrors.Wrap(err, dErrors.CodeUnavailable, MessageHistoryFailed)
	}
	return result, nil
}

// =============================================================================
// Delete
// =============================================================================

// DeleteResult is always returned; failures are reported in Message.
type DeleteResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Delete removes a job at the check service. A blank or malformed id is
// refused without a remote call and remote errors never leak their text.
func (s *Service) Delete(ctx context.Context, jobID string) DeleteResult {
	parsed, err := id.ParseBulkCheckID(jobID)
	if err != nil {
		return DeleteResult{Success: false, Message: MessageInvalidID}
	}

	resp, err := s.checks.DeleteBulkCheck(ctx, parsed)
	if err != nil {
		s.logger.ErrorContext(ctx, "bulk check delete failed",
			"bulk_check_id", parsed.String(),
			"category", string(checkservice.CategoryOf(err)),
			"error", err,
		)
		return DeleteResult{Success: false, Message: MessageDeleteFailed}
	}

	if !resp.Success {
		return DeleteResult{Success: false, Message: orDefault(resp.Message, MessageDeleteRefused)}
	}

	identity := requestcontext.Identity(ctx)
	audit.LogAudit(ctx, s.logger, s.auditor, audit.ActionBulkCheckDeleted,
		"actor", identity.SubmittedBy(),
		"organisation_id", identity.OrganisationID.String(),
		"bulk_check_id", parsed.String(),
	)
	return DeleteResult{Success: true, Message: orDefault(resp.Message, MessageDeleteSucceeded)}
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// =============================================================================
// Template
// =============================================================================

// Template describes the expected upload file.
type Template struct {
	DocumentTemplatePath string
	Header               string
	FieldDescriptions    []string
}

// Template returns the upload file layout.
func (s *Service) Template() Template {
	return Template{
		DocumentTemplatePath: documentTemplatePath,
		Header:               strings.Join(ingest.RequiredHeaders, ","),
		FieldDescriptions: []string{
			"last name",
			"date of birth (format DD/MM/YYYY or YYYY-MM-DD)",
			"National Insurance number",
		},
	}
}
