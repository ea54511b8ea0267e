package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"eligibility/internal/bulkcheck/checkservice"
	"eligibility/internal/bulkcheck/models"
	"eligibility/internal/bulkcheck/service/mocks"
	"eligibility/internal/bulkcheck/throttle"
	"eligibility/internal/bulkcheck/tracker"
	"eligibility/internal/bulkcheck/validation"
	"eligibility/internal/session"
	id "eligibility/pkg/domain"
	dErrors "eligibility/pkg/domain-errors"
	"eligibility/pkg/platform/audit"
	"eligibility/pkg/platform/audit/publisher"
	auditmemory "eligibility/pkg/platform/audit/store/memory"
	"eligibility/pkg/requestcontext"
)

const validCSV = "Last Name,Date of Birth,National Insurance Number\n" +
	"Smith,01/02/2015,ab123456c\n" +
	"Jones,2014-07-09,CD654321A\n"

type ServiceSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	checks     *mocks.MockCheckService
	throttle   *mocks.MockThrottle
	pointer    *tracker.Pointer
	auditStore *auditmemory.InMemoryStore
	service    *Service
	sessionID  id.SessionID
	identity   id.Identity
	now        time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.checks = mocks.NewMockCheckService(s.ctrl)
	s.throttle = mocks.NewMockThrottle(s.ctrl)
	s.pointer = tracker.NewPointer(session.NewInMemoryStore())
	s.auditStore = auditmemory.NewInMemoryStore()
	s.sessionID = id.NewSessionID()
	s.identity = id.Identity{
		Email:                "operator@school.example",
		OrganisationID:       id.OrganisationID("org-100"),
		OrganisationCategory: "Local Authority",
		EstablishmentNumber:  "201",
	}
	s.now = time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)

	var err error
	s.service, err = New(s.checks, s.throttle, s.pointer,
		WithAuditEmitter(publisher.NewPublisher(s.auditStore)),
	)
	s.Require().NoError(err)
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceSuite) ctx() context.Context {
	ctx := requestcontext.WithIdentity(context.Background(), s.identity)
	ctx = requestcontext.WithSessionID(ctx, s.sessionID)
	return requestcontext.WithTime(ctx, s.now)
}

func csvUpload(content string) Upload {
	return Upload{
		Filename:    "batch.csv",
		ContentType: "text/csv",
		Size:        int64(len(content)),
		Body:        strings.NewReader(content),
	}
}

func (s *ServiceSuite) allow() {
	s.throttle.EXPECT().RegisterAttempt(gomock.Any(), s.sessionID).
		Return(throttle.Decision{Allowed: true, AttemptCount: 1, Limit: 5}, nil)
}

func (s *ServiceSuite) auditActions() []audit.Action {
	events, err := s.auditStore.ListByOrganisation(context.Background(), "org-100")
	s.Require().NoError(err)
	actions := make([]audit.Action, 0, len(events))
	for _, e := range events {
		actions = append(actions, e.Action)
	}
	return actions
}

// =============================================================================
// Upload
// =============================================================================

func (s *ServiceSuite) TestUploadSubmitsValidFile() {
	s.allow()
	s.checks.EXPECT().SubmitBulk(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, records []models.CandidateRecord, meta models.SubmissionMeta) (*models.BulkJob, error) {
			s.Require().Len(records, 2)
			s.Equal("2015-02-01", records[0].DateOfBirth)
			s.Equal("AB123456C", records[0].NationalInsuranceNumber)
			s.Equal(2, records[1].Sequence)
			s.Equal("batch.csv", meta.Filename)
			s.Equal("operator@school.example", meta.SubmittedBy)
			s.Require().NotNil(meta.LocalAuthorityID)
			s.Equal("201", *meta.LocalAuthorityID)
			return &models.BulkJob{ID: "job-1", StatusURL: "bulk-check/job-1/status", State: models.JobSubmitted}, nil
		})

	result, err := s.service.Upload(s.ctx(), csvUpload(validCSV))

	s.Require().NoError(err)
	s.Equal(UploadSubmitted, result.Outcome)
	s.Equal(2, result.NumberOfRecords)
	s.Equal("job-1", result.BulkCheckID)

	current, found, err := s.pointer.Current(context.Background(), s.sessionID)
	s.Require().NoError(err)
	s.True(found)
	s.Equal("bulk-check/job-1/status", current)
	s.Equal([]audit.Action{audit.ActionBulkCheckSubmitted}, s.auditActions())
}

func (s *ServiceSuite) TestUploadPrechecks() {
	tests := []struct {
		name    string
		upload  Upload
		message string
	}{
		{"missing file", Upload{}, MessageNoFile},
		{"file too large", Upload{Filename: "a.csv", ContentType: "text/csv", Size: DefaultMaxUploadBytes, Body: strings.NewReader("")}, "File size must be less than 10MB"},
		{"wrong content type", Upload{Filename: "a.xlsx", ContentType: "application/vnd.ms-excel", Size: 10, Body: strings.NewReader("")}, MessageNotCSV},
		{"unparseable content type", Upload{Filename: "a.csv", ContentType: "", Size: 10, Body: strings.NewReader("")}, MessageNotCSV},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.service.Upload(s.ctx(), tt.upload)
			s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
			s.Equal(tt.message, dErrors.MessageOf(err))
		})
	}
}

func (s *ServiceSuite) TestUploadAcceptsCSVWithCharset() {
	s.allow()
	s.checks.EXPECT().SubmitBulk(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&models.BulkJob{ID: "job-1", StatusURL: "bulk-check/job-1/status"}, nil)

	upload := csvUpload(validCSV)
	upload.ContentType = "Text/CSV; charset=utf-8"
	_, err := s.service.Upload(s.ctx(), upload)

	s.NoError(err)
}

func (s *ServiceSuite) TestUploadFatalParseSkipsThrottle() {
	_, err := s.service.Upload(s.ctx(), csvUpload("Surname,Date of Birth,National Insurance Number\nSmith,01/02/2015,AB123456C\n"))

	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	s.Equal("Invalid CSV format. Missing required header: 'last name'.", dErrors.MessageOf(err))
}

func (s *ServiceSuite) TestUploadWithRowErrorsReturnsDataIssue() {
	content := validCSV + "Brown,2013-03-03,BAD\n"

	result, err := s.service.Upload(s.ctx(), csvUpload(content))

	s.Require().NoError(err)
	s.Equal(UploadDataIssue, result.Outcome)
	s.Equal(1, result.TotalErrorCount)
	s.Equal("The file contains 1 error(s). Please correct them and try again.", result.Message)
	s.Equal([]models.RowError{{LineNumber: 4, Message: validation.MessageNationalInsNo}}, result.Errors)
	s.Empty(s.auditActions())
}

func (s *ServiceSuite) TestUploadCapsDisplayedErrors() {
	var b strings.Builder
	b.WriteString("last name,date of birth,national insurance number\n")
	for i := range 25 {
		fmt.Fprintf(&b, "Name%d,2015-01-01,XX\n", i)
	}

	result, err := s.service.Upload(s.ctx(), csvUpload(b.String()))

	s.Require().NoError(err)
	s.Len(result.Errors, DefaultErrorsToDisplay)
	s.Equal(25, result.TotalErrorCount)
}

func (s *ServiceSuite) TestUploadHeaderOnlyHasNoValidRecords() {
	_, err := s.service.Upload(s.ctx(), csvUpload("last name,date of birth,national insurance number\n"))

	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	s.Equal(MessageNoValidRecords, dErrors.MessageOf(err))
}

func (s *ServiceSuite) TestUploadThrottled() {
	s.throttle.EXPECT().RegisterAttempt(gomock.Any(), s.sessionID).
		Return(throttle.Decision{Allowed: false, AttemptCount: 6, Limit: 5}, nil)

	_, err := s.service.Upload(s.ctx(), csvUpload(validCSV))

	s.True(dErrors.HasCode(err, dErrors.CodeTooManyRequests))
	s.Equal(MessageThrottled, dErrors.MessageOf(err))
	s.Equal([]audit.Action{audit.ActionBulkCheckThrottled}, s.auditActions())
}

func (s *ServiceSuite) TestUploadRemoteFailureHidesDetail() {
	s.allow()
	s.checks.EXPECT().SubmitBulk(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, checkservice.NewError(checkservice.ErrorOutage, checkservice.OpSubmit, "service error", nil))

	_, err := s.service.Upload(s.ctx(), csvUpload(validCSV))

	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	s.Equal(MessageSubmitFailed, dErrors.MessageOf(err))
	_, found, _ := s.pointer.Current(context.Background(), s.sessionID)
	s.False(found)
}

// =============================================================================
// Status
// =============================================================================

func (s *ServiceSuite) TestStatusWithoutJobIsNotFound() {
	_, err := s.service.Status(s.ctx(), "")

	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestStatusInProgressKeepsPointer() {
	s.Require().NoError(s.pointer.Set(context.Background(), s.sessionID, "bulk-check/job-1/status"))
	s.checks.EXPECT().PollProgress(gomock.Any(), "bulk-check/job-1/status").
		Return(models.Progress{Completed: 4, Total: 5}, nil)

	result, err := s.service.Status(s.ctx(), "")

	s.Require().NoError(err)
	s.False(result.Complete)
	s.Equal(models.JobPolling, result.State)
	s.Equal("job-1", result.BulkCheckID)
	_, found, _ := s.pointer.Current(context.Background(), s.sessionID)
	s.True(found)
}

func (s *ServiceSuite) TestStatusCompleteClearsPointer() {
	s.Require().NoError(s.pointer.Set(context.Background(), s.sessionID, "bulk-check/job-1/status"))
	s.checks.EXPECT().PollProgress(gomock.Any(), "bulk-check/job-1/status").
		Return(models.Progress{Completed: 5, Total: 5}, nil)

	result, err := s.service.Status(s.ctx(), "")

	s.Require().NoError(err)
	s.True(result.Complete)
	s.Equal(models.JobComplete, result.State)
	s.Equal("job-1", result.BulkCheckID)
	_, found, _ := s.pointer.Current(context.Background(), s.sessionID)
	s.False(found)
}

func (s *ServiceSuite) TestStatusForExplicitJobLeavesPointer() {
	s.Require().NoError(s.pointer.Set(context.Background(), s.sessionID, "bulk-check/job-2/status"))
	s.checks.EXPECT().PollProgress(gomock.Any(), "bulk-check/job-1/status").
		Return(models.Progress{Completed: 6, Total: 5}, nil)

	result, err := s.service.Status(s.ctx(), "job-1")

	s.Require().NoError(err)
	s.True(result.Complete)
	s.Equal("job-1", result.BulkCheckID)
	current, _, _ := s.pointer.Current(context.Background(), s.sessionID)
	s.Equal("bulk-check/job-2/status", current)
}

func (s *ServiceSuite) TestStatusRemoteFailure() {
	s.checks.EXPECT().PollProgress(gomock.Any(), gomock.Any()).
		Return(models.Progress{}, checkservice.NewError(checkservice.ErrorTimeout, checkservice.OpPoll, "request timed out", nil))

	_, err := s.service.Status(s.ctx(), "job-1")

	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	s.Equal(MessageStatusFailed, dErrors.MessageOf(err))
}

// =============================================================================
// Results and export
// =============================================================================

func (s *ServiceSuite) TestResultsLabelsOutcomes() {
	s.checks.EXPECT().FetchResults(gomock.Any(), id.BulkCheckID("job-1")).
		Return([]models.OutcomeRow{{LastName: "Smith", Status: models.OutcomeNotEligible}}, nil)

	rows, err := s.service.Results(s.ctx(), "job-1")

	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Equal("Not Entitled", rows[0].Basic.Outcome)
}

func (s *ServiceSuite) TestResultsNothingToShow() {
	s.Run("blank id", func() {
		_, err := s.service.Results(s.ctx(), "  ")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
	s.Run("empty result set", func() {
		s.checks.EXPECT().FetchResults(gomock.Any(), id.BulkCheckID("job-1")).Return([]models.OutcomeRow{}, nil)
		_, err := s.service.Results(s.ctx(), "job-1")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Equal(MessageNoResults, dErrors.MessageOf(err))
	})
	s.Run("remote not found", func() {
		s.checks.EXPECT().FetchResults(gomock.Any(), id.BulkCheckID("job-2")).
			Return(nil, checkservice.NewError(checkservice.ErrorNotFound, checkservice.OpResults, "not found", nil))
		_, err := s.service.Results(s.ctx(), "job-2")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestExportRendersCSVAndAudits() {
	s.checks.EXPECT().FetchResults(gomock.Any(), id.BulkCheckID("job-1")).
		Return([]models.OutcomeRow{{LastName: "Smith", DateOfBirth: "2015-02-01", NationalInsuranceNumber: "AB123456C", Status: models.OutcomeEligible}}, nil)

	file, err := s.service.Export(s.ctx(), "job-1")

	s.Require().NoError(err)
	s.Equal("fsm-basic-outcomes-20250401100000.csv", file.Filename)
	s.Equal(1, file.Rows)
	s.Contains(string(file.Content), "Smith,2015-02-01,AB123456C,Entitled")
	s.Equal([]audit.Action{audit.ActionBulkCheckExported}, s.auditActions())
}

func (s *ServiceSuite) TestExportRemoteFailure() {
	s.checks.EXPECT().FetchResults(gomock.Any(), id.BulkCheckID("job-1")).
		Return(nil, checkservice.NewError(checkservice.ErrorOutage, checkservice.OpResults, "service error", nil))

	_, err := s.service.Export(s.ctx(), "job-1")

	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	s.Equal(MessageDownloadFailed, dErrors.MessageOf(err))
}

// =============================================================================
// History
// =============================================================================

func (s *ServiceSuite) TestHistoryUsesCallerOrganisation() {
	s.checks.EXPECT().SearchBulkChecks(gomock.Any(), id.OrganisationID("org-100")).
		Return([]models.BulkCheckSummary{{ID: "job-1", Status: "completed", EligibilityType: models.EligibilityTypeFreeSchoolMeals}}, nil)

	page, err := s.service.History(s.ctx(), 1, 10)

	s.Require().NoError(err)
	s.Require().Len(page.Items, 1)
	s.Equal("Completed", page.Items[0].Status)
}

func (s *ServiceSuite) TestHistoryWithoutOrganisationIsEmpty() {
	s.identity.OrganisationID = ""

	page, err := s.service.History(s.ctx(), 1, 10)

	s.Require().NoError(err)
	s.Empty(page.Items)
	s.Zero(page.TotalRecords)
}

func (s *ServiceSuite) TestHistoryRemoteFailure() {
	s.checks.EXPECT().SearchBulkChecks(gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))

	_, err := s.service.History(s.ctx(), 1, 10)

	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
}

// =============================================================================
// Delete
// =============================================================================

func (s *ServiceSuite) TestDeleteBlankIDNeverCallsOut() {
	result := s.service.Delete(s.ctx(), "   ")

	s.Equal(DeleteResult{Success: false, Message: MessageInvalidID}, result)
	s.Equal("Invalid bulk check ID.", result.Message)
}

func (s *ServiceSuite) TestDeleteSuccess() {
	s.checks.EXPECT().DeleteBulkCheck(gomock.Any(), id.BulkCheckID("job-1")).
		Return(checkservice.DeleteResponse{Success: true}, nil)

	result := s.service.Delete(s.ctx(), "job-1")

	s.Equal(DeleteResult{Success: true, Message: MessageDeleteSucceeded}, result)
	s.Equal([]audit.Action{audit.ActionBulkCheckDeleted}, s.auditActions())
}

func (s *ServiceSuite) TestDeleteRefusedKeepsRemoteMessage() {
	s.checks.EXPECT().DeleteBulkCheck(gomock.Any(), id.BulkCheckID("job-1")).
		Return(checkservice.DeleteResponse{Success: false, Message: "Bulk check is still processing"}, nil)

	result := s.service.Delete(s.ctx(), "job-1")

	s.Equal(DeleteResult{Success: false, Message: "Bulk check is still processing"}, result)
	s.Empty(s.auditActions())
}

func (s *ServiceSuite) TestDeleteRemoteErrorHidesDetail() {
	s.checks.EXPECT().DeleteBulkCheck(gomock.Any(), id.BulkCheckID("job-1")).
		Return(checkservice.DeleteResponse{}, errors.New("dial tcp 10.0.0.1:443: connection refused"))

	result := s.service.Delete(s.ctx(), "job-1")

	s.Equal(DeleteResult{Success: false, Message: MessageDeleteFailed}, result)
}

// =============================================================================
// Template
// =============================================================================

func (s *ServiceSuite) TestTemplate() {
	tpl := s.service.Template()

	s.Equal("last name,date of birth,national insurance number", tpl.Header)
	s.Len(tpl.FieldDescriptions, 3)
}

func TestNewRequiresPorts(t *testing.T) {
	ctrl := gomock.NewController(t)
	checks := mocks.NewMockCheckService(ctrl)
	thr := mocks.NewMockThrottle(ctrl)
	pointer := mocks.NewMockStatusPointer(ctrl)

	if _, err := New(nil, thr, pointer); err == nil {
		t.Fatal("expected error without check service")
	}
	if _, err := New(checks, nil, pointer); err == nil {
		t.Fatal("expected error without throttle")
	}
	if _, err := New(checks, thr, nil); err == nil {
		t.Fatal("expected error without pointer")
	}
}
