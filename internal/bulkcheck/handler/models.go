package handler

import (
	"time"

	"eligibility/internal/bulkcheck/models"
	"eligibility/internal/bulkcheck/service"
)

// HistoryRedirect is where clients go when there is nothing to show.
const HistoryRedirect = "/bulk-check/history"

type uploadSubmittedResponse struct {
	Filename        string `json:"filename"`
	NumberOfRecords int    `json:"number_of_records"`
	BulkCheckID     string `json:"bulk_check_id"`
	StatusURL       string `json:"status_url"`
}

type rowErrorResponse struct {
	LineNumber int    `json:"line_number"`
	Message    string `json:"message"`
}

type dataIssueResponse struct {
	Response        string             `json:"response"`
	Filename        string             `json:"filename"`
	ErrorMessage    string             `json:"error_message"`
	Errors          []rowErrorResponse `json:"errors"`
	TotalErrorCount int                `json:"total_error_count"`
}

type statusResponse struct {
	BulkCheckID string `json:"bulk_check_id"`
	State       string `json:"state"`
	Complete    bool   `json:"complete"`
	Completed   int    `json:"completed"`
	Total       int    `json:"total"`
}

type notFoundResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	Redirect         string `json:"redirect"`
}

type summaryResponse struct {
	ID               string    `json:"id"`
	Filename         string    `json:"filename"`
	NumberOfRecords  *int      `json:"number_of_records"`
	FinalNameInCheck *string   `json:"final_name_in_check"`
	SubmittedDate    time.Time `json:"submitted_date"`
	SubmittedBy      string    `json:"submitted_by"`
	Status           string    `json:"status"`
}

type historyResponse struct {
	Checks       []summaryResponse `json:"checks"`
	Page         int               `json:"page"`
	PageSize     int               `json:"page_size"`
	TotalRecords int               `json:"total_records"`
	TotalPages   int               `json:"total_pages"`
}

type resultRowResponse struct {
	LastName                string `json:"last_name"`
	DateOfBirth             string `json:"date_of_birth"`
	NationalInsuranceNumber string `json:"national_insurance_number"`
	Outcome                 string `json:"outcome"`
}

type resultsResponse struct {
	BulkCheckID string              `json:"bulk_check_id"`
	Results     []resultRowResponse `json:"results"`
}

type templateResponse struct {
	DocumentTemplatePath string   `json:"document_template_path"`
	Header               string   `json:"header"`
	FieldDescriptions    []string `json:"field_descriptions"`
}

func toDataIssueResponse(result *service.UploadResult) dataIssueResponse {
	errs := make([]rowErrorResponse, 0, len(result.Errors))
	for _, e := range result.Errors {
		errs = append(errs, rowErrorResponse{LineNumber: e.LineNumber, Message: e.Message})
	}
	return dataIssueResponse{
		Response:        string(result.Outcome),
		Filename:        result.Filename,
		ErrorMessage:    result.Message,
		Errors:          errs,
		TotalErrorCount: result.TotalErrorCount,
	}
}

func toHistoryResponse(page models.Page[models.BulkCheckSummary]) historyResponse {
	checks := make([]summaryResponse, 0, len(page.Items))
	for _, c := range page.Items {
		checks = append(checks, summaryResponse{
			ID:               c.ID,
			Filename:         c.Filename,
			NumberOfRecords:  c.NumberOfRecords,
			FinalNameInCheck: c.FinalNameInCheck,
			SubmittedDate:    c.SubmittedDate,
			SubmittedBy:      c.SubmittedBy,
			Status:           c.Status,
		})
	}
	return historyResponse{
		Checks:       checks,
		Page:         page.Page,
		PageSize:     page.PageSize,
		TotalRecords: page.TotalRecords,
		TotalPages:   page.TotalPages,
	}
}

func toResultsResponse(jobID string, rows []models.ExportRow) resultsResponse {
	out := make([]resultRowResponse, 0, len(rows))
	for _, r := range rows {
		if r.Basic == nil {
			continue
		}
		out = append(out, resultRowResponse{
			LastName:                r.Basic.LastName,
			DateOfBirth:             r.Basic.DateOfBirth,
			NationalInsuranceNumber: r.Basic.NationalInsuranceNumber,
			Outcome:                 r.Basic.Outcome,
		})
	}
	return resultsResponse{BulkCheckID: jobID, Results: out}
}
