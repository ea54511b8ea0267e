package checkservice

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"eligibility/internal/bulkcheck/models"
)

type bulkSubmitRequest struct {
	Data []models.CandidateRecord `json:"data"`
	Meta models.SubmissionMeta    `json:"meta"`
}

type bulkSubmitResponse struct {
	Links struct {
		Status  string `json:"get_BulkCheck_Status"`
		Results string `json:"get_BulkCheck_Results"`
	} `json:"links"`
}

type progressResponse struct {
	Data *struct {
		Complete int `json:"complete"`
		Total    int `json:"total"`
	} `json:"data"`
}

type outcomeItem struct {
	LastName                string `json:"lastName"`
	DateOfBirth             string `json:"dateOfBirth"`
	NationalInsuranceNumber string `json:"nationalInsuranceNumber"`
	Status                  string `json:"status"`
}

type resultsResponse struct {
	Data []outcomeItem `json:"data"`
}

type bulkCheckItem struct {
	ID               string     `json:"id"`
	Filename         string     `json:"filename"`
	NumberOfRecords  *int       `json:"numberOfRecords"`
	FinalNameInCheck *string    `json:"finalNameInCheck"`
	SubmittedDate    remoteTime `json:"submittedDate"`
	SubmittedBy      string     `json:"submittedBy"`
	Status           string     `json:"status"`
	EligibilityType  string     `json:"eligibilityType"`
}

type searchResponse struct {
	Checks []bulkCheckItem `json:"checks"`
}

// DeleteResponse is the remote answer to a delete.
type DeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (o outcomeItem) toModel() models.OutcomeRow {
	return models.OutcomeRow{
		LastName:                o.LastName,
		DateOfBirth:             o.DateOfBirth,
		NationalInsuranceNumber: o.NationalInsuranceNumber,
		Status:                  o.Status,
	}
}

func (b bulkCheckItem) toModel() models.BulkCheckSummary {
	return models.BulkCheckSummary{
		ID:               b.ID,
		Filename:         b.Filename,
		NumberOfRecords:  b.NumberOfRecords,
		FinalNameInCheck: b.FinalNameInCheck,
		SubmittedDate:    time.Time(b.SubmittedDate),
		SubmittedBy:      b.SubmittedBy,
		Status:           b.Status,
		EligibilityType:  b.EligibilityType,
	}
}

// remoteTime accepts the service's timestamps, which may omit the zone
// offset. Zone-less values are read as UTC.
type remoteTime time.Time

var remoteTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.9999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (t *remoteTime) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*t = remoteTime{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*t = remoteTime{}
		return nil
	}
	for _, layout := range remoteTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = remoteTime(parsed)
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", s)
}
