// Package export turns check-service outcomes into user-facing rows and CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"eligibility/internal/bulkcheck/models"
)

// Outcome labels shown to operators.
const (
	LabelParentNotFound = "Information does not match records"
	LabelEligible       = "Entitled"
	LabelNotEligible    = "Not Entitled"
	LabelError          = "Try again"
)

// Header is the first line of every basic export.
var Header = []string{"last name", "date of birth", "national insurance number", "outcome"}

const filenameLayout = "20060102150405"

// Label maps a raw outcome code to its display label. Unknown and empty
// codes are returned unchanged.
func Label(code string) string {
	switch code {
	case models.OutcomeParentNotFound:
		return LabelParentNotFound
	case models.OutcomeEligible:
		return LabelEligible
	case models.OutcomeNotEligible:
		return LabelNotEligible
	case models.OutcomeError:
		return LabelError
	default:
		return code
	}
}

// ToExportRows builds basic export rows in input order.
func ToExportRows(rows []models.OutcomeRow) []models.ExportRow {
	out := make([]models.ExportRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.ExportRow{
			Kind: models.ExportKindBasic,
			Basic: &models.BasicExportRow{
				LastName:                r.LastName,
				DateOfBirth:             r.DateOfBirth,
				NationalInsuranceNumber: r.NationalInsuranceNumber,
				Outcome:                 Label(r.Status),
			},
		})
	}
	return out
}

// WriteCSV writes the header and one line per basic row. Rows of any other
// kind are an error; nothing past the failing row is written.
func WriteCSV(w io.Writer, rows []models.ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range rows {
		if row.Kind != models.ExportKindBasic || row.Basic == nil {
			cw.Flush()
			return fmt.Errorf("row %d: unsupported export kind %q", i+1, row.Kind)
		}
		b := row.Basic
		if err := cw.Write([]string{b.LastName, b.DateOfBirth, b.NationalInsuranceNumber, b.Outcome}); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Filename names a basic export generated at now.
func Filename(now time.Time) string {
	return "fsm-basic-outcomes-" + now.UTC().Format(filenameLayout) + ".csv"
}
