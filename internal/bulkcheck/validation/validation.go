// Package validation holds the per-row rules applied to every candidate record.
package validation

import (
	"regexp"
	"strings"

	"eligibility/internal/bulkcheck/models"
)

// Messages shown to operators against the offending CSV line.
const (
	MessageLastNameRequired = "Last name is required"
	MessageDateOfBirth      = "Date of birth is required: - Use the format YYYY-MM-DD or DD/MM/YYYY"
	MessageNationalInsNo    = "National Insurance number should contain no more than 9 alphanumeric characters and be in the correct format"
)

// Field names reported in FieldError.
const (
	FieldLastName                = "last_name"
	FieldDateOfBirth             = "date_of_birth"
	FieldNationalInsuranceNumber = "national_insurance_number"
)

var niPattern = regexp.MustCompile(`(?i)^[A-Z0-9]{2}\d{6}[A-D]?$`)

// FieldError is one failed rule.
type FieldError struct {
	Field   string
	Message string
}

// Validate applies the name, date-of-birth and NI rules in that order and
// returns every failure. An empty result means the record is valid.
func Validate(record models.CandidateRecord) []FieldError {
	var errs []FieldError

	if strings.TrimSpace(record.LastName) == "" {
		errs = append(errs, FieldError{Field: FieldLastName, Message: MessageLastNameRequired})
	}
	if _, ok := ParseDate(record.DateOfBirth); !ok {
		errs = append(errs, FieldError{Field: FieldDateOfBirth, Message: MessageDateOfBirth})
	}
	if !ValidNationalInsuranceNumber(record.NationalInsuranceNumber) {
		errs = append(errs, FieldError{Field: FieldNationalInsuranceNumber, Message: MessageNationalInsNo})
	}

	return errs
}

// ValidNationalInsuranceNumber reports whether ni is a well-formed NI number.
func ValidNationalInsuranceNumber(ni string) bool {
	ni = strings.TrimSpace(ni)
	return ni != "" && niPattern.MatchString(ni)
}
