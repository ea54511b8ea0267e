// Package ingest turns an uploaded CSV file into validated candidate records
// and per-line errors.
package ingest

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"eligibility/internal/bulkcheck/models"
	"eligibility/internal/bulkcheck/validation"
	keys "eligibility/pkg/platform/strings"
)

// Required column headers, matched case-insensitively after trimming.
const (
	HeaderLastName                = "last name"
	HeaderDateOfBirth             = "date of birth"
	HeaderNationalInsuranceNumber = "national insurance number"
)

// RequiredHeaders lists the columns every upload must carry, in template order.
var RequiredHeaders = []string{HeaderLastName, HeaderDateOfBirth, HeaderNationalInsuranceNumber}

// DefaultRowCountLimit caps the data rows accepted from one file.
const DefaultRowCountLimit = 1000

const (
	firstDataLine = 2
	utf8BOM       = "\xef\xbb\xbf"
)

// Parser ingests bulk-check CSV files. The zero value is not usable; build
// one with New.
type Parser struct {
	rowCountLimit int
}

// Option configures a Parser.
type Option func(*Parser)

// WithRowCountLimit caps the number of data rows. Non-positive values are ignored.
func WithRowCountLimit(limit int) Option {
	return func(p *Parser) {
		if limit > 0 {
			p.rowCountLimit = limit
		}
	}
}

func New(opts ...Option) *Parser {
	p := &Parser{rowCountLimit: DefaultRowCountLimit}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RowCountLimit returns the configured cap.
func (p *Parser) RowCountLimit() int { return p.rowCountLimit }

// Parse reads the whole file. It never returns a Go error: file-level
// problems land in FatalMessage, row-level ones in Errors.
func (p *Parser) Parse(ctx context.Context, r io.Reader) models.ParseResult {
	var result models.ParseResult

	cr := csv.NewReader(skipBOM(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	headers, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return fatal("Invalid CSV format. Missing required headers.")
	}
	if err != nil {
		return fatal(readErrorMessage(err))
	}
	if len(headers) < len(RequiredHeaders) {
		return fatal("Invalid CSV format. Missing required headers.")
	}
	columns := keys.IndexKeys(headers)
	if missing, ok := keys.FirstMissing(columns, RequiredHeaders); ok {
		return fatal(fmt.Sprintf("Invalid CSV format. Missing required header: '%s'.", missing))
	}

	errs := newRowErrors()

	lineNumber := firstDataLine
	sequence := 1
	for {
		if err := ctx.Err(); err != nil {
			return fatal(readErrorMessage(err))
		}

		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if err != nil && !errors.As(err, &parseErr) {
			return fatal(readErrorMessage(err))
		}

		if sequence > p.rowCountLimit {
			result.FatalMessage = fmt.Sprintf("The file contains too many records. Maximum allowed is %d.", p.rowCountLimit)
			break
		}

		if parseErr != nil {
			errs.add(lineNumber, "Error parsing row: "+parseErr.Err.Error())
		} else if record, missing := buildRecord(fields, columns, sequence); missing != "" {
			errs.add(lineNumber, fmt.Sprintf("Error parsing row: missing field '%s'", missing))
		} else if fieldErrs := validation.Validate(record); len(fieldErrs) > 0 {
			for _, fe := range fieldErrs {
				errs.add(lineNumber, fe.Message)
			}
		} else {
			result.ValidRecords = append(result.ValidRecords, record)
		}

		lineNumber++
		sequence++
	}

	result.Errors = errs.list
	return result
}

// rowErrors collects row errors in arrival order, keeping one entry per
// (line, message) pair.
type rowErrors struct {
	seen map[models.RowError]struct{}
	list []models.RowError
}

func newRowErrors() *rowErrors {
	return &rowErrors{seen: make(map[models.RowError]struct{})}
}

func (e *rowErrors) add(line int, message string) {
	re := models.RowError{LineNumber: line, Message: message}
	if _, dup := e.seen[re]; dup {
		return
	}
	e.seen[re] = struct{}{}
	e.list = append(e.list, re)
}

// buildRecord normalizes one row. missing names the first required column
// the row is too short to contain.
func buildRecord(fields []string, columns map[string]int, sequence int) (record models.CandidateRecord, missing string) {
	get := func(header string) (string, bool) {
		i := columns[header]
		if i >= len(fields) {
			return "", false
		}
		return strings.TrimSpace(fields[i]), true
	}

	values := make(map[string]string, len(RequiredHeaders))
	for _, h := range RequiredHeaders {
		v, ok := get(h)
		if !ok {
			return models.CandidateRecord{}, h
		}
		values[h] = v
	}

	return models.CandidateRecord{
		Sequence:                sequence,
		LastName:                values[HeaderLastName],
		DateOfBirth:             validation.NormalizeDate(values[HeaderDateOfBirth]),
		NationalInsuranceNumber: strings.ToUpper(values[HeaderNationalInsuranceNumber]),
	}, ""
}

func fatal(message string) models.ParseResult {
	return models.ParseResult{FatalMessage: message}
}

func readErrorMessage(err error) string {
	return "Error reading CSV file: " + err.Error()
}

// skipBOM drops a leading UTF-8 byte order mark.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && string(prefix) == utf8BOM {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}
