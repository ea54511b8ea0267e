// Package history lists an organisation's prior bulk checks.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"eligibility/internal/bulkcheck/models"
	id "eligibility/pkg/domain"
)

const DefaultPageSize = 10

var statusLabels = map[string]string{
	"completed":  models.StatusCompleted,
	"inprogress": models.StatusInProgress,
	"notstarted": models.StatusNotStarted,
	"failed":     models.StatusFailed,
}

// MapStatus returns the display label for a raw status. Known statuses match
// case-insensitively, blank maps to Unknown and anything else passes through.
func MapStatus(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return models.StatusUnknown
	}
	if label, ok := statusLabels[strings.ToLower(trimmed)]; ok {
		return label
	}
	return raw
}

// Filter keeps free-school-meals checks only.
func Filter(checks []models.BulkCheckSummary) []models.BulkCheckSummary {
	out := make([]models.BulkCheckSummary, 0, len(checks))
	for _, c := range checks {
		if c.EligibilityType == models.EligibilityTypeFreeSchoolMeals {
			out = append(out, c)
		}
	}
	return out
}

// Sort orders checks newest first, keeping input order for equal dates.
// The slice is sorted in place.
func Sort(checks []models.BulkCheckSummary) {
	slices.SortStableFunc(checks, func(a, b models.BulkCheckSummary) int {
		return b.SubmittedDate.Compare(a.SubmittedDate)
	})
}

// Paginate slices items into a 1-based page. A page past the end has no items.
func Paginate[T any](items []T, page, pageSize int) models.Page[T] {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	total := len(items)
	result := models.Page[T]{
		Items:        []T{},
		Page:         page,
		PageSize:     pageSize,
		TotalRecords: total,
		TotalPages:   (total + pageSize - 1) / pageSize,
	}

	start := (page - 1) * pageSize
	if start >= total {
		return result
	}
	end := min(start+pageSize, total)
	result.Items = append(result.Items, items[start:end]...)
	return result
}

// Searcher fetches every bulk check for an organisation.
type Searcher interface {
	SearchBulkChecks(ctx context.Context, organisationID id.OrganisationID) ([]models.BulkCheckSummary, error)
}

type Service struct {
	searcher Searcher
	logger   *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(searcher Searcher, opts ...Option) (*Service, error) {
	if searcher == nil {
		return nil, fmt.Errorf("searcher is required")
	}
	s := &Service{searcher: searcher}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// List returns one page of the organisation's free-school-meals checks,
// newest first, with display statuses.
func (s *Service) List(ctx context.Context, organisationID id.OrganisationID, page, pageSize int) (models.Page[models.BulkCheckSummary], error) {
	checks, err := s.searcher.SearchBulkChecks(ctx, organisationID)
	if err != nil {
		return models.Page[models.BulkCheckSummary]{}, err
	}

	checks = Filter(checks)
	for i := range checks {
		checks[i].Status = MapStatus(checks[i].Status)
	}
	Sort(checks)

	result := Paginate(checks, page, pageSize)
	if s.logger != nil {
		s.logger.DebugContext(ctx, "bulk check history listed",
			"organisation_id", organisationID.String(),
			"total_records", result.TotalRecords,
			"page", result.Page,
		)
	}
	return result, nil
}
