package memory

import (
	"context"
	"slices"
	"sync"

	audit "eligibility/pkg/platform/audit"
)

// InMemoryStore keeps audit events per organisation. Used when no database is
// configured and in tests.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[string][]audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[string][]audit.Event)}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[string][]audit.Event)
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.OrganisationID] = append(s.events[event.OrganisationID], event)
	return nil
}

// ListByOrganisation returns an organisation's events, newest first.
func (s *InMemoryStore) ListByOrganisation(_ context.Context, organisationID string) ([]audit.Event, error) {
	s.mu.RLock()
	events := append([]audit.Event{}, s.events[organisationID]...)
	s.mu.RUnlock()

	sortNewestFirst(events)
	return events, nil
}

// ListRecent returns the most recent limit events across all organisations.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	var all []audit.Event
	for _, orgEvents := range s.events {
		all = append(all, orgEvents...)
	}
	s.mu.RUnlock()

	sortNewestFirst(all)
	if limit >= 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func sortNewestFirst(events []audit.Event) {
	slices.SortStableFunc(events, func(a, b audit.Event) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
}
