package session

import (
	"context"
	"sync"
	"time"

	id "eligibility/pkg/domain"
	"eligibility/pkg/platform/sentinel"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// InMemoryStore keeps session values in process. Entries expire ttl after
// their last write, mirroring the Redis store; every Set evicts whatever has
// expired.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[id.SessionID]map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// MemoryOption configures an InMemoryStore.
type MemoryOption func(*InMemoryStore)

// WithTTL sets the idle lifetime of an entry. Zero keeps entries forever.
func WithTTL(ttl time.Duration) MemoryOption {
	return func(s *InMemoryStore) {
		s.ttl = ttl
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *InMemoryStore) {
		s.now = now
	}
}

func NewInMemoryStore(opts ...MemoryOption) *InMemoryStore {
	s := &InMemoryStore{
		entries: make(map[id.SessionID]map[string]memoryEntry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemoryStore) Get(_ context.Context, sessionID id.SessionID, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[sessionID][key]
	if !ok || s.expired(entry) {
		return nil, sentinel.ErrNotFound
	}
	return append([]byte(nil), entry.value...), nil
}

func (s *InMemoryStore) Set(_ context.Context, sessionID id.SessionID, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep()
	values, ok := s.entries[sessionID]
	if !ok {
		values = make(map[string]memoryEntry)
		s.entries[sessionID] = values
	}
	entry := memoryEntry{value: append([]byte(nil), value...)}
	if s.ttl > 0 {
		entry.expiresAt = s.now().Add(s.ttl)
	}
	values[key] = entry
	return nil
}

func (s *InMemoryStore) Remove(_ context.Context, sessionID id.SessionID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, ok := s.entries[sessionID]
	if !ok {
		return nil
	}
	delete(values, key)
	if len(values) == 0 {
		delete(s.entries, sessionID)
	}
	return nil
}

// sweep drops expired entries and emptied sessions. Callers hold the write lock.
func (s *InMemoryStore) sweep() {
	if s.ttl <= 0 {
		return
	}
	for sessionID, values := range s.entries {
		for key, entry := range values {
			if s.expired(entry) {
				delete(values, key)
			}
		}
		if len(values) == 0 {
			delete(s.entries, sessionID)
		}
	}
}

func (s *InMemoryStore) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt)
}
