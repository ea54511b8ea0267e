package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	id "eligibility/pkg/domain"
	"eligibility/pkg/platform/sentinel"
)

// storeContract exercises behaviour every Store implementation must share.
func storeContract(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("missing key is not found", func(t *testing.T) {
		_, err := store.Get(ctx, id.NewSessionID(), "bulk_submissions")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("values are scoped by session", func(t *testing.T) {
		a, b := id.NewSessionID(), id.NewSessionID()
		require.NoError(t, store.Set(ctx, a, "bulk_check_url", []byte("a-url")))
		require.NoError(t, store.Set(ctx, b, "bulk_check_url", []byte("b-url")))

		got, err := store.Get(ctx, a, "bulk_check_url")
		require.NoError(t, err)
		assert.Equal(t, "a-url", string(got))
	})

	t.Run("remove clears only that key", func(t *testing.T) {
		s := id.NewSessionID()
		require.NoError(t, store.Set(ctx, s, "one", []byte("1")))
		require.NoError(t, store.Set(ctx, s, "two", []byte("2")))
		require.NoError(t, store.Remove(ctx, s, "one"))

		_, err := store.Get(ctx, s, "one")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
		got, err := store.Get(ctx, s, "two")
		require.NoError(t, err)
		assert.Equal(t, "2", string(got))
	})

	t.Run("remove of absent key is not an error", func(t *testing.T) {
		assert.NoError(t, store.Remove(ctx, id.NewSessionID(), "nothing"))
	})

	t.Run("json helpers round trip", func(t *testing.T) {
		type counter struct {
			AttemptCount int       `json:"attempt_count"`
			StartedAt    time.Time `json:"started_at"`
		}
		s := id.NewSessionID()
		want := counter{AttemptCount: 3, StartedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)}
		require.NoError(t, SetJSON(ctx, store, s, "bulk_submissions", want))

		got, found, err := GetJSON[counter](ctx, store, s, "bulk_submissions")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, want.AttemptCount, got.AttemptCount)
		assert.True(t, want.StartedAt.Equal(got.StartedAt))

		_, found, err = GetJSON[counter](ctx, store, id.NewSessionID(), "bulk_submissions")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("undecodable value is invalid state", func(t *testing.T) {
		s := id.NewSessionID()
		require.NoError(t, store.Set(ctx, s, "bulk_submissions", []byte("{not json")))
		_, _, err := GetJSON[map[string]int](ctx, store, s, "bulk_submissions")
		assert.ErrorIs(t, err, sentinel.ErrInvalidState)
	})
}

type InMemoryStoreSuite struct {
	suite.Suite
	now   time.Time
	store *InMemoryStore
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.store = NewInMemoryStore(WithTTL(20*time.Minute), WithClock(func() time.Time { return s.now }))
}

func (s *InMemoryStoreSuite) TestContract() {
	storeContract(s.T(), s.store)
}

func (s *InMemoryStoreSuite) TestEntriesExpireAfterTTL() {
	ctx := context.Background()
	sessionID := id.NewSessionID()
	s.Require().NoError(s.store.Set(ctx, sessionID, "bulk_check_url", []byte("u")))

	s.now = s.now.Add(19 * time.Minute)
	_, err := s.store.Get(ctx, sessionID, "bulk_check_url")
	s.NoError(err)

	s.now = s.now.Add(time.Minute)
	_, err = s.store.Get(ctx, sessionID, "bulk_check_url")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestSetEvictsExpiredSessions() {
	ctx := context.Background()
	stale, fresh := id.NewSessionID(), id.NewSessionID()
	s.Require().NoError(s.store.Set(ctx, stale, "bulk_submissions", []byte("1")))

	s.now = s.now.Add(20 * time.Minute)
	s.Require().NoError(s.store.Set(ctx, fresh, "bulk_submissions", []byte("1")))

	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	s.NotContains(s.store.entries, stale)
	s.Contains(s.store.entries, fresh)
}

func (s *InMemoryStoreSuite) TestReturnedBytesAreCopies() {
	ctx := context.Background()
	sessionID := id.NewSessionID()
	s.Require().NoError(s.store.Set(ctx, sessionID, "k", []byte("abc")))

	got, err := s.store.Get(ctx, sessionID, "k")
	s.Require().NoError(err)
	got[0] = 'z'

	again, err := s.store.Get(ctx, sessionID, "k")
	s.Require().NoError(err)
	s.Equal("abc", string(again))
}

func (s *InMemoryStoreSuite) TestConcurrentWrites() {
	ctx := context.Background()
	sessionID := id.NewSessionID()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = s.store.Set(ctx, sessionID, "k", []byte{byte(n)})
			_, _ = s.store.Get(ctx, sessionID, "k")
		}(i)
	}
	wg.Wait()

	_, err := s.store.Get(ctx, sessionID, "k")
	s.NoError(err)
}
