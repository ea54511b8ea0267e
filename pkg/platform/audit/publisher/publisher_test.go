package publisher

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "eligibility/pkg/platform/audit"
	"eligibility/pkg/platform/audit/store/memory"
	"eligibility/pkg/requestcontext"
)

type failingStore struct{}

func (failingStore) Append(context.Context, audit.Event) error { return errors.New("db down") }

func TestPublisher_StampsEvent(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)

	now := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)
	ctx = requestcontext.WithRequestID(ctx, "req-9")

	pub.Emit(ctx, audit.Event{Action: audit.ActionBulkCheckThrottled, OrganisationID: "org-1"})

	events, err := store.ListByOrganisation(context.Background(), "org-1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.NotEqual(t, uuid.Nil, events[0].ID)
	assert.Equal(t, now, events[0].Timestamp)
	assert.Equal(t, audit.CategorySecurity, events[0].Category)
	assert.Equal(t, "req-9", events[0].RequestID)
}

func TestPublisher_StoreFailureIsLoggedNotReturned(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	pub := NewPublisher(failingStore{}, WithLogger(logger))

	assert.NotPanics(t, func() {
		pub.Emit(context.Background(), audit.Event{Action: audit.ActionBulkCheckDeleted, OrganisationID: "org-1"})
	})
	assert.Contains(t, buf.String(), "audit persistence failed")
	assert.Contains(t, buf.String(), "db down")
}

func TestLogAudit_LiftsAttributes(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := requestcontext.WithRequestID(context.Background(), "req-1")
	audit.LogAudit(ctx, logger, pub, audit.ActionBulkCheckSubmitted,
		"actor", "ops@school.example",
		"organisation_id", "org-7",
		"filename", "pupils.csv",
	)

	events, err := store.ListByOrganisation(context.Background(), "org-7")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "ops@school.example", events[0].Actor)
	assert.Equal(t, "pupils.csv", events[0].Resource)
	assert.Equal(t, "req-1", events[0].RequestID)
	assert.Contains(t, buf.String(), "log_type=audit")
}

func TestMemoryStore_ListRecentNewestFirst(t *testing.T) {
	store := memory.NewInMemoryStore()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	for i := range 3 {
		require.NoError(t, store.Append(ctx, audit.Event{
			Action:         audit.ActionBulkCheckSubmitted,
			OrganisationID: "org",
			Timestamp:      base.Add(time.Duration(i) * time.Minute),
			Detail:         string(rune('a' + i)),
		}))
	}

	events, err := store.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "c", events[0].Detail)
	assert.Equal(t, "b", events[1].Detail)
}
