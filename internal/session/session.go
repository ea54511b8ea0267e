// Package session keeps small per-session values (throttle counters, the
// current job's status URL) keyed by session id.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	id "eligibility/pkg/domain"
	"eligibility/pkg/platform/sentinel"
)

// Store is a key-value store scoped by session id. Implementations are safe
// for concurrent use. Get returns sentinel.ErrNotFound for absent keys.
type Store interface {
	Get(ctx context.Context, sessionID id.SessionID, key string) ([]byte, error)
	Set(ctx context.Context, sessionID id.SessionID, key string, value []byte) error
	Remove(ctx context.Context, sessionID id.SessionID, key string) error
}

// GetJSON decodes the value under key into T. found is false when the key is absent.
func GetJSON[T any](ctx context.Context, store Store, sessionID id.SessionID, key string) (value T, found bool, err error) {
	raw, err := store.Get(ctx, sessionID, key)
	if errors.Is(err, sentinel.ErrNotFound) {
		return value, false, nil
	}
	if err != nil {
		return value, false, err
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		return value, false, fmt.Errorf("decode session value %q: %w", key, errors.Join(sentinel.ErrInvalidState, err))
	}
	return value, true, nil
}

// SetJSON encodes value and stores it under key.
func SetJSON[T any](ctx context.Context, store Store, sessionID id.SessionID, key string, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode session value %q: %w", key, err)
	}
	return store.Set(ctx, sessionID, key, raw)
}
