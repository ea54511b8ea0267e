package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	id "eligibility/pkg/domain"
	"eligibility/pkg/platform/sentinel"
)

const sessionKeyPrefix = "bulkcheck:session:"

// RedisStore keeps session values in Redis so every replica sees the same
// throttle counters and job pointers.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithRedisTTL sets the expiry refreshed on every write. Zero means no expiry.
func WithRedisTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

func NewRedisStore(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func redisKey(sessionID id.SessionID, key string) string {
	return sessionKeyPrefix + sessionID.String() + ":" + key
}

func (s *RedisStore) Get(ctx context.Context, sessionID id.SessionID, key string) ([]byte, error) {
	raw, err := s.client.Get(ctx, redisKey(sessionID, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session value: %w", errors.Join(sentinel.ErrUnavailable, err))
	}
	return raw, nil
}

func (s *RedisStore) Set(ctx context.Context, sessionID id.SessionID, key string, value []byte) error {
	if err := s.client.Set(ctx, redisKey(sessionID, key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session value: %w", errors.Join(sentinel.ErrUnavailable, err))
	}
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, sessionID id.SessionID, key string) error {
	if err := s.client.Del(ctx, redisKey(sessionID, key)).Err(); err != nil {
		return fmt.Errorf("redis delete session value: %w", errors.Join(sentinel.ErrUnavailable, err))
	}
	return nil
}
