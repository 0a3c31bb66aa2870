package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"quizzz-client/internal/domain"
)

// SessionStore keeps draft and play sessions in Redis so they survive
// between CLI invocations and are shared across machines using the same
// instance. A zero TTL keeps sessions until deleted.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Save(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, s.key(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session %s: %w", key, err)
	}
	return nil
}

func (s *SessionStore) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", key, err)
	}
	return data, nil
}

func (s *SessionStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("delete session %s: %w", key, err)
	}
	return nil
}

func (s *SessionStore) key(key string) string {
	return "quizzz:session:" + key
}
