package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// SessionStore keeps one device's session in a single hash.
// Key format: medlink:session:<device_id>
type SessionStore struct {
	client *redis.Client
	key    string
}

// NewSessionStore creates a SessionStore for deviceID on the given client.
func NewSessionStore(client *redis.Client, deviceID string) *SessionStore {
	return &SessionStore{client: client, key: "medlink:session:" + deviceID}
}

func (s *SessionStore) Get(ctx context.Context, field string) (string, bool, error) {
	v, err := s.client.HGet(ctx, s.key, field).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("session get %s: %w", field, err)
	}
	return v, true, nil
}

func (s *SessionStore) Set(ctx context.Context, field, value string) error {
	if err := s.client.HSet(ctx, s.key, field, value).Err(); err != nil {
		return fmt.Errorf("session set %s: %w", field, err)
	}
	return nil
}

func (s *SessionStore) Remove(ctx context.Context, field string) error {
	if err := s.client.HDel(ctx, s.key, field).Err(); err != nil {
		return fmt.Errorf("session remove %s: %w", field, err)
	}
	return nil
}
