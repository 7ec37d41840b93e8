package oauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// StateTTL bounds how long a sign-in may take between redirect and callback.
const StateTTL = 10 * time.Minute

const stateKeyPrefix = "oauth:state:"

// RedisStateStore keeps issued OAuth state values in Redis. Each value can be
// consumed once.
type RedisStateStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStateStore creates a store on client using StateTTL.
func NewRedisStateStore(client *redis.Client) *RedisStateStore {
	return &RedisStateStore{client: client, ttl: StateTTL}
}

// Save records state as issued.
func (s *RedisStateStore) Save(ctx context.Context, state string) error {
	if err := s.client.Set(ctx, stateKeyPrefix+state, 1, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save oauth state: %w", err)
	}
	return nil
}

// Consume reports whether state was issued and not yet used, and removes it.
func (s *RedisStateStore) Consume(ctx context.Context, state string) (bool, error) {
	if state == "" {
		return false, nil
	}
	err := s.client.GetDel(ctx, stateKeyPrefix+state).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to consume oauth state: %w", err)
	}
	return true, nil
}
