package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// StateCache is the shared response cache seeded during bootstrap.
// Values are stored as JSON under their canonical fetch paths
// (e.g. "/auth/me") so any later reader sees exactly what the
// sequencer committed.
type StateCache struct {
	client redis.UniversalClient
	prefix string
}

// NewStateCache creates a StateCache with the default prefix.
func NewStateCache(client redis.UniversalClient) *StateCache {
	return &StateCache{client: client, prefix: "state:"}
}

// ErrCacheMiss is returned by Get when the key is absent.
var ErrCacheMiss = errors.New("state cache miss")

func (c *StateCache) Seed(ctx context.Context, key string, value any, ttl time.Duration) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}
	return c.client.Set(ctx, c.prefix+key, data, ttl).Err()
}

func (c *StateCache) Get(ctx context.Context, key string, dest any) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}
	data, err := c.client.Get(ctx, c.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return fmt.Errorf("redis get: %w", err)
	}
	if unmarshalErr := json.Unmarshal([]byte(data), dest); unmarshalErr != nil {
		return fmt.Errorf("unmarshal cache value: %w", unmarshalErr)
	}
	return nil
}

func (c *StateCache) Purge(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = c.prefix + k
	}
	return c.client.Del(ctx, prefixed...).Err()
}
