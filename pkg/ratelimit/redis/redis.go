// Package redis provides a CounterStore backed by redis, for
// deployments where rate-limit counters must be shared across
// instances. INCR and EXPIRE run in a pipeline so the window is opened
// atomically with the first increment.
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// keyPrefix namespaces limiter counters in the shared keyspace.
const keyPrefix = "taskriser:ratelimit:"

// Store is a redis-backed counter store.
type Store struct {
	client *goredis.Client
}

// New creates a store on an existing redis client.
func New(client *goredis.Client) *Store {
	return &Store{client: client}
}

// Incr bumps the counter for key. The expiry is set only when the
// increment created the key, so the window length is fixed from the
// first request.
func (s *Store) Incr(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	rkey := keyPrefix + key

	var incr *goredis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		incr = pipe.Incr(ctx, rkey)
		pipe.ExpireNX(ctx, rkey, window)
		return nil
	})
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("incrementing counter: %w", err)
	}

	ttl, err := s.client.TTL(ctx, rkey).Result()
	if err != nil || ttl < 0 {
		ttl = window
	}

	return int(incr.Val()), time.Now().Add(ttl), nil
}

// Reset discards the counter for key.
func (s *Store) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("deleting counter: %w", err)
	}
	return nil
}
