package redis

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// newTestStore connects to the redis named by TASKRISER_TEST_REDIS_ADDR
// or skips the test.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	addr := os.Getenv("TASKRISER_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TASKRISER_TEST_REDIS_ADDR not set")
	}
	client := goredis.NewClient(&goredis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })
	return New(client)
}

func TestIncrCounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	key := "test-incr-" + t.Name()
	defer s.Reset(ctx, key)

	for i := 1; i <= 3; i++ {
		count, resetAt, err := s.Incr(ctx, key, time.Minute)
		if err != nil {
			t.Fatalf("Incr: %v", err)
		}
		if count != i {
			t.Errorf("count = %d, want %d", count, i)
		}
		if !resetAt.After(time.Now()) {
			t.Errorf("resetAt %v not in the future", resetAt)
		}
	}
}

func TestIncrWindowExpiry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	key := "test-expiry-" + t.Name()
	defer s.Reset(ctx, key)

	s.Incr(ctx, key, time.Second)
	s.Incr(ctx, key, time.Second)
	time.Sleep(1100 * time.Millisecond)

	count, _, err := s.Incr(ctx, key, time.Second)
	if err != nil {
		t.Fatalf("Incr: %v", err)
	}
	if count != 1 {
		t.Errorf("count after expiry = %d, want 1", count)
	}
}

func TestReset(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	key := "test-reset-" + t.Name()

	s.Incr(ctx, key, time.Minute)
	if err := s.Reset(ctx, key); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	count, _, _ := s.Incr(ctx, key, time.Minute)
	if count != 1 {
		t.Errorf("count after reset = %d, want 1", count)
	}
}
