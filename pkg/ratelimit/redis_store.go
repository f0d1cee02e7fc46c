package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on a shared Redis counter, coordinating
// windows across horizontally scaled instances. INCR is atomic on the
// server, so concurrent requests for the same key never lose an increment.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithKeyPrefix namespaces rate limit keys in Redis. Default "ratelimit:".
func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.keyPrefix = prefix
		}
	}
}

// NewRedisStore creates a Store backed by the given Redis client.
func NewRedisStore(client *redis.Client, opts ...RedisStoreOption) *RedisStore {
	if client == nil {
		panic("ratelimit: redis client is required")
	}

	s := &RedisStore{
		client:    client,
		keyPrefix: "ratelimit:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(key string) string {
	return s.keyPrefix + key
}

// IncrementAndGet atomically increments the counter, starting a fresh
// window with a TTL when the key is new.
func (s *RedisStore) IncrementAndGet(ctx context.Context, key string, incr int, window time.Duration) (int64, time.Duration, error) {
	rkey := s.key(key)

	pipe := s.client.TxPipeline()
	incrCmd := pipe.IncrBy(ctx, rkey, int64(incr))
	ttlCmd := pipe.PTTL(ctx, rkey)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, err
	}

	current := incrCmd.Val()
	ttl := ttlCmd.Val()

	// A fresh key has no expiry yet; claim the window. PTTL returns a
	// negative duration for keys without TTL.
	if ttl < 0 {
		if err := s.client.PExpire(ctx, rkey, window).Err(); err != nil {
			return 0, 0, err
		}
		ttl = window
	}

	return current, ttl, nil
}

// Get returns the current counter value and TTL for the given key.
func (s *RedisStore) Get(ctx context.Context, key string) (int64, time.Duration, error) {
	rkey := s.key(key)

	pipe := s.client.Pipeline()
	getCmd := pipe.Get(ctx, rkey)
	ttlCmd := pipe.PTTL(ctx, rkey)
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return 0, 0, err
	}

	current, err := getCmd.Int64()
	if err == redis.Nil {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, err
	}

	ttl := ttlCmd.Val()
	if ttl < 0 {
		ttl = 0
	}

	return current, ttl, nil
}

// Delete removes the given key from the store.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}
