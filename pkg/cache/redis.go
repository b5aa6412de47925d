// Package cache is a thin Redis-backed read-through cache for user
// reads. A nil *Store is valid and turns every operation into a no-op,
// so the service layer never has to check whether caching is enabled.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/vyapar/pkg/metrics"
)

// Store wraps a Redis client with JSON serialisation.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// New connects a Store. Returns nil (a valid no-op store) when the ping
// fails, so an absent Redis never blocks startup.
func New(ctx context.Context, addr, password string, ttl time.Duration) *Store {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil
	}
	return &Store{rdb: rdb, ttl: ttl}
}

// Get unmarshals the cached value for key into dest.
// Returns false on miss, serialisation failure, or nil store.
func (s *Store) Get(ctx context.Context, key string, dest interface{}) bool {
	if s == nil {
		return false
	}

	val, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		metrics.CacheMisses.WithLabelValues("redis").Inc()
		return false
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		metrics.CacheMisses.WithLabelValues("redis").Inc()
		return false
	}

	metrics.CacheHits.WithLabelValues("redis").Inc()
	return true
}

// Set stores value under key for the configured TTL.
func (s *Store) Set(ctx context.Context, key string, value interface{}) {
	if s == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		return
	}

	_ = s.rdb.Set(ctx, key, data, s.ttl).Err()
}

// Forget drops keys; used to invalidate after writes.
func (s *Store) Forget(ctx context.Context, keys ...string) {
	if s == nil || len(keys) == 0 {
		return
	}
	_ = s.rdb.Del(ctx, keys...).Err()
}

// Close releases the underlying client.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.rdb.Close()
}
