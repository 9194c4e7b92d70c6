package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const backendRedis = "redis"

// RedisStore handles caching operations with Redis backend.
type RedisStore struct {
	redis *redis.Client
}

// NewRedisStore creates a new cache store with Redis backend.
func NewRedisStore(redisClient *redis.Client) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{
		redis: redisClient,
	}
}

// Get retrieves a cache entry by key.
// Returns ErrCacheMiss if the key doesn't exist or entry is expired.
func (s *RedisStore) Get(ctx context.Context, key Key) (*Entry, error) {
	data, err := s.redis.Get(ctx, key.String()).Bytes()
	if err != nil {
		if err == redis.Nil {
			CacheMisses.WithLabelValues(backendRedis).Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues(backendRedis, "get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		CacheErrors.WithLabelValues(backendRedis, "get").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	if entry.IsExpired() {
		_ = s.Delete(ctx, key)
		CacheMisses.WithLabelValues(backendRedis).Inc()
		return nil, ErrCacheMiss
	}

	CacheHits.WithLabelValues(backendRedis).Inc()
	return &entry, nil
}

// Set stores a cache entry with TTL based on the entry's Expires field.
// The entry will be automatically removed from Redis when it expires.
func (s *RedisStore) Set(ctx context.Context, key Key, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}

	ttl := entry.TTL()
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(entry)
	if err != nil {
		CacheErrors.WithLabelValues(backendRedis, "set").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := s.redis.Set(ctx, key.String(), data, ttl).Err(); err != nil {
		CacheErrors.WithLabelValues(backendRedis, "set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// Delete removes a cache entry.
func (s *RedisStore) Delete(ctx context.Context, key Key) error {
	if err := s.redis.Del(ctx, key.String()).Err(); err != nil {
		CacheErrors.WithLabelValues(backendRedis, "delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}

	return nil
}
