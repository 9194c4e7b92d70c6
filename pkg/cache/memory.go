package cache

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const backendMemory = "memory"

// MemoryStore keeps entries in process memory.
type MemoryStore struct {
	items *gocache.Cache
}

// NewMemoryStore creates an in-memory store. cleanupInterval controls how
// often expired entries are purged; zero disables the janitor.
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	return &MemoryStore{
		items: gocache.New(gocache.NoExpiration, cleanupInterval),
	}
}

// Get retrieves a cache entry by key.
func (s *MemoryStore) Get(_ context.Context, key Key) (*Entry, error) {
	v, ok := s.items.Get(key.String())
	if !ok {
		CacheMisses.WithLabelValues(backendMemory).Inc()
		return nil, ErrCacheMiss
	}

	entry, ok := v.(*Entry)
	if !ok {
		CacheErrors.WithLabelValues(backendMemory, "get").Inc()
		return nil, ErrInvalidEntry
	}

	if entry.IsExpired() {
		s.items.Delete(key.String())
		CacheMisses.WithLabelValues(backendMemory).Inc()
		return nil, ErrCacheMiss
	}

	CacheHits.WithLabelValues(backendMemory).Inc()
	return entry, nil
}

// Set stores a cache entry until its Expires time.
func (s *MemoryStore) Set(_ context.Context, key Key, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}

	ttl := entry.TTL()
	if ttl <= 0 {
		return nil
	}

	s.items.Set(key.String(), entry, ttl)
	return nil
}

// Delete removes a cache entry.
func (s *MemoryStore) Delete(_ context.Context, key Key) error {
	s.items.Delete(key.String())
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	return s.items.ItemCount()
}
