// Package cache provides an optional response cache for API GET requests.
//
// Two backends implement Store:
//
//   - RedisStore keeps entries in Redis so repeated exports share them.
//   - MemoryStore keeps entries in process memory for the duration of a run.
//
// Entries expire according to the response's Expires header, or a configured
// fallback TTL when the header is missing or unparseable.
//
// # Basic Usage
//
//	store := cache.NewRedisStore(redis.NewClient(&redis.Options{Addr: "localhost:6379"}))
//
//	key := cache.Key{
//		Endpoint:    "/pokemon",
//		QueryParams: url.Values{"offset": []string{"20"}, "limit": []string{"20"}},
//	}
//
//	entry, err := store.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// fetch from the API, then:
//		_ = store.Set(ctx, key, cache.NewEntry(body, resp.StatusCode, resp.Header, cache.DefaultTTL))
//	}
//
// # Metrics
//
//   - pokemon_export_cache_hits_total{backend}
//   - pokemon_export_cache_misses_total{backend}
//   - pokemon_export_cache_errors_total{backend, operation}
package cache
