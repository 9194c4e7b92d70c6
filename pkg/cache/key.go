package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// KeyPrefix namespaces all cache keys.
const KeyPrefix = "pokemon-export"

// Key identifies a cached response.
type Key struct {
	// Origin is the scheme and host (e.g. "https://pokeapi.co")
	Origin string

	// Endpoint is the request path (e.g. "/api/v2/pokemon")
	Endpoint string

	// QueryParams are the query parameters (e.g. {"offset": "20"})
	QueryParams url.Values
}

// KeyFromURL builds a Key from a request URL.
func KeyFromURL(u *url.URL) Key {
	origin := u.Host
	if u.Scheme != "" {
		origin = u.Scheme + "://" + u.Host
	}
	return Key{
		Origin:      origin,
		Endpoint:    u.Path,
		QueryParams: u.Query(),
	}
}

// String generates a deterministic cache key string.
// Format: pokemon-export:origin:endpoint:query1=val1:query2=val2
//
// Example:
//
//	pokemon-export:https://pokeapi.co:api/v2/pokemon:limit=20:offset=20
func (k Key) String() string {
	parts := []string{KeyPrefix}

	if k.Origin != "" {
		parts = append(parts, k.Origin)
	}

	endpoint := strings.Trim(k.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	// Sorted for determinism
	if len(k.QueryParams) > 0 {
		queryKeys := make([]string, 0, len(k.QueryParams))
		for key := range k.QueryParams {
			queryKeys = append(queryKeys, key)
		}
		sort.Strings(queryKeys)

		for _, key := range queryKeys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, k.QueryParams.Get(key)))
		}
	}

	return strings.Join(parts, ":")
}
