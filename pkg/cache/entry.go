package cache

import (
	"net/http"
	"time"
)

// DefaultTTL is the fallback TTL when no expires header is present.
const DefaultTTL = 5 * time.Minute

// Entry represents a cached API response body.
type Entry struct {
	// Data is the response body
	Data []byte `json:"data"`

	// StatusCode is the HTTP status code of the cached response
	StatusCode int `json:"status_code"`

	// Expires is when the entry becomes stale
	Expires time.Time `json:"expires"`

	// CachedAt is when we cached this response
	CachedAt time.Time `json:"cached_at"`
}

// NewEntry builds an entry from a response. The expiry comes from the Expires
// header; fallback is used when the header is absent or unparseable.
func NewEntry(body []byte, statusCode int, header http.Header, fallback time.Duration) *Entry {
	now := time.Now()
	return &Entry{
		Data:       body,
		StatusCode: statusCode,
		Expires:    parseExpires(header, now, fallback),
		CachedAt:   now,
	}
}

// IsExpired returns true if the cache entry has expired.
func (e *Entry) IsExpired() bool {
	return time.Now().After(e.Expires)
}

// TTL returns the time until expiration.
// Returns 0 if already expired.
func (e *Entry) TTL() time.Duration {
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}

func parseExpires(header http.Header, now time.Time, fallback time.Duration) time.Time {
	if fallback <= 0 {
		fallback = DefaultTTL
	}

	expiresStr := header.Get("Expires")
	if expiresStr == "" {
		return now.Add(fallback)
	}

	expires, err := http.ParseTime(expiresStr)
	if err != nil {
		return now.Add(fallback)
	}

	// Already expired upstream, nothing to keep.
	if expires.Before(now) {
		return now
	}

	return expires
}
