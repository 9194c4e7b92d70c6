package cache

import (
	"net/http"
	"testing"
	"time"
)

func TestEntry_IsExpired(t *testing.T) {
	tests := []struct {
		name    string
		expires time.Time
		want    bool
	}{
		{name: "future expiry", expires: time.Now().Add(1 * time.Hour), want: false},
		{name: "past expiry", expires: time.Now().Add(-1 * time.Hour), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := &Entry{Expires: tt.expires}
			if got := entry.IsExpired(); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEntry_TTL(t *testing.T) {
	entry := &Entry{Expires: time.Now().Add(-1 * time.Minute)}
	if ttl := entry.TTL(); ttl != 0 {
		t.Errorf("TTL() of expired entry = %v, want 0", ttl)
	}

	entry = &Entry{Expires: time.Now().Add(10 * time.Minute)}
	if ttl := entry.TTL(); ttl <= 9*time.Minute || ttl > 10*time.Minute {
		t.Errorf("TTL() = %v, want ~10m", ttl)
	}
}

func TestNewEntry_Expires(t *testing.T) {
	future := time.Now().Add(1 * time.Hour).UTC().Truncate(time.Second)

	tests := []struct {
		name     string
		header   http.Header
		fallback time.Duration
		check    func(t *testing.T, e *Entry)
	}{
		{
			name:     "expires header honoured",
			header:   http.Header{"Expires": []string{future.Format(http.TimeFormat)}},
			fallback: time.Minute,
			check: func(t *testing.T, e *Entry) {
				if !e.Expires.Equal(future) {
					t.Errorf("Expires = %v, want %v", e.Expires, future)
				}
			},
		},
		{
			name:     "missing header uses fallback",
			header:   http.Header{},
			fallback: 2 * time.Minute,
			check: func(t *testing.T, e *Entry) {
				if ttl := e.TTL(); ttl <= time.Minute || ttl > 2*time.Minute {
					t.Errorf("TTL() = %v, want ~2m", ttl)
				}
			},
		},
		{
			name:     "invalid header uses default ttl",
			header:   http.Header{"Expires": []string{"not a date"}},
			fallback: 0,
			check: func(t *testing.T, e *Entry) {
				if ttl := e.TTL(); ttl <= DefaultTTL-time.Minute || ttl > DefaultTTL {
					t.Errorf("TTL() = %v, want ~%v", ttl, DefaultTTL)
				}
			},
		},
		{
			name:     "past expires header",
			header:   http.Header{"Expires": []string{time.Now().Add(-1 * time.Hour).Format(http.TimeFormat)}},
			fallback: time.Minute,
			check: func(t *testing.T, e *Entry) {
				if ttl := e.TTL(); ttl != 0 {
					t.Errorf("TTL() = %v, want 0", ttl)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := NewEntry([]byte(`{"count":1}`), http.StatusOK, tt.header, tt.fallback)
			if string(entry.Data) != `{"count":1}` {
				t.Errorf("Data = %q", entry.Data)
			}
			if entry.StatusCode != http.StatusOK {
				t.Errorf("StatusCode = %d, want 200", entry.StatusCode)
			}
			tt.check(t, entry)
		})
	}
}
