package cache

import (
	"net/url"
	"testing"
)

func TestKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want string
	}{
		{
			name: "simple endpoint no params",
			key:  Key{Endpoint: "/pokemon"},
			want: "pokemon-export:pokemon",
		},
		{
			name: "nested endpoint",
			key:  Key{Endpoint: "/api/v2/pokemon/"},
			want: "pokemon-export:api/v2/pokemon",
		},
		{
			name: "query params sorted",
			key: Key{
				Endpoint: "/pokemon",
				QueryParams: url.Values{
					"offset": []string{"20"},
					"limit":  []string{"20"},
				},
			},
			want: "pokemon-export:pokemon:limit=20:offset=20",
		},
		{
			name: "origin included",
			key: Key{
				Origin:      "https://pokeapi.co",
				Endpoint:    "/api/v2/pokemon",
				QueryParams: url.Values{"limit": []string{"20"}},
			},
			want: "pokemon-export:https://pokeapi.co:api/v2/pokemon:limit=20",
		},
		{
			name: "empty endpoint",
			key:  Key{},
			want: "pokemon-export",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKeyFromURL(t *testing.T) {
	u, err := url.Parse("http://localhost:8080/api/v2/pokemon?offset=40&limit=20")
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}

	key := KeyFromURL(u)
	if want := "pokemon-export:http://localhost:8080:api/v2/pokemon:limit=20:offset=40"; key.String() != want {
		t.Errorf("String() = %q, want %q", key.String(), want)
	}
}

func TestKeyFromURL_DistinctHosts(t *testing.T) {
	tests := []struct {
		name string
		a, b string
	}{
		{name: "different host", a: "http://a.test/pokemon", b: "http://b.test/pokemon"},
		{name: "different port", a: "http://localhost:8080/pokemon", b: "http://localhost:8081/pokemon"},
		{name: "different scheme", a: "http://api.test/pokemon", b: "https://api.test/pokemon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ua, err := url.Parse(tt.a)
			if err != nil {
				t.Fatalf("parse url: %v", err)
			}
			ub, err := url.Parse(tt.b)
			if err != nil {
				t.Fatalf("parse url: %v", err)
			}

			if KeyFromURL(ua).String() == KeyFromURL(ub).String() {
				t.Errorf("%s and %s share cache key %q", tt.a, tt.b, KeyFromURL(ua).String())
			}
		})
	}
}

func TestKey_Deterministic(t *testing.T) {
	a := Key{Endpoint: "/pokemon", QueryParams: url.Values{"a": {"1"}, "b": {"2"}, "c": {"3"}}}
	b := Key{Endpoint: "/pokemon", QueryParams: url.Values{"c": {"3"}, "a": {"1"}, "b": {"2"}}}

	for i := 0; i < 10; i++ {
		if a.String() != b.String() {
			t.Fatalf("keys differ: %q vs %q", a.String(), b.String())
		}
	}
}
