// Package testutil provides testing utilities for the record API client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/brianvoe/gofakeit/v5"
)

// MockAPIResponse defines the behavior for a mock endpoint response.
type MockAPIResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
}

// MockAPI is a configurable mock of the paginated record API.
//
// By default it serves Total records: the discovery call (no query) returns
// {"count": Total, ...} and paged calls return the slice selected by
// offset and limit.
type MockAPI struct {
	server *httptest.Server

	mu        sync.RWMutex
	handlers  map[string]func(w http.ResponseWriter, r *http.Request)
	records   []map[string]any
	omitCount bool
	failPage  int

	// Tracking
	requests []string
}

// NewMockAPI creates a mock API serving total generated records.
func NewMockAPI(total int) *MockAPI {
	mock := &MockAPI{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
		records:  GenerateRecords(total),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requests = append(mock.requests, r.URL.RequestURI())
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// fakerMu guards gofakeit's package-level generator between Seed and Word.
var fakerMu sync.Mutex

// GenerateRecords builds n records shaped like the pokemon list endpoint.
// The same n always yields the same records.
func GenerateRecords(n int) []map[string]any {
	fakerMu.Lock()
	defer fakerMu.Unlock()

	gofakeit.Seed(42)
	records := make([]map[string]any, n)
	for i := range records {
		records[i] = map[string]any{
			"name": gofakeit.Word(),
			"url":  fmt.Sprintf("https://pokeapi.co/api/v2/pokemon/%d/", i+1),
		}
	}
	return records
}

// URL returns the mock server base URL.
func (m *MockAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockAPI) Close() {
	m.server.Close()
}

// Reset clears request tracking.
func (m *MockAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
}

// SetRecords replaces the served records.
func (m *MockAPI) SetRecords(records []map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = records
}

// OmitCount makes the discovery response leave out the count field.
func (m *MockAPI) OmitCount() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.omitCount = true
}

// FailPage makes the n-th paged request (1-based) return 500.
func (m *MockAPI) FailPage(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failPage = n
}

// SetHandler sets a custom handler for a specific path.
func (m *MockAPI) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockAPI) SetResponse(path string, resp MockAPIResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// Requests returns the request URIs received so far, in order.
func (m *MockAPI) Requests() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.requests))
	copy(out, m.requests)
	return out
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockAPI) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.requests)
}

// GetPageRequestCount returns the number of requests carrying a query string.
func (m *MockAPI) GetPageRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, uri := range m.requests {
		if hasQuery(uri) {
			n++
		}
	}
	return n
}

func hasQuery(uri string) bool {
	return strings.Contains(uri, "?")
}

// defaultHandler serves discovery and page responses.
func (m *MockAPI) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	if r.URL.Path != "/pokemon" {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"Not found."}`))
		return
	}

	m.mu.RLock()
	records := m.records
	omitCount := m.omitCount
	failPage := m.failPage
	pageIndex := 0
	for _, uri := range m.requests {
		if hasQuery(uri) {
			pageIndex++
		}
	}
	m.mu.RUnlock()

	query := r.URL.Query()
	offset, errOffset := strconv.Atoi(query.Get("offset"))
	limit, errLimit := strconv.Atoi(query.Get("limit"))
	if errOffset != nil || errLimit != nil {
		offset, limit = 0, 20
	}

	if r.URL.RawQuery != "" && failPage > 0 && pageIndex == failPage {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail":"Internal server error"}`))
		return
	}

	page := []map[string]any{}
	if offset < len(records) {
		end := offset + limit
		if end > len(records) {
			end = len(records)
		}
		page = records[offset:end]
	}

	body := map[string]any{
		"next":     nil,
		"previous": nil,
		"results":  page,
	}
	if !omitCount {
		body["count"] = len(records)
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(body)
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockAPIResponse {
	return MockAPIResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"detail": "Internal server error"}`,
		Headers:    map[string]string{"Content-Type": "application/json; charset=utf-8"},
	}
}

// NewNotFoundResponse creates a 404 Not Found response.
func NewNotFoundResponse() MockAPIResponse {
	return MockAPIResponse{
		StatusCode: http.StatusNotFound,
		Body:       `{"detail": "Not found."}`,
		Headers:    map[string]string{"Content-Type": "application/json; charset=utf-8"},
	}
}
