// Package metrics exposes the Prometheus registry used by the exporter.
// Metrics are defined in their respective packages (client, cache, ratelimit,
// pagination, export) and registered through promauto.
//
// A one-shot CLI has no scrape endpoint, so run metrics are written to a file
// in the node_exporter textfile collector format instead.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the exporter.
var Registry = prometheus.DefaultRegisterer

// Gatherer reads back everything registered on Registry.
var Gatherer = prometheus.DefaultGatherer

// WriteTextfile writes all gathered metrics to path. The file is written to
// a temporary name first and renamed into place.
func WriteTextfile(path string) error {
	return WriteTextfileFrom(Gatherer, path)
}

// WriteTextfileFrom writes the metrics of g to path.
func WriteTextfileFrom(g prometheus.Gatherer, path string) error {
	if path == "" {
		return fmt.Errorf("metrics textfile path is empty")
	}
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - pokemon_export_requests_total{endpoint, status} (Counter): requests by endpoint and HTTP status ("cached" for cache hits)
//   - pokemon_export_request_duration_seconds{endpoint} (Histogram): request duration
//   - pokemon_export_errors_total{class} (Counter): errors by class (client, server, network, unexpected)
//
// Cache Metrics (pkg/cache):
//   - pokemon_export_cache_hits_total{backend} (Counter)
//   - pokemon_export_cache_misses_total{backend} (Counter)
//   - pokemon_export_cache_errors_total{backend, operation} (Counter)
//
// Pacing Metrics (pkg/ratelimit):
//   - pokemon_export_ratelimit_wait_seconds (Histogram)
//   - pokemon_export_ratelimit_throttled_total (Counter)
//
// Fetch Metrics (pkg/pagination):
//   - pokemon_export_pages_fetched_total (Counter)
//   - pokemon_export_records_fetched (Gauge): records collected by the last fetch
//   - pokemon_export_fetches_total{status} (Counter): fetched, empty, failed
//
// Output Metrics (pkg/export):
//   - pokemon_export_csv_rows_written_total (Counter)
//   - pokemon_export_csv_write_errors_total (Counter)
