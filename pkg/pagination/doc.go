// Package pagination collects every record of the paginated pokemon endpoint.
//
// A discovery request to {base}/pokemon reads the total record count; the
// fetcher then issues ceil(count/limit) page requests and concatenates their
// "results" arrays in arrival order.
//
// Example usage:
//
//	f, err := pagination.NewFetcher(apiClient, pagination.Config{BaseURL: base}, logger)
//	res := f.Fetch(ctx)
//	switch res.Status {
//	case pagination.StatusFetched:
//		// res.Records
//	case pagination.StatusEmpty:
//		// nothing to export
//	case pagination.StatusFailed:
//		// res.Err
//	}
//
// Two modes exist. ModePaged advances offset by limit on every request.
// ModeCompat repeats the same offset=limit&limit=limit request on every
// iteration, matching the legacy exporter byte for byte.
//
// The fetcher is strictly sequential, does not retry, and never returns
// partial results: one failed request fails the whole fetch.
package pagination
