package pagination

import (
	"time"

	"github.com/Sternrassler/pokemon-export/pkg/record"
)

// Status tags the outcome of a fetch.
type Status string

const (
	// StatusFetched means at least one record was collected.
	StatusFetched Status = "fetched"

	// StatusEmpty means the API reported or returned no records.
	StatusEmpty Status = "empty"

	// StatusFailed means the fetch was aborted; Err holds the cause.
	StatusFailed Status = "failed"
)

// Result is the outcome of Fetcher.Fetch.
// Records is only populated for StatusFetched.
type Result struct {
	Status  Status
	Records []record.Record

	// Total is the count reported by the discovery request
	Total int

	// Pages is the number of page requests that completed
	Pages int

	Err      error
	Duration time.Duration
}

// OK reports whether the fetch completed, with or without records.
func (r Result) OK() bool {
	return r.Status != StatusFailed
}

func failed(err error, total, pages int) Result {
	return Result{Status: StatusFailed, Err: err, Total: total, Pages: pages}
}
