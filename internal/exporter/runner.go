// Package exporter runs one export: fetch every record, then write the CSV.
package exporter

import (
	"context"

	"github.com/Sternrassler/pokemon-export/pkg/export"
	"github.com/Sternrassler/pokemon-export/pkg/pagination"
	"github.com/Sternrassler/pokemon-export/pkg/record"
	"github.com/rs/zerolog"
)

// Fetcher is satisfied by *pagination.Fetcher.
type Fetcher interface {
	Fetch(ctx context.Context) pagination.Result
}

// Writer is satisfied by *export.Writer.
type Writer interface {
	WriteFile(path string, records []record.Record) (export.Summary, error)
}

// Report is the outcome of a run. Errors are recorded here and logged,
// never returned.
type Report struct {
	Fetch    pagination.Result
	Write    export.Summary
	WriteErr error
	Wrote    bool
}

// OK reports whether both steps completed without error.
func (r Report) OK() bool {
	return r.Fetch.OK() && r.WriteErr == nil
}

// Runner sequences the fetch and write steps.
type Runner struct {
	fetcher Fetcher
	writer  Writer
	output  string
	logger  zerolog.Logger
}

// NewRunner creates a runner writing to output.
func NewRunner(fetcher Fetcher, writer Writer, output string, logger zerolog.Logger) *Runner {
	return &Runner{
		fetcher: fetcher,
		writer:  writer,
		output:  output,
		logger:  logger.With().Str("component", "exporter").Logger(),
	}
}

// Run fetches all records and writes them. A failed fetch leaves the output
// file untouched; an empty fetch is handed to the writer, which warns.
func (r *Runner) Run(ctx context.Context) Report {
	report := Report{Fetch: r.fetcher.Fetch(ctx)}

	if report.Fetch.Status == pagination.StatusFailed {
		r.logger.Error().
			Err(report.Fetch.Err).
			Str("path", r.output).
			Msg("Fetch failed; output not written")
		return report
	}

	summary, err := r.writer.WriteFile(r.output, report.Fetch.Records)
	report.Write = summary
	if err != nil {
		report.WriteErr = err
		r.logger.Error().
			Err(err).
			Str("path", r.output).
			Msg("An error occurred while saving to CSV")
		return report
	}
	report.Wrote = !summary.Skipped

	return report
}
