// Package export flattens records into a CSV file.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Sternrassler/pokemon-export/pkg/record"
	"github.com/cespare/xxhash/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var (
	rowsWrittenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pokemon_export_csv_rows_written_total",
		Help: "Total number of CSV data rows written",
	})

	writeErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pokemon_export_csv_write_errors_total",
		Help: "Total number of failed CSV writes",
	})
)

// ErrExtraFields is returned when a record carries keys the header lacks.
var ErrExtraFields = errors.New("record contains fields not in header")

// DefaultPath is the output file used when none is configured.
const DefaultPath = "results.csv"

// Summary describes a completed write.
type Summary struct {
	Path    string
	Rows    int
	Columns int
	// Checksum is the xxhash64 of the bytes written
	Checksum uint64
	// Skipped is set when there was nothing to write
	Skipped bool
}

// Writer writes records as CSV files.
type Writer struct {
	logger zerolog.Logger
}

// NewWriter creates a CSV writer.
func NewWriter(logger zerolog.Logger) *Writer {
	return &Writer{logger: logger.With().Str("component", "csv-writer").Logger()}
}

// Header returns the column names: the first record's keys in order.
func Header(records []record.Record) []string {
	if len(records) == 0 {
		return nil
	}
	return records[0].Keys()
}

// Encode writes the header row and one row per record to w, with CRLF line
// endings. Later records missing a header key get an empty cell. A record
// with a key outside the header stops the encode with ErrExtraFields; rows
// before it have already been written.
func Encode(w io.Writer, records []record.Record) error {
	header := Header(records)
	columns := make(map[string]struct{}, len(header))
	for _, key := range header {
		columns[key] = struct{}{}
	}

	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, rec := range records {
		if extra := extraFields(rec, columns); len(extra) > 0 {
			cw.Flush()
			return fmt.Errorf("row %d: %w: %s", i+1, ErrExtraFields, strings.Join(extra, ", "))
		}
		if err := cw.Write(rec.Cells(header)); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func extraFields(rec record.Record, columns map[string]struct{}) []string {
	var extra []string
	for _, key := range rec.Keys() {
		if _, ok := columns[key]; !ok {
			extra = append(extra, key)
		}
	}
	return extra
}

// WriteFile writes records to path. An empty slice logs a warning and leaves
// any existing file untouched.
func (w *Writer) WriteFile(path string, records []record.Record) (summary Summary, err error) {
	if path == "" {
		path = DefaultPath
	}
	summary.Path = path

	if len(records) == 0 {
		w.logger.Warn().Str("path", path).Msg("No results to write to CSV.")
		summary.Skipped = true
		return summary, nil
	}

	start := time.Now()
	defer func() {
		if err != nil {
			writeErrorsTotal.Inc()
		}
	}()

	f, err := os.Create(path)
	if err != nil {
		return summary, fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	digest := xxhash.New()
	if err := Encode(io.MultiWriter(f, digest), records); err != nil {
		return summary, fmt.Errorf("write %s: %w", path, err)
	}

	summary.Rows = len(records)
	summary.Columns = len(Header(records))
	summary.Checksum = digest.Sum64()
	rowsWrittenTotal.Add(float64(summary.Rows))

	w.logger.Info().
		Str("path", path).
		Int("rows", summary.Rows).
		Int("columns", summary.Columns).
		Str("checksum", fmt.Sprintf("%016x", summary.Checksum)).
		Dur("duration", time.Since(start)).
		Msgf("Results saved to %s", path)

	return summary, nil
}
