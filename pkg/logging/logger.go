// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup builds the process logger. It is created once at startup and passed
// explicitly to every component; zerolog's global logger is left untouched.
func Setup(cfg Config) zerolog.Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	return zerolog.New(output).
		Level(parseLevel(cfg.Level)).
		With().Timestamp().
		Logger()
}

// parseLevel converts LogLevel to zerolog.Level.
func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger derives a child logger tagged with the given component name.
func NewLogger(parent zerolog.Logger, component string) zerolog.Logger {
	return parent.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Cache operations (hit/miss, key, TTL)
//   - Request pacing waits
//   - Individual request URLs
//
// Info: Normal operation events
//   - Discovered record count
//   - Page progress
//   - Output file written (path, rows, checksum)
//
// Warn: Warning conditions that don't prevent operation
//   - Nothing to write
//   - Skipped non-object items
//   - Cache errors (fallback to direct request)
//
// Error: Error conditions requiring attention
//   - Failed requests (fetch aborted)
//   - Missing count in discovery response
//   - Write failures
//
// Context Fields:
//   - component: emitting package
//   - url: request URL
//   - status_code: HTTP status code
//   - error_class: client, server, network
//   - page, total_pages, offset, limit: pagination cursor
//   - records: records accumulated so far
//   - path, rows, checksum: output file summary
//   - duration: elapsed time
