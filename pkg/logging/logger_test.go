package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != LevelInfo {
		t.Errorf("Expected default level to be Info, got %s", cfg.Level)
	}

	if cfg.Pretty != false {
		t.Error("Expected default pretty to be false")
	}

	if cfg.Output == nil {
		t.Error("Expected default output to be set")
	}
}

func TestSetup(t *testing.T) {
	tests := []struct {
		name    string
		level   LogLevel
		testMsg string
	}{
		{name: "info_level", level: LevelInfo, testMsg: "test info message"},
		{name: "debug_level", level: LevelDebug, testMsg: "test debug message"},
		{name: "warn_level", level: LevelWarn, testMsg: "test warn message"},
		{name: "error_level", level: LevelError, testMsg: "test error message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := Setup(Config{Level: tt.level, Output: buf})

			switch tt.level {
			case LevelDebug:
				logger.Debug().Msg(tt.testMsg)
			case LevelInfo:
				logger.Info().Msg(tt.testMsg)
			case LevelWarn:
				logger.Warn().Msg(tt.testMsg)
			case LevelError:
				logger.Error().Msg(tt.testMsg)
			}

			output := buf.String()
			if !strings.Contains(output, tt.testMsg) {
				t.Errorf("Expected output to contain %q, got %q", tt.testMsg, output)
			}
		})
	}
}

func TestSetup_PrettyOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := Setup(Config{Level: LevelInfo, Pretty: true, Output: buf})

	logger.Info().Msg("pretty message")

	output := buf.String()
	if !strings.Contains(output, "pretty message") {
		t.Errorf("Expected output to contain message, got %q", output)
	}
	if strings.HasPrefix(strings.TrimSpace(output), "{") {
		t.Errorf("Expected console output, got JSON %q", output)
	}
}

func TestSetup_DoesNotTouchGlobalLevel(t *testing.T) {
	before := zerolog.GlobalLevel()

	Setup(Config{Level: LevelError, Output: &bytes.Buffer{}})

	if zerolog.GlobalLevel() != before {
		t.Errorf("Global level changed from %v to %v", before, zerolog.GlobalLevel())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    LogLevel
		expected zerolog.Level
	}{
		{LevelDebug, zerolog.DebugLevel},
		{LevelInfo, zerolog.InfoLevel},
		{LevelWarn, zerolog.WarnLevel},
		{"WARNING", zerolog.WarnLevel},
		{LevelError, zerolog.ErrorLevel},
		{"invalid", zerolog.InfoLevel}, // Should default to Info
	}

	for _, tt := range tests {
		t.Run(string(tt.input), func(t *testing.T) {
			result := parseLevel(tt.input)
			if result != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	root := Setup(Config{Level: LevelInfo, Output: buf})

	logger := NewLogger(root, "test-component")
	logger.Info().Msg("test message")

	output := buf.String()
	if !strings.Contains(output, "test-component") {
		t.Errorf("Expected output to contain 'test-component', got %q", output)
	}
	if !strings.Contains(output, "test message") {
		t.Errorf("Expected output to contain 'test message', got %q", output)
	}
}

func TestLogLevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(Setup(Config{Level: LevelWarn, Output: buf}), "test")

	// These should NOT appear (below warn level)
	logger.Debug().Msg("debug message")
	logger.Info().Msg("info message")

	// These SHOULD appear (warn level and above)
	logger.Warn().Msg("warn message")
	logger.Error().Msg("error message")

	output := buf.String()

	if strings.Contains(output, "debug message") {
		t.Error("Debug message should be filtered out at Warn level")
	}
	if strings.Contains(output, "info message") {
		t.Error("Info message should be filtered out at Warn level")
	}
	if !strings.Contains(output, "warn message") {
		t.Error("Warn message should be included at Warn level")
	}
	if !strings.Contains(output, "error message") {
		t.Error("Error message should be included at Warn level")
	}
}
