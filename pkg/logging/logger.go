// Package logging configures the hclog loggers used across the petrel CLI.
package logging

import (
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

// DefaultLevel is used when no level is configured anywhere.
// Warn keeps the tool quiet unless something needs attention.
const DefaultLevel = "warn"

// NewLogger creates an hclog logger with petrel's standard settings.
// A nil output writes to stderr. The level string accepts the plain hclog
// levels plus the "json" and "json:LEVEL" forms, which switch the logger to
// JSON output.
func NewLogger(name, level string, output io.Writer) hclog.Logger {
	if output == nil {
		output = os.Stderr
	}

	jsonFormat, actualLevel := splitLevel(level)
	if os.Getenv("PETREL_JSON_LOG") == "1" {
		jsonFormat = true
	}

	// Human-readable output gets a per-line prefix so petrel's own
	// diagnostics stand apart from the storm output streaming through.
	if !jsonFormat {
		output = NewPrefixWriter(linePrefix(), output)
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.LevelFromString(actualLevel),
		JSONFormat: jsonFormat,
		Output:     output,
		TimeFormat: "2006-01-02T15:04:05Z", // UTC ISO format
		TimeFn: func() time.Time {
			return time.Now().UTC()
		},
	})
}

// Setup builds the logger for a petrel invocation from the environment:
// level from PETREL_LOG_LEVEL, optional log file from PETREL_LOG_PATH.
func Setup(name string) hclog.Logger {
	var output io.Writer = os.Stderr
	if logPath := os.Getenv("PETREL_LOG_PATH"); logPath != "" {
		if file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err == nil {
			output = file
		}
	}
	return NewLogger(name, Level(), output)
}

// Level returns the configured log level from the environment.
func Level() string {
	level := os.Getenv("PETREL_LOG_LEVEL")
	if level == "" {
		level = DefaultLevel
	}
	return level
}

// splitLevel handles the "json" / "json:debug" level forms.
func splitLevel(level string) (jsonFormat bool, actual string) {
	if !strings.HasPrefix(level, "json") {
		return false, level
	}
	parts := strings.SplitN(level, ":", 2)
	if len(parts) == 2 && parts[1] != "" {
		return true, parts[1]
	}
	return true, "info"
}

// linePrefix picks the marker prepended to every human-readable log line.
// ASCII on Windows, where emoji rendering in consoles is unreliable.
func linePrefix() string {
	if runtime.GOOS == "windows" {
		return "[petrel] "
	}
	return "🐦 "
}
