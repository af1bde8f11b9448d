// Package logger installs the process wide slog logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

// TimeFormat is the timestamp layout of text output.
const TimeFormat = "15:04:05"

// ParseLevel maps a configuration level to a charm level. Unknown levels
// map to warn.
func ParseLevel(level string) charmlog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return charmlog.DebugLevel
	case "info":
		return charmlog.InfoLevel
	case "error":
		return charmlog.ErrorLevel
	default:
		return charmlog.WarnLevel
	}
}

// New returns a logger writing to w with a charm handler, as text with
// timestamps or as JSON.
func New(w io.Writer, level string, json bool) *slog.Logger {
	opts := charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      TimeFormat,
		Level:           ParseLevel(level),
	}
	if json {
		opts.Formatter = charmlog.JSONFormatter
	}
	return slog.New(charmlog.NewWithOptions(w, opts))
}

// Setup installs a stderr logger as the slog default.
func Setup(level string, json bool) *slog.Logger {
	l := New(os.Stderr, level, json)
	slog.SetDefault(l)
	return l
}
