// Package config loads queue configuration from files and materializes
// eventline options from it.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/veliand/eventline/pkg/eventline"
	"github.com/veliand/eventline/pkg/eventline/journal"
	"github.com/veliand/eventline/pkg/eventline/observability"
)

// Config describes a queue's file-configurable surface.
type Config struct {
	// JournalPath is the SQLite failure-journal path. Empty disables the
	// journal.
	JournalPath string `yaml:"journal_path" json:"journal_path"`

	// Metrics enables the OpenTelemetry metrics recorder.
	Metrics bool `yaml:"metrics" json:"metrics"`

	// Tracing enables the OpenTelemetry span manager.
	Tracing bool `yaml:"tracing" json:"tracing"`

	// LogLevel enables structured logging to stderr at the given level:
	// "debug", "info", "warn", or "error". Empty disables logging.
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// Validate checks the configuration for invalid values.
func (c Config) Validate() error {
	if c.LogLevel != "" {
		if _, err := parseLevel(c.LogLevel); err != nil {
			return err
		}
	}
	return nil
}

// Options materializes queue options from the configuration. The returned
// cleanup releases any resources the options opened (currently the journal)
// and should be deferred by the caller.
func (c Config) Options() (opts []eventline.Option, cleanup func() error, err error) {
	cleanup = func() error { return nil }

	if c.LogLevel != "" {
		level, err := parseLevel(c.LogLevel)
		if err != nil {
			return nil, nil, err
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		opts = append(opts, eventline.WithLogger(logger))
	}

	if c.Metrics {
		opts = append(opts, eventline.WithMetrics(observability.NewMetricsRecorder()))
	}

	if c.Tracing {
		opts = append(opts, eventline.WithTracing(observability.NewSpanManager()))
	}

	if c.JournalPath != "" {
		j, err := journal.NewSQLiteJournal(c.JournalPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open journal: %w", err)
		}
		cleanup = j.Close
		opts = append(opts, eventline.WithJournal(j))
	}

	return opts, cleanup, nil
}

func parseLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level: %q", level)
	}
}
