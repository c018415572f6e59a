// Package observability provides structured logging, metrics, and tracing
// for eventline queues.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
)

// EnrichLogger adds event context to a logger. Returns a new logger with
// event and event_id fields.
func EnrichLogger(logger *slog.Logger, eventName, eventID string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("event", eventName),
		slog.String("event_id", eventID),
	)
}

// LogDispatchStart logs the start of one event's dispatch.
func LogDispatchStart(logger *slog.Logger, eventName, eventID string, handlers int) {
	if logger == nil {
		return
	}
	logger.Debug("dispatching event",
		slog.String("event", eventName),
		slog.String("event_id", eventID),
		slog.Int("handlers", handlers),
	)
}

// LogDispatchComplete logs completion of one event's dispatch.
func LogDispatchComplete(logger *slog.Logger, eventName, eventID string, durationMs float64, failures int) {
	if logger == nil {
		return
	}
	logger.Debug("event dispatched",
		slog.String("event", eventName),
		slog.String("event_id", eventID),
		slog.Float64("duration_ms", durationMs),
		slog.Int("failures", failures),
	)
}

// LogHandlerError logs a handler failure.
func LogHandlerError(logger *slog.Logger, eventName, handlerName string, err error) {
	if logger == nil {
		return
	}
	logger.Error("handler failed",
		slog.String("event", eventName),
		slog.String("handler", handlerName),
		slog.String("error", err.Error()),
	)
}

// LogShutdownBegun logs the start of the two-phase shutdown.
func LogShutdownBegun(logger *slog.Logger) {
	if logger == nil {
		return
	}
	logger.Info("queue shutdown begun")
}

// LogQueueStopped logs the terminal state of the dispatch loop.
func LogQueueStopped(logger *slog.Logger) {
	if logger == nil {
		return
	}
	logger.Info("queue stopped")
}

// LogJournalError logs a failure to persist a failure record. The dispatch
// loop never propagates journal errors.
func LogJournalError(logger *slog.Logger, eventName string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("journal write failed",
		slog.String("event", eventName),
		slog.String("error", err.Error()),
	)
}
