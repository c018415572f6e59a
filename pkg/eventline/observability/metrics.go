package observability

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records queue metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordDispatch records completion of one event's dispatch: how many
	// handlers ran, how long the whole dispatch took, and how many handlers
	// failed.
	RecordDispatch(ctx context.Context, eventName string, handlers int, duration time.Duration, failures int)

	// RecordHandler records a single handler invocation with its duration
	// and error status.
	RecordHandler(ctx context.Context, eventName, handlerName string, duration time.Duration, err error)

	// RecordQueueDepth adjusts the pending-event depth gauge by delta
	// (+1 on enqueue, -1 on dequeue).
	RecordQueueDepth(ctx context.Context, delta int64)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	dispatches      metric.Int64Counter
	dispatchLatency metric.Float64Histogram
	handlerRuns     metric.Int64Counter
	handlerLatency  metric.Float64Histogram
	handlerErrors   metric.Int64Counter
	queueDepth      metric.Int64UpDownCounter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("eventline")

	dispatches, err := meter.Int64Counter("eventline.dispatch.events",
		metric.WithDescription("Number of events dispatched"),
	)
	if err != nil {
		return nil, err
	}

	dispatchLatency, err := meter.Float64Histogram("eventline.dispatch.latency_ms",
		metric.WithDescription("Full dispatch latency per event in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	handlerRuns, err := meter.Int64Counter("eventline.handler.invocations",
		metric.WithDescription("Number of handler invocations"),
	)
	if err != nil {
		return nil, err
	}

	handlerLatency, err := meter.Float64Histogram("eventline.handler.latency_ms",
		metric.WithDescription("Handler invocation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	handlerErrors, err := meter.Int64Counter("eventline.handler.errors",
		metric.WithDescription("Number of handler failures"),
	)
	if err != nil {
		return nil, err
	}

	queueDepth, err := meter.Int64UpDownCounter("eventline.queue.depth",
		metric.WithDescription("Number of pending events in the main queue"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		dispatches:      dispatches,
		dispatchLatency: dispatchLatency,
		handlerRuns:     handlerRuns,
		handlerLatency:  handlerLatency,
		handlerErrors:   handlerErrors,
		queueDepth:      queueDepth,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		return NoopMetrics{}
	}
	return m
}

// RecordDispatch records completion of one event's dispatch.
func (m *otelMetrics) RecordDispatch(ctx context.Context, eventName string, handlers int, duration time.Duration, failures int) {
	attrs := metric.WithAttributes(
		attribute.String("event", eventName),
	)
	m.dispatches.Add(ctx, 1, attrs)
	m.dispatchLatency.Record(ctx, float64(duration.Milliseconds()), attrs)
	if failures > 0 {
		m.handlerErrors.Add(ctx, int64(failures), attrs)
	}
}

// RecordHandler records a single handler invocation.
func (m *otelMetrics) RecordHandler(ctx context.Context, eventName, handlerName string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("event", eventName),
		attribute.String("handler", handlerName),
		attribute.Bool("error", err != nil),
	)
	m.handlerRuns.Add(ctx, 1, attrs)
	m.handlerLatency.Record(ctx, float64(duration.Milliseconds()), attrs)
}

// RecordQueueDepth adjusts the pending-event depth gauge.
func (m *otelMetrics) RecordQueueDepth(ctx context.Context, delta int64) {
	m.queueDepth.Add(ctx, delta)
}
