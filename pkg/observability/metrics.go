package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DispatchMetrics records one measurement per dispatched request.
type DispatchMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
	active   metric.Int64UpDownCounter
}

// NewDispatchMetrics creates the instruments on the global meter provider.
// Instruments that fail to register fall back to no-ops.
func NewDispatchMetrics() *DispatchMetrics {
	meter := otel.Meter(tracerName)

	requests, _ := meter.Int64Counter(
		"endpoint_dispatch_count",
		metric.WithDescription("Total number of dispatched endpoint requests"),
		metric.WithUnit("{request}"),
	)
	duration, _ := meter.Float64Histogram(
		"endpoint_dispatch_duration_ms",
		metric.WithDescription("Endpoint handler duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	active, _ := meter.Int64UpDownCounter(
		"endpoint_active_scopes",
		metric.WithDescription("Request scopes currently bound to a handler"),
		metric.WithUnit("{scope}"),
	)

	return &DispatchMetrics{requests: requests, duration: duration, active: active}
}

// ScopeStarted marks a scope as bound.
func (m *DispatchMetrics) ScopeStarted(ctx context.Context, endpoint string) {
	if m == nil || m.active == nil {
		return
	}
	m.active.Add(ctx, 1, metric.WithAttributes(attribute.String("endpoint", endpoint)))
}

// ScopeEnded records the outcome of a finished scope.
func (m *DispatchMetrics) ScopeEnded(ctx context.Context, endpoint, operation, transport, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	if m.active != nil {
		m.active.Add(ctx, -1, metric.WithAttributes(attribute.String("endpoint", endpoint)))
	}
	attrs := metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("operation", operation),
		attribute.String("transport", transport),
		attribute.String("outcome", outcome),
	)
	if m.requests != nil {
		m.requests.Add(ctx, 1, attrs)
	}
	if m.duration != nil {
		m.duration.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)
	}
}
