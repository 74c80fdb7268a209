package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "layout-lens"

// Metrics holds all OTEL metric instruments for layout-lens.
// All counters are cumulative (monotonic) and safe for concurrent use.
type Metrics struct {
	// Build counters (partitioned by result: ok, parse_error, invalid)
	Builds metric.Int64Counter

	// Build duration in milliseconds
	BuildDuration metric.Float64Histogram

	// Violations found across check runs (partitioned by rule)
	Violations metric.Int64Counter

	// Watch-mode reloads (partitioned by result: ok, error)
	Reloads metric.Int64Counter
}

// NewMetrics creates all metric instruments. Returns no-op instruments
// when no MeterProvider is registered (safe to call unconditionally).
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.Builds, err = meter.Int64Counter("document.builds",
		metric.WithDescription("Total document builds partitioned by result (ok, parse_error, invalid)"))
	if err != nil {
		return nil, err
	}

	m.BuildDuration, err = meter.Float64Histogram("document.build_duration",
		metric.WithDescription("Time to parse, build, and validate a document"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}

	m.Violations, err = meter.Int64Counter("document.violations",
		metric.WithDescription("Total invariant violations found, partitioned by rule"))
	if err != nil {
		return nil, err
	}

	m.Reloads, err = meter.Int64Counter("watch.reloads",
		metric.WithDescription("Total watch-mode reloads partitioned by result (ok, error)"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordBuild records one build attempt with its result and duration.
func (m *Metrics) RecordBuild(ctx context.Context, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("build.result", result))
	m.Builds.Add(ctx, 1, attrs)
	m.BuildDuration.Record(ctx, float64(elapsed.Milliseconds()), attrs)
}

// RecordViolation records one invariant violation.
func (m *Metrics) RecordViolation(ctx context.Context, rule string) {
	if m == nil {
		return
	}
	m.Violations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("violation.rule", rule),
	))
}

// RecordReload records one watch-mode reload.
func (m *Metrics) RecordReload(ctx context.Context, ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.Reloads.Add(ctx, 1, metric.WithAttributes(
		attribute.String("reload.result", result),
	))
}
