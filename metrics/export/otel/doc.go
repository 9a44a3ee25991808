// Package otel provides OpenTelemetry metric exporter bindings for goSession counters and
// histograms.
//
// [NewOTelExporter] registers Int64ObservableCounter instruments for each goSession metric
// and Int64ObservableGauge per histogram bucket. A single callback reads
// [goSession.Service.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider — callers supply the Meter.
//   - Mutate service state.
package otel
