// Package otel binds goRecover counters and the redeem latency histogram to an
// OpenTelemetry meter.
//
// [NewOTelExporter] creates one Int64ObservableCounter per counter and one
// Int64ObservableGauge per cumulative histogram bucket. A single callback
// reads [goRecover.Engine.MetricsSnapshot] on every collection cycle.
//
// # What this package must NOT do
//
//   - Own the MeterProvider. Callers supply the Meter.
//   - Mutate engine state.
package otel
