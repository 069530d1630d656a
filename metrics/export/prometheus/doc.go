// Package prometheus renders goRecover metrics in Prometheus text exposition
// format.
//
// [NewPrometheusExporter] wraps an Engine and exposes an [http.Handler] for a
// /metrics route. Counters are named gorecover_*_total; the only histogram is
// gorecover_redeem_latency_seconds. gorecover_notify_dropped_total reports
// async notices lost to backpressure.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry. Callers mount the Handler.
//   - Mutate engine state.
package prometheus
