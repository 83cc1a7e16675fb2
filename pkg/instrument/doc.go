// Package instrument provides state.Observer implementations for production
// runtimes.
//
// This package includes:
//   - Prometheus metrics for flushes and computation runs
//   - OpenTelemetry tracing with one span per flush
//   - slog logging of slow and failed runs
//   - Stats, an in-memory aggregate for tests and tooling
//   - Multi, which fans events out to several observers
//
// # Prometheus Metrics
//
//	reg := prometheus.NewRegistry()
//	rt := state.NewRuntime(state.WithObserver(
//	    instrument.NewMetrics(instrument.WithRegistry(reg)),
//	))
//
// Metrics collected (namespace "decantr" by default):
//   - decantr_flushes_total: Counter of flushes
//   - decantr_flush_passes: Histogram of queue drains per flush
//   - decantr_flush_duration_seconds: Histogram of flush wall time
//   - decantr_runs_total: Counter of computation runs by kind and status
//   - decantr_run_duration_seconds: Histogram of run duration by kind
//   - decantr_skipped_total: Counter of queued effects that did not need to run
//
// # OpenTelemetry
//
// The tracer uses the global OpenTelemetry tracer provider unless one is
// passed with WithTracerProvider.
//
//	rt := state.NewRuntime(state.WithObserver(
//	    instrument.NewTracer(instrument.WithTracerName("checkout")),
//	))
//
// Observers are called on the runtime's goroutine. The Prometheus and slog
// observers are safe to share between runtimes on different goroutines; the
// tracer and Stats are not.
package instrument
