package state

import "time"

// FlushStats summarizes one flush of the dirty queue.
type FlushStats struct {
	// Passes is the number of times the queue was drained.
	Passes int
	// Runs is the number of effects whose body executed.
	Runs int
	// Skipped counts queued effects that turned out clean, either because
	// every memo they depend on recomputed to an equal value or because they
	// were disposed while queued.
	Skipped int
	// Errors counts effects that panicked.
	Errors int
	// Duration is the wall time of the whole flush.
	Duration time.Duration
}

// RunInfo describes one execution of an effect or memo body.
type RunInfo struct {
	ID       uint64
	Name     string
	Kind     Kind
	Start    time.Time
	Duration time.Duration
	// Failed is set when the body panicked.
	Failed bool
	// InFlush is set when the run happened inside a flush.
	InFlush bool
}

// Observer receives scheduler events. Implementations are called on the
// runtime's goroutine and must not block; see package instrument for
// Prometheus, OpenTelemetry and slog implementations.
type Observer interface {
	FlushStarted()
	FlushFinished(FlushStats)
	Ran(RunInfo)
}

type nopObserver struct{}

func (nopObserver) FlushStarted()            {}
func (nopObserver) FlushFinished(FlushStats) {}
func (nopObserver) Ran(RunInfo)              {}
