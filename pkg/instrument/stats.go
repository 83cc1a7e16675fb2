package instrument

import (
	"time"

	"github.com/decantr-dev/decantr/pkg/state"
)

// Stats is a state.Observer that aggregates events in memory.
// The zero value is ready to use. Stats is not safe for concurrent use.
type Stats struct {
	Flushes   int
	Passes    int
	MaxPasses int
	Runs      int
	Skipped   int
	Errors    int

	// RunsByKind counts every run, including runs outside a flush.
	RunsByKind map[state.Kind]int

	FlushTime time.Duration
	RunTime   time.Duration
}

var _ state.Observer = (*Stats)(nil)

// FlushStarted implements state.Observer.
func (s *Stats) FlushStarted() {}

// FlushFinished implements state.Observer.
func (s *Stats) FlushFinished(f state.FlushStats) {
	s.Flushes++
	s.Passes += f.Passes
	s.MaxPasses = max(s.MaxPasses, f.Passes)
	s.Runs += f.Runs
	s.Skipped += f.Skipped
	s.Errors += f.Errors
	s.FlushTime += f.Duration
}

// Ran implements state.Observer.
func (s *Stats) Ran(info state.RunInfo) {
	if s.RunsByKind == nil {
		s.RunsByKind = make(map[state.Kind]int)
	}
	s.RunsByKind[info.Kind]++
	s.RunTime += info.Duration
}

// Reset clears every counter.
func (s *Stats) Reset() {
	*s = Stats{}
}
