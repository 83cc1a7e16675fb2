package state

import (
	"fmt"

	rterrors "github.com/decantr-dev/decantr/internal/errors"
)

// flushBudget guards a single flush against amplification: effects that
// keep dirtying each other (or themselves) would otherwise drain the queue
// forever.
type flushBudget struct {
	maxPasses int
	maxRuns   int

	passes int
	runs   int
}

func newFlushBudget(maxPasses, maxRuns int) flushBudget {
	return flushBudget{maxPasses: maxPasses, maxRuns: maxRuns}
}

// pass records the start of another queue drain.
// Returns ErrFlushLimit once the pass limit is exceeded.
func (b *flushBudget) pass() error {
	b.passes++
	if b.maxPasses > 0 && b.passes > b.maxPasses {
		return rterrors.New(rterrors.CodeFlushLimit).
			WithDetail(fmt.Sprintf("flush exceeded %d passes", b.maxPasses)).
			WithSuggestion("An effect is probably writing a signal it also reads; read it with Peek or Untrack.")
	}
	return nil
}

// run records one effect execution.
// Returns ErrRunBudget once the run limit is exceeded.
func (b *flushBudget) run() error {
	b.runs++
	if b.maxRuns > 0 && b.runs > b.maxRuns {
		return rterrors.New(rterrors.CodeRunawayEffect).
			WithDetail(fmt.Sprintf("flush exceeded %d effect runs", b.maxRuns))
	}
	return nil
}
