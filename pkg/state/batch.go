package state

import (
	"errors"
	"runtime/debug"
	"time"
)

// Batch groups multiple signal updates into a single flush.
// Effects affected by any of the writes run once, after the outermost batch
// returns. Batches can be nested.
//
// Example:
//
//	Batch(func() {
//	    firstName.Set("John")
//	    lastName.Set("Doe")
//	})
//	// Effects reading both names run once.
func Batch(fn func()) {
	current().Batch(fn)
}

// Batch is Batch on a specific runtime.
func (rt *Runtime) Batch(fn func()) {
	rt.startBatch()
	defer rt.endBatch()
	fn()
}

// Tx is an alias for Batch.
func Tx(fn func()) {
	Batch(fn)
}

// TxNamed runs fn as a named batch. The name is logged at Debug level when
// flush logging is enabled.
func TxNamed(name string, fn func()) {
	rt := current()
	if Debug.LogFlushes {
		rt.logger.Debug("state: tx start", "tx", name)
		defer rt.logger.Debug("state: tx end", "tx", name)
	}
	rt.Batch(fn)
}

func (rt *Runtime) startBatch() {
	rt.batchDepth++
}

// endBatch closes a batch level and flushes when the outermost one closes.
// It runs from defers, so a panicking batch body still flushes what it wrote.
func (rt *Runtime) endBatch() {
	rt.batchDepth--
	if rt.batchDepth == 0 && !rt.flushing {
		rt.flush()
	}
}

// enqueue adds an effect to the dirty queue once.
func (rt *Runtime) enqueue(c *computation) {
	if c.queued {
		return
	}
	c.queued = true
	rt.queue = append(rt.queue, c)
}

// flush drains the dirty queue in passes. Each pass runs a snapshot of the
// queue in FIFO order; effects dirtied during the pass are collected for the
// next one. Every queued effect runs even if another one panics. Failures
// are reported once the queue is empty.
func (rt *Runtime) flush() {
	if rt.flushing || len(rt.queue) == 0 {
		return
	}
	rt.flushing = true
	rt.observer.FlushStarted()

	start := time.Now()
	budget := newFlushBudget(rt.maxPasses, rt.maxRuns)
	var stats FlushStats
	var errs []error

drain:
	for len(rt.queue) > 0 {
		if err := budget.pass(); err != nil {
			errs = append(errs, err)
			rt.clearQueue()
			break
		}
		stats.Passes++

		pass := rt.queue
		rt.queue = nil
		for i, c := range pass {
			c.queued = false
			if c.disposed || c.state == stateClean {
				stats.Skipped++
				continue
			}
			if err := budget.run(); err != nil {
				errs = append(errs, err)
				for _, rest := range pass[i+1:] {
					rest.queued = false
				}
				rt.clearQueue()
				break drain
			}

			ran, err := rt.refreshSafely(c)
			switch {
			case err != nil:
				stats.Runs++
				errs = append(errs, err)
			case ran:
				stats.Runs++
			default:
				stats.Skipped++
			}
		}

		if Debug.LogFlushes {
			rt.logger.Debug("state: flush pass",
				"pass", stats.Passes,
				"size", len(pass),
				"next", len(rt.queue))
		}
	}

	rt.flushing = false
	stats.Duration = time.Since(start)
	for _, err := range errs {
		var ce *ComputationError
		if errors.As(err, &ce) {
			stats.Errors++
		}
	}
	rt.observer.FlushFinished(stats)

	if Debug.LogFlushes {
		rt.logger.Debug("state: flush done",
			"passes", stats.Passes,
			"runs", stats.Runs,
			"skipped", stats.Skipped,
			"errors", stats.Errors,
			"duration", stats.Duration)
	}

	rt.report(errs)
}

// refreshSafely refreshes c, converting a panic into a *ComputationError.
// A failed effect is left clean; it runs again when one of the sources it
// read before failing changes.
func (rt *Runtime) refreshSafely(c *computation) (ran bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.state = stateClean
			err = newComputationError(c, r, debug.Stack())
		}
	}()
	return rt.refresh(c), nil
}

// clearQueue drops every pending effect.
func (rt *Runtime) clearQueue() {
	for _, c := range rt.queue {
		c.queued = false
	}
	rt.queue = nil
}

// report hands flush failures to the error handler, or re-panics them at
// the write or batch that started the flush.
func (rt *Runtime) report(errs []error) {
	if len(errs) == 0 {
		return
	}

	for _, err := range errs {
		var ce *ComputationError
		if errors.As(err, &ce) {
			attrs := []any{"id", ce.ID, "kind", ce.Kind.String(), "error", err}
			if ce.Name != "" {
				attrs = append(attrs, "name", ce.Name)
			}
			if DevMode {
				attrs = append(attrs, "stack", string(ce.Stack))
			}
			rt.logger.Error("state: computation panicked", attrs...)
			continue
		}
		rt.logger.Error("state: flush aborted", "error", err)
	}

	if rt.onError != nil {
		for _, err := range errs {
			rt.onError(err)
		}
		return
	}

	if len(errs) == 1 {
		panic(errs[0])
	}
	panic(errors.Join(errs...))
}
