package state

import (
	"time"
)

// computation is the node shared by effects and memos: a body to re-run,
// the sources it read on its last run, and the scope owning whatever the
// body created.
type computation struct {
	id   uint64
	rt   *Runtime
	kind Kind
	name string

	state    nodeState
	queued   bool
	running  bool
	disposed bool

	// errored marks a memo whose last computation panicked. Such a memo stays
	// dirty, and its next invalidation propagates again so readers retry.
	errored bool

	// deps is the dependency set of the current run in read order; depIDs
	// indexes it for idempotent tracking.
	deps   []*source
	depIDs map[uint64]struct{}

	// cleanup is the Cleanup returned by an effect's last run.
	cleanup Cleanup

	// scope owns computations and cleanups registered during a run. It is
	// reset before every re-run and disposed with the computation.
	scope *Owner

	// execute runs the kind-specific body (Effect.run or Memo.recompute).
	execute func()

	// out is the readable output of a memo, nil for effects.
	out *source
}

// newComputation registers a computation in the arena under the current
// owner. The computation starts dirty; the caller runs it.
func (rt *Runtime) newComputation(kind Kind, name string) *computation {
	c := &computation{
		id:     nextID(),
		rt:     rt,
		kind:   kind,
		name:   name,
		state:  stateDirty,
		depIDs: make(map[uint64]struct{}),
	}
	c.scope = newOwner(rt, rt.owner, c)
	rt.nodes[c.id] = c
	return c
}

// runTracked runs body with c as listener and c.scope as owner. Before the
// body runs the dependency set is cleared; afterwards every source read in
// the previous run but not in this one drops c from its subscribers. The
// diff happens on the panic path too, so the graph always matches what the
// body actually read.
func (rt *Runtime) runTracked(c *computation, body func()) {
	old := c.deps
	c.deps = make([]*source, 0, len(old))
	c.depIDs = make(map[uint64]struct{}, len(old))
	c.running = true

	defer func() {
		c.running = false
		for _, src := range old {
			if _, ok := c.depIDs[src.id]; !ok {
				src.subs.remove(c.id)
			}
		}
	}()

	rt.withScope(c, c.scope, body)
}

// exec runs c's body and reports the run to the observer.
func (rt *Runtime) exec(c *computation) {
	info := RunInfo{
		ID:      c.id,
		Name:    c.name,
		Kind:    c.kind,
		Start:   time.Now(),
		Failed:  true,
		InFlush: rt.flushing,
	}
	defer func() {
		info.Duration = time.Since(info.Start)
		rt.observer.Ran(info)
		if Debug.LogEffectRuns {
			rt.logger.Debug("state: run",
				"id", info.ID,
				"kind", info.Kind.String(),
				"name", info.Name,
				"duration", info.Duration,
				"failed", info.Failed)
		}
	}()
	c.execute()
	info.Failed = false
}

// stale raises c to at least st and schedules the consequences: effects are
// queued, memos forward a "check" to their own subscribers the first time
// they leave the clean state.
func (rt *Runtime) stale(c *computation, st nodeState) {
	if c.disposed {
		return
	}
	prev := c.state
	if st > prev {
		c.state = st
	}

	if c.kind == KindEffect {
		rt.enqueue(c)
		return
	}

	if prev == stateClean || c.errored {
		rt.notify(c.out, stateCheck)
	}
}

// notify marks every live subscriber of src with st.
func (rt *Runtime) notify(src *source, st nodeState) {
	for _, id := range src.subs.snapshot() {
		if sub, ok := rt.nodes[id]; ok {
			rt.stale(sub, st)
		}
	}
}

// changed is called after a memo recomputed to a different value: every
// subscriber waiting on a check now knows it is dirty.
func (rt *Runtime) changed(src *source) {
	for _, id := range src.subs.snapshot() {
		if sub, ok := rt.nodes[id]; ok && sub.state == stateCheck {
			sub.state = stateDirty
		}
	}
}

// refresh brings c up to date. A checked computation first refreshes the
// memos it depends on, in read order, stopping as soon as one of them
// reports a change. Only a dirty computation executes. Returns whether the
// body ran.
func (rt *Runtime) refresh(c *computation) bool {
	if c.disposed || c.running {
		return false
	}

	if c.state == stateCheck {
		for _, src := range c.deps {
			if src.node != nil {
				rt.refresh(src.node)
			}
			if c.state == stateDirty {
				break
			}
		}
	}

	if c.state != stateDirty {
		c.state = stateClean
		return false
	}

	rt.exec(c)
	return true
}

// dispose tears c down: final cleanup, every edge removed, arena entry
// dropped. Owned computations are disposed by the scope before this runs.
func (rt *Runtime) dispose(c *computation) {
	if c.disposed {
		return
	}
	c.disposed = true

	for _, src := range c.deps {
		src.subs.remove(c.id)
	}
	c.deps = nil
	c.depIDs = nil
	delete(rt.nodes, c.id)

	if fn := c.cleanup; fn != nil {
		c.cleanup = nil
		fn()
	}
}

// runCleanup invokes and clears the stored cleanup.
func (c *computation) runCleanup() {
	if fn := c.cleanup; fn != nil {
		c.cleanup = nil
		fn()
	}
}
