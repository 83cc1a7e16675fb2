package state

// Effect represents a reactive side effect that runs when its dependencies change.
//
// Effects run immediately when created, and re-run whenever any signal or memo
// they read during execution changes. They can return a Cleanup function that
// will be called before the effect re-runs or when the effect is disposed.
type Effect struct {
	c  *computation
	fn func() Cleanup
}

// EffectOption configures an Effect.
type EffectOption func(*effectOptions)

type effectOptions struct {
	name string
}

// EffectName labels the effect for logs, metrics and traces.
func EffectName(name string) EffectOption {
	return func(o *effectOptions) {
		o.name = name
	}
}

// NewEffect creates an effect and runs it once before returning. If that
// first run panics the effect is disposed and the panic propagates.
//
// Example:
//
//	e := NewEffect(func() Cleanup {
//	    fmt.Println("count is", count.Get())
//	    return nil
//	})
//	defer e.Dispose()
func NewEffect(fn func() Cleanup, opts ...EffectOption) *Effect {
	var o effectOptions
	for _, opt := range opts {
		opt(&o)
	}

	rt := current()
	c := rt.newComputation(KindEffect, o.name)
	e := &Effect{c: c, fn: fn}
	c.execute = e.run

	if parent := c.scope.parent; parent != nil && parent.disposed {
		rt.logger.Debug("state: effect created under a disposed owner", "id", c.id)
		e.Dispose()
		return e
	}

	rt.startBatch()
	defer rt.endBatch()

	ok := false
	defer func() {
		if !ok {
			e.Dispose()
		}
	}()
	rt.exec(c)
	ok = true
	return e
}

// CreateEffect creates an effect and returns its dispose function.
func CreateEffect(fn func() Cleanup, opts ...EffectOption) (dispose func()) {
	return NewEffect(fn, opts...).Dispose
}

// run executes the effect body: previous cleanup first, then whatever the
// previous run created, then the body under tracking.
func (e *Effect) run() {
	c := e.c
	c.runCleanup()
	c.scope.reset()
	c.state = stateClean

	var cleanup Cleanup
	c.rt.runTracked(c, func() {
		cleanup = e.fn()
	})

	// Disposed by its own body: nothing will call the cleanup later.
	if c.disposed {
		if cleanup != nil {
			cleanup()
		}
		return
	}
	c.cleanup = cleanup
}

// Dispose stops the effect: its cleanup runs, everything it created is
// disposed and it is removed from the graph. Safe to call more than once,
// including from inside the effect.
func (e *Effect) Dispose() {
	e.c.scope.Dispose()
}

// ID returns the unique identifier for this effect.
func (e *Effect) ID() uint64 {
	return e.c.id
}

// Name returns the label given with EffectName.
func (e *Effect) Name() string {
	return e.c.name
}

// Disposed reports whether the effect has been disposed.
func (e *Effect) Disposed() bool {
	return e.c.disposed
}

// Deps returns how many sources the effect read on its last run.
func (e *Effect) Deps() int {
	return len(e.c.deps)
}

// OnMount runs fn once, untracked, in an effect owned by the current scope.
// Cleanups registered by fn run when the scope is disposed.
func OnMount(fn func()) {
	CreateEffect(func() Cleanup {
		Untracked(fn)
		return nil
	})
}

// OnUnmount registers fn to run when the current scope is disposed.
func OnUnmount(fn func()) {
	OnCleanup(fn)
}

// OnUpdate creates an effect that skips the callback on the first run.
// deps is called on every run to establish dependencies; callback runs
// untracked only when they change.
//
// Example:
//
//	OnUpdate(
//	    func() { _ = count.Get() },
//	    func() { fmt.Println("count changed") },
//	)
func OnUpdate(deps func(), callback func()) {
	first := true
	CreateEffect(func() Cleanup {
		deps()
		if first {
			first = false
			return nil
		}
		Untracked(callback)
		return nil
	})
}
