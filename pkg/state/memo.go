package state

// Memo is a cached computation that tracks its dependencies.
//
// A memo computes once when it is created. When a dependency changes the
// memo is only marked stale; it recomputes the next time it is read, or
// when an effect depending on it is flushed and needs to know whether the
// value actually changed. A stale memo that nobody reads never recomputes.
//
// If a recomputation yields a value equal to the cached one, computations
// depending on the memo are not re-run.
type Memo[T any] struct {
	c      *computation
	fn     func() T
	value  T
	init   bool
	equals func(a, b T) bool
}

// NewMemo creates a memo and computes its initial value. If the first
// computation panics the memo is disposed and the panic propagates.
//
// Example:
//
//	fullName := NewMemo(func() string {
//	    return first.Get() + " " + last.Get()
//	})
func NewMemo[T any](fn func() T, opts ...MemoOption[T]) *Memo[T] {
	o := applySignalOptions(opts)

	rt := current()
	c := rt.newComputation(KindMemo, o.name)
	c.out = newSource(rt)
	c.out.node = c

	m := &Memo[T]{c: c, fn: fn, equals: o.equals}
	c.execute = m.recompute

	if parent := c.scope.parent; parent != nil && parent.disposed {
		rt.logger.Debug("state: memo created under a disposed owner", "id", c.id)
		Untracked(func() { m.value = fn() })
		m.init = true
		m.Dispose()
		return m
	}

	rt.startBatch()
	defer rt.endBatch()

	ok := false
	defer func() {
		if !ok {
			m.Dispose()
		}
	}()
	rt.exec(c)
	ok = true
	return m
}

// CreateMemo creates a memo and returns its getter.
// An optional equality function replaces the default comparison.
func CreateMemo[T any](fn func() T, equals ...func(a, b T) bool) func() T {
	return NewMemo(fn, equalsOptions(equals)...).Get
}

// Get returns the memo's value, recomputing it first if it is stale, and
// subscribes the current computation to the memo.
//
// A memo reading itself while computing gets its previous value; in
// DevMode it panics with ErrCircularRead instead.
func (m *Memo[T]) Get() T {
	c := m.c
	rt := c.rt
	if rt.listener == c {
		if DevMode {
			panic(ErrCircularRead)
		}
		return m.value
	}
	rt.track(c.out)
	m.update()
	return m.value
}

// Peek returns the memo's value without subscribing.
// Still recomputes if the value is stale.
func (m *Memo[T]) Peek() T {
	if m.c.running {
		return m.value
	}
	m.update()
	return m.value
}

func (m *Memo[T]) update() {
	c := m.c
	if c.disposed || c.running || c.state == stateClean {
		return
	}
	c.rt.startBatch()
	defer c.rt.endBatch()
	c.rt.refresh(c)
}

// recompute runs the memo body and publishes the result when it differs
// from the cached value. A panicking body leaves the memo dirty so the next
// read retries.
func (m *Memo[T]) recompute() {
	c := m.c
	c.scope.reset()
	c.state = stateClean

	ok := false
	defer func() {
		if !ok {
			c.state = stateDirty
			c.errored = true
		}
	}()

	var next T
	c.rt.runTracked(c, func() {
		next = m.fn()
	})
	ok = true
	c.errored = false

	if m.init && m.equals(m.value, next) {
		return
	}
	m.value = next
	m.init = true
	c.rt.changed(c.out)
}

// Dispose removes the memo from the graph. Its value stays readable but
// no longer updates. Safe to call more than once.
func (m *Memo[T]) Dispose() {
	m.c.scope.Dispose()
}

// ID returns the unique identifier for this memo.
func (m *Memo[T]) ID() uint64 {
	return m.c.id
}

// Name returns the label given with WithName.
func (m *Memo[T]) Name() string {
	return m.c.name
}

// Stale reports whether the memo will recompute on its next read.
func (m *Memo[T]) Stale() bool {
	return m.c.state != stateClean && !m.c.disposed
}
