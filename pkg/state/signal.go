package state

// Signal is a reactive value container.
// When the value changes, every computation that read it is invalidated and
// the affected effects run again.
//
// A Signal belongs to the runtime that was current when it was created.
type Signal[T any] struct {
	src    *source
	value  T
	equals func(a, b T) bool
	name   string
}

// NewSignal creates a new signal with the given initial value.
func NewSignal[T any](initial T, opts ...SignalOption[T]) *Signal[T] {
	return newSignal(current(), initial, opts...)
}

func newSignal[T any](rt *Runtime, initial T, opts ...SignalOption[T]) *Signal[T] {
	o := applySignalOptions(opts)
	return &Signal[T]{
		src:    newSource(rt),
		value:  initial,
		equals: o.equals,
		name:   o.name,
	}
}

// Get returns the current value and, inside an effect or memo, subscribes
// that computation to the signal.
func (s *Signal[T]) Get() T {
	s.src.rt.track(s.src)
	return s.value
}

// Peek returns the current value without subscribing.
// Use this when you need to read a value without creating a dependency.
func (s *Signal[T]) Peek() T {
	return s.value
}

// Set stores value and notifies subscribers. Writing a value equal to the
// current one is a no-op. Outside a batch, effects depending on the signal
// run before Set returns.
func (s *Signal[T]) Set(value T) {
	if s.equals(s.value, value) {
		return
	}
	s.value = value
	s.src.rt.write(s.src)
}

// Update sets the signal to fn applied to the current value. If fn panics
// the value is left untouched.
//
// Example:
//
//	count.Update(func(n int) int { return n + 1 })
func (s *Signal[T]) Update(fn func(prev T) T) {
	s.Set(fn(s.value))
}

// ID returns the unique identifier for this signal.
func (s *Signal[T]) ID() uint64 {
	return s.src.id
}

// Name returns the label given with WithName.
func (s *Signal[T]) Name() string {
	return s.name
}

// Subscribers returns how many computations currently depend on the signal.
func (s *Signal[T]) Subscribers() int {
	return s.src.subs.len()
}

// Setter writes a signal created with CreateSignal. Calling it applies an
// updater to the previous value; Set stores a literal value.
type Setter[T any] func(update func(prev T) T)

// Set stores v.
func (set Setter[T]) Set(v T) {
	set(func(T) T { return v })
}

// CreateSignal creates a signal and returns its getter and setter.
// An optional equality function replaces the default comparison.
//
// Example:
//
//	count, setCount := CreateSignal(0)
//	setCount(func(n int) int { return n + 1 })
//	setCount.Set(10)
func CreateSignal[T any](initial T, equals ...func(a, b T) bool) (func() T, Setter[T]) {
	s := NewSignal(initial, equalsOptions(equals)...)
	return s.Get, Setter[T](s.Update)
}

// write schedules the subscribers of a source that just changed.
func (rt *Runtime) write(src *source) {
	if src.subs.len() == 0 {
		return
	}
	rt.startBatch()
	defer rt.endBatch()
	rt.notify(src, stateDirty)
}
