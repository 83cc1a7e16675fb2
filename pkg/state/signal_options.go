package state

// SignalOption configures a Signal, Memo or Store.
type SignalOption[T any] func(*signalOptions[T])

// MemoOption configures a Memo.
type MemoOption[T any] = SignalOption[T]

type signalOptions[T any] struct {
	equals func(a, b T) bool
	name   string
}

// WithEquals replaces the equality used to decide whether a write (or a
// memo recomputation) changed the value. Returning true suppresses
// notification.
func WithEquals[T any](fn func(a, b T) bool) SignalOption[T] {
	return func(o *signalOptions[T]) {
		if fn != nil {
			o.equals = fn
		}
	}
}

// WithName labels the primitive for logs, metrics and traces.
func WithName[T any](name string) SignalOption[T] {
	return func(o *signalOptions[T]) {
		o.name = name
	}
}

func applySignalOptions[T any](opts []SignalOption[T]) signalOptions[T] {
	o := signalOptions[T]{equals: defaultEquals[T]}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func equalsOptions[T any](equals []func(a, b T) bool) []SignalOption[T] {
	if len(equals) == 0 || equals[0] == nil {
		return nil
	}
	return []SignalOption[T]{WithEquals(equals[0])}
}
