package state

import (
	"log/slog"
)

// DefaultMaxFlushPasses bounds how many times one flush may drain the queue.
const DefaultMaxFlushPasses = 10000

// Runtime is the reactive graph and its scheduler.
//
// It is the single context object behind every primitive: the arena of live
// computations, the tracking slot (current listener and owner), the batch
// depth and the dirty queue. Primitives bind to the runtime that is current
// when they are created.
//
// A Runtime is not safe for concurrent use. All reads, writes and disposals
// on one runtime must happen on one goroutine; hand values to it from other
// goroutines through channels.
type Runtime struct {
	// nodes maps computation IDs to live computations. Sources hold IDs, so
	// removing an entry here is what makes a computation unreachable.
	nodes map[uint64]*computation

	// listener is the computation currently tracking reads, nil when untracked.
	listener *computation

	// owner is the scope that owns newly created computations.
	owner *Owner

	// batchDepth tracks nested Batch calls and implicit batches around
	// computation creation. The queue flushes when it returns to zero.
	batchDepth int

	// queue holds dirty effects in the order they were dirtied.
	queue []*computation

	// flushing is set while the flush loop drains the queue. Writes made
	// during a flush enqueue for the next pass instead of flushing again.
	flushing bool

	logger    *slog.Logger
	onError   func(error)
	observer  Observer
	maxPasses int
	maxRuns   int
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithLogger sets the logger used for debug output and recovered failures.
// Default: slog.Default().
func WithLogger(logger *slog.Logger) RuntimeOption {
	return func(rt *Runtime) {
		if logger != nil {
			rt.logger = logger
		}
	}
}

// WithErrorHandler routes computation failures raised during a flush to fn
// instead of re-panicking them at the write that triggered the flush.
func WithErrorHandler(fn func(error)) RuntimeOption {
	return func(rt *Runtime) {
		rt.onError = fn
	}
}

// WithObserver installs an Observer notified about flushes and runs.
func WithObserver(o Observer) RuntimeOption {
	return func(rt *Runtime) {
		if o != nil {
			rt.observer = o
		}
	}
}

// WithMaxFlushPasses bounds the number of queue drains in a single flush.
// Zero disables the limit.
func WithMaxFlushPasses(n int) RuntimeOption {
	return func(rt *Runtime) {
		rt.maxPasses = n
	}
}

// WithMaxRunsPerFlush bounds the number of effect runs in a single flush.
// Zero (the default) disables the limit.
func WithMaxRunsPerFlush(n int) RuntimeOption {
	return func(rt *Runtime) {
		rt.maxRuns = n
	}
}

// NewRuntime creates an empty runtime.
func NewRuntime(opts ...RuntimeOption) *Runtime {
	rt := &Runtime{
		nodes:     make(map[uint64]*computation),
		logger:    slog.Default(),
		observer:  nopObserver{},
		maxPasses: DefaultMaxFlushPasses,
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

var (
	defaultRuntime = NewRuntime()

	// active is the runtime installed by Runtime.Run, nil outside Run.
	active *Runtime
)

// Default returns the process-wide runtime used outside Runtime.Run.
func Default() *Runtime {
	return defaultRuntime
}

// current returns the runtime new primitives bind to.
func current() *Runtime {
	if active != nil {
		return active
	}
	return defaultRuntime
}

// Run makes rt the current runtime while fn executes. Primitives created
// inside fn belong to rt; package-level Batch, Untrack and OnCleanup act on
// rt. The previous runtime is restored even if fn panics.
func (rt *Runtime) Run(fn func()) {
	prev := active
	active = rt
	defer func() { active = prev }()
	fn()
}

// Size returns the number of live computations in the arena.
func (rt *Runtime) Size() int {
	return len(rt.nodes)
}

// Pending returns the number of effects waiting for a flush.
func (rt *Runtime) Pending() int {
	return len(rt.queue)
}

// Listening reports whether a computation is currently tracking reads.
func (rt *Runtime) Listening() bool {
	return rt.listener != nil
}
