package state

import "sync/atomic"

// globalIDCounter is the source of unique IDs for all reactive primitives.
// IDs are shared across runtimes so an ID never names two nodes.
var globalIDCounter uint64

// nextID returns the next unique ID for a reactive primitive.
// IDs start at 1, are monotonically increasing and never reused.
func nextID() uint64 {
	return atomic.AddUint64(&globalIDCounter, 1)
}
