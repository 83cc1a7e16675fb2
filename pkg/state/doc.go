// Package state is a single-threaded reactive state engine.
//
// A program declares Signals (mutable values), Memos (cached values
// derived from other values) and Effects (side effects that re-run when
// what they read changes). Reads inside a memo or effect are tracked
// automatically; nothing is subscribed by hand.
//
//	count := state.NewSignal(1)
//	double := state.NewMemo(func() int { return count.Get() * 2 })
//	state.CreateEffect(func() state.Cleanup {
//	    fmt.Println("double =", double.Get())
//	    return nil
//	})
//	count.Set(2) // prints "double = 4" before Set returns
//
// # Scheduling
//
// Writing a signal marks its direct dependents dirty and everything below
// them as needing a check. Effects are queued; memos are not. The queue is
// flushed when the outermost Batch returns, or right after the write when
// there is no batch. During a flush a queued effect first asks the memos it
// read whether they changed, pulling recomputation only where needed, so an
// effect never observes a mix of old and new values and never runs twice
// for one change.
//
// # Ownership
//
// Effects and memos created inside another computation, or inside
// CreateRoot, are owned by it and disposed when it re-runs or is disposed.
// Cleanups returned by effects and registered with OnCleanup run in
// reverse order.
//
// # Runtimes
//
// All state lives in a Runtime. Package-level constructors use the
// runtime made current by Runtime.Run, or Default. A Runtime must be
// driven from a single goroutine.
package state
