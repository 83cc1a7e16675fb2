package state

import (
	"fmt"

	rterrors "github.com/decantr-dev/decantr/internal/errors"
)

// track registers src as a dependency of the current listener.
// It is idempotent within one run.
func (rt *Runtime) track(src *source) {
	c := rt.listener
	if c == nil {
		if cur := current(); cur != rt && cur.listener != nil {
			cur.foreignRead(src)
		}
		return
	}
	if c.disposed {
		return
	}
	if _, ok := c.depIDs[src.id]; ok {
		return
	}
	c.depIDs[src.id] = struct{}{}
	c.deps = append(c.deps, src)
	src.subs.add(c.id)
}

// foreignRead reports a read of src, owned by another runtime, made while
// one of rt's computations is tracking. No edge can be recorded.
func (rt *Runtime) foreignRead(src *source) {
	c := rt.listener
	if DevMode {
		panic(rterrors.New(rterrors.CodeForeignRead).
			WithDetail(fmt.Sprintf("%s %d read source %d", c.kind, c.id, src.id)).
			WithSuggestion("Create the signal inside the same Runtime.Run, or read it with Peek"))
	}
	rt.logger.Debug("state: read from another runtime not tracked",
		"id", c.id, "kind", c.kind.String(), "source", src.id)
}

// setListener swaps the tracking slot and returns the previous listener.
func (rt *Runtime) setListener(c *computation) *computation {
	old := rt.listener
	rt.listener = c
	return old
}

// setOwner swaps the owner slot and returns the previous owner.
func (rt *Runtime) setOwner(o *Owner) *Owner {
	old := rt.owner
	rt.owner = o
	return old
}

// Untrack runs fn without registering the reads it makes as dependencies of
// the enclosing computation, and returns fn's result.
//
// Example:
//
//	CreateEffect(func() Cleanup {
//	    // Re-runs when query changes, not when limit changes.
//	    search(query.Get(), Untrack(limit.Get))
//	    return nil
//	})
func Untrack[T any](fn func() T) T {
	rt := current()
	old := rt.setListener(nil)
	defer rt.setListener(old)
	return fn()
}

// Untracked runs fn without tracking signal reads as dependencies.
//
// Note: for single signal reads, use Peek instead which is clearer in intent.
func Untracked(fn func()) {
	rt := current()
	old := rt.setListener(nil)
	defer rt.setListener(old)
	fn()
}

// withScope runs fn with c as the listener and o as the owner, restoring
// both afterwards even if fn panics.
func (rt *Runtime) withScope(c *computation, o *Owner, fn func()) {
	oldListener := rt.setListener(c)
	oldOwner := rt.setOwner(o)
	defer func() {
		rt.setListener(oldListener)
		rt.setOwner(oldOwner)
	}()
	fn()
}
