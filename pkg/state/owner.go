package state

// Owner is a disposal scope. Computations created while an owner is current
// belong to it, as do cleanups registered with OnCleanup and child owners.
// Disposing an owner disposes its children in reverse creation order, then
// runs its cleanups in reverse registration order. A computation's own
// cleanup runs before either.
//
// Every effect and memo has its own owner, so anything created inside a
// computation's body is torn down before that body runs again.
type Owner struct {
	id uint64
	rt *Runtime

	// parent is the enclosing owner. Context lookups walk it even for
	// detached owners created by CreateRoot.
	parent *Owner

	// attached reports whether parent disposes this owner.
	attached bool

	children []*Owner
	cleanups []func()
	values   map[any]any

	// node is the computation this owner scopes, nil for plain owners.
	node *computation

	disposed bool
}

func newOwner(rt *Runtime, parent *Owner, node *computation) *Owner {
	o := &Owner{
		id:     nextID(),
		rt:     rt,
		parent: parent,
		node:   node,
	}
	if parent != nil && !parent.disposed {
		parent.addChild(o)
		o.attached = true
	}
	return o
}

// NewOwner creates an owner that is disposed together with parent.
// A nil parent creates a top-level owner.
func NewOwner(parent *Owner) *Owner {
	rt := current()
	if parent != nil {
		rt = parent.rt
	}
	return newOwner(rt, parent, nil)
}

// GetOwner returns the owner new computations are attached to, or nil
// outside any scope.
func GetOwner() *Owner {
	return current().owner
}

// CreateRoot runs fn in a new detached owner and returns its result. The
// owner is not disposed with the enclosing scope; fn receives the function
// that disposes it. Context values of the enclosing scope stay visible.
//
// Example:
//
//	dispose := CreateRoot(func(dispose func()) func() {
//	    CreateEffect(func() Cleanup { log.Println(count.Get()); return nil })
//	    return dispose
//	})
//	defer dispose()
func CreateRoot[T any](fn func(dispose func()) T) T {
	rt := current()
	o := &Owner{
		id:     nextID(),
		rt:     rt,
		parent: rt.owner,
	}
	old := rt.setListener(nil)
	prevOwner := rt.setOwner(o)
	defer func() {
		rt.setListener(old)
		rt.setOwner(prevOwner)
	}()
	return fn(o.Dispose)
}

// RunWithOwner runs fn with o as the current owner and no listener.
// It returns ErrDisposed without calling fn when o has been disposed.
func RunWithOwner(o *Owner, fn func()) error {
	if o == nil {
		fn()
		return nil
	}
	if o.disposed {
		return ErrDisposed
	}
	rt := o.rt
	old := rt.setListener(nil)
	prevOwner := rt.setOwner(o)
	defer func() {
		rt.setListener(old)
		rt.setOwner(prevOwner)
	}()
	fn()
	return nil
}

// ID returns the owner's unique identifier.
func (o *Owner) ID() uint64 {
	return o.id
}

// Parent returns the enclosing owner, or nil.
func (o *Owner) Parent() *Owner {
	return o.parent
}

// IsDisposed reports whether Dispose has been called.
func (o *Owner) IsDisposed() bool {
	return o.disposed
}

func (o *Owner) addChild(child *Owner) {
	o.children = append(o.children, child)
}

func (o *Owner) removeChild(child *Owner) {
	for i, c := range o.children {
		if c == child {
			o.children = append(o.children[:i], o.children[i+1:]...)
			return
		}
	}
}

// OnCleanup registers fn to run when o is disposed or, for a computation's
// owner, before the computation runs again. If o is already disposed fn
// runs immediately.
func (o *Owner) OnCleanup(fn func()) {
	if fn == nil {
		return
	}
	if o.disposed {
		fn()
		return
	}
	o.cleanups = append(o.cleanups, fn)
}

// reset tears down what the last run of o's computation created, leaving o
// itself usable.
func (o *Owner) reset() {
	children := o.children
	o.children = nil
	for i := len(children) - 1; i >= 0; i-- {
		children[i].attached = false
		children[i].Dispose()
	}

	cleanups := o.cleanups
	o.cleanups = nil
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}

// Dispose disposes o and everything it owns. It is idempotent.
func (o *Owner) Dispose() {
	if o.disposed {
		return
	}
	o.disposed = true

	if o.attached && o.parent != nil {
		o.parent.removeChild(o)
		o.attached = false
	}

	if o.node != nil {
		o.rt.dispose(o.node)
	}

	o.reset()
	o.values = nil
}

// SetValue stores a context value on o.
func (o *Owner) SetValue(key, value any) {
	if o.values == nil {
		o.values = make(map[any]any)
	}
	o.values[key] = value
}

// Value returns the context value for key from o or the nearest ancestor
// that has one.
func (o *Owner) Value(key any) (any, bool) {
	for cur := o; cur != nil; cur = cur.parent {
		if v, ok := cur.values[key]; ok {
			return v, true
		}
	}
	return nil, false
}
