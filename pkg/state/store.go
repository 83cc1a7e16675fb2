package state

import "slices"

// Store is a keyed collection with one reactive cell per key.
//
// Reading a key subscribes only to that key, so writing one key re-runs
// only the computations that read it. Computations that enumerate the
// store (Keys, Len) subscribe to its key set and re-run when a key is
// added or removed, not when an existing key changes value.
type Store[K comparable, V any] struct {
	rt      *Runtime
	name    string
	equals  func(a, b V) bool
	signals map[K]*Signal[slot[V]]

	// order holds the present keys in insertion order.
	order []K

	// keys is bumped on every structural change.
	keys *Signal[uint64]
}

// slot is the value of a key's cell; ok is false for absent keys.
type slot[V any] struct {
	v  V
	ok bool
}

// NewStore creates a store seeded with initial. Seeded keys are sorted when
// K is a string or integer type and otherwise follow map iteration order.
// Pass WithEquals to replace the per-value equality.
//
// Example:
//
//	users := NewStore(map[string]User{"ada": {Name: "Ada"}})
//	CreateEffect(func() Cleanup {
//	    fmt.Println(users.Get("ada").Name) // re-runs only when "ada" changes
//	    return nil
//	})
func NewStore[K comparable, V any](initial map[K]V, opts ...SignalOption[V]) *Store[K, V] {
	o := applySignalOptions(opts)
	rt := current()
	s := &Store[K, V]{
		rt:      rt,
		name:    o.name,
		equals:  o.equals,
		signals: make(map[K]*Signal[slot[V]], len(initial)),
		keys:    newSignal[uint64](rt, 0),
	}
	for k, v := range initial {
		s.signal(k).value = slot[V]{v: v, ok: true}
		s.order = append(s.order, k)
	}
	sortKeys(s.order)
	return s
}

// CreateStore is NewStore without options.
func CreateStore[K comparable, V any](initial map[K]V) *Store[K, V] {
	return NewStore(initial)
}

// signal returns the cell for k, creating an absent one on first access.
func (s *Store[K, V]) signal(k K) *Signal[slot[V]] {
	if sig, ok := s.signals[k]; ok {
		return sig
	}
	sig := newSignal(s.rt, slot[V]{}, WithEquals(s.slotEquals))
	s.signals[k] = sig
	return sig
}

func (s *Store[K, V]) slotEquals(a, b slot[V]) bool {
	if a.ok != b.ok {
		return false
	}
	return !a.ok || s.equals(a.v, b.v)
}

// Get returns the value for k, or the zero value when k is absent, and
// subscribes the current computation to k. Reading an absent key inside a
// computation keeps an empty cell for k so the reader is notified when k is
// added; Delete and Compact drop such cells once nothing reads them.
func (s *Store[K, V]) Get(k K) V {
	return s.read(k).v
}

// Lookup is Get that also reports whether k is present.
func (s *Store[K, V]) Lookup(k K) (V, bool) {
	sl := s.read(k)
	return sl.v, sl.ok
}

// Has reports whether k is present and subscribes to k.
func (s *Store[K, V]) Has(k K) bool {
	return s.read(k).ok
}

// read returns k's slot and subscribes the current computation. Absent keys
// read outside a computation get no cell.
func (s *Store[K, V]) read(k K) slot[V] {
	if sig, ok := s.signals[k]; ok {
		return sig.Get()
	}
	if s.rt.listener == nil {
		return slot[V]{}
	}
	return s.signal(k).Get()
}

// Peek returns the value for k without subscribing.
func (s *Store[K, V]) Peek(k K) (V, bool) {
	sig, ok := s.signals[k]
	if !ok {
		var zero V
		return zero, false
	}
	sl := sig.Peek()
	return sl.v, sl.ok
}

// Set stores v under k. Only computations that read k are notified, plus
// key-set readers when k was absent.
func (s *Store[K, V]) Set(k K, v V) {
	s.rt.Batch(func() {
		sig := s.signal(k)
		added := !sig.Peek().ok
		sig.Set(slot[V]{v: v, ok: true})
		if added {
			s.order = append(s.order, k)
			s.bump()
		}
	})
}

// Update sets k to fn applied to its current value (the zero value when
// absent). If fn panics the store is left untouched.
func (s *Store[K, V]) Update(k K, fn func(prev V) V) {
	prev, _ := s.Peek(k)
	s.Set(k, fn(prev))
}

// Delete removes k. Readers of k see the zero value and Lookup reports
// false. Deleting an absent key is a no-op. The cell for k is dropped once
// no computation reads it.
func (s *Store[K, V]) Delete(k K) {
	sig, ok := s.signals[k]
	if !ok {
		return
	}
	if !sig.Peek().ok {
		s.drop(k, sig)
		return
	}
	s.rt.Batch(func() {
		sig.Set(slot[V]{})
		if i := slices.Index(s.order, k); i >= 0 {
			s.order = slices.Delete(s.order, i, i+1)
		}
		s.bump()
	})
	s.drop(k, sig)
}

// Compact drops the cells of absent keys that no computation reads and
// returns how many were dropped.
func (s *Store[K, V]) Compact() int {
	n := 0
	for k, sig := range s.signals {
		if s.drop(k, sig) {
			n++
		}
	}
	return n
}

// Cells returns the number of per-key cells, present or not.
func (s *Store[K, V]) Cells() int {
	return len(s.signals)
}

// drop removes k's cell when k is absent and unread.
func (s *Store[K, V]) drop(k K, sig *Signal[slot[V]]) bool {
	if sig.Peek().ok || sig.src.subs.len() > 0 || s.signals[k] != sig {
		return false
	}
	delete(s.signals, k)
	return true
}

// Keys returns the present keys in insertion order and subscribes to the
// key set.
func (s *Store[K, V]) Keys() []K {
	s.keys.Get()
	return slices.Clone(s.order)
}

// Len returns the number of present keys and subscribes to the key set.
func (s *Store[K, V]) Len() int {
	s.keys.Get()
	return len(s.order)
}

// Snapshot copies the present entries without subscribing.
func (s *Store[K, V]) Snapshot() map[K]V {
	out := make(map[K]V, len(s.order))
	for _, k := range s.order {
		out[k] = s.signals[k].Peek().v
	}
	return out
}

// Name returns the label given with WithName.
func (s *Store[K, V]) Name() string {
	return s.name
}

func (s *Store[K, V]) bump() {
	s.keys.Set(s.keys.Peek() + 1)
}

// sortKeys gives seeded keys a stable order for the common key types.
func sortKeys[K comparable](keys []K) {
	switch ks := any(keys).(type) {
	case []string:
		slices.Sort(ks)
	case []int:
		slices.Sort(ks)
	case []int64:
		slices.Sort(ks)
	case []uint64:
		slices.Sort(ks)
	case []int32:
		slices.Sort(ks)
	case []uint32:
		slices.Sort(ks)
	}
}
