package state

import (
	"maps"

	"github.com/samber/lo"
)

// MapSignal is a Signal[map[K]V] with copy-on-write map helpers.
//
// Every write notifies every reader of the map. For per-key subscriptions
// use Store.
type MapSignal[K comparable, V any] struct {
	*Signal[map[K]V]
}

// NewMapSignal creates a new MapSignal. A nil initial value becomes an
// empty map.
func NewMapSignal[K comparable, V any](initial map[K]V, opts ...SignalOption[map[K]V]) *MapSignal[K, V] {
	if initial == nil {
		initial = make(map[K]V)
	}
	return &MapSignal[K, V]{NewSignal(initial, opts...)}
}

// SetKey sets key to value.
func (s *MapSignal[K, V]) SetKey(key K, value V) {
	s.Update(func(m map[K]V) map[K]V {
		return lo.Assign(m, map[K]V{key: value})
	})
}

// RemoveKey removes key. Removing an absent key is a no-op.
func (s *MapSignal[K, V]) RemoveKey(key K) {
	s.Update(func(m map[K]V) map[K]V {
		if _, ok := m[key]; !ok {
			return m
		}
		next := maps.Clone(m)
		delete(next, key)
		return next
	})
}

// HasKey reports whether key is present and subscribes to the signal.
func (s *MapSignal[K, V]) HasKey(key K) bool {
	_, ok := s.Get()[key]
	return ok
}

// Keys returns the keys in unspecified order and subscribes to the signal.
func (s *MapSignal[K, V]) Keys() []K {
	return lo.Keys(s.Get())
}

// Len returns the number of entries and subscribes to the signal.
func (s *MapSignal[K, V]) Len() int {
	return len(s.Get())
}
