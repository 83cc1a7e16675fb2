package state

import (
	"slices"

	"github.com/samber/lo"
)

// SliceSignal is a Signal[[]T] with copy-on-write slice helpers.
// Every helper builds a new slice, so values handed out by Get are never
// mutated behind a reader's back.
type SliceSignal[T any] struct {
	*Signal[[]T]
}

// NewSliceSignal creates a new SliceSignal. A nil initial value becomes an
// empty slice.
func NewSliceSignal[T any](initial []T, opts ...SignalOption[[]T]) *SliceSignal[T] {
	if initial == nil {
		initial = []T{}
	}
	return &SliceSignal[T]{NewSignal(initial, opts...)}
}

// Append adds items to the end of the slice.
func (s *SliceSignal[T]) Append(items ...T) {
	if len(items) == 0 {
		return
	}
	s.Update(func(cur []T) []T {
		return append(slices.Clip(cur), items...)
	})
}

// RemoveAt removes the item at index.
// Does nothing if index is out of bounds.
func (s *SliceSignal[T]) RemoveAt(index int) {
	s.Update(func(cur []T) []T {
		if index < 0 || index >= len(cur) {
			return cur
		}
		return slices.Delete(slices.Clone(cur), index, index+1)
	})
}

// SetAt replaces the item at index.
// Does nothing if index is out of bounds.
func (s *SliceSignal[T]) SetAt(index int, item T) {
	s.Update(func(cur []T) []T {
		if index < 0 || index >= len(cur) {
			return cur
		}
		next := slices.Clone(cur)
		next[index] = item
		return next
	})
}

// Filter keeps only items that satisfy keep.
func (s *SliceSignal[T]) Filter(keep func(T) bool) {
	s.Update(func(cur []T) []T {
		return lo.Filter(cur, func(item T, _ int) bool { return keep(item) })
	})
}

// Clear removes all items.
func (s *SliceSignal[T]) Clear() {
	s.Set([]T{})
}

// Len returns the length of the slice and subscribes to the signal.
func (s *SliceSignal[T]) Len() int {
	return len(s.Get())
}
