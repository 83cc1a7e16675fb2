package state

// BoolSignal is a Signal[bool] with toggle helpers.
type BoolSignal struct {
	*Signal[bool]
}

// NewBoolSignal creates a new BoolSignal with the given initial value.
func NewBoolSignal(initial bool, opts ...SignalOption[bool]) *BoolSignal {
	return &BoolSignal{NewSignal(initial, opts...)}
}

// Toggle flips the value.
func (s *BoolSignal) Toggle() {
	s.Update(func(v bool) bool { return !v })
}

// SetTrue sets the value to true.
func (s *BoolSignal) SetTrue() {
	s.Set(true)
}

// SetFalse sets the value to false.
func (s *BoolSignal) SetFalse() {
	s.Set(false)
}
