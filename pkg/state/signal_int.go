package state

// IntSignal is a Signal[int] with arithmetic helpers.
type IntSignal struct {
	*Signal[int]
}

// NewIntSignal creates a new IntSignal with the given initial value.
func NewIntSignal(initial int, opts ...SignalOption[int]) *IntSignal {
	return &IntSignal{NewSignal(initial, opts...)}
}

// Inc increments the value by 1.
func (s *IntSignal) Inc() {
	s.Add(1)
}

// Dec decrements the value by 1.
func (s *IntSignal) Dec() {
	s.Add(-1)
}

// Add adds n to the value.
func (s *IntSignal) Add(n int) {
	s.Update(func(v int) int { return v + n })
}

// Sub subtracts n from the value.
func (s *IntSignal) Sub(n int) {
	s.Add(-n)
}

// Float64Signal is a Signal[float64] with arithmetic helpers.
type Float64Signal struct {
	*Signal[float64]
}

// NewFloat64Signal creates a new Float64Signal with the given initial value.
func NewFloat64Signal(initial float64, opts ...SignalOption[float64]) *Float64Signal {
	return &Float64Signal{NewSignal(initial, opts...)}
}

// Add adds n to the value.
func (s *Float64Signal) Add(n float64) {
	s.Update(func(v float64) float64 { return v + n })
}

// Mul multiplies the value by n.
func (s *Float64Signal) Mul(n float64) {
	s.Update(func(v float64) float64 { return v * n })
}
