package state

import (
	"fmt"

	rterrors "github.com/decantr-dev/decantr/internal/errors"
)

// Sentinel errors. Errors produced by the runtime carry the same registry
// code as these values, so match them with errors.Is.
var (
	// ErrFlushLimit is raised when a flush drains the queue more times than
	// the runtime's pass limit (see WithMaxFlushPasses). It almost always
	// means an effect writes a signal that it also reads.
	ErrFlushLimit error = rterrors.New(rterrors.CodeFlushLimit)

	// ErrRunBudget is raised when a single flush runs more effects than
	// allowed by WithMaxRunsPerFlush.
	ErrRunBudget error = rterrors.New(rterrors.CodeRunawayEffect)

	// ErrCircularRead is raised in DevMode when a memo reads its own value
	// while computing it.
	ErrCircularRead error = rterrors.New(rterrors.CodeCircularRead)

	// ErrDisposed is returned when running code under an owner that has
	// already been disposed.
	ErrDisposed error = rterrors.New(rterrors.CodeDisposed)

	// ErrForeignRead is raised in DevMode when a computation reads a signal
	// or memo that belongs to another runtime.
	ErrForeignRead error = rterrors.New(rterrors.CodeForeignRead)

	// ErrComputation matches every *ComputationError.
	ErrComputation error = rterrors.New(rterrors.CodeComputation)
)

// ComputationError reports a panic raised by an effect or memo body while
// the scheduler was re-running it.
type ComputationError struct {
	ID   uint64
	Name string
	Kind Kind

	// Value is the recovered panic value.
	Value any

	// Stack is the goroutine stack captured at recovery.
	Stack []byte
}

func newComputationError(c *computation, value any, stack []byte) *ComputationError {
	return &ComputationError{
		ID:    c.id,
		Name:  c.name,
		Kind:  c.kind,
		Value: value,
		Stack: stack,
	}
}

// Error implements the error interface.
func (e *ComputationError) Error() string {
	name := e.Name
	if name == "" {
		name = fmt.Sprintf("#%d", e.ID)
	}
	return fmt.Sprintf("%s %s panicked: %v", e.Kind, name, e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *ComputationError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Is lets errors.Is(err, ErrComputation) match any ComputationError.
func (e *ComputationError) Is(target error) bool {
	return target == ErrComputation
}
