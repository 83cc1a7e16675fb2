package instrument

import (
	"io"
	"log/slog"
	"testing"

	"github.com/decantr-dev/decantr/pkg/state"
)

// newRuntime returns a runtime with a silent logger and the given observer.
func newRuntime(o state.Observer, opts ...state.RuntimeOption) *state.Runtime {
	base := []state.RuntimeOption{
		state.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		state.WithObserver(o),
	}
	return state.NewRuntime(append(base, opts...)...)
}

// drive creates a signal read by one effect, writes it twice, then makes the
// effect panic once with the error routed to a handler installed by the
// caller.
func drive(t *testing.T, rt *state.Runtime) {
	t.Helper()
	rt.Run(func() {
		s := state.NewSignal(0)
		state.CreateEffect(func() state.Cleanup {
			if s.Get() == 3 {
				panic("three")
			}
			return nil
		}, state.EffectName("watch"))

		s.Set(1)
		s.Set(2)
		s.Set(3)
	})
}
