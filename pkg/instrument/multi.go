package instrument

import "github.com/decantr-dev/decantr/pkg/state"

// multi fans every event out to several observers in order.
type multi []state.Observer

// Multi returns an observer that forwards every event to each non-nil
// observer in order.
func Multi(observers ...state.Observer) state.Observer {
	out := make(multi, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

func (m multi) FlushStarted() {
	for _, o := range m {
		o.FlushStarted()
	}
}

func (m multi) FlushFinished(s state.FlushStats) {
	for _, o := range m {
		o.FlushFinished(s)
	}
}

func (m multi) Ran(info state.RunInfo) {
	for _, o := range m {
		o.Ran(info)
	}
}
