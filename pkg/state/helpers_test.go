package state

import (
	"io"
	"log/slog"
	"testing"
)

// withRuntime runs fn inside a fresh runtime whose logger discards output.
func withRuntime(t *testing.T, fn func(rt *Runtime), opts ...RuntimeOption) {
	t.Helper()
	base := []RuntimeOption{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}
	rt := NewRuntime(append(base, opts...)...)
	rt.Run(func() { fn(rt) })
}

// capturePanic returns the value fn panicked with, or nil.
func capturePanic(fn func()) (r any) {
	defer func() { r = recover() }()
	fn()
	return nil
}

// counter returns an effect body that counts its runs after reading read.
func counter(runs *int, read func()) func() Cleanup {
	return func() Cleanup {
		read()
		*runs++
		return nil
	}
}

type recordingObserver struct {
	started int
	flushes []FlushStats
	runs    []RunInfo
}

func (r *recordingObserver) FlushStarted() { r.started++ }

func (r *recordingObserver) FlushFinished(s FlushStats) { r.flushes = append(r.flushes, s) }

func (r *recordingObserver) Ran(info RunInfo) { r.runs = append(r.runs, info) }
