package state

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunInstallsRuntime(t *testing.T) {
	rt := NewRuntime()
	require.Same(t, Default(), current())

	rt.Run(func() {
		assert.Same(t, rt, current())
	})
	assert.Same(t, Default(), current())

	assert.Panics(t, func() {
		rt.Run(func() { panic("x") })
	})
	assert.Same(t, Default(), current())
}

func TestPrimitivesBindToCreationRuntime(t *testing.T) {
	rt := NewRuntime()
	var s *Signal[int]
	runs := 0
	rt.Run(func() {
		s = NewSignal(0)
		CreateEffect(counter(&runs, func() { s.Get() }))
	})
	assert.Equal(t, 1, rt.Size())
	assert.Equal(t, 0, Default().Size())

	s.Set(1)
	assert.Equal(t, 2, runs)
}

func TestUntrack(t *testing.T) {
	withRuntime(t, func(rt *Runtime) {
		a := NewSignal(1)
		b := NewSignal(10)
		var sums []int
		CreateEffect(func() Cleanup {
			sums = append(sums, a.Get()+Untrack(b.Get))
			return nil
		})

		b.Set(20)
		assert.Equal(t, []int{11}, sums)

		a.Set(2)
		assert.Equal(t, []int{11, 22}, sums)
	})
}

func TestUntracked(t *testing.T) {
	withRuntime(t, func(rt *Runtime) {
		s := NewSignal(1)
		runs := 0
		CreateEffect(func() Cleanup {
			runs++
			assert.True(t, rt.Listening())
			Untracked(func() {
				assert.False(t, rt.Listening())
				s.Get()
			})
			assert.True(t, rt.Listening())
			return nil
		})

		s.Set(2)
		assert.Equal(t, 1, runs)
		assert.False(t, rt.Listening())
	})
}

func TestTrackingRestoredAfterPanic(t *testing.T) {
	withRuntime(t, func(rt *Runtime) {
		assert.Panics(t, func() {
			NewEffect(func() Cleanup { panic("fail") })
		})
		assert.False(t, rt.Listening())
		assert.Nil(t, GetOwner())
	})
}

func TestComputationError(t *testing.T) {
	cause := errors.New("cause")
	err := &ComputationError{ID: 7, Kind: KindMemo, Value: cause}

	assert.Equal(t, "memo #7 panicked: cause", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrComputation)
	assert.NotErrorIs(t, err, ErrFlushLimit)

	plain := &ComputationError{ID: 1, Kind: KindEffect, Value: 42}
	assert.Nil(t, plain.Unwrap())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "effect", KindEffect.String())
	assert.Equal(t, "memo", KindMemo.String())
	assert.Equal(t, "unknown", Kind(0).String())
}

func TestIDSet(t *testing.T) {
	var s idSet
	for id := uint64(1); id <= 40; id++ {
		assert.True(t, s.add(id))
	}
	assert.False(t, s.add(3))

	for id := uint64(1); id <= 30; id++ {
		assert.True(t, s.remove(id))
	}
	assert.False(t, s.remove(1))
	assert.Equal(t, 10, s.len())
	assert.False(t, s.has(30))
	assert.True(t, s.has(31))

	snap := s.snapshot()
	require.Len(t, snap, 10)
	assert.Equal(t, uint64(31), snap[0])
	assert.Equal(t, uint64(40), snap[9])
	assert.Less(t, len(s.ids), 40)
}

func TestForeignReadIsLoggedAndUntracked(t *testing.T) {
	var s *Signal[int]
	NewRuntime().Run(func() { s = NewSignal(1) })

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	other := NewRuntime(WithLogger(logger))

	runs := 0
	other.Run(func() {
		CreateEffect(counter(&runs, func() { s.Get() }))
	})
	assert.Contains(t, logs.String(), "read from another runtime")
	assert.Equal(t, 0, s.Subscribers())

	s.Set(2)
	assert.Equal(t, 1, runs)
}

func TestForeignReadPanicsInDevMode(t *testing.T) {
	DevMode = true
	defer func() { DevMode = false }()

	var s *Signal[int]
	NewRuntime().Run(func() { s = NewSignal(1) })

	other := NewRuntime()
	var r any
	other.Run(func() {
		r = capturePanic(func() {
			CreateEffect(func() Cleanup {
				s.Get()
				return nil
			})
		})
	})

	err, ok := r.(error)
	require.True(t, ok, "expected an error panic, got %v", r)
	assert.ErrorIs(t, err, ErrForeignRead)
	assert.Equal(t, 0, other.Size())
}

func TestForeignPeekAndUntrackAreSilent(t *testing.T) {
	DevMode = true
	defer func() { DevMode = false }()

	var s *Signal[int]
	NewRuntime().Run(func() { s = NewSignal(1) })

	NewRuntime().Run(func() {
		assert.Nil(t, capturePanic(func() {
			CreateEffect(func() Cleanup {
				s.Peek()
				Untracked(func() { s.Get() })
				return nil
			})
		}))
	})
}
