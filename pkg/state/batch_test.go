package state

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchCoalesces(t *testing.T) {
	withRuntime(t, func(rt *Runtime) {
		x := NewSignal(0)
		y := NewSignal(0)
		runs := 0
		CreateEffect(counter(&runs, func() {
			x.Get()
			y.Get()
		}))

		Batch(func() {
			x.Set(1)
			y.Set(1)
			assert.Equal(t, 1, runs)
			assert.Equal(t, 1, rt.Pending())
		})
		assert.Equal(t, 2, runs)
		assert.Equal(t, 0, rt.Pending())
	})
}

func TestNestedBatchFlushesAtOutermost(t *testing.T) {
	withRuntime(t, func(rt *Runtime) {
		s := NewSignal(0)
		runs := 0
		CreateEffect(counter(&runs, func() { s.Get() }))

		Batch(func() {
			Batch(func() {
				s.Set(1)
			})
			assert.Equal(t, 1, runs)
			s.Set(2)
		})
		assert.Equal(t, 2, runs)
	})
}

func TestBatchFlushesWhenBodyPanics(t *testing.T) {
	withRuntime(t, func(rt *Runtime) {
		s := NewSignal(0)
		var seen []int
		CreateEffect(func() Cleanup {
			seen = append(seen, s.Get())
			return nil
		})

		assert.PanicsWithValue(t, "abort", func() {
			Batch(func() {
				s.Set(1)
				panic("abort")
			})
		})
		assert.Equal(t, []int{0, 1}, seen)
		assert.Equal(t, 0, rt.Pending())
	})
}

func TestUpdaterFormOutsideAndInsideBatch(t *testing.T) {
	withRuntime(t, func(rt *Runtime) {
		count, setCount := CreateSignal(0)
		var seen []int
		CreateEffect(func() Cleanup {
			seen = append(seen, count())
			return nil
		})
		inc := func(prev int) int { return prev + 1 }

		setCount(inc)
		setCount(inc)
		assert.Equal(t, 2, count())
		assert.Equal(t, []int{0, 1, 2}, seen)

		Batch(func() {
			setCount(inc)
			setCount(inc)
		})
		assert.Equal(t, 4, count())
		assert.Equal(t, []int{0, 1, 2, 4}, seen)
	})
}

func TestTxNamed(t *testing.T) {
	Debug.LogFlushes = true
	defer func() { Debug = DefaultDebugConfig() }()

	withRuntime(t, func(rt *Runtime) {
		s := NewSignal(0)
		runs := 0
		CreateEffect(counter(&runs, func() { s.Get() }))

		TxNamed("reset", func() {
			s.Set(1)
			s.Set(0)
			s.Set(2)
		})
		Tx(func() { s.Set(3) })
		assert.Equal(t, 3, runs)
	})
}

func TestFlushErrorIsolation(t *testing.T) {
	withRuntime(t, func(rt *Runtime) {
		s := NewSignal(1)
		CreateEffect(func() Cleanup {
			if s.Get() == 2 {
				panic("first failed")
			}
			return nil
		}, EffectName("first"))
		var seen []int
		CreateEffect(func() Cleanup {
			seen = append(seen, s.Get())
			return nil
		})

		r := capturePanic(func() { s.Set(2) })
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)

		var ce *ComputationError
		require.ErrorAs(t, err, &ce)
		assert.ErrorIs(t, err, ErrComputation)
		assert.Equal(t, "first", ce.Name)
		assert.Equal(t, KindEffect, ce.Kind)
		assert.Equal(t, "first failed", ce.Value)
		assert.NotEmpty(t, ce.Stack)
		assert.Equal(t, "effect first panicked: first failed", ce.Error())

		assert.Equal(t, []int{1, 2}, seen)
		assert.Equal(t, 0, rt.Pending())

		// The failed effect keeps its dependency and recovers on the next change.
		assert.NotPanics(t, func() { s.Set(3) })
		assert.Equal(t, []int{1, 2, 3}, seen)
	})
}

func TestFlushJoinsMultipleErrors(t *testing.T) {
	withRuntime(t, func(rt *Runtime) {
		s := NewSignal(0)
		for i := 0; i < 2; i++ {
			CreateEffect(func() Cleanup {
				if s.Get() > 0 {
					panic(errors.New("bad"))
				}
				return nil
			})
		}

		r := capturePanic(func() { s.Set(1) })
		err, ok := r.(error)
		require.True(t, ok)

		joined, ok := err.(interface{ Unwrap() []error })
		require.True(t, ok)
		assert.Len(t, joined.Unwrap(), 2)
		assert.ErrorIs(t, err, ErrComputation)
	})
}

func TestFlushErrorHandler(t *testing.T) {
	var handled []error
	withRuntime(t, func(rt *Runtime) {
		s := NewSignal(0)
		cause := errors.New("db down")
		CreateEffect(func() Cleanup {
			if s.Get() > 0 {
				panic(cause)
			}
			return nil
		})

		assert.NotPanics(t, func() { s.Set(1) })
		require.Len(t, handled, 1)
		assert.ErrorIs(t, handled[0], cause)
		assert.ErrorIs(t, handled[0], ErrComputation)
	}, WithErrorHandler(func(err error) { handled = append(handled, err) }))
}

func TestFlushPassLimit(t *testing.T) {
	withRuntime(t, func(rt *Runtime) {
		s := NewSignal(0)
		runs := 0
		CreateEffect(func() Cleanup {
			runs++
			if v := s.Get(); v > 0 {
				s.Set(v + 1)
			}
			return nil
		})

		r := capturePanic(func() { s.Set(1) })
		err, ok := r.(error)
		require.True(t, ok)
		assert.ErrorIs(t, err, ErrFlushLimit)
		assert.Equal(t, 6, runs)
		assert.Equal(t, 6, s.Peek())
		assert.Equal(t, 0, rt.Pending())
	}, WithMaxFlushPasses(5))
}

func TestFlushRunBudget(t *testing.T) {
	var handled []error
	withRuntime(t, func(rt *Runtime) {
		s := NewSignal(0)
		runs := 0
		CreateEffect(func() Cleanup {
			runs++
			if v := s.Get(); v > 0 {
				s.Set(v + 1)
			}
			return nil
		})

		assert.NotPanics(t, func() { s.Set(1) })
		require.Len(t, handled, 1)
		assert.ErrorIs(t, handled[0], ErrRunBudget)
		assert.Equal(t, 4, runs)
		assert.Equal(t, 0, rt.Pending())
	}, WithMaxRunsPerFlush(3), WithErrorHandler(func(err error) { handled = append(handled, err) }))
}

func TestFlushObserver(t *testing.T) {
	obs := &recordingObserver{}
	withRuntime(t, func(rt *Runtime) {
		s := NewSignal(1)
		parity := NewMemo(func() int { return s.Get() % 2 }, WithName[int]("parity"))
		CreateEffect(func() Cleanup {
			parity.Get()
			return nil
		}, EffectName("watch"))
		obs.runs = nil

		s.Set(3)
		require.Len(t, obs.flushes, 1)
		stats := obs.flushes[0]
		assert.Equal(t, 1, obs.started)
		assert.Equal(t, 1, stats.Passes)
		assert.Equal(t, 0, stats.Runs)
		assert.Equal(t, 1, stats.Skipped)
		assert.Equal(t, 0, stats.Errors)

		require.Len(t, obs.runs, 1)
		assert.Equal(t, "parity", obs.runs[0].Name)
		assert.Equal(t, KindMemo, obs.runs[0].Kind)
		assert.True(t, obs.runs[0].InFlush)
		assert.False(t, obs.runs[0].Failed)

		s.Set(4)
		require.Len(t, obs.flushes, 2)
		assert.Equal(t, 1, obs.flushes[1].Runs)
		require.Len(t, obs.runs, 3)
		assert.Equal(t, "watch", obs.runs[2].Name)
	}, WithObserver(obs))
}
