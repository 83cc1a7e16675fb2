package instrument

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/decantr-dev/decantr/pkg/state"
)

func TestMultiFansOut(t *testing.T) {
	a, b := &Stats{}, &Stats{}
	rt := newRuntime(Multi(a, nil, b), state.WithErrorHandler(func(error) {}))
	drive(t, rt)

	for _, s := range []*Stats{a, b} {
		assert.Equal(t, 3, s.Flushes)
		assert.Equal(t, 3, s.Passes)
		assert.Equal(t, 1, s.MaxPasses)
		assert.Equal(t, 3, s.Runs)
		assert.Equal(t, 1, s.Errors)
		assert.Equal(t, 4, s.RunsByKind[state.KindEffect])
	}
}

func TestStatsReset(t *testing.T) {
	s := &Stats{}
	s.FlushFinished(state.FlushStats{Passes: 4, Runs: 2})
	s.Ran(state.RunInfo{Kind: state.KindMemo})
	assert.Equal(t, 4, s.MaxPasses)

	s.Reset()
	assert.Equal(t, Stats{}, *s)
}
