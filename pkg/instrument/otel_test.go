package instrument

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/decantr-dev/decantr/pkg/state"
)

func newTestTracer(t *testing.T, opts ...TracerOption) (*Tracer, *tracetest.SpanRecorder) {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return NewTracer(append([]TracerOption{WithTracerProvider(tp)}, opts...)...), rec
}

func attrValue(span sdktrace.ReadOnlySpan, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracerFlushSpanParentsRuns(t *testing.T) {
	tr, rec := newTestTracer(t, WithSpanAttributes(attribute.String("runtime", "main")))
	rt := newRuntime(tr)

	rt.Run(func() {
		s := state.NewSignal(0)
		state.CreateEffect(func() state.Cleanup {
			s.Get()
			return nil
		}, state.EffectName("watch"))
		s.Set(1)
	})

	spans := rec.Ended()
	require.Len(t, spans, 3)

	creation, run, flush := spans[0], spans[1], spans[2]
	assert.Equal(t, "decantr.effect watch", creation.Name())
	assert.False(t, creation.Parent().IsValid())

	assert.Equal(t, "decantr.flush", flush.Name())
	assert.Equal(t, flush.SpanContext().SpanID(), run.Parent().SpanID())
	assert.Equal(t, codes.Ok, flush.Status().Code)

	passes, ok := attrValue(flush, "decantr.flush.passes")
	require.True(t, ok)
	assert.Equal(t, int64(1), passes.AsInt64())

	label, ok := attrValue(flush, "runtime")
	require.True(t, ok)
	assert.Equal(t, "main", label.AsString())

	name, ok := attrValue(run, "decantr.run.name")
	require.True(t, ok)
	assert.Equal(t, "watch", name.AsString())
}

func TestTracerMarksFailures(t *testing.T) {
	tr, rec := newTestTracer(t)
	drive(t, newRuntime(tr, state.WithErrorHandler(func(error) {})))

	spans := rec.Ended()
	require.NotEmpty(t, spans)

	flush := spans[len(spans)-1]
	run := spans[len(spans)-2]
	assert.Equal(t, "decantr.flush", flush.Name())
	assert.Equal(t, codes.Error, flush.Status().Code)
	assert.Equal(t, codes.Error, run.Status().Code)

	errs, ok := attrValue(flush, "decantr.flush.errors")
	require.True(t, ok)
	assert.Equal(t, int64(1), errs.AsInt64())
}

func TestTracerWithoutRunSpans(t *testing.T) {
	tr, rec := newTestTracer(t, WithRunSpans(false))
	drive(t, newRuntime(tr, state.WithErrorHandler(func(error) {})))

	spans := rec.Ended()
	require.Len(t, spans, 3)
	for _, span := range spans {
		assert.Equal(t, "decantr.flush", span.Name())
	}
}

func TestTracerRunTimestamps(t *testing.T) {
	tr, rec := newTestTracer(t)
	rt := newRuntime(tr)
	rt.Run(func() {
		state.CreateEffect(func() state.Cleanup { return nil })
	})

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "decantr.effect", spans[0].Name())
	assert.False(t, spans[0].EndTime().Before(spans[0].StartTime()))
}
