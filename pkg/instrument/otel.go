package instrument

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/decantr-dev/decantr/pkg/state"
)

// Default tracer name for decantr runtimes.
const defaultTracerName = "decantr"

// TracerConfig configures the OpenTelemetry observer.
type TracerConfig struct {
	// TracerName is the name of the tracer (default: "decantr").
	TracerName string

	// Provider supplies the tracer. Default: the global provider.
	Provider trace.TracerProvider

	// RunSpans records one child span per computation run.
	// Enabled by default.
	RunSpans bool

	// Context is the parent of every flush span.
	// Default: context.Background().
	Context context.Context

	// Attributes are added to every flush span.
	Attributes []attribute.KeyValue
}

// TracerOption configures the OpenTelemetry observer.
type TracerOption func(*TracerConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracerOption {
	return func(c *TracerConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) TracerOption {
	return func(c *TracerConfig) {
		c.Provider = tp
	}
}

// WithRunSpans enables/disables per-run child spans.
func WithRunSpans(enabled bool) TracerOption {
	return func(c *TracerConfig) {
		c.RunSpans = enabled
	}
}

// WithParentContext sets the context flush spans are started from.
func WithParentContext(ctx context.Context) TracerOption {
	return func(c *TracerConfig) {
		c.Context = ctx
	}
}

// WithSpanAttributes adds attributes to every flush span.
func WithSpanAttributes(attrs ...attribute.KeyValue) TracerOption {
	return func(c *TracerConfig) {
		c.Attributes = append(c.Attributes, attrs...)
	}
}

func defaultTracerConfig() TracerConfig {
	return TracerConfig{
		TracerName: defaultTracerName,
		RunSpans:   true,
		Context:    context.Background(),
	}
}

// Tracer is a state.Observer that records a span per flush and, optionally,
// a child span per computation run. Runs outside a flush (creation runs and
// memo reads) become root spans.
//
// A Tracer follows one runtime at a time.
type Tracer struct {
	config TracerConfig
	tracer trace.Tracer

	flushCtx  context.Context
	flushSpan trace.Span
}

var _ state.Observer = (*Tracer)(nil)

// NewTracer creates the tracing observer.
func NewTracer(opts ...TracerOption) *Tracer {
	config := defaultTracerConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Context == nil {
		config.Context = context.Background()
	}

	var tracer trace.Tracer
	if config.Provider != nil {
		tracer = config.Provider.Tracer(config.TracerName)
	} else {
		tracer = otel.Tracer(config.TracerName)
	}

	return &Tracer{config: config, tracer: tracer}
}

// FlushStarted implements state.Observer.
func (t *Tracer) FlushStarted() {
	t.flushCtx, t.flushSpan = t.tracer.Start(
		t.config.Context,
		"decantr.flush",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(t.config.Attributes...),
	)
}

// FlushFinished implements state.Observer.
func (t *Tracer) FlushFinished(s state.FlushStats) {
	span := t.flushSpan
	if span == nil {
		return
	}
	t.flushSpan = nil
	t.flushCtx = nil

	span.SetAttributes(
		attribute.Int("decantr.flush.passes", s.Passes),
		attribute.Int("decantr.flush.runs", s.Runs),
		attribute.Int("decantr.flush.skipped", s.Skipped),
		attribute.Int("decantr.flush.errors", s.Errors),
	)
	if s.Errors > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d computations panicked", s.Errors))
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// Ran implements state.Observer.
func (t *Tracer) Ran(info state.RunInfo) {
	if !t.config.RunSpans {
		return
	}

	parent := t.config.Context
	if info.InFlush && t.flushCtx != nil {
		parent = t.flushCtx
	}

	attrs := []attribute.KeyValue{
		attribute.Int64("decantr.run.id", int64(info.ID)),
		attribute.String("decantr.run.kind", info.Kind.String()),
	}
	if info.Name != "" {
		attrs = append(attrs, attribute.String("decantr.run.name", info.Name))
	}

	_, span := t.tracer.Start(
		parent,
		spanName(info),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
		trace.WithTimestamp(info.Start),
	)
	if info.Failed {
		span.SetStatus(codes.Error, "computation panicked")
	}
	span.End(trace.WithTimestamp(info.Start.Add(info.Duration)))
}

// spanName creates a span name from the run.
func spanName(info state.RunInfo) string {
	if info.Name != "" {
		return fmt.Sprintf("decantr.%s %s", info.Kind, info.Name)
	}
	return fmt.Sprintf("decantr.%s", info.Kind)
}
