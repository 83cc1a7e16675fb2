package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/decantr-dev/decantr/internal/config"
	"github.com/decantr-dev/decantr/internal/errors"
	"github.com/decantr-dev/decantr/pkg/instrument"
	"github.com/decantr-dev/decantr/pkg/state"
)

type runOptions struct {
	scenario   string
	iterations int
	size       int
	jsonOut    bool
	trace      bool
}

func runCmd(a *app) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run [scenario...]",
		Short: "Run scenarios and print scheduler statistics",
		Long: `Run one or more scenarios against a fresh runtime.

Each scenario reports the number of effect runs next to the number a
glitch-free scheduler must perform. A mismatch exits with an error.

Examples:
  statebench run
  statebench run diamond fanout --size=64
  statebench run store -n 10000 --json
  statebench run chain --trace`,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := args
			if len(names) == 0 {
				names = []string{a.scenarioOr(opts.scenario)}
			}
			return a.runScenarios(cmd.Context(), cmd.OutOrStdout(), names, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.scenario, "scenario", "s", "", "Scenario to run (default from config)")
	cmd.Flags().IntVarP(&opts.iterations, "iterations", "n", 0, "Writes per scenario (default from config)")
	cmd.Flags().IntVar(&opts.size, "size", 0, "Graph width or depth (default from config)")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Print results as JSON")
	cmd.Flags().BoolVar(&opts.trace, "trace", false, "Export flush spans to stderr (overrides tracing.enabled)")

	return cmd
}

func (a *app) scenarioOr(name string) string {
	if name != "" {
		return name
	}
	return a.cfg.Bench.Scenario
}

func (a *app) runScenarios(ctx context.Context, w io.Writer, names []string, opts runOptions) error {
	iterations := opts.iterations
	if iterations <= 0 {
		iterations = a.cfg.Bench.Iterations
	}
	size := opts.size
	if size <= 0 {
		size = a.cfg.Bench.Size
	}
	for _, name := range names {
		if !config.IsScenario(name) {
			return errors.New(errors.CodeConfigInvalid).
				WithDetail(fmt.Sprintf("unknown scenario %q", name)).
				WithSuggestion("Run 'statebench scenarios' to list them")
		}
	}

	stats := &instrument.Stats{}
	observers := []state.Observer{
		stats,
		instrument.NewLogger(a.logger.Logger),
	}

	if opts.trace || a.cfg.Tracing.Enabled {
		tp, err := newTracerProvider(a.cfg.Tracing.Tracer)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = tp.Shutdown(shutdownCtx)
		}()
		observers = append(observers, instrument.NewTracer(
			instrument.WithTracerName(a.cfg.Tracing.Tracer),
			instrument.WithTracerProvider(tp),
			instrument.WithParentContext(ctx),
		))
	}

	rt := a.runtime(observers...)

	results := make([]result, 0, len(names))
	var failed []string
	for _, name := range names {
		res, err := execute(rt, name, iterations, size)
		if err != nil {
			return err
		}
		results = append(results, res)
		if !res.OK() {
			failed = append(failed, name)
		}
		a.logger.Debug("scenario finished", "scenario", name, "runs", res.Runs, "elapsed", res.Elapsed)
	}

	if opts.jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(struct {
			Results []result         `json:"results"`
			Stats   *instrument.Stats `json:"stats"`
		}{results, stats}); err != nil {
			return err
		}
	} else {
		printResults(w, results, stats)
	}

	if len(failed) > 0 {
		return fmt.Errorf("unexpected run counts in %v", failed)
	}
	return nil
}

func printResults(w io.Writer, results []result, stats *instrument.Stats) {
	for _, r := range results {
		mark := "\033[32m✓\033[0m"
		if !r.OK() {
			mark = "\033[31m✗\033[0m"
		}
		fmt.Fprintf(w, "%s %-8s runs=%d expected=%d nodes=%d writes=%d elapsed=%s\n",
			mark, r.Scenario, r.Runs, r.Expected, r.Nodes, r.Iterations, r.Elapsed.Round(time.Microsecond))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Flushes:    %d\n", stats.Flushes)
	fmt.Fprintf(w, "  Passes:     %d (max %d)\n", stats.Passes, stats.MaxPasses)
	fmt.Fprintf(w, "  Runs:       %d effects in flush, %d skipped\n", stats.Runs, stats.Skipped)
	fmt.Fprintf(w, "  By kind:    effect=%d memo=%d\n", stats.RunsByKind[state.KindEffect], stats.RunsByKind[state.KindMemo])
	fmt.Fprintf(w, "  Errors:     %d\n", stats.Errors)
	fmt.Fprintf(w, "  Flush time: %s\n", stats.FlushTime.Round(time.Microsecond))
}

// newTracerProvider exports spans synchronously to stderr.
func newTracerProvider(service string) (*sdktrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(stderr),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", service))),
		sdktrace.WithSyncer(exporter),
	), nil
}
