package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/decantr-dev/decantr/pkg/inspect"
	"github.com/decantr-dev/decantr/pkg/instrument"
	"github.com/decantr-dev/decantr/pkg/state"
)

type serveOptions struct {
	addr       string
	scenario   string
	iterations int
	size       int
	interval   time.Duration
}

func serveCmd(a *app) *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a scenario continuously and serve metrics and the inspector",
		Long: `Run a scenario on a fixed interval and expose what the runtime does.

Routes:
  /metrics          Prometheus metrics
  /healthz          liveness
  /inspect/ws       WebSocket stream of flush and run events
  /inspect/stats    aggregate counters as JSON

Examples:
  statebench serve
  statebench serve --addr=0.0.0.0:9090 --scenario=fanout --interval=250ms`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(a, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.addr, "addr", "a", "", "Listen address (default from config)")
	cmd.Flags().StringVarP(&opts.scenario, "scenario", "s", "", "Scenario to drive (default from config)")
	cmd.Flags().IntVarP(&opts.iterations, "iterations", "n", 0, "Writes per tick (default from config)")
	cmd.Flags().IntVar(&opts.size, "size", 0, "Graph width or depth (default from config)")
	cmd.Flags().DurationVar(&opts.interval, "interval", time.Second, "Time between scenario runs")

	return cmd
}

// server drives one runtime and serves its observers.
type server struct {
	app      *app
	opts     serveOptions
	rt       *state.Runtime
	hub      *inspect.Hub
	registry *prometheus.Registry
}

func newServer(a *app, opts serveOptions) *server {
	if opts.addr == "" {
		opts.addr = a.cfg.Server.Addr
	}
	opts.scenario = a.scenarioOr(opts.scenario)
	if opts.iterations <= 0 {
		opts.iterations = a.cfg.Bench.Iterations
	}
	if opts.size <= 0 {
		opts.size = a.cfg.Bench.Size
	}
	if opts.interval <= 0 {
		opts.interval = time.Second
	}

	s := &server{
		app:      a,
		opts:     opts,
		registry: prometheus.NewRegistry(),
	}

	observers := []state.Observer{instrument.NewLogger(a.logger.Logger)}
	if a.cfg.Metrics.Enabled {
		s.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		observers = append(observers, instrument.NewMetrics(
			instrument.WithNamespace(a.cfg.Metrics.Namespace),
			instrument.WithConstLabels(prometheus.Labels{"scenario": opts.scenario}),
			instrument.WithRegistry(s.registry),
		))
	}
	if a.cfg.Server.Inspector {
		s.hub = inspect.NewHub(
			inspect.WithLogger(a.logger.Logger),
			// A scenario tick emits a run event per effect; keep only flushes.
			inspect.WithRunEvents(false),
		)
		observers = append(observers, s.hub)
	}
	s.rt = a.runtime(observers...)
	return s
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if s.app.cfg.Metrics.Enabled {
		r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	if s.hub != nil {
		r.Mount("/inspect", s.hub.Router())
	}
	return r
}

// tick executes the scenario once. Only the drive goroutine calls it.
func (s *server) tick() (result, error) {
	res, err := execute(s.rt, s.opts.scenario, s.opts.iterations, s.opts.size)
	if err != nil {
		return res, err
	}
	if !res.OK() {
		s.app.logger.Warn("unexpected run count",
			"scenario", res.Scenario, "runs", res.Runs, "expected", res.Expected)
	}
	return res, nil
}

// drive runs the scenario every interval until ctx is done.
func (s *server) drive(ctx context.Context) {
	ticker := time.NewTicker(s.opts.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.tick(); err != nil {
				s.app.logger.Error("scenario failed", "error", err)
				return
			}
		}
	}
}

func runServe(a *app, opts serveOptions) error {
	s := newServer(a, opts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if s.hub != nil {
		go s.hub.Run(ctx)
	}
	go s.drive(ctx)

	srv := &http.Server{
		Addr:              s.opts.addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	success("Serving %s on http://%s", s.opts.scenario, s.opts.addr)
	info("Metrics:   http://%s/metrics", s.opts.addr)
	if s.hub != nil {
		info("Inspector: ws://%s/inspect/ws", s.opts.addr)
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
