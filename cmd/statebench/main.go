package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/decantr-dev/decantr/internal/config"
	"github.com/decantr-dev/decantr/internal/errors"
	"github.com/decantr-dev/decantr/internal/logging"
	"github.com/decantr-dev/decantr/pkg/instrument"
	"github.com/decantr-dev/decantr/pkg/state"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// stderr receives diagnostics that must not mix with command output.
var stderr io.Writer = os.Stderr

// app holds what every command needs after flags are parsed.
type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *logging.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "statebench",
		Short: "Exercise the decantr reactive runtime",
		Long: `statebench drives the decantr reactive runtime through fixed graph shapes.

Scenarios build a graph of signals, memos and effects, write to it
repeatedly and report how many computations ran. The serve command keeps
a scenario running and exposes:

  • Prometheus metrics on /metrics
  • A WebSocket inspector on /inspect/ws
  • Aggregate inspector stats on /inspect/stats`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.logger != nil {
				return a.logger.Close()
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", config.ConfigFileName, "Path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Override log.level from the configuration")

	rootCmd.AddCommand(
		runCmd(a),
		serveCmd(a),
		scenariosCmd(),
		initCmd(a),
		versionCmd(),
	)

	return rootCmd
}

// load reads the configuration and builds the logger.
func (a *app) load() error {
	cfg, err := config.LoadFile(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		return err
	}

	state.DevMode = cfg.Runtime.DevMode
	state.Debug.LogFlushes = cfg.Runtime.DevMode

	a.cfg = cfg
	a.logger = logger
	return nil
}

// runtime builds a Runtime from the configuration with the given observers.
func (a *app) runtime(observers ...state.Observer) *state.Runtime {
	logger := a.logger.Logger
	opts := []state.RuntimeOption{
		state.WithLogger(logger),
		state.WithMaxFlushPasses(a.cfg.Runtime.MaxFlushPasses),
		state.WithErrorHandler(func(err error) {
			logger.Error("computation failed", "error", err)
		}),
	}
	if a.cfg.Runtime.MaxRunsPerFlush > 0 {
		opts = append(opts, state.WithMaxRunsPerFlush(a.cfg.Runtime.MaxRunsPerFlush))
	}
	if len(observers) > 0 {
		opts = append(opts, state.WithObserver(instrument.Multi(observers...)))
	}
	return state.NewRuntime(opts...)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}
