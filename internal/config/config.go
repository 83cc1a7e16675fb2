package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/decantr-dev/decantr/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "statebench.yaml"

	// DefaultMaxFlushPasses matches the runtime's own default.
	DefaultMaxFlushPasses = 10000

	// DefaultAddr is the default listen address for serve.
	DefaultAddr = "localhost:7070"

	// DefaultNamespace is the default Prometheus namespace.
	DefaultNamespace = "decantr"

	// DefaultTracer is the default OpenTelemetry tracer name.
	DefaultTracer = "github.com/decantr-dev/decantr"

	// DefaultScenario is the scenario run when none is given.
	DefaultScenario = "diamond"

	// DefaultIterations is the default number of writes per scenario.
	DefaultIterations = 1000

	// DefaultSize is the default fan-out width or chain depth.
	DefaultSize = 16
)

// Scenarios lists the scenario names the bench knows about.
var Scenarios = []string{"diamond", "chain", "fanout", "store", "batch"}

// Config represents the complete statebench.yaml configuration.
type Config struct {
	// Runtime tunes the reactive runtime.
	Runtime RuntimeConfig `yaml:"runtime"`

	// Log configures the process logger.
	Log LogConfig `yaml:"log"`

	// Metrics configures the Prometheus observer.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing configures the OpenTelemetry observer.
	Tracing TracingConfig `yaml:"tracing"`

	// Server configures the serve command.
	Server ServerConfig `yaml:"server"`

	// Bench selects the scenario and its shape.
	Bench BenchConfig `yaml:"bench"`

	configPath string
}

// RuntimeConfig mirrors the runtime's functional options.
type RuntimeConfig struct {
	// MaxFlushPasses bounds the passes of a single flush.
	MaxFlushPasses int `yaml:"max_flush_passes"`

	// MaxRunsPerFlush bounds the effect runs of a single flush. Zero disables it.
	MaxRunsPerFlush int `yaml:"max_runs_per_flush"`

	// DevMode enables circular-read panics and run logging.
	DevMode bool `yaml:"dev_mode"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is text or json for the stderr handler.
	Format string `yaml:"format"`

	// File, when set, also receives JSON records.
	File string `yaml:"file"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Tracer  string `yaml:"tracer"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `yaml:"addr"`

	// Inspector mounts the WebSocket inspector under /inspect.
	Inspector bool `yaml:"inspector"`
}

// BenchConfig selects a scenario.
type BenchConfig struct {
	Scenario   string `yaml:"scenario"`
	Iterations int    `yaml:"iterations"`
	Size       int    `yaml:"size"`
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		Runtime: RuntimeConfig{
			MaxFlushPasses: DefaultMaxFlushPasses,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultNamespace,
		},
		Tracing: TracingConfig{
			Tracer: DefaultTracer,
		},
		Server: ServerConfig{
			Addr:      DefaultAddr,
			Inspector: true,
		},
		Bench: BenchConfig{
			Scenario:   DefaultScenario,
			Iterations: DefaultIterations,
			Size:       DefaultSize,
		},
	}
}

// Load loads statebench.yaml from dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile loads the configuration at path. A missing file yields defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := New()
			cfg.configPath = path
			return cfg, nil
		}
		return nil, errors.New(errors.CodeConfigRead).
			WithDetail("Could not read " + path).
			Wrap(err)
	}

	cfg := New()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.New(errors.CodeConfigParse).
			WithDetail("Failed to parse " + path + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid YAML")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.New(errors.CodeConfigParse).Wrap(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New(errors.CodeConfigRead).Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path the configuration was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills zero values left by a partial file.
func (c *Config) applyDefaults() {
	if c.Runtime.MaxFlushPasses == 0 {
		c.Runtime.MaxFlushPasses = DefaultMaxFlushPasses
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Tracing.Tracer == "" {
		c.Tracing.Tracer = DefaultTracer
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Bench.Scenario == "" {
		c.Bench.Scenario = DefaultScenario
	}
	if c.Bench.Iterations == 0 {
		c.Bench.Iterations = DefaultIterations
	}
	if c.Bench.Size == 0 {
		c.Bench.Size = DefaultSize
	}
	c.Log.Level = strings.ToLower(c.Log.Level)
	c.Log.Format = strings.ToLower(c.Log.Format)
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Runtime.MaxFlushPasses < 1 {
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("runtime.max_flush_passes must be at least 1")
	}
	if c.Runtime.MaxRunsPerFlush < 0 {
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("runtime.max_runs_per_flush must not be negative")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.New(errors.CodeConfigInvalid).
			WithDetail(fmt.Sprintf("unknown log.level %q", c.Log.Level)).
			WithSuggestion("Use one of debug, info, warn, error")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New(errors.CodeConfigInvalid).
			WithDetail(fmt.Sprintf("unknown log.format %q", c.Log.Format))
	}
	if !IsScenario(c.Bench.Scenario) {
		return errors.New(errors.CodeConfigInvalid).
			WithDetail(fmt.Sprintf("unknown bench.scenario %q", c.Bench.Scenario)).
			WithSuggestion("Use one of " + strings.Join(Scenarios, ", "))
	}
	if c.Bench.Iterations < 1 || c.Bench.Size < 1 {
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("bench.iterations and bench.size must be positive")
	}
	return nil
}

// IsScenario reports whether name is a known scenario.
func IsScenario(name string) bool {
	for _, s := range Scenarios {
		if s == name {
			return true
		}
	}
	return false
}
