package instrument

import (
	"context"
	"log/slog"
	"time"

	"github.com/decantr-dev/decantr/pkg/state"
)

// Logger is a state.Observer that logs through slog.
//
// Failed runs are logged at Warn, runs slower than the threshold at Info,
// and every flush at Debug.
type Logger struct {
	logger    *slog.Logger
	threshold time.Duration
}

var _ state.Observer = (*Logger)(nil)

// LoggerOption configures the slog observer.
type LoggerOption func(*Logger)

// WithSlowRunThreshold sets the duration above which a run is logged at
// Info. Zero disables slow-run logging. Default: 10ms.
func WithSlowRunThreshold(d time.Duration) LoggerOption {
	return func(l *Logger) {
		l.threshold = d
	}
}

// NewLogger creates the logging observer. A nil logger uses slog.Default().
func NewLogger(logger *slog.Logger, opts ...LoggerOption) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Logger{logger: logger, threshold: 10 * time.Millisecond}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// FlushStarted implements state.Observer.
func (l *Logger) FlushStarted() {}

// FlushFinished implements state.Observer.
func (l *Logger) FlushFinished(s state.FlushStats) {
	l.logger.LogAttrs(context.Background(), slog.LevelDebug, "flush",
		slog.Int("passes", s.Passes),
		slog.Int("runs", s.Runs),
		slog.Int("skipped", s.Skipped),
		slog.Int("errors", s.Errors),
		slog.Duration("duration", s.Duration),
	)
}

// Ran implements state.Observer.
func (l *Logger) Ran(info state.RunInfo) {
	switch {
	case info.Failed:
		l.logger.LogAttrs(context.Background(), slog.LevelWarn, "computation failed", runAttrs(info)...)
	case l.threshold > 0 && info.Duration > l.threshold:
		l.logger.LogAttrs(context.Background(), slog.LevelInfo, "slow computation", runAttrs(info)...)
	}
}

func runAttrs(info state.RunInfo) []slog.Attr {
	attrs := []slog.Attr{
		slog.Uint64("id", info.ID),
		slog.String("kind", info.Kind.String()),
		slog.Duration("duration", info.Duration),
		slog.Bool("in_flush", info.InFlush),
	}
	if info.Name != "" {
		attrs = append(attrs, slog.String("name", info.Name))
	}
	return attrs
}
