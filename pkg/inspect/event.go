package inspect

import (
	"time"

	"github.com/decantr-dev/decantr/pkg/state"
)

// EventType identifies an inspector message.
type EventType string

const (
	EventFlushStarted EventType = "flush_started"
	EventFlush        EventType = "flush"
	EventRun          EventType = "run"
)

// Event is sent to clients via WebSocket.
type Event struct {
	Type  EventType   `json:"type"`
	Time  time.Time   `json:"time"`
	Flush *FlushEvent `json:"flush,omitempty"`
	Run   *RunEvent   `json:"run,omitempty"`
}

// FlushEvent describes a finished flush.
type FlushEvent struct {
	Passes     int   `json:"passes"`
	Runs       int   `json:"runs"`
	Skipped    int   `json:"skipped"`
	Errors     int   `json:"errors"`
	DurationNS int64 `json:"duration_ns"`
}

// RunEvent describes one computation run.
type RunEvent struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name,omitempty"`
	Kind       string `json:"kind"`
	DurationNS int64  `json:"duration_ns"`
	Failed     bool   `json:"failed,omitempty"`
	InFlush    bool   `json:"in_flush,omitempty"`
}

func flushEvent(s state.FlushStats) Event {
	return Event{
		Type: EventFlush,
		Time: time.Now(),
		Flush: &FlushEvent{
			Passes:     s.Passes,
			Runs:       s.Runs,
			Skipped:    s.Skipped,
			Errors:     s.Errors,
			DurationNS: s.Duration.Nanoseconds(),
		},
	}
}

func runEvent(info state.RunInfo) Event {
	return Event{
		Type: EventRun,
		Time: info.Start,
		Run: &RunEvent{
			ID:         info.ID,
			Name:       info.Name,
			Kind:       info.Kind.String(),
			DurationNS: info.Duration.Nanoseconds(),
			Failed:     info.Failed,
			InFlush:    info.InFlush,
		},
	}
}
