// Package analytics provides the build analytics sink consumed by the
// bundler analytics plugin fragment.
package analytics

import (
	"log/slog"
	"time"
)

// Sink receives build telemetry events. A nil sink disables the analytics
// fragment entirely so builds carry no reporting overhead.
type Sink interface {
	// Event records a single named event with optional dimensions.
	Event(category, action string, dimensions map[string]string)

	// Timing records a duration measurement, e.g. total bundle time.
	Timing(category string, duration time.Duration)

	// Flush blocks until buffered events are delivered.
	Flush() error
}

// LogSink writes analytics events to a structured logger. It is the default
// sink for local builds; CI setups can swap in a remote one.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a sink backed by logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Event(category, action string, dimensions map[string]string) {
	attrs := []any{slog.String("category", category), slog.String("action", action)}
	for k, v := range dimensions {
		attrs = append(attrs, slog.String(k, v))
	}
	s.logger.Debug("analytics event", attrs...)
}

func (s *LogSink) Timing(category string, duration time.Duration) {
	s.logger.Debug("analytics timing",
		slog.String("category", category),
		slog.Duration("duration", duration))
}

func (s *LogSink) Flush() error { return nil }
