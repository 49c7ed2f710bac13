package webpack

import (
	"log/slog"
	"strings"
)

// LoggingCallback is invoked once per bundler invocation with the parsed
// statistics and the config that produced them.
type LoggingCallback func(stats *Stats, config *Config)

// NewLoggingCallback builds the standard logging callback. Verbose mode
// emits the full statistics text; normal mode a condensed summary. Warnings
// and errors are reported at their own levels in either mode.
//
// The callback must never abort a build: panics inside it are swallowed.
func NewLoggingCallback(verbose bool, logger *slog.Logger) LoggingCallback {
	return func(stats *Stats, config *Config) {
		defer func() {
			// A logging failure is not allowed to take the build down.
			_ = recover()
		}()

		if stats == nil {
			return
		}

		name := ""
		if config != nil {
			name = config.Name
		}

		if verbose {
			logger.Info(stats.FullText(), slog.String("config", name))
		} else {
			logger.Info(stats.Summary(), slog.String("config", name))
		}

		if stats.HasWarnings() {
			logger.Warn(warningSummary(stats), slog.String("config", name))
		}
		if stats.HasErrors() {
			logger.Error(errorSummary(stats), slog.String("config", name))
		}
	}
}

func warningSummary(stats *Stats) string {
	return strings.Join(stats.Warnings, "\n")
}

func errorSummary(stats *Stats) string {
	return strings.Join(stats.Errors, "\n")
}
