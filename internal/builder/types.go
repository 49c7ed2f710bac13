package builder

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dosanma1/webforge/internal/webpack"
)

// Result is the aggregate outcome of one build cycle. Overall success is
// true iff every bundler invocation in the cycle succeeded and
// post-processing did not fail.
type Result struct {
	// ID identifies this build cycle in logs and analytics.
	ID uuid.UUID

	// Success is the aggregate success flag.
	Success bool

	// OutputPath is the absolute path of the build output directory,
	// populated regardless of success.
	OutputPath string

	// Duration is the wall time of the whole cycle.
	Duration time.Duration
}

// ResultTransform is a caller-supplied hook applied to the result before it
// is returned.
type ResultTransform func(ctx context.Context, result *Result) (*Result, error)

// Transforms bundles the optional caller-supplied hooks.
type Transforms struct {
	// Config is applied to every assembled config entry.
	Config webpack.ConfigTransform

	// Result is applied to the final build result.
	Result ResultTransform

	// Logging overrides the default per-invocation logging callback.
	Logging webpack.LoggingCallback
}

// AugmentFunc generates the service worker manifest for a finished build.
type AugmentFunc func(projectRoot, outputPath, baseHref, configPath string) error

// CleanFunc removes a prior output tree.
type CleanFunc func(workspaceRoot, outputPath string) error
