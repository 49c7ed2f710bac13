package builder

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dosanma1/webforge/internal/output"
	"github.com/dosanma1/webforge/internal/sw"
	"github.com/dosanma1/webforge/internal/webpack"
	"github.com/dosanma1/webforge/internal/workspace"
)

// BrowserBuilder runs browser application builds. One Run call moves through
// a linear sequence: configure, clean, compile, aggregate, post-process,
// emit. Compile is the only stage with internal concurrency: every config
// entry gets its own bundler invocation and the stage joins them all.
type BrowserBuilder struct {
	btx        *webpack.BuildContext
	runner     webpack.Runner
	transforms Transforms

	// Replaceable collaborators. Augmentation failures are downgraded to a
	// failed result; clean failures abort the cycle.
	augment AugmentFunc
	clean   CleanFunc
}

// NewBrowserBuilder creates a browser builder bound to a build context.
func NewBrowserBuilder(btx *webpack.BuildContext, runner webpack.Runner, transforms Transforms) *BrowserBuilder {
	return &BrowserBuilder{
		btx:        btx,
		runner:     runner,
		transforms: transforms,
		augment:    sw.Augment,
		clean:      output.DeleteOutputDir,
	}
}

// Name returns the builder name.
func (b *BrowserBuilder) Name() string {
	return "webforge:browser"
}

// Validate validates the build options.
func (b *BrowserBuilder) Validate(opts *workspace.BuildOptions) error {
	if opts.OutputPath == "" {
		return fmt.Errorf("outputPath is required")
	}
	if opts.ServiceWorker && opts.Index == "" {
		return fmt.Errorf("serviceWorker requires an index option")
	}
	return nil
}

// Run executes one full build cycle.
func (b *BrowserBuilder) Run(ctx context.Context, opts *workspace.BuildOptions) (*Result, error) {
	if err := b.Validate(opts); err != nil {
		return nil, err
	}

	start := time.Now()

	// Configure. A resolution or assembly failure aborts before any
	// bundler work.
	configs, err := webpack.GenerateConfigs(ctx, opts, b.btx, b.transforms.Config)
	if err != nil {
		return nil, err
	}

	// Clean prior output if requested. IO failures here are fatal.
	if opts.DeleteOutputPath {
		if err := b.clean(b.btx.WorkspaceRoot, opts.OutputPath); err != nil {
			return nil, err
		}
	}

	events, err := b.compile(ctx, opts, configs)
	if err != nil {
		return nil, err
	}

	// Aggregate: one failed invocation fails the cycle.
	success := true
	for _, event := range events {
		success = success && event.Success
	}

	outputPath := filepath.Join(b.btx.WorkspaceRoot, opts.OutputPath)

	// Post-process. Never under watch mode, never after a failed compile.
	// Augmentation errors downgrade the result instead of propagating.
	if success && !opts.Watch && opts.ServiceWorker {
		projectRoot := filepath.Join(b.btx.WorkspaceRoot, b.btx.ProjectRoot)
		if err := b.augment(projectRoot, outputPath, opts.BaseHref, opts.SwConfigPath); err != nil {
			b.btx.Logger.Error("service worker augmentation failed", slog.Any("error", err))
			success = false
		}
	}

	result := &Result{
		ID:         uuid.New(),
		Success:    success,
		OutputPath: outputPath,
		Duration:   time.Since(start),
	}

	if b.btx.Analytics != nil {
		b.btx.Analytics.Timing("build", result.Duration)
		b.btx.Analytics.Event("build", "complete", map[string]string{
			"success":  fmt.Sprintf("%t", result.Success),
			"variants": fmt.Sprintf("%d", len(configs)),
		})
	}

	if b.transforms.Result != nil {
		transformed, err := b.transforms.Result(ctx, result)
		if err != nil {
			return nil, fmt.Errorf("result transform failed: %w", err)
		}
		if transformed != nil {
			result = transformed
		}
	}

	return result, nil
}

// compile runs one bundler invocation per config entry. Invocations are
// issued concurrently; completion order is not significant, only that the
// stage joins all of them before aggregation.
func (b *BrowserBuilder) compile(ctx context.Context, opts *workspace.BuildOptions, configs []*webpack.Config) ([]webpack.BuildEvent, error) {
	logging := b.transforms.Logging
	if logging == nil {
		logging = webpack.NewLoggingCallback(opts.Verbose, b.btx.Logger)
	}

	events := make([]webpack.BuildEvent, len(configs))

	g, gctx := errgroup.WithContext(ctx)
	for i, cfg := range configs {
		i, cfg := i, cfg
		g.Go(func() error {
			event, err := b.runner.Run(gctx, cfg, webpack.RunOptions{Logging: logging})
			if err != nil {
				return fmt.Errorf("bundler invocation %q failed: %w", cfg.Name, err)
			}
			events[i] = event
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return events, nil
}

// RunWatch runs an initial build and then one build per trigger, emitting
// one Result per cycle on the returned channel. A fatal configure or clean
// error ends the stream through the error channel. The caller cancels via
// ctx; per-cycle compile failures only mark that cycle's result.
func (b *BrowserBuilder) RunWatch(ctx context.Context, opts *workspace.BuildOptions, triggers <-chan struct{}) (<-chan *Result, <-chan error) {
	results := make(chan *Result)
	errs := make(chan error, 1)

	go func() {
		defer close(results)
		defer close(errs)

		for {
			result, err := b.Run(ctx, opts)
			if err != nil {
				errs <- err
				return
			}

			select {
			case results <- result:
			case <-ctx.Done():
				return
			}

			select {
			case <-ctx.Done():
				return
			case _, ok := <-triggers:
				if !ok {
					return
				}
			}
		}
	}()

	return results, errs
}
