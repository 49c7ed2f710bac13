package webpack

import (
	"context"
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/dosanma1/webforge/internal/workspace"
)

// ConfigTransform is a caller-supplied hook applied to every assembled
// config entry before the build runs. Transforms for separate entries run
// independently.
type ConfigTransform func(ctx context.Context, cfg *Config) (*Config, error)

// GenerateConfigs assembles the ordered configuration list for one build
// invocation: common, browser, styles, stats, analytics (only with a sink),
// compiler (only with a main or polyfills entry, AOT flag selecting the
// variant), and web worker settings (only with a worker tsconfig).
//
// With differential loading enabled the list holds a modern and a legacy
// variant; otherwise a single entry. Each entry maps to exactly one bundler
// invocation.
func GenerateConfigs(ctx context.Context, opts *workspace.BuildOptions, btx *BuildContext, transform ConfigTransform) ([]*Config, error) {
	defines, err := EnvDefines(filepath.Join(btx.WorkspaceRoot, btx.ProjectRoot), opts.EnvFile)
	if err != nil {
		return nil, err
	}

	outputPath := filepath.Join(btx.WorkspaceRoot, opts.OutputPath)

	fragments := []*Config{
		CommonFragment(opts, outputPath, defines),
		BrowserFragment(opts),
		StylesFragment(opts),
		StatsFragment(opts),
	}

	if btx.Analytics != nil {
		fragments = append(fragments, AnalyticsFragment(opts))
	}

	if opts.Main != "" || opts.Polyfills != "" {
		if opts.Aot {
			fragments = append(fragments, TypescriptFragment(opts))
		} else {
			fragments = append(fragments, TypescriptJITFragment(opts))
		}
	}

	if opts.WebWorkerTsConfig != "" {
		fragments = append(fragments, WorkerFragment(opts))
	}

	base, err := Merge(fragments...)
	if err != nil {
		return nil, err
	}

	configs, err := expandVariants(base, btx.ProjectName, opts.DifferentialLoading)
	if err != nil {
		return nil, err
	}

	if transform != nil {
		if err := applyTransform(ctx, configs, transform); err != nil {
			return nil, err
		}
	}

	return configs, nil
}

// expandVariants produces one config per compilation variant. Differential
// loading yields a modern (es2017) and a legacy (es5) pair built from the
// same base.
func expandVariants(base *Config, projectName string, differential bool) ([]*Config, error) {
	if !differential {
		base.Name = projectName
		return []*Config{base}, nil
	}

	modern, err := base.Clone()
	if err != nil {
		return nil, err
	}
	legacy, err := base.Clone()
	if err != nil {
		return nil, err
	}

	modern.Name = projectName + "-es2017"
	modern.Output.Filename = "[name]-es2017.js"
	if modern.Defines == nil {
		modern.Defines = map[string]string{}
	}
	modern.Defines["ES_TARGET"] = "es2017"

	legacy.Name = projectName + "-es5"
	legacy.Output.Filename = "[name]-es5.js"
	if legacy.Defines == nil {
		legacy.Defines = map[string]string{}
	}
	legacy.Defines["ES_TARGET"] = "es5"

	return []*Config{modern, legacy}, nil
}

// applyTransform runs the transform over all entries concurrently and waits
// for every one to finish before the list is used.
func applyTransform(ctx context.Context, configs []*Config, transform ConfigTransform) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := range configs {
		i := i
		g.Go(func() error {
			transformed, err := transform(gctx, configs[i])
			if err != nil {
				return fmt.Errorf("config transform failed for %q: %w", configs[i].Name, err)
			}
			if transformed != nil {
				configs[i] = transformed
			}
			return nil
		})
	}
	return g.Wait()
}
