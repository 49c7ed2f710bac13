// Package config provides build option resolution with precedence handling.
package config

import (
	"github.com/dosanma1/webforge/internal/workspace"
)

// Overrides carries CLI flag values. Only fields the user actually set are
// non-nil; a nil field defers to the configuration file.
type Overrides struct {
	OutputPath       *string
	BaseHref         *string
	Aot              *bool
	Watch            *bool
	Verbose          *bool
	ServiceWorker    *bool
	DeleteOutputPath *bool
	Optimization     *bool
}

// Resolver merges build options with precedence:
// CLI flags > named configuration overrides > target options.
type Resolver struct {
	target        *workspace.BuildTarget
	configuration string
}

// NewResolver creates a resolver for a project build target and an optional
// named configuration (e.g., "production").
func NewResolver(target *workspace.BuildTarget, configuration string) *Resolver {
	return &Resolver{
		target:        target,
		configuration: configuration,
	}
}

// Resolve produces the effective build options for one invocation.
func (r *Resolver) Resolve(flags Overrides) workspace.BuildOptions {
	opts := r.target.Options

	if r.configuration != "" {
		if cfg, ok := r.target.Configurations[r.configuration]; ok {
			applyConfiguration(&opts, &cfg)
		}
	}

	applyFlags(&opts, flags)
	return opts
}

func applyConfiguration(opts *workspace.BuildOptions, cfg *workspace.BuildOverrides) {
	if cfg.OutputPath != nil {
		opts.OutputPath = *cfg.OutputPath
	}
	if cfg.BaseHref != nil {
		opts.BaseHref = *cfg.BaseHref
	}
	if cfg.Aot != nil {
		opts.Aot = *cfg.Aot
	}
	if cfg.Optimization != nil {
		opts.Optimization = *cfg.Optimization
	}
	if cfg.SourceMap != nil {
		opts.SourceMap = *cfg.SourceMap
	}
	if cfg.ServiceWorker != nil {
		opts.ServiceWorker = *cfg.ServiceWorker
	}
	if cfg.DeleteOutputPath != nil {
		opts.DeleteOutputPath = *cfg.DeleteOutputPath
	}
}

func applyFlags(opts *workspace.BuildOptions, flags Overrides) {
	if flags.OutputPath != nil {
		opts.OutputPath = *flags.OutputPath
	}
	if flags.BaseHref != nil {
		opts.BaseHref = *flags.BaseHref
	}
	if flags.Aot != nil {
		opts.Aot = *flags.Aot
	}
	if flags.Watch != nil {
		opts.Watch = *flags.Watch
	}
	if flags.Verbose != nil {
		opts.Verbose = *flags.Verbose
	}
	if flags.ServiceWorker != nil {
		opts.ServiceWorker = *flags.ServiceWorker
	}
	if flags.DeleteOutputPath != nil {
		opts.DeleteOutputPath = *flags.DeleteOutputPath
	}
	if flags.Optimization != nil {
		opts.Optimization = *flags.Optimization
	}
}
