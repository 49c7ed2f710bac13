// Package builder orchestrates browser application builds: it assembles the
// bundler configuration list, runs one bundler invocation per entry, and
// post-processes the output.
package builder

import (
	"context"
	"fmt"

	"github.com/dosanma1/webforge/internal/webpack"
	"github.com/dosanma1/webforge/internal/workspace"
)

// Builder is the interface every build flavor implements.
type Builder interface {
	// Name returns the builder name (e.g., "webforge:browser")
	Name() string

	// Validate validates the build options before any work starts
	Validate(opts *workspace.BuildOptions) error

	// Run executes one full build cycle and emits its result
	Run(ctx context.Context, opts *workspace.BuildOptions) (*Result, error)

	// RunWatch executes builds continuously, re-running on each trigger
	RunWatch(ctx context.Context, opts *workspace.BuildOptions, triggers <-chan struct{}) (<-chan *Result, <-chan error)
}

// Factory constructs a builder bound to a build context and runner.
type Factory func(btx *webpack.BuildContext, runner webpack.Runner, transforms Transforms) Builder

// Registry of available builders
var builders = map[string]Factory{
	"webforge:browser": func(btx *webpack.BuildContext, runner webpack.Runner, transforms Transforms) Builder {
		return NewBrowserBuilder(btx, runner, transforms)
	},
}

// GetBuilder returns a builder instance by name.
func GetBuilder(name string, btx *webpack.BuildContext, runner webpack.Runner, transforms Transforms) (Builder, error) {
	factory, ok := builders[name]
	if !ok {
		return nil, fmt.Errorf("unknown builder: %s", name)
	}
	return factory(btx, runner, transforms), nil
}

// RegisterBuilder adds a new builder to the registry.
func RegisterBuilder(name string, factory Factory) {
	builders[name] = factory
}

// ListBuilders returns all registered builder names.
func ListBuilders() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	return names
}
