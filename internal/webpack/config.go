// Package webpack assembles bundler configuration objects for browser
// application builds and runs the bundler over them.
//
// The package produces an ordered list of configuration entries, one per
// compilation variant. Each entry maps 1:1 to a bundler invocation and to
// the corresponding build result.
package webpack

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"dario.cat/mergo"

	"github.com/dosanma1/webforge/internal/analytics"
)

// Config is one bundler configuration entry. Fragments are partial Configs
// merged in a fixed order.
type Config struct {
	Name    string              `json:"name,omitempty"`
	Mode    string              `json:"mode,omitempty"`
	Target  string              `json:"target,omitempty"`
	Entry   map[string][]string `json:"entry,omitempty"`
	Output  Output              `json:"output,omitempty"`
	Devtool string              `json:"devtool,omitempty"`
	Resolve Resolve             `json:"resolve,omitempty"`
	Rules   []Rule              `json:"rules,omitempty"`
	Plugins []Plugin            `json:"plugins,omitempty"`
	Defines map[string]string   `json:"defines,omitempty"`
	Stats   StatsOptions        `json:"stats,omitempty"`
}

// Output describes where the bundler writes artifacts.
type Output struct {
	Path       string `json:"path,omitempty"`
	PublicPath string `json:"publicPath,omitempty"`
	Filename   string `json:"filename,omitempty"`
}

// Resolve describes module resolution settings.
type Resolve struct {
	Extensions []string `json:"extensions,omitempty"`
}

// Rule describes a module rule (loader wiring).
type Rule struct {
	Test    string         `json:"test"`
	Loader  string         `json:"loader"`
	Options map[string]any `json:"options,omitempty"`
}

// Plugin is a descriptor for a bundler plugin instantiated on the node side.
type Plugin struct {
	Name    string         `json:"name"`
	Options map[string]any `json:"options,omitempty"`
}

// StatsOptions controls how much statistics output the bundler emits.
type StatsOptions struct {
	Preset string `json:"preset,omitempty"`
	JSON   bool   `json:"json,omitempty"`
}

// BuildContext is the ambient, read-only information supplied by the host:
// workspace layout, the target project, a logger, and an optional
// analytics sink.
type BuildContext struct {
	WorkspaceRoot string
	ProjectName   string
	ProjectRoot   string
	Logger        *slog.Logger
	Analytics     analytics.Sink
}

// Empty reports whether the config carries no settings at all.
func (c *Config) Empty() bool {
	if c == nil {
		return true
	}
	return c.Name == "" && c.Mode == "" && c.Target == "" &&
		len(c.Entry) == 0 && c.Output == (Output{}) && c.Devtool == "" &&
		len(c.Resolve.Extensions) == 0 && len(c.Rules) == 0 &&
		len(c.Plugins) == 0 && len(c.Defines) == 0 && c.Stats == (StatsOptions{})
}

// Clone returns a deep copy of the config. Entries are serializable by
// construction, so the copy goes through JSON.
func (c *Config) Clone() (*Config, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to clone config: %w", err)
	}
	var out Config
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to clone config: %w", err)
	}
	return &out, nil
}

// Merge combines fragments in order into a single config. Scalars from later
// fragments win, slices append, maps union.
func Merge(fragments ...*Config) (*Config, error) {
	out := &Config{}
	for _, f := range fragments {
		if f.Empty() {
			continue
		}
		if err := mergo.Merge(out, f, mergo.WithOverride, mergo.WithAppendSlice); err != nil {
			return nil, fmt.Errorf("failed to merge config fragment: %w", err)
		}
	}
	return out, nil
}
