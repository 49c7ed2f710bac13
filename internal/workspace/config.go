// Package workspace provides workspace configuration management.
package workspace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dosanma1/webforge/pkg/xos"
)

const ConfigFileName = "webforge.json"

// Config represents the workspace configuration.
type Config struct {
	Version        string             `json:"version"`
	DefaultProject string             `json:"defaultProject,omitempty"`
	Projects       map[string]Project `json:"projects"`
}

// Project represents a buildable project in the workspace.
type Project struct {
	Root       string       `json:"root"`
	SourceRoot string       `json:"sourceRoot,omitempty"`
	Type       ProjectType  `json:"type"`
	Build      *BuildTarget `json:"build,omitempty"`
}

// ProjectType represents the type of project.
type ProjectType string

const (
	ProjectTypeApplication ProjectType = "application"
	ProjectTypeLibrary     ProjectType = "library"
)

// BuildTarget holds the build options for a project plus named
// configuration overrides (e.g., "production").
type BuildTarget struct {
	Options        BuildOptions              `json:"options"`
	Configurations map[string]BuildOverrides `json:"configurations,omitempty"`
}

// BuildOptions is the input record for one build invocation. It is
// immutable for the duration of the build.
type BuildOptions struct {
	OutputPath          string   `json:"outputPath"`
	Main                string   `json:"main,omitempty"`
	Polyfills           string   `json:"polyfills,omitempty"`
	TsConfig            string   `json:"tsConfig,omitempty"`
	Index               string   `json:"index,omitempty"`
	BaseHref            string   `json:"baseHref,omitempty"`
	Styles              []string `json:"styles,omitempty"`
	Scripts             []string `json:"scripts,omitempty"`
	EnvFile             string   `json:"envFile,omitempty"`
	Aot                 bool     `json:"aot,omitempty"`
	Optimization        bool     `json:"optimization,omitempty"`
	SourceMap           bool     `json:"sourceMap,omitempty"`
	StatsJSON           bool     `json:"statsJson,omitempty"`
	Verbose             bool     `json:"verbose,omitempty"`
	Watch               bool     `json:"watch,omitempty"`
	DeleteOutputPath    bool     `json:"deleteOutputPath,omitempty"`
	ServiceWorker       bool     `json:"serviceWorker,omitempty"`
	SwConfigPath        string   `json:"swConfigPath,omitempty"`
	WebWorkerTsConfig   string   `json:"webWorkerTsConfig,omitempty"`
	DifferentialLoading bool     `json:"differentialLoading,omitempty"`
}

// BuildOverrides is a partial BuildOptions used by named configurations.
// Only non-nil fields override the base options.
type BuildOverrides struct {
	OutputPath       *string `json:"outputPath,omitempty"`
	BaseHref         *string `json:"baseHref,omitempty"`
	Aot              *bool   `json:"aot,omitempty"`
	Optimization     *bool   `json:"optimization,omitempty"`
	SourceMap        *bool   `json:"sourceMap,omitempty"`
	ServiceWorker    *bool   `json:"serviceWorker,omitempty"`
	DeleteOutputPath *bool   `json:"deleteOutputPath,omitempty"`
}

// NewConfig creates a new workspace configuration.
func NewConfig() *Config {
	return &Config{
		Version:  "1",
		Projects: make(map[string]Project),
	}
}

// LoadConfig loads the workspace configuration from the given directory.
func LoadConfig(dir string) (*Config, error) {
	return LoadConfigFrom(filepath.Join(dir, ConfigFileName))
}

// LoadConfigFrom loads the workspace configuration from the specified file.
func LoadConfigFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// Save writes the configuration to the given directory atomically.
func (c *Config) Save(dir string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(dir, ConfigFileName)
	if err := xos.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ResolveProject resolves the project a build should target. An explicit
// name wins; otherwise the workspace default project is used. With neither,
// resolution fails before any build work starts.
func (c *Config) ResolveProject(name string) (string, *Project, error) {
	if name == "" {
		name = c.DefaultProject
	}
	if name == "" {
		return "", nil, fmt.Errorf("no project specified and no default project set in %s", ConfigFileName)
	}

	project, exists := c.Projects[name]
	if !exists {
		return "", nil, fmt.Errorf("project %q not found in workspace", name)
	}

	return name, &project, nil
}

// AddProject adds a project to the workspace.
func (c *Config) AddProject(name string, project Project) error {
	if _, exists := c.Projects[name]; exists {
		return fmt.Errorf("project %q already exists", name)
	}

	c.Projects[name] = project
	return nil
}
