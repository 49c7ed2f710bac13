// Package settings manages per-user CLI settings stored under the home
// directory, separate from per-workspace configuration.
package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dosanma1/webforge/pkg/xos"
)

const (
	settingsDir  = ".webforge"
	settingsFile = "settings.yaml"
)

// Settings are user-level preferences applied to every workspace.
type Settings struct {
	// Analytics enables the local analytics sink for builds.
	Analytics bool `yaml:"analytics"`

	// PackageManager is used by scaffolding (npm or pnpm).
	PackageManager string `yaml:"packageManager"`
}

// Defaults returns the settings used when no file exists yet.
func Defaults() *Settings {
	return &Settings{
		Analytics:      false,
		PackageManager: "npm",
	}
}

// Path returns the settings file location.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, settingsDir, settingsFile), nil
}

// Load reads the user settings, falling back to defaults when the file does
// not exist.
func Load() (*Settings, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads settings from an explicit path.
func LoadFrom(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Defaults(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	s := Defaults()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	return s, nil
}

// Save writes the settings atomically.
func (s *Settings) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return s.SaveTo(path)
}

// SaveTo writes the settings to an explicit path.
func (s *Settings) SaveTo(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := xos.EnsureDir(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	if err := xos.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}
