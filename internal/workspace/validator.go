package workspace

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

var (
	// namePattern matches valid kebab-case project names.
	namePattern = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)
)

// Validator validates workspace configurations beyond schema shape.
type Validator struct{}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate validates the entire configuration.
func (v *Validator) Validate(config *Config) error {
	if config.Version == "" {
		return fmt.Errorf("workspace version is required")
	}

	if config.DefaultProject != "" {
		if _, exists := config.Projects[config.DefaultProject]; !exists {
			return fmt.Errorf("default project %q not found in workspace", config.DefaultProject)
		}
	}

	for name, project := range config.Projects {
		if err := v.validateProject(name, &project); err != nil {
			return fmt.Errorf("project %q: %w", name, err)
		}
	}

	return nil
}

func (v *Validator) validateProject(name string, project *Project) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("name must be kebab-case (got %q)", name)
	}

	switch project.Type {
	case ProjectTypeApplication, ProjectTypeLibrary:
	default:
		return fmt.Errorf("unknown project type %q", project.Type)
	}

	if project.Build == nil {
		return nil
	}

	opts := &project.Build.Options
	if opts.OutputPath == "" {
		return fmt.Errorf("build.options.outputPath is required")
	}
	if err := validateRelativePath("build.options.outputPath", opts.OutputPath); err != nil {
		return err
	}
	if opts.ServiceWorker && opts.Index == "" {
		return fmt.Errorf("serviceWorker requires an index option")
	}

	return nil
}

// validateRelativePath rejects absolute paths and paths escaping the
// workspace root. Output deletion depends on this holding.
func validateRelativePath(field, p string) error {
	if strings.HasPrefix(p, "/") || strings.HasPrefix(p, "\\") {
		return fmt.Errorf("%s must be relative to the workspace root (got %q)", field, p)
	}
	clean := path.Clean(p)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("%s must stay inside the workspace root (got %q)", field, p)
	}
	return nil
}
