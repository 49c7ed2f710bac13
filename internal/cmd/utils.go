package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dosanma1/webforge/internal/workspace"
)

// findWorkspaceRoot walks up from the working directory to the nearest
// directory containing webforge.json.
func findWorkspaceRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, workspace.ConfigFileName)); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("not a webforge workspace (no %s found)", workspace.ConfigFileName)
}
