// Package output manages build output directories.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DeleteOutputDir removes a prior build output tree before a fresh build.
// The path is resolved against the workspace root and must stay inside it;
// the root itself is never deleted.
func DeleteOutputDir(workspaceRoot, outputPath string) error {
	root, err := filepath.Abs(workspaceRoot)
	if err != nil {
		return fmt.Errorf("failed to resolve workspace root: %w", err)
	}

	target := outputPath
	if !filepath.IsAbs(target) {
		target = filepath.Join(root, target)
	}
	target = filepath.Clean(target)

	if target == root {
		return fmt.Errorf("refusing to delete workspace root %s", root)
	}
	if !strings.HasPrefix(target, root+string(filepath.Separator)) {
		return fmt.Errorf("output path %s is outside the workspace root", target)
	}

	if err := os.RemoveAll(target); err != nil {
		return fmt.Errorf("failed to delete output directory: %w", err)
	}
	return nil
}
