package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dosanma1/webforge/internal/output"
	"github.com/dosanma1/webforge/internal/workspace"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [project]",
	Short: "Delete a project's build output",
	Long: `Delete the build output directory of a project.

Without a project argument the workspace default project is cleaned.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCleanCmd,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}

func runCleanCmd(cmd *cobra.Command, args []string) error {
	workspaceRoot, err := findWorkspaceRoot()
	if err != nil {
		return fmt.Errorf("not in a webforge workspace: %w", err)
	}

	wsConfig, err := workspace.LoadConfig(workspaceRoot)
	if err != nil {
		return fmt.Errorf("failed to load workspace config: %w", err)
	}

	projectArg := ""
	if len(args) > 0 {
		projectArg = args[0]
	}

	projectName, project, err := wsConfig.ResolveProject(projectArg)
	if err != nil {
		return err
	}
	if project.Build == nil {
		return fmt.Errorf("project %q has no build target", projectName)
	}

	outputPath := project.Build.Options.OutputPath
	if err := output.DeleteOutputDir(workspaceRoot, outputPath); err != nil {
		return err
	}

	fmt.Printf("🧹 Removed %s\n", outputPath)
	return nil
}
