package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dosanma1/webforge/internal/ui"
	"github.com/dosanma1/webforge/internal/workspace"
)

var (
	initDefaultProject string
)

var initCmd = &cobra.Command{
	Use:   "init [project-name]",
	Short: "Create a webforge.json in the current directory",
	Long: `Create a webforge workspace configuration interactively.

Examples:
  webforge init
  webforge init shop
  webforge init shop --default`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInitCmd,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initDefaultProject, "default", "", "Name of the default project")
}

func runInitCmd(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	if _, err := os.Stat(filepath.Join(cwd, workspace.ConfigFileName)); err == nil {
		return fmt.Errorf("%s already exists in this directory", workspace.ConfigFileName)
	}

	prompter := ui.NewPrompter()

	name := ""
	if len(args) > 0 {
		name = args[0]
	} else {
		name, err = prompter.AskText("Project name", filepath.Base(cwd))
		if err != nil {
			return cancelled(err)
		}
	}

	projectType, err := prompter.AskSelect("Project type", []string{
		string(workspace.ProjectTypeApplication),
		string(workspace.ProjectTypeLibrary),
	})
	if err != nil {
		return cancelled(err)
	}

	root, err := prompter.AskText("Project root", "apps/"+name)
	if err != nil {
		return cancelled(err)
	}

	config := workspace.NewConfig()
	project := workspace.Project{
		Root:       root,
		SourceRoot: filepath.Join(root, "src"),
		Type:       workspace.ProjectType(projectType),
	}

	if project.Type == workspace.ProjectTypeApplication {
		serviceWorker, err := prompter.AskConfirm("Generate a service worker manifest on production builds?", false)
		if err != nil {
			return cancelled(err)
		}

		project.Build = &workspace.BuildTarget{
			Options: workspace.BuildOptions{
				OutputPath:    filepath.Join("dist", name),
				Main:          filepath.Join(project.SourceRoot, "main.ts"),
				Polyfills:     filepath.Join(project.SourceRoot, "polyfills.ts"),
				Index:         filepath.Join(project.SourceRoot, "index.html"),
				TsConfig:      filepath.Join(root, "tsconfig.app.json"),
				SourceMap:     true,
				ServiceWorker: serviceWorker,
			},
			Configurations: map[string]workspace.BuildOverrides{
				"production": {
					Aot:              boolPtr(true),
					Optimization:     boolPtr(true),
					SourceMap:        boolPtr(false),
					DeleteOutputPath: boolPtr(true),
				},
			},
		}
	}

	if err := config.AddProject(name, project); err != nil {
		return err
	}

	defaultProject := initDefaultProject
	if defaultProject == "" {
		defaultProject = name
	}
	config.DefaultProject = defaultProject

	if err := workspace.NewValidator().Validate(config); err != nil {
		return err
	}
	if err := config.Save(cwd); err != nil {
		return err
	}

	fmt.Printf("✅ Created %s with project %q\n", workspace.ConfigFileName, name)
	return nil
}

func cancelled(err error) error {
	if errors.Is(err, ui.ErrCancelled) {
		fmt.Println("Workspace creation cancelled.")
		return nil
	}
	return err
}

func boolPtr(v bool) *bool { return &v }
