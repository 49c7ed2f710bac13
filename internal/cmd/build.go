package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/dosanma1/webforge/internal/analytics"
	"github.com/dosanma1/webforge/internal/builder"
	"github.com/dosanma1/webforge/internal/config"
	"github.com/dosanma1/webforge/internal/settings"
	"github.com/dosanma1/webforge/internal/watch"
	"github.com/dosanma1/webforge/internal/webpack"
	"github.com/dosanma1/webforge/internal/workspace"
)

var (
	buildConfiguration    string
	buildVerbose          bool
	buildWatch            bool
	buildBaseHref         string
	buildOutputPath       string
	buildDeleteOutputPath bool
	buildServiceWorker    bool
	buildAot              bool
)

var buildCmd = &cobra.Command{
	Use:   "build [project]",
	Short: "Build a browser application",
	Long: `Build a browser application project declared in webforge.json.

Without a project argument the workspace default project is built.
Named configurations (e.g., production) override the base build options,
and CLI flags override both.

Examples:
  webforge build                          # Build the default project
  webforge build shop                     # Build a specific project
  webforge build shop -c production       # Use the production configuration
  webforge build shop --watch             # Rebuild on source changes
  webforge build shop --service-worker    # Generate the service worker manifest`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuildCmd,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringVarP(&buildConfiguration, "configuration", "c", "", "Named build configuration (e.g., production)")
	buildCmd.Flags().BoolVarP(&buildVerbose, "verbose", "v", false, "Show full bundler statistics")
	buildCmd.Flags().BoolVarP(&buildWatch, "watch", "w", false, "Rebuild when source files change")
	buildCmd.Flags().StringVar(&buildBaseHref, "base-href", "", "Base URL for the application")
	buildCmd.Flags().StringVar(&buildOutputPath, "output-path", "", "Override the output directory")
	buildCmd.Flags().BoolVar(&buildDeleteOutputPath, "delete-output-path", false, "Delete the output directory before building")
	buildCmd.Flags().BoolVar(&buildServiceWorker, "service-worker", false, "Generate the service worker manifest after a successful build")
	buildCmd.Flags().BoolVar(&buildAot, "aot", false, "Use ahead-of-time template compilation")
}

func runBuildCmd(cmd *cobra.Command, args []string) error {
	workspaceRoot, err := findWorkspaceRoot()
	if err != nil {
		return fmt.Errorf("not in a webforge workspace: %w", err)
	}

	wsConfig, err := workspace.LoadConfig(workspaceRoot)
	if err != nil {
		return fmt.Errorf("failed to load workspace config: %w", err)
	}
	if err := workspace.NewValidator().Validate(wsConfig); err != nil {
		return fmt.Errorf("invalid workspace config: %w", err)
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

	opts := config.NewResolver(project.Build, buildConfiguration).Resolve(flagOverrides(cmd))

	logger := buildLogger(opts.Verbose)

	userSettings, err := settings.Load()
	if err != nil {
		return err
	}

	var sink analytics.Sink
	if userSettings.Analytics {
		sink = analytics.NewLogSink(logger)
	}

	btx := &webpack.BuildContext{
		WorkspaceRoot: workspaceRoot,
		ProjectName:   projectName,
		ProjectRoot:   project.Root,
		Logger:        logger,
		Analytics:     sink,
	}

	runner := webpack.NewExecRunner(workspaceRoot)
	b, err := builder.GetBuilder("webforge:browser", btx, runner, builder.Transforms{})
	if err != nil {
		return err
	}

	if opts.Watch {
		return runWatchMode(cmd, b, btx, &opts)
	}

	return runSingleBuild(cmd, b, projectName, &opts)
}

// flagOverrides lifts only the flags the user actually set, so unset flags
// defer to webforge.json.
func flagOverrides(cmd *cobra.Command) config.Overrides {
	var o config.Overrides
	if cmd.Flags().Changed("output-path") {
		o.OutputPath = &buildOutputPath
	}
	if cmd.Flags().Changed("base-href") {
		o.BaseHref = &buildBaseHref
	}
	if cmd.Flags().Changed("aot") {
		o.Aot = &buildAot
	}
	if cmd.Flags().Changed("watch") {
		o.Watch = &buildWatch
	}
	if cmd.Flags().Changed("verbose") {
		o.Verbose = &buildVerbose
	}
	if cmd.Flags().Changed("service-worker") {
		o.ServiceWorker = &buildServiceWorker
	}
	if cmd.Flags().Changed("delete-output-path") {
		o.DeleteOutputPath = &buildDeleteOutputPath
	}
	return o
}

func buildLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func runSingleBuild(cmd *cobra.Command, b builder.Builder, projectName string, opts *workspace.BuildOptions) error {
	fmt.Printf("🔨 Building %s...\n", projectName)

	done := make(chan struct{})
	if !opts.Verbose {
		go spin(projectName, done)
	}

	result, err := b.Run(cmd.Context(), opts)
	close(done)
	if err != nil {
		return fmt.Errorf("❌ Build failed: %w", err)
	}

	if !result.Success {
		return fmt.Errorf("❌ Build failed, see errors above (output: %s)", result.OutputPath)
	}

	fmt.Printf("✅ Build completed in %s → %s\n", result.Duration.Round(time.Millisecond), result.OutputPath)
	return nil
}

func runWatchMode(cmd *cobra.Command, b builder.Builder, btx *webpack.BuildContext, opts *workspace.BuildOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watchCfg := watch.DefaultConfig(filepath.Join(btx.WorkspaceRoot, btx.ProjectRoot), opts.OutputPath)
	watcher, err := watch.New(watchCfg)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Stop()

	if err := watcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}

	fmt.Printf("👀 Watching %s for changes (Ctrl+C to stop)...\n", btx.ProjectName)

	results, errs := b.RunWatch(ctx, opts, watcher.Triggers())
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-errs:
			if !ok {
				errs = nil // drained; wait on results only
				continue
			}
			if err != nil {
				return fmt.Errorf("❌ Watch build aborted: %w", err)
			}
		case result, ok := <-results:
			if !ok {
				return nil
			}
			if result.Success {
				fmt.Printf("✅ Rebuilt in %s\n", result.Duration.Round(time.Millisecond))
			} else {
				fmt.Println("❌ Rebuild failed, see errors above")
			}
		}
	}
}

// spin renders an indeterminate progress spinner until done closes.
func spin(projectName string, done <-chan struct{}) {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(fmt.Sprintf("Bundling %s", projectName)),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			_ = bar.Finish()
			return
		case <-ticker.C:
			_ = bar.Add(1)
		}
	}
}
