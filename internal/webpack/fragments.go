package webpack

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/dosanma1/webforge/internal/workspace"
)

// Fragment providers are pure functions from build options to a partial
// config. The assembler decides which fragments participate and in what
// order; providers never look at ambient state.

// CommonFragment carries the settings shared by every compilation variant:
// mode, entry points, output location, and build-time defines.
func CommonFragment(opts *workspace.BuildOptions, outputPath string, defines map[string]string) *Config {
	mode := "development"
	if opts.Optimization {
		mode = "production"
	}

	entry := map[string][]string{}
	if opts.Main != "" {
		entry["main"] = []string{opts.Main}
	}
	if opts.Polyfills != "" {
		entry["polyfills"] = []string{opts.Polyfills}
	}

	devtool := ""
	if opts.SourceMap {
		devtool = "source-map"
	}

	return &Config{
		Mode:    mode,
		Entry:   entry,
		Devtool: devtool,
		Output: Output{
			Path:     outputPath,
			Filename: "[name].js",
		},
		Defines: defines,
	}
}

// BrowserFragment adds the browser-platform settings: web target, script
// entries, and index document generation.
func BrowserFragment(opts *workspace.BuildOptions) *Config {
	cfg := &Config{
		Target: "web",
		Resolve: Resolve{
			Extensions: []string{".ts", ".js", ".mjs"},
		},
	}

	if len(opts.Scripts) > 0 {
		cfg.Entry = map[string][]string{"scripts": opts.Scripts}
	}

	if opts.Index != "" {
		cfg.Plugins = append(cfg.Plugins, Plugin{
			Name: "IndexHtmlPlugin",
			Options: map[string]any{
				"input":    opts.Index,
				"baseHref": opts.BaseHref,
			},
		})
	}

	if opts.BaseHref != "" {
		cfg.Output = Output{PublicPath: opts.BaseHref}
	}

	return cfg
}

// StylesFragment wires global stylesheet entries and, under optimization,
// extraction into standalone css assets.
func StylesFragment(opts *workspace.BuildOptions) *Config {
	cfg := &Config{
		Rules: []Rule{
			{Test: `\.(scss|sass)$`, Loader: "sass-loader"},
			{Test: `\.css$`, Loader: "css-loader"},
		},
	}

	if len(opts.Styles) > 0 {
		cfg.Entry = map[string][]string{"styles": opts.Styles}
	}

	if opts.Optimization {
		cfg.Plugins = append(cfg.Plugins, Plugin{Name: "CssExtractPlugin"})
	}

	return cfg
}

// StatsFragment controls statistics reporting verbosity.
func StatsFragment(opts *workspace.BuildOptions) *Config {
	preset := "errors-warnings"
	if opts.Verbose {
		preset = "verbose"
	}
	return &Config{
		Stats: StatsOptions{
			Preset: preset,
			JSON:   opts.StatsJSON,
		},
	}
}

// AnalyticsFragment reports build metrics through the analytics plugin.
// The assembler includes it only when the context carries a sink.
func AnalyticsFragment(opts *workspace.BuildOptions) *Config {
	return &Config{
		Plugins: []Plugin{
			{
				Name: "BuildAnalyticsPlugin",
				Options: map[string]any{
					"category": "build",
					"aot":      opts.Aot,
				},
			},
		},
	}
}

// TypescriptFragment configures ahead-of-time template compilation.
func TypescriptFragment(opts *workspace.BuildOptions) *Config {
	return compilerFragment(opts, true)
}

// TypescriptJITFragment configures just-in-time template compilation.
func TypescriptJITFragment(opts *workspace.BuildOptions) *Config {
	return compilerFragment(opts, false)
}

func compilerFragment(opts *workspace.BuildOptions, aot bool) *Config {
	return &Config{
		Rules: []Rule{
			{Test: `\.ts$`, Loader: "ngtools-loader"},
		},
		Plugins: []Plugin{
			{
				Name: "AngularCompilerPlugin",
				Options: map[string]any{
					"aot":      aot,
					"tsConfig": opts.TsConfig,
				},
			},
		},
	}
}

// WorkerFragment wires web worker bundling when a worker-specific compiler
// config is supplied.
func WorkerFragment(opts *workspace.BuildOptions) *Config {
	return &Config{
		Rules: []Rule{
			{
				Test:   `\.worker\.ts$`,
				Loader: "worker-loader",
				Options: map[string]any{
					"tsConfig": opts.WebWorkerTsConfig,
				},
			},
		},
	}
}

// EnvDefines loads build-time defines from the project's env file, if any.
// Missing files are not an error; a build without defines is normal.
func EnvDefines(projectRoot, envFile string) (map[string]string, error) {
	if envFile == "" {
		envFile = ".env"
	}
	path := filepath.Join(projectRoot, envFile)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	return vars, nil
}
