package webpack

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dosanma1/webforge/internal/analytics"
	"github.com/dosanma1/webforge/internal/workspace"
)

func testOptions() *workspace.BuildOptions {
	return &workspace.BuildOptions{
		OutputPath: "dist/shop",
		Main:       "src/main.ts",
		Polyfills:  "src/polyfills.ts",
		Index:      "src/index.html",
		TsConfig:   "tsconfig.app.json",
	}
}

func testContext(t *testing.T) *BuildContext {
	t.Helper()
	return &BuildContext{
		WorkspaceRoot: t.TempDir(),
		ProjectName:   "shop",
		ProjectRoot:   "apps/shop",
		Logger:        slog.Default(),
	}
}

func findPlugin(cfg *Config, name string) *Plugin {
	for i := range cfg.Plugins {
		if cfg.Plugins[i].Name == name {
			return &cfg.Plugins[i]
		}
	}
	return nil
}

func TestGenerateConfigs_SingleEntryByDefault(t *testing.T) {
	btx := testContext(t)

	configs, err := GenerateConfigs(context.Background(), testOptions(), btx, nil)
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, "shop", configs[0].Name)
	assert.Equal(t, []string{"src/main.ts"}, configs[0].Entry["main"])
	assert.Equal(t, []string{"src/polyfills.ts"}, configs[0].Entry["polyfills"])
}

func TestGenerateConfigs_OutputPathIsAbsolute(t *testing.T) {
	btx := testContext(t)

	configs, err := GenerateConfigs(context.Background(), testOptions(), btx, nil)
	require.NoError(t, err)
	require.True(t, filepath.IsAbs(configs[0].Output.Path))
	assert.Equal(t, filepath.Join(btx.WorkspaceRoot, "dist/shop"), configs[0].Output.Path)
}

func TestGenerateConfigs_NoAnalyticsSinkNoAnalyticsFragment(t *testing.T) {
	btx := testContext(t)
	btx.Analytics = nil

	configs, err := GenerateConfigs(context.Background(), testOptions(), btx, nil)
	require.NoError(t, err)
	assert.Nil(t, findPlugin(configs[0], "BuildAnalyticsPlugin"))
}

func TestGenerateConfigs_AnalyticsSinkAddsFragment(t *testing.T) {
	btx := testContext(t)
	btx.Analytics = analytics.NewLogSink(slog.Default())

	configs, err := GenerateConfigs(context.Background(), testOptions(), btx, nil)
	require.NoError(t, err)
	assert.NotNil(t, findPlugin(configs[0], "BuildAnalyticsPlugin"))
}

func TestGenerateConfigs_CompilerFragmentSelection(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*workspace.BuildOptions)
		wantAot  bool
		wantNone bool
	}{
		{
			name:    "aot with main",
			mutate:  func(o *workspace.BuildOptions) { o.Aot = true },
			wantAot: true,
		},
		{
			name:   "jit with main",
			mutate: func(o *workspace.BuildOptions) { o.Aot = false },
		},
		{
			name: "aot with polyfills only",
			mutate: func(o *workspace.BuildOptions) {
				o.Aot = true
				o.Main = ""
			},
			wantAot: true,
		},
		{
			name: "no main no polyfills",
			mutate: func(o *workspace.BuildOptions) {
				o.Main = ""
				o.Polyfills = ""
			},
			wantNone: true,
		},
		{
			name: "no main no polyfills with aot requested",
			mutate: func(o *workspace.BuildOptions) {
				o.Main = ""
				o.Polyfills = ""
				o.Aot = true
			},
			wantNone: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions()
			tt.mutate(opts)

			configs, err := GenerateConfigs(context.Background(), opts, testContext(t), nil)
			require.NoError(t, err)

			plugin := findPlugin(configs[0], "AngularCompilerPlugin")
			if tt.wantNone {
				assert.Nil(t, plugin)
				return
			}
			require.NotNil(t, plugin)
			assert.Equal(t, tt.wantAot, plugin.Options["aot"])
		})
	}
}

func TestGenerateConfigs_WorkerFragmentOnlyWithTsConfig(t *testing.T) {
	hasWorkerRule := func(cfg *Config) bool {
		for _, r := range cfg.Rules {
			if r.Loader == "worker-loader" {
				return true
			}
		}
		return false
	}

	opts := testOptions()
	configs, err := GenerateConfigs(context.Background(), opts, testContext(t), nil)
	require.NoError(t, err)
	assert.False(t, hasWorkerRule(configs[0]))

	opts.WebWorkerTsConfig = "tsconfig.worker.json"
	configs, err = GenerateConfigs(context.Background(), opts, testContext(t), nil)
	require.NoError(t, err)
	assert.True(t, hasWorkerRule(configs[0]))
}

func TestGenerateConfigs_DifferentialLoadingYieldsTwoVariants(t *testing.T) {
	opts := testOptions()
	opts.DifferentialLoading = true

	configs, err := GenerateConfigs(context.Background(), opts, testContext(t), nil)
	require.NoError(t, err)
	require.Len(t, configs, 2)
	assert.Equal(t, "shop-es2017", configs[0].Name)
	assert.Equal(t, "shop-es5", configs[1].Name)
	assert.Equal(t, "es2017", configs[0].Defines["ES_TARGET"])
	assert.Equal(t, "es5", configs[1].Defines["ES_TARGET"])
	// Variants are independent copies.
	assert.NotEqual(t, configs[0].Output.Filename, configs[1].Output.Filename)
}

func TestGenerateConfigs_TransformAppliedToEveryEntry(t *testing.T) {
	opts := testOptions()
	opts.DifferentialLoading = true

	var mu sync.Mutex
	seen := map[string]bool{}

	transform := func(ctx context.Context, cfg *Config) (*Config, error) {
		mu.Lock()
		seen[cfg.Name] = true
		mu.Unlock()
		cfg.Devtool = "eval"
		return cfg, nil
	}

	configs, err := GenerateConfigs(context.Background(), opts, testContext(t), transform)
	require.NoError(t, err)
	require.Len(t, configs, 2)
	assert.True(t, seen["shop-es2017"])
	assert.True(t, seen["shop-es5"])
	for _, cfg := range configs {
		assert.Equal(t, "eval", cfg.Devtool)
	}
}

func TestGenerateConfigs_TransformErrorPropagates(t *testing.T) {
	transform := func(ctx context.Context, cfg *Config) (*Config, error) {
		return nil, fmt.Errorf("boom")
	}

	_, err := GenerateConfigs(context.Background(), testOptions(), testContext(t), transform)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "boom"))
}

func TestGenerateConfigs_ModeFollowsOptimization(t *testing.T) {
	opts := testOptions()
	configs, err := GenerateConfigs(context.Background(), opts, testContext(t), nil)
	require.NoError(t, err)
	assert.Equal(t, "development", configs[0].Mode)

	opts.Optimization = true
	configs, err = GenerateConfigs(context.Background(), opts, testContext(t), nil)
	require.NoError(t, err)
	assert.Equal(t, "production", configs[0].Mode)
}
