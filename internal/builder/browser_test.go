package builder

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dosanma1/webforge/internal/webpack"
	"github.com/dosanma1/webforge/internal/workspace"
)

// fakeRunner records invocations and returns canned per-config events.
type fakeRunner struct {
	mu       sync.Mutex
	calls    []string
	failures map[string]bool
	err      error
}

func (f *fakeRunner) Run(ctx context.Context, cfg *webpack.Config, opts webpack.RunOptions) (webpack.BuildEvent, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cfg.Name)
	f.mu.Unlock()

	if f.err != nil {
		return webpack.BuildEvent{}, f.err
	}

	stats := &webpack.Stats{Hash: "h-" + cfg.Name, TimeMs: 10}
	if f.failures[cfg.Name] {
		stats.Errors = []string{"compile failed"}
	}
	if opts.Logging != nil {
		opts.Logging(stats, cfg)
	}
	return webpack.BuildEvent{Success: !f.failures[cfg.Name], Stats: stats}, nil
}

func browserOptions() *workspace.BuildOptions {
	return &workspace.BuildOptions{
		OutputPath: "dist/shop",
		Main:       "src/main.ts",
		Index:      "src/index.html",
	}
}

func newTestBuilder(t *testing.T, runner webpack.Runner, transforms Transforms) (*BrowserBuilder, string) {
	t.Helper()
	root := t.TempDir()
	btx := &webpack.BuildContext{
		WorkspaceRoot: root,
		ProjectName:   "shop",
		ProjectRoot:   "apps/shop",
		Logger:        slog.Default(),
	}
	return NewBrowserBuilder(btx, runner, transforms), root
}

func TestRun_SuccessfulSingleVariant(t *testing.T) {
	runner := &fakeRunner{}
	b, root := newTestBuilder(t, runner, Transforms{})

	result, err := b.Run(context.Background(), browserOptions())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, filepath.Join(root, "dist/shop"), result.OutputPath)
	assert.Equal(t, []string{"shop"}, runner.calls)
	assert.NotEqual(t, result.ID.String(), "00000000-0000-0000-0000-000000000000")
}

func TestRun_DifferentialLoadingRunsEachVariantOnce(t *testing.T) {
	runner := &fakeRunner{}
	b, _ := newTestBuilder(t, runner, Transforms{})

	opts := browserOptions()
	opts.DifferentialLoading = true

	result, err := b.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.ElementsMatch(t, []string{"shop-es2017", "shop-es5"}, runner.calls)
}

func TestRun_OneFailedVariantFailsAggregate(t *testing.T) {
	runner := &fakeRunner{failures: map[string]bool{"shop-es5": true}}
	b, root := newTestBuilder(t, runner, Transforms{})

	opts := browserOptions()
	opts.DifferentialLoading = true

	result, err := b.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.False(t, result.Success)
	// The output path is reported even for failed cycles.
	assert.Equal(t, filepath.Join(root, "dist/shop"), result.OutputPath)
}

func TestRun_RunnerInfrastructureErrorPropagates(t *testing.T) {
	runner := &fakeRunner{err: fmt.Errorf("node not found")}
	b, _ := newTestBuilder(t, runner, Transforms{})

	_, err := b.Run(context.Background(), browserOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "node not found")
}

func TestRun_ConfigureErrorAbortsBeforeCompile(t *testing.T) {
	runner := &fakeRunner{}
	transforms := Transforms{
		Config: func(ctx context.Context, cfg *webpack.Config) (*webpack.Config, error) {
			return nil, fmt.Errorf("bad transform")
		},
	}
	b, _ := newTestBuilder(t, runner, transforms)

	_, err := b.Run(context.Background(), browserOptions())
	require.Error(t, err)
	assert.Empty(t, runner.calls)
}

func TestRun_CleanRunsOnlyWhenRequested(t *testing.T) {
	runner := &fakeRunner{}
	b, _ := newTestBuilder(t, runner, Transforms{})

	var cleaned []string
	b.clean = func(workspaceRoot, outputPath string) error {
		cleaned = append(cleaned, outputPath)
		return nil
	}

	opts := browserOptions()
	_, err := b.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Empty(t, cleaned)

	opts.DeleteOutputPath = true
	_, err = b.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"dist/shop"}, cleaned)
}

func TestRun_CleanErrorIsFatal(t *testing.T) {
	runner := &fakeRunner{}
	b, _ := newTestBuilder(t, runner, Transforms{})
	b.clean = func(workspaceRoot, outputPath string) error {
		return fmt.Errorf("permission denied")
	}

	opts := browserOptions()
	opts.DeleteOutputPath = true

	_, err := b.Run(context.Background(), opts)
	require.Error(t, err)
	assert.Empty(t, runner.calls)
}

func TestRun_ServiceWorkerAugmentationOnSuccess(t *testing.T) {
	runner := &fakeRunner{}
	b, root := newTestBuilder(t, runner, Transforms{})

	var augmented []string
	b.augment = func(projectRoot, outputPath, baseHref, configPath string) error {
		augmented = append(augmented, outputPath)
		return nil
	}

	opts := browserOptions()
	opts.ServiceWorker = true

	result, err := b.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, []string{filepath.Join(root, "dist/shop")}, augmented)
}

func TestRun_WatchModeSkipsAugmentation(t *testing.T) {
	runner := &fakeRunner{}
	b, _ := newTestBuilder(t, runner, Transforms{})

	called := false
	b.augment = func(projectRoot, outputPath, baseHref, configPath string) error {
		called = true
		return nil
	}

	opts := browserOptions()
	opts.ServiceWorker = true
	opts.Watch = true

	result, err := b.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.False(t, called)
}

func TestRun_FailedCompileSkipsAugmentation(t *testing.T) {
	runner := &fakeRunner{failures: map[string]bool{"shop": true}}
	b, _ := newTestBuilder(t, runner, Transforms{})

	called := false
	b.augment = func(projectRoot, outputPath, baseHref, configPath string) error {
		called = true
		return nil
	}

	opts := browserOptions()
	opts.ServiceWorker = true

	result, err := b.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.False(t, called)
}

func TestRun_AugmentationFailureDowngradesResult(t *testing.T) {
	runner := &fakeRunner{}
	b, root := newTestBuilder(t, runner, Transforms{})
	b.augment = func(projectRoot, outputPath, baseHref, configPath string) error {
		return fmt.Errorf("manifest write failed")
	}

	opts := browserOptions()
	opts.ServiceWorker = true

	result, err := b.Run(context.Background(), opts)
	require.NoError(t, err, "augmentation failures must not propagate")
	assert.False(t, result.Success)
	assert.Equal(t, filepath.Join(root, "dist/shop"), result.OutputPath)
}

func TestRun_ResultTransformApplied(t *testing.T) {
	runner := &fakeRunner{}
	transforms := Transforms{
		Result: func(ctx context.Context, result *Result) (*Result, error) {
			result.OutputPath = result.OutputPath + "-transformed"
			return result, nil
		},
	}
	b, root := newTestBuilder(t, runner, transforms)

	result, err := b.Run(context.Background(), browserOptions())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "dist/shop")+"-transformed", result.OutputPath)
}

func TestRun_ValidateRejectsBadOptions(t *testing.T) {
	b, _ := newTestBuilder(t, &fakeRunner{}, Transforms{})

	_, err := b.Run(context.Background(), &workspace.BuildOptions{})
	require.Error(t, err)

	opts := browserOptions()
	opts.ServiceWorker = true
	opts.Index = ""
	_, err = b.Run(context.Background(), opts)
	require.Error(t, err)
}

func TestRunWatch_EmitsOneResultPerCycle(t *testing.T) {
	runner := &fakeRunner{}
	b, _ := newTestBuilder(t, runner, Transforms{})

	opts := browserOptions()
	opts.Watch = true

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	triggers := make(chan struct{})
	results, errs := b.RunWatch(ctx, opts, triggers)

	first := <-results
	require.NotNil(t, first)
	assert.True(t, first.Success)

	triggers <- struct{}{}
	second := <-results
	require.NotNil(t, second)
	assert.NotEqual(t, first.ID, second.ID)

	close(triggers)
	select {
	case err := <-errs:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watch stream did not terminate")
	}
}

func TestRunWatch_FatalErrorEndsStream(t *testing.T) {
	runner := &fakeRunner{err: fmt.Errorf("node missing")}
	b, _ := newTestBuilder(t, runner, Transforms{})

	opts := browserOptions()
	opts.Watch = true

	results, errs := b.RunWatch(context.Background(), opts, make(chan struct{}))

	select {
	case err := <-errs:
		require.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("expected a fatal error")
	}

	_, open := <-results
	assert.False(t, open)
}

func TestGetBuilder(t *testing.T) {
	btx := &webpack.BuildContext{WorkspaceRoot: t.TempDir(), Logger: slog.Default()}

	b, err := GetBuilder("webforge:browser", btx, &fakeRunner{}, Transforms{})
	require.NoError(t, err)
	assert.Equal(t, "webforge:browser", b.Name())

	_, err = GetBuilder("webforge:native", btx, &fakeRunner{}, Transforms{})
	require.Error(t, err)

	assert.Contains(t, ListBuilders(), "webforge:browser")
}
