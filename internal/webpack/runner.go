package webpack

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"

	"github.com/dosanma1/webforge/pkg/xos"
)

// BuildEvent is the per-invocation outcome reported by a Runner.
type BuildEvent struct {
	Success bool
	Stats   *Stats
}

// RunOptions carries per-invocation settings for a Runner.
type RunOptions struct {
	// Logging is invoked once with the invocation's statistics.
	Logging LoggingCallback
}

// Runner executes one bundler invocation for one config entry.
type Runner interface {
	Run(ctx context.Context, cfg *Config, opts RunOptions) (BuildEvent, error)
}

// minNodeVersion is the oldest Node.js release the bundler adapter supports.
const minNodeVersion = ">= 18.0.0"

// scratchDir is where serialized configs and stats land, relative to the
// workspace root.
const scratchDir = ".webforge"

// ExecRunner shells out to the bundler adapter the way the CLI would by
// hand: the config entry is serialized to disk and handed to the adapter,
// which writes a stats JSON document back.
type ExecRunner struct {
	workspaceRoot string

	nodeCheck    sync.Once
	nodeCheckErr error
}

// NewExecRunner creates a runner rooted at the workspace.
func NewExecRunner(workspaceRoot string) *ExecRunner {
	return &ExecRunner{workspaceRoot: workspaceRoot}
}

// Run executes the bundler for one config entry. A bundler exit with
// compile errors is a failed event, not a Go error; only infrastructure
// problems (missing node, unwritable scratch dir) surface as errors.
func (r *ExecRunner) Run(ctx context.Context, cfg *Config, opts RunOptions) (BuildEvent, error) {
	r.nodeCheck.Do(func() {
		r.nodeCheckErr = checkNodeVersion(ctx)
	})
	if r.nodeCheckErr != nil {
		return BuildEvent{}, r.nodeCheckErr
	}

	scratch := filepath.Join(r.workspaceRoot, scratchDir)
	if err := xos.EnsureDir(scratch, 0755); err != nil {
		return BuildEvent{}, fmt.Errorf("failed to create scratch directory: %w", err)
	}

	configPath := filepath.Join(scratch, cfg.Name+".config.json")
	statsPath := filepath.Join(scratch, cfg.Name+".stats.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return BuildEvent{}, fmt.Errorf("failed to serialize config %q: %w", cfg.Name, err)
	}
	if err := xos.WriteFile(configPath, data, 0644); err != nil {
		return BuildEvent{}, fmt.Errorf("failed to write config %q: %w", cfg.Name, err)
	}

	cmd := exec.CommandContext(ctx, "npx", "--no-install", "webforge-bundler",
		"--config", configPath,
		"--stats", statsPath)
	cmd.Dir = r.workspaceRoot
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	runErr := cmd.Run()
	if runErr != nil {
		if _, ok := runErr.(*exec.ExitError); !ok {
			return BuildEvent{}, fmt.Errorf("failed to start bundler: %w", runErr)
		}
	}

	stats, err := readStats(statsPath)
	if err != nil {
		if runErr != nil {
			// The bundler died before writing stats. Synthesize a failed
			// event so the failure still flows through aggregation.
			stats = &Stats{Errors: []string{runErr.Error()}}
		} else {
			return BuildEvent{}, err
		}
	}

	if opts.Logging != nil {
		opts.Logging(stats, cfg)
	}

	event := BuildEvent{
		Success: runErr == nil && !stats.HasErrors(),
		Stats:   stats,
	}
	return event, nil
}

func readStats(path string) (*Stats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundler stats: %w", err)
	}
	return ParseStats(data)
}

// checkNodeVersion verifies the installed Node.js release satisfies the
// adapter's minimum before the first invocation.
func checkNodeVersion(ctx context.Context) error {
	out, err := exec.CommandContext(ctx, "node", "--version").Output()
	if err != nil {
		return fmt.Errorf("node.js not found on PATH: %w", err)
	}

	raw := strings.TrimPrefix(strings.TrimSpace(string(out)), "v")
	version, err := semver.NewVersion(raw)
	if err != nil {
		return fmt.Errorf("unexpected node version output %q: %w", raw, err)
	}

	constraint, err := semver.NewConstraint(minNodeVersion)
	if err != nil {
		return fmt.Errorf("invalid node version constraint: %w", err)
	}

	if !constraint.Check(version) {
		return fmt.Errorf("node.js %s is too old, need %s", version, minNodeVersion)
	}
	return nil
}
