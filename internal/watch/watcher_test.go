package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func waitTrigger(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(3 * time.Second):
		t.Fatal("expected a rebuild trigger")
	}
}

func TestWatcher_TriggersOnFileChange(t *testing.T) {
	root := t.TempDir()
	cfg := DefaultConfig(root, "dist")
	cfg.Debounce = 20 * time.Millisecond

	w, err := New(cfg)
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	require.NoError(t, os.WriteFile(filepath.Join(root, "main.ts"), []byte("x"), 0644))
	waitTrigger(t, w.Triggers())
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	root := t.TempDir()
	cfg := DefaultConfig(root, "dist")
	cfg.Debounce = 100 * time.Millisecond

	w, err := New(cfg)
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, w.Start(context.Background()))

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(root, "main.ts"), []byte{byte(i)}, 0644))
	}

	waitTrigger(t, w.Triggers())

	// The burst collapsed into at most one queued trigger.
	select {
	case <-w.Triggers():
		// One more is acceptable if a write landed after the first fire,
		// but the channel must be drained after that.
		select {
		case <-w.Triggers():
			t.Fatal("burst produced more than two triggers")
		case <-time.After(300 * time.Millisecond):
		}
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_IgnoresOutputDir(t *testing.T) {
	root := t.TempDir()
	dist := filepath.Join(root, "dist")
	require.NoError(t, os.MkdirAll(dist, 0755))

	cfg := DefaultConfig(root, "dist")
	cfg.Debounce = 20 * time.Millisecond

	w, err := New(cfg)
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, w.Start(context.Background()))

	require.NoError(t, os.WriteFile(filepath.Join(dist, "main.js"), []byte("x"), 0644))

	select {
	case <-w.Triggers():
		t.Fatal("output dir writes must not retrigger builds")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_StopClosesTriggerChannel(t *testing.T) {
	w, err := New(DefaultConfig(t.TempDir(), "dist"))
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	w.Stop()

	select {
	case _, open := <-w.Triggers():
		require.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("trigger channel not closed")
	}
}
