// Package watch provides the debounced file watcher driving watch-mode
// rebuilds.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Config contains configuration for the file watcher.
type Config struct {
	// Root is the directory watched recursively.
	Root string

	// IgnorePatterns are path segments excluded from watching. The build
	// output must be listed here or every build retriggers itself.
	IgnorePatterns []string

	// Debounce collapses rapid event bursts into one rebuild trigger.
	Debounce time.Duration
}

// DefaultConfig returns the watcher configuration for a project source tree.
func DefaultConfig(root, outputPath string) *Config {
	return &Config{
		Root: root,
		IgnorePatterns: []string{
			".git",
			"node_modules",
			".webforge",
			outputPath,
		},
		Debounce: 250 * time.Millisecond,
	}
}

// Watcher watches a source tree and emits one trigger per settled burst of
// file changes.
type Watcher struct {
	config  *Config
	watcher *fsnotify.Watcher
	trigger chan struct{}
	done    chan struct{}

	mu      sync.Mutex
	pending *time.Timer
	running bool
}

// New creates a watcher for the given configuration.
func New(config *Config) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		config:  config,
		watcher: fsWatcher,
		trigger: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}, nil
}

// Triggers returns the rebuild trigger channel.
func (w *Watcher) Triggers() <-chan struct{} {
	return w.trigger
}

// Start begins watching. The root tree is registered recursively; new
// directories created later are picked up as they appear.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	if err := w.addRecursive(w.config.Root); err != nil {
		return err
	}

	w.running = true
	go w.loop(ctx)
	return nil
}

// Stop ends watching and closes the trigger channel. The mutex orders Stop
// against in-flight debounce timers, so no trigger fires after close.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	w.running = false
	if w.pending != nil {
		w.pending.Stop()
	}
	close(w.done)
	w.watcher.Close()
	close(w.trigger)
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are transient; the next event still triggers.
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if w.ignored(event.Name) {
		return
	}

	// Newly created directories join the watch set.
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = w.addRecursive(event.Name)
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(w.config.Debounce, func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if !w.running {
			return
		}
		select {
		case w.trigger <- struct{}{}:
		default:
			// A trigger is already queued; the burst is covered.
		}
	})
}

func (w *Watcher) ignored(path string) bool {
	rel, err := filepath.Rel(w.config.Root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)

	for _, pattern := range w.config.IgnorePatterns {
		pattern = filepath.ToSlash(pattern)
		if rel == pattern || strings.HasPrefix(rel, pattern+"/") {
			return true
		}
		for _, segment := range strings.Split(rel, "/") {
			if segment == pattern {
				return true
			}
		}
	}
	return false
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignored(path) && path != root {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}
