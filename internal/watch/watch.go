// Package watch re-runs generation when package sources change.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/romdo/go-debounce"
)

const (
	// DefaultWait is the quiet period after the last change before a run.
	DefaultWait = 200 * time.Millisecond
	// DefaultMaxWait bounds the delay of a run under continuous changes.
	DefaultMaxWait = 2 * time.Second
)

// Options configures a Watcher.
type Options struct {
	// OutputFile is the base name of generated files, whose changes are ignored.
	OutputFile string
	Wait       time.Duration
	MaxWait    time.Duration
}

// Watcher watches package directories for Go source changes.
type Watcher struct {
	opts    Options
	watcher *fsnotify.Watcher
	dirs    []string
}

// New creates a watcher over dirs. Watches are established before New
// returns.
func New(opts Options, dirs ...string) (*Watcher, error) {
	if opts.Wait <= 0 {
		opts.Wait = DefaultWait
	}
	if opts.MaxWait < opts.Wait {
		opts.MaxWait = DefaultMaxWait
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w := &Watcher{opts: opts, watcher: fw}
	seen := make(map[string]bool)
	for _, dir := range dirs {
		if seen[dir] {
			continue
		}
		seen[dir] = true
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		w.dirs = append(w.dirs, dir)
	}
	slog.Info("File watcher initialized", "directories", len(w.dirs))
	return w, nil
}

// Dirs returns the watched directories.
func (w *Watcher) Dirs() []string {
	return append([]string(nil), w.dirs...)
}

// Relevant reports whether an event should trigger a run: a change of a
// non-test Go file other than the generated output.
func (w *Watcher) Relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	base := filepath.Base(event.Name)
	if filepath.Ext(base) != ".go" || strings.HasSuffix(base, "_test.go") {
		return false
	}
	return base != w.opts.OutputFile
}

// Run calls fn after every burst of relevant changes until ctx is done.
// Runs never overlap; errors from fn are logged. Run closes the watcher.
func (w *Watcher) Run(ctx context.Context, fn func(context.Context) error) error {
	defer w.watcher.Close()

	trigger := make(chan struct{}, 1)
	debounced, cancel := debounce.NewWithMaxWait(w.opts.Wait, w.opts.MaxWait, func() {
		select {
		case trigger <- struct{}{}:
		default:
		}
	})
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopping file watcher")
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if w.Relevant(event) {
				slog.Debug("Detected source change", "file", event.Name, "op", event.Op.String())
				debounced()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("Watcher error", "error", err)
		case <-trigger:
			if err := fn(ctx); err != nil {
				slog.Error("Regeneration failed", "error", err)
			}
		}
	}
}
