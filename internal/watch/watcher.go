// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs a comparison whenever its input files change.
//
// It monitors the parent directories of a fixed set of files (observed and
// reference tables, tolerance rules, profile dumps) and invokes a callback
// after a debounce period. Events within the debounce window are coalesced
// so the callback fires once with the full set of changed paths. Watching
// directories rather than the files themselves keeps the watch alive across
// the write-then-rename pattern editors and result writers use.
package watch

import (
	"context"
	"fmt"
	"io"
	"maps"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// defaultDebounce is the quiet period after the last filesystem event before
// the callback fires, so a writer producing several files in quick
// succession triggers a single re-run.
const defaultDebounce = 500 * time.Millisecond

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Paths are the files whose changes trigger the callback. Their
		// parent directories must exist; the files themselves may not yet.
		Paths []string

		// Debounce is the quiet period after the last event before the
		// callback fires. Zero or negative values fall back to the default.
		Debounce time.Duration

		// OnChange is called after the debounce window closes with the
		// deduplicated list of changed paths. A nil callback is a no-op;
		// a callback error is logged and watching continues.
		OnChange func(ctx context.Context, changed []string) error

		// Logger receives progress and error output. nil discards it.
		Logger *log.Logger
	}

	// Watcher monitors a fixed file set and fires a debounced callback when
	// any of them changes. Run must be called exactly once.
	Watcher struct {
		fsw      *fsnotify.Watcher
		files    map[string]struct{}
		debounce time.Duration
		onChange func(ctx context.Context, changed []string) error
		logger   *log.Logger
		started  atomic.Bool
	}
)

// New creates a Watcher for the given file set. Paths are resolved to
// absolute form and deduplicated; each distinct parent directory is
// registered with the underlying fsnotify watcher.
func New(cfg Config) (*Watcher, error) {
	if len(cfg.Paths) == 0 {
		return nil, fmt.Errorf("watch: no paths to watch")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	files := make(map[string]struct{}, len(cfg.Paths))
	dirs := make(map[string]struct{})
	for _, path := range cfg.Paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("watch: resolve path %q: %w", path, err)
		}
		files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close() //nolint:errcheck // add error takes precedence
			return nil, fmt.Errorf("watch: add directory %q: %w", dir, err)
		}
	}

	return &Watcher{
		fsw:      fsw,
		files:    files,
		debounce: debounce,
		onChange: cfg.OnChange,
		logger:   logger,
	}, nil
}

// Run blocks until ctx is cancelled, processing filesystem events and
// dispatching debounced callbacks. It returns nil on clean cancellation.
// Run must be called exactly once; a second call returns an error.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return fmt.Errorf("watch: Run called more than once")
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		running atomic.Bool
	)

	// fire drains the pending set and invokes the callback. The timer may
	// schedule it after cancellation, so ctx is checked first. The
	// skip-if-busy guard prevents overlapping callbacks when a re-run takes
	// longer than the debounce window; the retry keeps the pending set from
	// being silently discarded in that case.
	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			w.logger.Warn("previous re-run still in progress, retrying later")
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()

		if w.onChange == nil {
			return
		}
		w.logger.Info("inputs changed, re-running", "files", changed)
		if err := w.onChange(ctx, changed); err != nil {
			w.logger.Error("re-run failed", "err", err)
		}
	}

	defer func() {
		mu.Lock()
		localTimer := timer
		mu.Unlock()
		if localTimer != nil && !localTimer.Stop() {
			select {
			case <-localTimer.C:
			default:
			}
		}
		if err := w.fsw.Close(); err != nil {
			w.logger.Error("failed to close fsnotify watcher", "err", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return fmt.Errorf("watch: fsnotify event channel closed unexpectedly")
			}
			if !w.watched(evt.Name) {
				continue
			}
			if !evt.Has(fsnotify.Write) && !evt.Has(fsnotify.Create) && !evt.Has(fsnotify.Rename) {
				continue
			}

			mu.Lock()
			pending[evt.Name] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return fmt.Errorf("watch: fsnotify error channel closed unexpectedly")
			}
			w.logger.Error("fsnotify error", "err", err)
		}
	}
}

// watched reports whether an event path is one of the configured files.
func (w *Watcher) watched(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	if _, ok := w.files[abs]; ok {
		return true
	}
	// Symlinked temp dirs (macOS /var vs /private/var) resolve differently
	// between registration and event delivery.
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return false
	}
	_, ok := w.files[resolved]
	return ok
}

// Paths returns the watched file set, sorted. Useful for logging what a
// watch session covers.
func (w *Watcher) Paths() []string {
	return slices.Sorted(maps.Keys(w.files))
}
