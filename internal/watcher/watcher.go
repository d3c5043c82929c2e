// Package watcher re-runs generation when a file that influenced the last
// run changes.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-hclog"
)

// DefaultDelay is the quiet period after the last relevant event.
const DefaultDelay = 150 * time.Millisecond

// ErrWatcherClosed is returned when using a closed watcher.
var ErrWatcherClosed = errors.New("watcher is closed")

// ChangeFunc handles one batch of coalesced changes.
type ChangeFunc func(ctx context.Context, changed []string)

// Watcher watches the parent directories of a file set. Directories are
// watched instead of files so that editors replacing a file on save are
// still seen.
type Watcher struct {
	mu sync.RWMutex

	fsw    *fsnotify.Watcher
	logger hclog.Logger
	delay  time.Duration

	// names are base names that are relevant in any watched directory, so
	// that a configuration file created after the last run is picked up
	names map[string]bool
	files map[string]bool
	dirs  map[string]bool

	closed bool
}

// New creates a watcher. names lists file base names that trigger a run when
// they appear in a watched directory.
func New(logger hclog.Logger, delay time.Duration, names []string) (*Watcher, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if delay <= 0 {
		delay = DefaultDelay
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:    fsw,
		logger: logger.Named("watch"),
		delay:  delay,
		names:  make(map[string]bool, len(names)),
		files:  make(map[string]bool),
		dirs:   make(map[string]bool),
	}
	for _, name := range names {
		w.names[name] = true
	}
	return w, nil
}

// Update replaces the watched file set. dirs are additional directories,
// such as layers without configuration files yet, whose candidate files are
// relevant.
func (w *Watcher) Update(files, dirs []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}

	nextFiles := make(map[string]bool, len(files))
	nextDirs := make(map[string]bool)
	for _, f := range files {
		f = filepath.Clean(f)
		nextFiles[f] = true
		nextDirs[filepath.Dir(f)] = true
	}
	for _, d := range dirs {
		nextDirs[filepath.Clean(d)] = true
	}

	for dir := range w.dirs {
		if nextDirs[dir] {
			continue
		}
		if err := w.fsw.Remove(dir); err != nil {
			w.logger.Trace("unwatch failed", "dir", dir, "error", err)
		}
		delete(w.dirs, dir)
	}

	for dir := range nextDirs {
		if w.dirs[dir] {
			continue
		}
		if _, err := os.Stat(dir); err != nil {
			w.logger.Debug("skipping missing directory", "dir", dir)
			continue
		}
		if err := w.fsw.Add(dir); err != nil {
			return err
		}
		w.dirs[dir] = true
	}

	w.files = nextFiles
	w.logger.Debug("watch set updated", "files", len(w.files), "dirs", len(w.dirs))
	return nil
}

// Files returns the watched files sorted by path.
func (w *Watcher) Files() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return sortedKeys(w.files)
}

// Dirs returns the watched directories sorted by path.
func (w *Watcher) Dirs() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return sortedKeys(w.dirs)
}

// Relevant reports whether a change to path should trigger a run.
func (w *Watcher) Relevant(path string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	path = filepath.Clean(path)
	if w.files[path] {
		return true
	}
	return w.names[filepath.Base(path)] && w.dirs[filepath.Dir(path)]
}

// Run delivers coalesced changes to onChange until ctx is done or the
// watcher is closed. onChange runs on the calling goroutine; events arriving
// meanwhile are batched into the next call.
func (w *Watcher) Run(ctx context.Context, onChange ChangeFunc) error {
	timer := time.NewTimer(w.delay)
	timer.Stop()
	defer timer.Stop()

	pending := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if event.Op == fsnotify.Chmod || !w.Relevant(event.Name) {
				continue
			}
			w.logger.Trace("change", "path", event.Name, "op", event.Op.String())
			pending[filepath.Clean(event.Name)] = true
			timer.Reset(w.delay)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := sortedKeys(pending)
			pending = make(map[string]bool)
			w.logger.Debug("files changed", "count", len(changed))
			onChange(ctx, changed)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	return w.fsw.Close()
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
