// Package watch re-runs work when watched SQL files change.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits after the last change
// before firing. Editors often emit several events per save.
const DefaultDebounce = 100 * time.Millisecond

// Config holds watcher settings.
type Config struct {
	// Paths are the files or directories to watch. Directories are
	// watched recursively for .sql files.
	Paths []string

	// Debounce overrides DefaultDebounce when positive.
	Debounce time.Duration

	// Logger receives watcher diagnostics. Nil discards them.
	Logger *slog.Logger
}

// Watcher fires a callback after debounced changes to watched paths.
type Watcher struct {
	dirs     []string            // recursively watched, match any .sql
	files    map[string]struct{} // exact files to match, abs paths
	roots    []string            // directories registered with fsnotify
	debounce time.Duration
	logger   *slog.Logger
}

// New validates cfg and returns a Watcher. Every path must exist.
func New(cfg Config) (*Watcher, error) {
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	w := &Watcher{
		debounce: debounce,
		logger:   logger,
		files:    make(map[string]struct{}),
	}

	for _, p := range cfg.Paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			w.dirs = append(w.dirs, abs)
			w.roots = append(w.roots, abs)
		} else {
			// Watch the parent directory; editors replace files on
			// save, which drops plain file watches.
			w.roots = append(w.roots, filepath.Dir(abs))
			w.files[abs] = struct{}{}
		}
	}

	return w, nil
}

// Run blocks until ctx is cancelled, invoking fn with the changed path
// after each debounced change. fn runs on the watch loop, so calls never
// overlap.
func (w *Watcher) Run(ctx context.Context, fn func(ctx context.Context, path string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	for _, dir := range w.roots {
		if err := watchDir(watcher, dir); err != nil {
			return err
		}
	}

	fire := make(chan string, 1)
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !w.matches(event.Name) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			name := event.Name
			debounceTimer = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- name:
				default:
				}
			})

		case name := <-fire:
			w.logger.Debug("change detected", slog.String("path", filepath.Base(name)))
			fn(ctx, name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", slog.Any("error", err))
		}
	}
}

// matches reports whether a change to name should fire the callback.
func (w *Watcher) matches(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		abs = name
	}
	if _, ok := w.files[abs]; ok {
		return true
	}
	if filepath.Ext(abs) != ".sql" {
		return false
	}
	for _, dir := range w.dirs {
		if abs == dir || strings.HasPrefix(abs, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// watchDir recursively adds a directory to the watcher, skipping hidden
// directories.
func watchDir(watcher *fsnotify.Watcher, dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if name := info.Name(); len(name) > 1 && name[0] == '.' {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
}
