// Package fsnotify watches corpus directories for page changes.
package fsnotify

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/fwojciec/docqa"
)

// DefaultDebounce is the quiet period after the last change before the
// directory is reported as changed.
const DefaultDebounce = 2 * time.Second

// Watcher reports changes to a directory tree, coalescing bursts of file
// events into a single notification.
type Watcher struct {
	Debounce time.Duration
	Logger   *slog.Logger
}

func (w *Watcher) debounce() time.Duration {
	if w.Debounce <= 0 {
		return DefaultDebounce
	}
	return w.Debounce
}

func (w *Watcher) logger() *slog.Logger {
	if w.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return w.Logger
}

// Watch calls onChange each time files under dir stop changing for the
// debounce period. It blocks until ctx is cancelled and returns nil then.
// Returns ENODIR if dir does not exist.
func (w *Watcher) Watch(ctx context.Context, dir string, onChange func(ctx context.Context)) error {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return docqa.Errorf(docqa.ENODIR, "corpus directory %q does not exist", dir)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return docqa.WrapError(err, docqa.EINTERNAL, "start watcher: %s", err)
	}
	defer fw.Close()

	if err := addTree(fw, dir); err != nil {
		return docqa.WrapError(err, docqa.EINTERNAL, "watch %q: %s", dir, err)
	}

	timer := time.NewTimer(w.debounce())
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if hidden(dir, ev.Name) || ev.Op == fsnotify.Chmod {
				continue
			}
			w.logger().Debug("file event", "op", ev.Op.String(), "path", ev.Name)
			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := addTree(fw, ev.Name); err != nil {
						w.logger().Warn("watch new directory", "path", ev.Name, "error", err)
					}
				}
			}
			timer.Reset(w.debounce())
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger().Warn("watcher error", "error", err)
		case <-timer.C:
			onChange(ctx)
		}
	}
}

// addTree watches root and every non-hidden directory below it.
func addTree(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return fw.Add(path)
	})
}

// hidden reports whether path has a dot-prefixed element below root. Such
// files are never loaded as pages.
func hidden(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}
