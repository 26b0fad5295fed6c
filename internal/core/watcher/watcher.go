// Package watcher reports debounced batches of changed Rust source files.
package watcher

import (
	"cratedeps/internal/engine/parser"
	"cratedeps/internal/shared/cache"
	"cratedeps/internal/shared/observability"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
)

const relevantOps = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

// Watcher follows directory trees and calls onChange with the sorted set of
// Rust files whose content changed during one debounce window.
type Watcher struct {
	fsw      *fsnotify.Watcher
	filter   pathFilter
	index    *contentIndex
	batch    *debouncer
	onChange func([]string)
	notifyMu sync.Mutex
}

func NewWatcher(debounce time.Duration, excludeDirs, excludeFiles []string, onChange func([]string)) (*Watcher, error) {
	if onChange == nil {
		return nil, os.ErrInvalid
	}
	filter, err := newPathFilter(excludeDirs, excludeFiles)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:      fsw,
		filter:   filter,
		index:    &contentIndex{hashes: make(map[string]string)},
		onChange: onChange,
	}
	w.batch = &debouncer{wait: debounce, pending: make(map[string]struct{}), flush: w.deliver}
	return w, nil
}

// Watch registers every non-excluded directory under roots and starts the
// event loop. A file root is watched through its parent directory.
func (w *Watcher) Watch(roots []string) error {
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return err
		}
		if info.IsDir() {
			err = w.addTree(root)
		} else {
			err = w.fsw.Add(filepath.Dir(root))
			w.index.remember(root)
		}
		if err != nil {
			return err
		}
	}
	go w.loop()
	return nil
}

func (w *Watcher) Close() error {
	w.batch.stop()
	return w.fsw.Close()
}

// addTree watches root and every non-excluded directory below it, indexing
// the Rust files it finds.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			if !w.filter.skipFile(path) {
				w.index.remember(path)
			}
			return nil
		}
		if path != root && w.filter.skipDir(path) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			observability.WatcherEventsTotal.Inc()
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			w.adoptDir(ev.Name)
			return
		}
	}
	if ev.Op&relevantOps == 0 || w.filter.skipFile(ev.Name) {
		return
	}
	w.batch.add(ev.Name)
}

// adoptDir starts watching a directory created after Watch and queues the
// files that were written into it before the watch was in place.
func (w *Watcher) adoptDir(dir string) {
	if w.filter.skipDir(dir) {
		return
	}
	if err := w.addTree(dir); err != nil {
		slog.Warn("failed to watch new directory", "path", dir, "error", err)
		return
	}
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() && !w.filter.skipFile(path) {
			w.batch.add(path)
		}
		return nil
	})
}

// deliver drops paths whose content is unchanged and hands the rest to
// onChange. Calls to onChange never overlap.
func (w *Watcher) deliver(paths []string) {
	changed := paths[:0]
	for _, p := range paths {
		if w.index.changed(p) {
			changed = append(changed, p)
		}
	}
	if len(changed) == 0 {
		return
	}
	slices.Sort(changed)

	w.notifyMu.Lock()
	defer w.notifyMu.Unlock()
	w.onChange(changed)
}

type pathFilter struct {
	dirs  []glob.Glob
	files []glob.Glob
}

func newPathFilter(dirPatterns, filePatterns []string) (pathFilter, error) {
	dirs, err := compileAll(dirPatterns)
	if err != nil {
		return pathFilter{}, err
	}
	files, err := compileAll(filePatterns)
	if err != nil {
		return pathFilter{}, err
	}
	return pathFilter{dirs: dirs, files: files}, nil
}

func compileAll(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

func (f pathFilter) skipDir(path string) bool {
	return matchesBase(f.dirs, path)
}

// skipFile reports whether path is not a Rust source or matches a file
// exclusion.
func (f pathFilter) skipFile(path string) bool {
	return !parser.IsRustSource(path) || matchesBase(f.files, path)
}

func matchesBase(globs []glob.Glob, path string) bool {
	base := filepath.Base(path)
	return slices.ContainsFunc(globs, func(g glob.Glob) bool { return g.Match(base) })
}

// debouncer collects paths and flushes them once no new path has arrived
// for wait.
type debouncer struct {
	wait  time.Duration
	flush func([]string)

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
}

func (d *debouncer) add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending[path] = struct{}{}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.wait, d.fire)
}

func (d *debouncer) fire() {
	d.mu.Lock()
	paths := make([]string, 0, len(d.pending))
	for p := range d.pending {
		paths = append(paths, p)
	}
	clear(d.pending)
	d.mu.Unlock()

	if len(paths) > 0 {
		d.flush(paths)
	}
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}

// contentIndex remembers the last seen content hash per file.
type contentIndex struct {
	mu     sync.Mutex
	hashes map[string]string
}

func (c *contentIndex) remember(path string) {
	content, err := os.ReadFile(path)
	if err != nil {
		return
	}
	c.mu.Lock()
	c.hashes[path] = cache.ContentHash(content)
	c.mu.Unlock()
}

// changed records the current hash of path and reports whether it differs
// from the remembered one. Unreadable (removed) files always count as
// changed.
func (c *contentIndex) changed(path string) bool {
	content, err := os.ReadFile(path)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		delete(c.hashes, path)
		return true
	}
	hash := cache.ContentHash(content)
	if prev, ok := c.hashes[path]; ok && prev == hash {
		return false
	}
	c.hashes[path] = hash
	return true
}
