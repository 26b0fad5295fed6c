// Package app wires configuration, parsing, import analysis, caching and
// persistence into the operations the CLI exposes.
package app

import (
	"cratedeps/internal/core/config"
	"cratedeps/internal/core/errors"
	"cratedeps/internal/core/watcher"
	"cratedeps/internal/data/history"
	"cratedeps/internal/engine/parser"
	"cratedeps/internal/shared/cache"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/gobwas/glob"
)

type App struct {
	Config *config.Config

	parser  *parser.Parser
	results *cache.Results[FileReport]
	store   *history.Store

	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob

	mu           sync.RWMutex
	reports      map[string]FileReport
	lastAnalysis time.Time

	activeWatcher *watcher.Watcher
	roots         []string
}

// New builds an App from a validated config. When the database is enabled
// the store is opened here and closed by Close.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	dirGlobs, err := compileGlobs(cfg.Exclude.Dirs)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "compile exclude.dirs")
	}
	fileGlobs, err := compileGlobs(cfg.Exclude.Files)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "compile exclude.files")
	}

	a := &App{
		Config:       cfg,
		parser:       parser.NewParser(),
		results:      cache.NewResults[FileReport](cfg.Analysis.CacheEntries),
		excludeDirs:  dirGlobs,
		excludeFiles: fileGlobs,
		reports:      make(map[string]FileReport),
	}

	if cfg.DB.Enabled {
		store, err := history.Open(cfg.DB.Path, cfg.DB.BusyTimeout)
		if err != nil {
			return nil, errors.AddContext(errors.Wrap(err, errors.CodeIO, "open history store"), errors.CtxPath, cfg.DB.Path)
		}
		a.store = store
		slog.Debug("history store attached", "path", store.Path())
	}
	return a, nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

// Close stops an active watcher and releases the store.
func (a *App) Close() error {
	var firstErr error
	if a.activeWatcher != nil {
		if err := a.activeWatcher.Close(); err != nil {
			firstErr = err
		}
		a.activeWatcher = nil
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		a.store = nil
	}
	return firstErr
}

// Store returns the attached history store, or nil when persistence is off.
func (a *App) Store() *history.Store {
	return a.store
}

// Reports returns the latest report of every file analysed by this App,
// sorted by path.
func (a *App) Reports() []FileReport {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]FileReport, 0, len(a.reports))
	for _, r := range a.reports {
		out = append(out, r)
	}
	sortReports(out)
	return out
}

func (a *App) remember(report FileReport) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reports[report.Path] = report
	a.lastAnalysis = time.Now().UTC()
}

func (a *App) forget(path string) (FileReport, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	r, ok := a.reports[path]
	delete(a.reports, path)
	return r, ok
}

// setWatchRoots records the cleaned roots of the active watch.
func (a *App) setWatchRoots(roots []string) {
	cleaned := make([]string, 0, len(roots))
	for _, r := range roots {
		cleaned = append(cleaned, filepath.Clean(r))
	}
	a.mu.Lock()
	a.roots = cleaned
	a.mu.Unlock()
}

func (a *App) watchedRoots() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.roots
}
