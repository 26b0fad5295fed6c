package app

import (
	"context"
	"cratedeps/internal/core/watcher"
	"cratedeps/internal/engine/parser"
	"cratedeps/internal/shared/observability"
	"cratedeps/internal/shared/util"
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/google/uuid"
)

// ChangeSet is the outcome of one debounced batch of file-system changes.
type ChangeSet struct {
	RunID    string
	Updated  []FileReport
	Removed  []string
	Failures []FileFailure
}

// StartWatcher watches roots and re-analyses changed Rust files until ctx is
// done or Close is called. notify, when set, receives every processed batch.
func (a *App) StartWatcher(ctx context.Context, roots []string, notify func(ChangeSet)) error {
	limiter := util.NewLimiter(a.Config.Watch.RatePerSecond, a.Config.Watch.Burst)

	w, err := watcher.NewWatcher(
		a.Config.Watch.Debounce,
		a.Config.Exclude.Dirs,
		a.Config.Exclude.Files,
		func(paths []string) {
			if !limiter.Allow() {
				observability.WatcherThrottledTotal.Inc()
				if err := limiter.Wait(ctx); err != nil {
					return
				}
			}
			changes := a.HandleChanges(ctx, paths)
			if notify != nil {
				notify(changes)
			}
		},
	)
	if err != nil {
		return err
	}
	a.activeWatcher = w
	a.setWatchRoots(roots)

	go func() {
		<-ctx.Done()
		_ = w.Close()
	}()
	return w.Watch(roots)
}

// HandleChanges re-analyses changed paths and drops deleted ones.
func (a *App) HandleChanges(ctx context.Context, paths []string) ChangeSet {
	changes := ChangeSet{RunID: uuid.NewString()}

	for _, path := range sortedCopy(paths) {
		if ctx.Err() != nil {
			break
		}
		if !parser.IsRustSource(path) || a.excludedFile(path) || a.underExcludedDir(path) {
			continue
		}

		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			if prev, ok := a.forget(path); ok {
				a.results.Forget(path, prev.ContentHash)
			}
			if a.store != nil {
				if err := a.store.DeleteReport(path); err != nil {
					observability.StoreWriteErrorsTotal.Inc()
					slog.Warn("failed to delete stored report", "path", path, "error", err)
				}
			}
			changes.Removed = append(changes.Removed, path)
			continue
		}

		report, err := a.AnalyzeFile(ctx, path)
		if err != nil {
			slog.Warn("failed to analyze changed file", "path", path, "error", err)
			changes.Failures = append(changes.Failures, FileFailure{Path: path, Err: err})
			continue
		}
		a.persistReport(report, changes.RunID, a.LastAnalysis())
		changes.Updated = append(changes.Updated, report)
	}

	slog.Info("changes processed",
		"updated", len(changes.Updated),
		"removed", len(changes.Removed),
		"failures", len(changes.Failures))
	return changes
}
