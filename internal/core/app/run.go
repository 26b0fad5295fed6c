package app

import (
	"context"
	"cratedeps/internal/data/history"
	"cratedeps/internal/shared/observability"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

type analysisResult struct {
	report FileReport
	err    error
}

// AnalyzePaths analyses files with a fixed pool of workers. A failing file
// is recorded in the summary and does not stop the others. The returned
// error is non-nil only when ctx is cancelled.
func (a *App) AnalyzePaths(ctx context.Context, files []string) (RunSummary, error) {
	ctx, span := observability.Tracer.Start(ctx, "AnalyzePaths")
	defer span.End()

	summary := RunSummary{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Reports:   make([]FileReport, 0, len(files)),
	}
	a.persistRun(history.Run{ID: summary.ID, StartedAt: summary.StartedAt})

	results := make([]analysisResult, len(files))
	jobs := make(chan int)

	workers := a.Config.Analysis.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(files) {
		workers = len(files)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				report, err := a.AnalyzeFile(ctx, files[idx])
				results[idx] = analysisResult{report: report, err: err}
			}
		}()
	}

	started := time.Now()
dispatch:
	for idx := range files {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- idx:
		}
	}
	close(jobs)
	wg.Wait()
	observability.AnalysisDuration.WithLabelValues("run").Observe(time.Since(started).Seconds())

	if err := ctx.Err(); err != nil {
		return summary, err
	}

	for idx, r := range results {
		if r.err != nil {
			slog.Warn("failed to analyze file", "path", files[idx], "error", r.err)
			summary.Failures = append(summary.Failures, FileFailure{Path: files[idx], Err: r.err})
			continue
		}
		summary.Reports = append(summary.Reports, r.report)
	}
	sortReports(summary.Reports)
	summary.FinishedAt = time.Now().UTC()

	for _, report := range summary.Reports {
		a.persistReport(report, summary.ID, summary.FinishedAt)
	}
	a.persistRun(history.Run{
		ID:         summary.ID,
		StartedAt:  summary.StartedAt,
		FinishedAt: summary.FinishedAt,
		Files:      len(files),
		Failures:   len(summary.Failures),
	})

	slog.Info("analysis run finished",
		"run_id", summary.ID,
		"files", len(files),
		"failures", len(summary.Failures),
		"duration", summary.FinishedAt.Sub(summary.StartedAt))
	return summary, nil
}

func (a *App) persistReport(report FileReport, runID string, at time.Time) {
	if a.store == nil {
		return
	}
	if err := a.store.SaveReport(toHistory(report, runID, at)); err != nil {
		observability.StoreWriteErrorsTotal.Inc()
		slog.Warn("failed to persist report", "path", report.Path, "error", err)
	}
}

func (a *App) persistRun(run history.Run) {
	if a.store == nil {
		return
	}
	if err := a.store.SaveRun(run); err != nil {
		observability.StoreWriteErrorsTotal.Inc()
		slog.Warn("failed to persist run", "run_id", run.ID, "error", err)
	}
}
