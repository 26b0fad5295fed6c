package app

import (
	"context"
	"cratedeps/internal/core/errors"
	"cratedeps/internal/engine/imports"
	"cratedeps/internal/engine/parser"
	"cratedeps/internal/shared/cache"
	"cratedeps/internal/shared/observability"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// AnalyzeFile reads, parses and classifies one Rust source file. Unchanged
// content is served from the result cache.
func (a *App) AnalyzeFile(ctx context.Context, path string) (FileReport, error) {
	ctx, span := observability.Tracer.Start(ctx, "AnalyzeFile")
	defer span.End()
	span.SetAttributes(attribute.String("file.path", path))

	report, outcome, err := a.analyzeFile(ctx, path)
	observability.FilesAnalyzedTotal.WithLabelValues(outcome).Inc()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return FileReport{}, err
	}
	span.SetAttributes(
		attribute.Int("imports.normal", len(report.Imports)),
		attribute.Int("imports.test", len(report.TestImports)),
		attribute.String("outcome", outcome),
	)
	a.remember(report)
	return report, nil
}

func (a *App) analyzeFile(ctx context.Context, path string) (FileReport, string, error) {
	if !parser.IsRustSource(path) {
		err := errors.AddContext(errors.New(errors.CodeNotSupported, "not a rust source file"), errors.CtxPath, path)
		return FileReport{}, observability.OutcomeIOError, err
	}

	source, err := os.ReadFile(path)
	if err != nil {
		err = errors.AddContext(errors.Wrap(err, errors.CodeIO, "read source"), errors.CtxPath, path)
		return FileReport{}, observability.OutcomeIOError, err
	}

	hash := cache.ContentHash(source)
	if cached, ok := a.results.Lookup(path, hash); ok {
		slog.Debug("result cache hit", "path", path)
		return cached, observability.OutcomeCached, nil
	}

	tree, err := a.parser.Parse(ctx, source)
	if err != nil {
		return FileReport{}, outcomeFor(err), errors.AddContext(err, errors.CtxPath, path)
	}
	defer tree.Close()

	started := time.Now()
	res, err := imports.Analyze(tree)
	observability.AnalysisDuration.WithLabelValues("imports").Observe(time.Since(started).Seconds())
	if err != nil {
		return FileReport{}, outcomeFor(err), errors.AddContext(err, errors.CtxPath, path)
	}

	observability.ImportsRecordedTotal.WithLabelValues("normal").Add(float64(len(res.Imports)))
	observability.ImportsRecordedTotal.WithLabelValues("test").Add(float64(len(res.TestImports)))

	report := newFileReport(path, hash, res)
	a.results.Store(path, hash, report)
	return report, observability.OutcomeOK, nil
}

func outcomeFor(err error) string {
	switch errors.CodeOf(err) {
	case errors.CodeParse:
		return observability.OutcomeParseError
	case errors.CodeIO, errors.CodeNotSupported:
		return observability.OutcomeIOError
	default:
		return observability.OutcomeInternal
	}
}
