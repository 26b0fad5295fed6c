package app

import (
	"cratedeps/internal/data/history"
	"cratedeps/internal/engine/imports"
	"sort"
	"time"
)

// FileReport is the per-file output record.
type FileReport struct {
	Path        string        `json:"path" toml:"path"`
	Imports     []string      `json:"imports" toml:"imports"`
	TestImports []string      `json:"test_imports" toml:"test_imports"`
	Hints       imports.Hints `json:"hints" toml:"hints"`
	ContentHash string        `json:"content_hash" toml:"content_hash"`
}

// FileFailure is a file that could not be analysed.
type FileFailure struct {
	Path string
	Err  error
}

// RunSummary is the outcome of analysing a set of files.
type RunSummary struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Reports    []FileReport
	Failures   []FileFailure
}

func newFileReport(path, hash string, res imports.Result) FileReport {
	return FileReport{
		Path:        path,
		Imports:     res.Imports,
		TestImports: res.TestImports,
		Hints:       res.Hints,
		ContentHash: hash,
	}
}

func sortReports(reports []FileReport) {
	sort.Slice(reports, func(i, j int) bool { return reports[i].Path < reports[j].Path })
}

func toHistory(report FileReport, runID string, at time.Time) history.Report {
	return history.Report{
		Path:         report.Path,
		ContentHash:  report.ContentHash,
		Imports:      report.Imports,
		TestImports:  report.TestImports,
		HasMain:      report.Hints.HasMain,
		HasTest:      report.Hints.HasTest,
		HasProcMacro: report.Hints.HasProcMacro,
		RunID:        runID,
		AnalyzedAt:   at,
	}
}

// FromHistory converts a stored report back to the output record.
func FromHistory(r history.Report) FileReport {
	return FileReport{
		Path:        r.Path,
		Imports:     r.Imports,
		TestImports: r.TestImports,
		Hints: imports.Hints{
			HasMain:      r.HasMain,
			HasTest:      r.HasTest,
			HasProcMacro: r.HasProcMacro,
		},
		ContentHash: r.ContentHash,
	}
}
