package app

import (
	"context"
	"cratedeps/internal/core/config"
	"cratedeps/internal/core/errors"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, mutate func(*config.Config)) *App {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Analysis.Workers = 4
	if mutate != nil {
		mutate(cfg)
	}
	a, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const mainSource = `use clap::Parser;
use std::io;

fn main() {
    let _ = serde_json::to_string(&1);
}

#[cfg(test)]
mod tests {
    use pretty_assertions::assert_eq;

    #[test]
    fn works() {
        assert_eq!(1, 1);
    }
}
`

func TestAnalyzeFile(t *testing.T) {
	a := newTestApp(t, nil)
	path := writeFile(t, filepath.Join(t.TempDir(), "main.rs"), mainSource)

	report, err := a.AnalyzeFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, path, report.Path)
	assert.Equal(t, []string{"clap", "serde_json", "std"}, report.Imports)
	assert.Equal(t, []string{"pretty_assertions"}, report.TestImports)
	assert.True(t, report.Hints.HasMain)
	assert.True(t, report.Hints.HasTest)
	assert.False(t, report.Hints.HasProcMacro)
	assert.Len(t, report.ContentHash, 64)

	assert.Len(t, a.Reports(), 1)
	assert.False(t, a.LastAnalysis().IsZero())
}

func TestAnalyzeFile_CachedUntilContentChanges(t *testing.T) {
	a := newTestApp(t, nil)
	path := writeFile(t, filepath.Join(t.TempDir(), "lib.rs"), "use anyhow::Result;\n")

	first, err := a.AnalyzeFile(context.Background(), path)
	require.NoError(t, err)
	second, err := a.AnalyzeFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, a.results.Len())

	writeFile(t, path, "use thiserror::Error;\n")
	third, err := a.AnalyzeFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"thiserror"}, third.Imports)
	assert.NotEqual(t, first.ContentHash, third.ContentHash)
}

func TestAnalyzeFile_Errors(t *testing.T) {
	a := newTestApp(t, nil)
	dir := t.TempDir()

	tests := []struct {
		name string
		path string
		code errors.ErrorCode
	}{
		{
			name: "NotRust",
			path: writeFile(t, filepath.Join(dir, "Cargo.toml"), "[package]\n"),
			code: errors.CodeNotSupported,
		},
		{
			name: "Missing",
			path: filepath.Join(dir, "absent.rs"),
			code: errors.CodeIO,
		},
		{
			name: "Malformed",
			path: writeFile(t, filepath.Join(dir, "broken.rs"), "fn main() {\n    let x = ;\n}\n"),
			code: errors.CodeParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.AnalyzeFile(context.Background(), tt.path)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, tt.code), "got %v", err)

			var de *errors.DomainError
			require.True(t, stderrors.As(err, &de))
			assert.Equal(t, tt.path, de.Context[errors.CtxPath])
		})
	}
	assert.Empty(t, a.Reports())
}

func TestScanDirectories(t *testing.T) {
	a := newTestApp(t, func(cfg *config.Config) {
		cfg.Exclude.Files = []string{"*_generated.rs"}
	})
	root := t.TempDir()
	lib := writeFile(t, filepath.Join(root, "src", "lib.rs"), "")
	nested := writeFile(t, filepath.Join(root, "src", "net", "mod.rs"), "")
	writeFile(t, filepath.Join(root, "target", "debug", "build.rs"), "")
	writeFile(t, filepath.Join(root, "src", "schema_generated.rs"), "")
	writeFile(t, filepath.Join(root, "Cargo.toml"), "")
	explicit := filepath.Join(root, "README.md")

	files, err := a.ScanDirectories([]string{root, lib, explicit})
	require.NoError(t, err)
	assert.Equal(t, []string{explicit, lib, nested}, files)
}

func TestAnalyzePaths_ContinuesAfterFailures(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "state", "cratedeps.db")
	a := newTestApp(t, func(cfg *config.Config) {
		cfg.DB.Enabled = true
		cfg.DB.Path = dbPath
	})

	dir := t.TempDir()
	good := writeFile(t, filepath.Join(dir, "a.rs"), "use rand::Rng;\n")
	bad := writeFile(t, filepath.Join(dir, "b.rs"), "fn broken( {\n")
	other := writeFile(t, filepath.Join(dir, "c.rs"), "extern crate libc;\n")

	summary, err := a.AnalyzePaths(context.Background(), []string{good, bad, other})
	require.NoError(t, err)

	require.Len(t, summary.Reports, 2)
	assert.Equal(t, good, summary.Reports[0].Path)
	assert.Equal(t, []string{"libc"}, summary.Reports[1].Imports)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, bad, summary.Failures[0].Path)
	assert.True(t, errors.IsCode(summary.Failures[0].Err, errors.CodeParse))
	assert.NotEmpty(t, summary.ID)
	assert.False(t, summary.FinishedAt.Before(summary.StartedAt))

	store := a.Store()
	require.NotNil(t, store)
	stored, ok, err := store.LoadReport(good)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"rand"}, stored.Imports)
	assert.Equal(t, summary.ID, stored.RunID)

	runs, err := store.ListRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 3, runs[0].Files)
	assert.Equal(t, 1, runs[0].Failures)
}

func TestAnalyzePaths_Cancelled(t *testing.T) {
	a := newTestApp(t, nil)
	path := writeFile(t, filepath.Join(t.TempDir(), "a.rs"), "use rand::Rng;\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := a.AnalyzePaths(ctx, []string{path})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzePaths_Empty(t *testing.T) {
	a := newTestApp(t, nil)
	summary, err := a.AnalyzePaths(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, summary.Reports)
	assert.Empty(t, summary.Failures)
}

func TestHandleChanges(t *testing.T) {
	a := newTestApp(t, nil)
	dir := t.TempDir()
	kept := writeFile(t, filepath.Join(dir, "kept.rs"), "use regex::Regex;\n")
	gone := writeFile(t, filepath.Join(dir, "gone.rs"), "use once_cell::sync::Lazy;\n")

	_, err := a.AnalyzePaths(context.Background(), []string{kept, gone})
	require.NoError(t, err)
	require.NoError(t, os.Remove(gone))
	writeFile(t, filepath.Join(dir, "target", "x.rs"), "use junk::X;\n")

	changes := a.HandleChanges(context.Background(), []string{
		gone,
		kept,
		filepath.Join(dir, "target", "x.rs"),
		filepath.Join(dir, "notes.txt"),
	})

	assert.Equal(t, []string{gone}, changes.Removed)
	require.Len(t, changes.Updated, 1)
	assert.Equal(t, kept, changes.Updated[0].Path)
	assert.Empty(t, changes.Failures)

	reports := a.Reports()
	require.Len(t, reports, 1)
	assert.Equal(t, kept, reports[0].Path)
}

func TestHandleChanges_ExcludedNameAboveWatchRoot(t *testing.T) {
	a := newTestApp(t, nil)
	root := filepath.Join(t.TempDir(), "target", "project")
	lib := writeFile(t, filepath.Join(root, "src", "lib.rs"), "use bytes::Bytes;\n")
	vendored := writeFile(t, filepath.Join(root, "target", "debug", "gen.rs"), "use junk::X;\n")
	a.setWatchRoots([]string{root})

	changes := a.HandleChanges(context.Background(), []string{lib, vendored})

	require.Len(t, changes.Updated, 1)
	assert.Equal(t, lib, changes.Updated[0].Path)
	assert.Equal(t, []string{"bytes"}, changes.Updated[0].Imports)
	assert.Empty(t, changes.Removed)
}

func TestHealth(t *testing.T) {
	a := newTestApp(t, nil)
	status := a.Health(context.Background())
	assert.Equal(t, "up", status.Status)
	assert.False(t, status.StoreAttached)
	assert.Zero(t, status.FilesTracked)

	a.Config.DB.Enabled = true
	assert.Equal(t, "degraded", a.Health(context.Background()).Status)
}

func TestNew_RejectsBadGlob(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Exclude.Dirs = []string{"["}
	_, err := New(cfg)
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))
}
