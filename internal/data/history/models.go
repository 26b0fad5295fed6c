// Package history persists the latest import report of every analysed file
// and a log of analysis runs in a local SQLite database.
package history

import "time"

const SchemaVersion = 1

// Report is the stored form of one file's analysis.
type Report struct {
	Path         string
	ContentHash  string
	Imports      []string
	TestImports  []string
	HasMain      bool
	HasTest      bool
	HasProcMacro bool
	RunID        string
	AnalyzedAt   time.Time
}

// Run records one invocation over a set of files.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Files      int
	Failures   int
}
