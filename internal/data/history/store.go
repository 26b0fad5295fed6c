package history

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

// Open opens (creating if needed) the database at path and applies pending
// migrations. busyTimeout <= 0 falls back to two seconds.
func Open(path string, busyTimeout time.Duration) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	if busyTimeout <= 0 {
		busyTimeout = 2 * time.Second
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)", cleanPath, busyTimeout.Milliseconds())
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// SaveReport upserts the latest report for report.Path.
func (s *Store) SaveReport(report Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(report.Path) == "" {
		return fmt.Errorf("report path must not be empty")
	}
	if report.AnalyzedAt.IsZero() {
		report.AnalyzedAt = time.Now().UTC()
	}
	imports, err := encodeNames(report.Imports)
	if err != nil {
		return fmt.Errorf("encode imports: %w", err)
	}
	testImports, err := encodeNames(report.TestImports)
	if err != nil {
		return fmt.Errorf("encode test imports: %w", err)
	}

	query := `
INSERT INTO file_reports (
  path, content_hash, imports, test_imports, has_main, has_test, has_proc_macro, run_id, analyzed_at_utc
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(path) DO UPDATE SET
  content_hash=excluded.content_hash,
  imports=excluded.imports,
  test_imports=excluded.test_imports,
  has_main=excluded.has_main,
  has_test=excluded.has_test,
  has_proc_macro=excluded.has_proc_macro,
  run_id=excluded.run_id,
  analyzed_at_utc=excluded.analyzed_at_utc
`
	return s.withRetry("save report", func() error {
		_, err := s.db.Exec(
			query,
			report.Path,
			report.ContentHash,
			imports,
			testImports,
			report.HasMain,
			report.HasTest,
			report.HasProcMacro,
			report.RunID,
			report.AnalyzedAt.UTC().Format(time.RFC3339Nano),
		)
		return err
	})
}

// LoadReport returns the stored report for path. The bool is false when no
// report exists.
func (s *Store) LoadReport(path string) (Report, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		report      Report
		imports     string
		testImports string
		tsRaw       string
	)
	err := s.withRetry("load report", func() error {
		return s.db.QueryRow(`
SELECT path, content_hash, imports, test_imports, has_main, has_test, has_proc_macro, run_id, analyzed_at_utc
FROM file_reports WHERE path = ?`, path).Scan(
			&report.Path,
			&report.ContentHash,
			&imports,
			&testImports,
			&report.HasMain,
			&report.HasTest,
			&report.HasProcMacro,
			&report.RunID,
			&tsRaw,
		)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return Report{}, false, nil
	}
	if err != nil {
		return Report{}, false, err
	}

	if report.Imports, err = decodeNames(imports); err != nil {
		return Report{}, false, fmt.Errorf("decode imports for %q: %w", path, err)
	}
	if report.TestImports, err = decodeNames(testImports); err != nil {
		return Report{}, false, fmt.Errorf("decode test imports for %q: %w", path, err)
	}
	ts, err := time.Parse(time.RFC3339Nano, tsRaw)
	if err != nil {
		return Report{}, false, fmt.Errorf("parse report timestamp %q: %w", tsRaw, err)
	}
	report.AnalyzedAt = ts.UTC()
	return report, true, nil
}

// DeleteReport removes the report for path, if any.
func (s *Store) DeleteReport(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withRetry("delete report", func() error {
		_, err := s.db.Exec(`DELETE FROM file_reports WHERE path = ?`, path)
		return err
	})
}

// SaveRun upserts a run log entry.
func (s *Store) SaveRun(run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(run.ID) == "" {
		return fmt.Errorf("run id must not be empty")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	finished := ""
	if !run.FinishedAt.IsZero() {
		finished = run.FinishedAt.UTC().Format(time.RFC3339Nano)
	}

	return s.withRetry("save run", func() error {
		_, err := s.db.Exec(`
INSERT INTO runs (run_id, started_at_utc, finished_at_utc, file_count, failure_count)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(run_id) DO UPDATE SET
  finished_at_utc=excluded.finished_at_utc,
  file_count=excluded.file_count,
  failure_count=excluded.failure_count
`,
			run.ID,
			run.StartedAt.UTC().Format(time.RFC3339Nano),
			finished,
			run.Files,
			run.Failures,
		)
		return err
	})
}

// ListRuns returns the most recent runs first. limit <= 0 returns all runs.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
SELECT run_id, started_at_utc, finished_at_utc, file_count, failure_count
FROM runs
ORDER BY started_at_utc DESC, run_id ASC
`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var rows *sql.Rows
	err := s.withRetry("list runs", func() error {
		var qErr error
		rows, qErr = s.db.Query(query, args...)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		var (
			run         Run
			startedRaw  string
			finishedRaw string
		)
		if err := rows.Scan(&run.ID, &startedRaw, &finishedRaw, &run.Files, &run.Failures); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		started, err := time.Parse(time.RFC3339Nano, startedRaw)
		if err != nil {
			return nil, fmt.Errorf("parse run start %q: %w", startedRaw, err)
		}
		run.StartedAt = started.UTC()
		if finishedRaw != "" {
			finished, err := time.Parse(time.RFC3339Nano, finishedRaw)
			if err != nil {
				return nil, fmt.Errorf("parse run finish %q: %w", finishedRaw, err)
			}
			run.FinishedAt = finished.UTC()
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}
	return runs, nil
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}

func encodeNames(names []string) (string, error) {
	if names == nil {
		names = []string{}
	}
	data, err := json.Marshal(names)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeNames(raw string) ([]string, error) {
	names := []string{}
	if raw == "" {
		return names, nil
	}
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return nil, err
	}
	return names, nil
}
