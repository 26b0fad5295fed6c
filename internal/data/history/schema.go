package history

import (
	"context"
	"database/sql"
	"fmt"
)

// Each entry upgrades the database from index i to index i+1; the slice
// length must equal SchemaVersion.
var schemaSteps = []string{
	`
CREATE TABLE runs (
  run_id          TEXT PRIMARY KEY,
  started_at_utc  TEXT NOT NULL,
  finished_at_utc TEXT NOT NULL DEFAULT '',
  file_count      INTEGER NOT NULL DEFAULT 0,
  failure_count   INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX idx_runs_started ON runs(started_at_utc);

CREATE TABLE file_reports (
  path            TEXT PRIMARY KEY,
  content_hash    TEXT NOT NULL,
  imports         TEXT NOT NULL DEFAULT '[]',
  test_imports    TEXT NOT NULL DEFAULT '[]',
  has_main        INTEGER NOT NULL DEFAULT 0,
  has_test        INTEGER NOT NULL DEFAULT 0,
  has_proc_macro  INTEGER NOT NULL DEFAULT 0,
  run_id          TEXT NOT NULL DEFAULT '',
  analyzed_at_utc TEXT NOT NULL
);
CREATE INDEX idx_file_reports_hash ON file_reports(content_hash);
`,
}

// EnsureSchema brings db up to SchemaVersion. A database written by a newer
// build is rejected rather than downgraded.
func EnsureSchema(db *sql.DB) error {
	ctx := context.Background()
	const bookkeeping = `CREATE TABLE IF NOT EXISTS schema_migrations (
  version        INTEGER PRIMARY KEY,
  applied_at_utc TEXT NOT NULL DEFAULT (CURRENT_TIMESTAMP)
)`
	if _, err := db.ExecContext(ctx, bookkeeping); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	current, err := schemaVersion(ctx, db)
	if err != nil {
		return err
	}
	if current > SchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", current, SchemaVersion)
	}

	for v := current + 1; v <= SchemaVersion; v++ {
		if err := migrate(ctx, db, v, schemaSteps[v-1]); err != nil {
			return err
		}
	}
	return nil
}

func schemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var v int
	err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

func migrate(ctx context.Context, db *sql.DB, version int, ddl string) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %d: %w", version, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("apply migration %d: %w", version, err)
	}
	if _, err = tx.ExecContext(ctx, `INSERT INTO schema_migrations(version) VALUES (?)`, version); err != nil {
		return fmt.Errorf("record migration %d: %w", version, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %d: %w", version, err)
	}
	return nil
}
