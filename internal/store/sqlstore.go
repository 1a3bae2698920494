package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// nullStr converts a sql.NullString to a plain string (empty if null).
func nullStr(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// SqlStore implements Store with SQLite.
type SqlStore struct {
	db *sql.DB
}

// Open opens or creates a SQLite DB at path and runs migrations.
// Creates the parent directory (e.g. .texcheck) if it does not exist.
func Open(path string) (*SqlStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	s := &SqlStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SqlStore) migrate() error {
	var tableCount int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableCount)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableCount == 0 {
		// Fresh database.
		if _, err := s.db.Exec(schemaV1); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_version(version) VALUES(?)", schemaVersionV1); err != nil {
			return fmt.Errorf("set schema version: %w", err)
		}
		return nil
	}

	var v int
	err = s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&v)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read schema version: %w", err)
	}
	if v != schemaVersionV1 {
		return fmt.Errorf("unknown schema version %d", v)
	}
	return nil
}

func (s *SqlStore) Close() error { return s.db.Close() }

func (s *SqlStore) SaveRun(run *RunRecord) (int64, error) {
	res, err := s.db.Exec(`INSERT INTO runs(started_at, outcome, compiler, degraded, passed, failed, conflicts, report_path)
		VALUES(?,?,?,?,?,?,?,?)`,
		run.StartedAt, run.Outcome, run.Compiler, boolInt(run.Degraded),
		run.Passed, run.Failed, run.Conflicts, run.ReportPath)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}
	run.ID = id
	return id, nil
}

func (s *SqlStore) SaveAttempt(att *AttemptRecord) (int64, error) {
	res, err := s.db.Exec(`INSERT INTO attempts(run_id, target, profile, exit_code, duration_ms, passed, category, excerpt, conflict)
		VALUES(?,?,?,?,?,?,?,?,?)`,
		att.RunID, att.Target, att.Profile, att.ExitCode, att.DurationMs,
		boolInt(att.Passed), att.Category, att.Excerpt, boolInt(att.Conflict))
	if err != nil {
		return 0, fmt.Errorf("insert attempt: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("attempt id: %w", err)
	}
	att.ID = id
	return id, nil
}

func (s *SqlStore) ListRuns() ([]*RunRecord, error) {
	rows, err := s.db.Query(`SELECT id, started_at, outcome, compiler, degraded, passed, failed, conflicts, report_path
		FROM runs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []*RunRecord
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SqlStore) LastRun() (*RunRecord, error) {
	row := s.db.QueryRow(`SELECT id, started_at, outcome, compiler, degraded, passed, failed, conflicts, report_path
		FROM runs ORDER BY id DESC LIMIT 1`)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return r, err
}

func (s *SqlStore) ListAttemptsByRun(runID int64) ([]*AttemptRecord, error) {
	rows, err := s.db.Query(`SELECT id, run_id, target, profile, exit_code, duration_ms, passed, category, excerpt, conflict
		FROM attempts WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var out []*AttemptRecord
	for rows.Next() {
		a := &AttemptRecord{}
		var passed, conflict int
		var category, excerpt sql.NullString
		err := rows.Scan(&a.ID, &a.RunID, &a.Target, &a.Profile, &a.ExitCode,
			&a.DurationMs, &passed, &category, &excerpt, &conflict)
		if err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		a.Passed = passed != 0
		a.Conflict = conflict != 0
		a.Category = nullStr(category)
		a.Excerpt = nullStr(excerpt)
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface{ Scan(dest ...any) error }

func scanRun(row rowScanner) (*RunRecord, error) {
	r := &RunRecord{}
	var degraded int
	var reportPath sql.NullString
	err := row.Scan(&r.ID, &r.StartedAt, &r.Outcome, &r.Compiler, &degraded,
		&r.Passed, &r.Failed, &r.Conflicts, &reportPath)
	if err != nil {
		return nil, err
	}
	r.Degraded = degraded != 0
	r.ReportPath = nullStr(reportPath)
	return r, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
