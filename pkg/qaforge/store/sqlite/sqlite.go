// Package sqlite implements store.Store on a SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognidoc/qaforge/pkg/qaforge/store"
)

type sqliteStore struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database with WAL mode enabled and the
// schema in place.
func Open(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	dataset TEXT,
	started_at TEXT NOT NULL,
	finished_at TEXT,
	total INTEGER DEFAULT 0,
	passed INTEGER DEFAULT 0,
	rejected INTEGER DEFAULT 0
);

CREATE TABLE IF NOT EXISTS verdicts (
	run_id TEXT NOT NULL,
	entry_id TEXT NOT NULL,
	question TEXT,
	category TEXT,
	page INTEGER DEFAULT 0,
	passed INTEGER NOT NULL,
	reasons TEXT,
	warnings TEXT,
	PRIMARY KEY(run_id, entry_id),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_verdicts_run ON verdicts(run_id, passed);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

func (s *sqliteStore) CreateRun(ctx context.Context, r store.Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, kind, dataset, started_at, total, passed, rejected)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Kind, r.Dataset, r.StartedAt.UTC().Format(time.RFC3339Nano),
		r.Total, r.Passed, r.Rejected)
	return err
}

func (s *sqliteStore) FinishRun(ctx context.Context, id string, finishedAt time.Time, total, passed, rejected int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs SET finished_at = ?, total = ?, passed = ?, rejected = ?
		WHERE id = ?`,
		finishedAt.UTC().Format(time.RFC3339Nano), total, passed, rejected, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return fmt.Errorf("sqlite: finish run %s: no such run", id)
	}
	return err
}

func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, kind, dataset, started_at, finished_at, total, passed, rejected
		FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return store.Run{}, false, nil
	}
	if err != nil {
		return store.Run{}, false, err
	}
	return r, true, nil
}

func (s *sqliteStore) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, dataset, started_at, finished_at, total, passed, rejected
		FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (store.Run, error) {
	var r store.Run
	var started string
	var finished sql.NullString
	if err := row.Scan(&r.ID, &r.Kind, &r.Dataset, &started, &finished,
		&r.Total, &r.Passed, &r.Rejected); err != nil {
		return store.Run{}, err
	}
	r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
	if finished.Valid {
		r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished.String)
	}
	return r, nil
}

func (s *sqliteStore) UpsertVerdict(ctx context.Context, v store.Verdict) error {
	reasons, err := json.Marshal(v.Reasons)
	if err != nil {
		return err
	}
	warnings, err := json.Marshal(v.Warnings)
	if err != nil {
		return err
	}
	passed := 0
	if v.Passed {
		passed = 1
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO verdicts (run_id, entry_id, question, category, page, passed, reasons, warnings)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, entry_id) DO UPDATE SET
			question = excluded.question,
			category = excluded.category,
			page = excluded.page,
			passed = excluded.passed,
			reasons = excluded.reasons,
			warnings = excluded.warnings`,
		v.RunID, v.EntryID, v.Question, v.Category, v.Page, passed,
		string(reasons), string(warnings))
	return err
}

func (s *sqliteStore) GetVerdict(ctx context.Context, runID, entryID string) (store.Verdict, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, entry_id, question, category, page, passed, reasons, warnings
		FROM verdicts WHERE run_id = ? AND entry_id = ?`, runID, entryID)
	v, err := scanVerdict(row)
	if err == sql.ErrNoRows {
		return store.Verdict{}, false, nil
	}
	if err != nil {
		return store.Verdict{}, false, err
	}
	return v, true, nil
}

func (s *sqliteStore) GetVerdicts(ctx context.Context, runID string) ([]store.Verdict, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, entry_id, question, category, page, passed, reasons, warnings
		FROM verdicts WHERE run_id = ? ORDER BY entry_id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var verdicts []store.Verdict
	for rows.Next() {
		v, err := scanVerdict(rows)
		if err != nil {
			return nil, err
		}
		verdicts = append(verdicts, v)
	}
	return verdicts, rows.Err()
}

func scanVerdict(row rowScanner) (store.Verdict, error) {
	var v store.Verdict
	var passed int
	var reasons, warnings sql.NullString
	if err := row.Scan(&v.RunID, &v.EntryID, &v.Question, &v.Category,
		&v.Page, &passed, &reasons, &warnings); err != nil {
		return store.Verdict{}, err
	}
	v.Passed = passed != 0
	if reasons.Valid && reasons.String != "" {
		if err := json.Unmarshal([]byte(reasons.String), &v.Reasons); err != nil {
			return store.Verdict{}, err
		}
	}
	if warnings.Valid && warnings.String != "" {
		if err := json.Unmarshal([]byte(warnings.String), &v.Warnings); err != nil {
			return store.Verdict{}, err
		}
	}
	return v, nil
}
