// Package history keeps a record of previous runs in a SQLite database so a
// run can be compared with the one before it.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"

	"github.com/abdul-hamid-achik/ordercheck/packages/core/result"
	"github.com/abdul-hamid-achik/ordercheck/packages/core/runner"
)

// DefaultListLimit bounds List when no limit is given
const DefaultListLimit = 20

// ErrNoRuns is returned by Last when the store is empty
var ErrNoRuns = errors.New("no previous runs")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id       TEXT NOT NULL UNIQUE,
	base_url     TEXT NOT NULL,
	started_at   TEXT NOT NULL,
	duration_ms  INTEGER NOT NULL,
	passed       INTEGER NOT NULL,
	failed       INTEGER NOT NULL,
	skipped      INTEGER NOT NULL,
	info         INTEGER NOT NULL,
	success_rate REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS records (
	run_id    TEXT NOT NULL REFERENCES runs(run_id),
	position  INTEGER NOT NULL,
	name      TEXT NOT NULL,
	status    TEXT NOT NULL,
	details   TEXT NOT NULL,
	timestamp TEXT NOT NULL,
	PRIMARY KEY (run_id, position)
);`

// Run is a stored run summary
type Run struct {
	RunID        string
	BaseURL      string
	StartedAt    time.Time
	Duration     time.Duration
	Summary      result.Summary
	FailedChecks []string
}

// Store persists run reports
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path. Accepted forms are a plain
// file path, sqlite://path, sqlite:path and :memory:.
func Open(path string) (*Store, error) {
	dsn := dataSource(path)
	if dsn == "" {
		return nil, errors.New("history path is empty")
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	// one connection keeps :memory: databases alive across calls
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize history: %w", err)
	}

	return &Store{db: db}, nil
}

func dataSource(path string) string {
	path = strings.TrimSpace(path)
	if strings.HasPrefix(path, "sqlite://") {
		return strings.TrimPrefix(path, "sqlite://")
	}
	return strings.TrimPrefix(path, "sqlite:")
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save stores the report and its records in one transaction
func (s *Store) Save(ctx context.Context, report *runner.Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	sum := report.Summary
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, base_url, started_at, duration_ms, passed, failed, skipped, info, success_rate)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.RunID, report.BaseURL, report.StartedAt.UTC().Format(time.RFC3339Nano),
		report.Duration.Milliseconds(), sum.Passed, sum.Failed, sum.Skipped, sum.Info, sum.SuccessRate)
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}

	for i, r := range report.Records {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO records (run_id, position, name, status, details, timestamp) VALUES (?, ?, ?, ?, ?, ?)`,
			report.RunID, i, r.Name, r.Status.String(), r.Details, r.Timestamp)
		if err != nil {
			return fmt.Errorf("saving record %q: %w", r.Name, err)
		}
	}

	return tx.Commit()
}

// Last returns the most recently saved run
func (s *Store) Last(ctx context.Context) (*Run, error) {
	runs, err := s.List(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, ErrNoRuns
	}
	return runs[0], nil
}

// List returns up to limit runs, newest first
func (s *Store) List(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, base_url, started_at, duration_ms, passed, failed, skipped, info, success_rate
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var (
			run       Run
			startedAt string
			duration  int64
		)
		if err := rows.Scan(&run.RunID, &run.BaseURL, &startedAt, &duration,
			&run.Summary.Passed, &run.Summary.Failed, &run.Summary.Skipped, &run.Summary.Info,
			&run.Summary.SuccessRate); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, fmt.Errorf("run %s: bad start time: %w", run.RunID, err)
		}
		run.Duration = time.Duration(duration) * time.Millisecond
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	rows.Close()

	for _, run := range runs {
		run.FailedChecks, err = s.failedChecks(ctx, run.RunID)
		if err != nil {
			return nil, err
		}
	}
	return runs, nil
}

func (s *Store) failedChecks(ctx context.Context, runID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM records WHERE run_id = ? AND status = ? ORDER BY position`,
		runID, result.Fail.String())
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
