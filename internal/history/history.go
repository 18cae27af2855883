// Package history keeps a local ledger of past runs in a SQLite database.
// Every completed (or aborted) run is recorded with its outcome and the
// per-day commit counts it produced, so later invocations can show what was
// synthesized when, and aggregate activity for the calendar view.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// ErrNotFound is returned when a run ID has no ledger entry.
var ErrNotFound = errors.New("run not found in history")

// schema contains the DDL executed on first open. Using IF NOT EXISTS makes
// it safe to run on every startup.
const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id          TEXT PRIMARY KEY,
    started_at  TIMESTAMP NOT NULL,
    duration_ms INTEGER NOT NULL DEFAULT 0,
    repo_dir    TEXT NOT NULL,
    branch      TEXT NOT NULL DEFAULT '',
    seed        TEXT NOT NULL DEFAULT '',
    strategy    TEXT NOT NULL DEFAULT '',
    phase       TEXT NOT NULL,
    planned     INTEGER NOT NULL,
    successful  INTEGER NOT NULL,
    failed      INTEGER NOT NULL,
    success     INTEGER NOT NULL,
    restored    INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS run_days (
    run_id TEXT NOT NULL,
    date   TEXT NOT NULL,
    count  INTEGER NOT NULL,
    PRIMARY KEY (run_id, date)
);
`

// Run is one ledger entry. Days maps ISO dates (2006-01-02) to the number of
// commits created on that date.
type Run struct {
	ID         string
	StartedAt  time.Time
	Duration   time.Duration
	RepoDir    string
	Branch     string
	Seed       string
	Strategy   string
	Phase      string
	Planned    int
	Successful int
	Failed     int
	Success    bool
	Restored   bool
	Days       map[string]int
}

// Ledger stores runs in a local SQLite database in WAL mode.
type Ledger struct {
	db *sql.DB
}

// Open opens (or creates) the ledger database at dbPath, enables WAL mode and
// busy timeout, and creates the schema tables if they do not exist.
func Open(ctx context.Context, dbPath string) (*Ledger, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}

	// Limit to one connection. SQLite only supports a single writer; using
	// one connection avoids SQLITE_BUSY contention between pooled connections
	// that each need their own PRAGMA setup.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: create schema: %w", err)
	}

	return &Ledger{db: db}, nil
}

// Record inserts a run and its per-day counts in a single transaction.
func (l *Ledger) Record(ctx context.Context, r Run) error {
	if r.ID == "" {
		return errors.New("history: run ID is empty")
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("history: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	const q = `
		INSERT INTO runs (id, started_at, duration_ms, repo_dir, branch, seed, strategy,
			phase, planned, successful, failed, success, restored)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, q,
		r.ID, r.StartedAt.UTC().Format(time.RFC3339), r.Duration.Milliseconds(),
		r.RepoDir, r.Branch, r.Seed, r.Strategy,
		r.Phase, r.Planned, r.Successful, r.Failed, boolInt(r.Success), boolInt(r.Restored))
	if err != nil {
		return fmt.Errorf("history: insert run %q: %w", r.ID, err)
	}

	if len(r.Days) > 0 {
		stmt, err := tx.PrepareContext(ctx, "INSERT INTO run_days (run_id, date, count) VALUES (?, ?, ?)")
		if err != nil {
			return fmt.Errorf("history: prepare day insert: %w", err)
		}
		defer stmt.Close()
		for date, count := range r.Days {
			if _, err := stmt.ExecContext(ctx, r.ID, date, count); err != nil {
				return fmt.Errorf("history: insert day %s for run %q: %w", date, r.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("history: commit run %q: %w", r.ID, err)
	}
	return nil
}

// Get returns a single run with its day counts, or ErrNotFound.
func (l *Ledger) Get(ctx context.Context, id string) (*Run, error) {
	const q = `SELECT id, started_at, duration_ms, repo_dir, branch, seed, strategy,
		phase, planned, successful, failed, success, restored
		FROM runs WHERE id = ?`

	r, err := l.scanRun(l.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("history: get run %q: %w", id, err)
	}

	r.Days = map[string]int{}
	rows, err := l.db.QueryContext(ctx, "SELECT date, count FROM run_days WHERE run_id = ? ORDER BY date", id)
	if err != nil {
		return nil, fmt.Errorf("history: query days for %q: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var date string
		var count int
		if err := rows.Scan(&date, &count); err != nil {
			return nil, fmt.Errorf("history: scan day: %w", err)
		}
		r.Days[date] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate days: %w", err)
	}
	return r, nil
}

// List returns the most recent runs, newest first, without day counts.
// limit <= 0 returns everything.
func (l *Ledger) List(ctx context.Context, limit int) ([]*Run, error) {
	q := `SELECT id, started_at, duration_ms, repo_dir, branch, seed, strategy,
		phase, planned, successful, failed, success, restored
		FROM runs ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := l.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("history: list runs: %w", err)
	}
	defer rows.Close()

	var result []*Run
	for rows.Next() {
		r, err := l.scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("history: scan run: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate runs: %w", err)
	}
	return result, nil
}

// DayTotals aggregates commit counts per date across all successful runs for
// a repository, for dates on or after since. Keys are ISO dates.
func (l *Ledger) DayTotals(ctx context.Context, repoDir string, since time.Time) (map[string]int, error) {
	const q = `SELECT d.date, SUM(d.count)
		FROM run_days d JOIN runs r ON r.id = d.run_id
		WHERE r.repo_dir = ? AND r.success = 1 AND d.date >= ?
		GROUP BY d.date`

	rows, err := l.db.QueryContext(ctx, q, repoDir, since.UTC().Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("history: day totals: %w", err)
	}
	defer rows.Close()

	totals := map[string]int{}
	for rows.Next() {
		var date string
		var count int
		if err := rows.Scan(&date, &count); err != nil {
			return nil, fmt.Errorf("history: scan total: %w", err)
		}
		totals[date] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate totals: %w", err)
	}
	return totals, nil
}

// Close releases the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (l *Ledger) scanRun(row rowScanner) (*Run, error) {
	var r Run
	var started string
	var durMS int64
	var success, restored int
	err := row.Scan(&r.ID, &started, &durMS, &r.RepoDir, &r.Branch, &r.Seed, &r.Strategy,
		&r.Phase, &r.Planned, &r.Successful, &r.Failed, &success, &restored)
	if err != nil {
		return nil, err
	}
	r.StartedAt, err = parseTimestamp(started)
	if err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	r.Duration = time.Duration(durMS) * time.Millisecond
	r.Success = success != 0
	r.Restored = restored != 0
	return &r, nil
}

// timestampFormats lists the formats SQLite drivers may produce.
// modernc.org/sqlite typically returns RFC 3339, while canonical SQLite
// returns the space-separated DateTime format.
var timestampFormats = []string{
	time.RFC3339,
	time.DateTime,
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %q", s)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
