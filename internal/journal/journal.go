// Package journal persists the outcome of reconciliation runs.
//
// Only the per-run summary is stored: identifiers, the decision, the action
// taken and the failure message if any. The in-memory audit trail of
// external commands is deliberately not persisted; it is scoped to one run.
package journal

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Journal provides SQLite storage for reconciliation run history.
type Journal struct {
	db *sql.DB
}

// Open creates a Journal backed by the database at path.
// Use ":memory:" for in-memory databases (useful for testing).
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only allows one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

// Record stores the summary of one completed run.
func (j *Journal) Record(run Run) error {
	_, err := j.db.Exec(`
		INSERT INTO runs (id, started_at, finished_at, app_name, package_id, desired_state, changed, action, message, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt, run.FinishedAt, run.AppName, run.PackageID,
		run.DesiredState, run.Changed, run.Action, run.Message, run.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", run.ID, err)
	}
	return nil
}

// List returns the most recent runs, newest first, up to limit.
func (j *Journal) List(limit int) ([]Run, error) {
	rows, err := j.db.Query(`
		SELECT id, started_at, finished_at, app_name, package_id, desired_state, changed, action, message, error
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.AppName, &r.PackageID,
			&r.DesiredState, &r.Changed, &r.Action, &r.Message, &r.Error); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// LastForApp returns the most recent run for the given app name, or nil if
// the app has never been reconciled.
func (j *Journal) LastForApp(appName string) (*Run, error) {
	row := j.db.QueryRow(`
		SELECT id, started_at, finished_at, app_name, package_id, desired_state, changed, action, message, error
		FROM runs
		WHERE app_name = ?
		ORDER BY started_at DESC
		LIMIT 1`, appName)

	var r Run
	err := row.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.AppName, &r.PackageID,
		&r.DesiredState, &r.Changed, &r.Action, &r.Message, &r.Error)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query last run for %q: %w", appName, err)
	}
	return &r, nil
}
