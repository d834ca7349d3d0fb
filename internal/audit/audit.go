// Package audit records a write-only trail of query registrations: id,
// query text, and registration time. It is observability only — nothing in
// this repo reads the log back to reconstruct the live in-memory query
// index, which stays a non-goal.
package audit

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Log is a write-only SQLite-backed registration audit trail.
type Log struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at path and
// ensures the registrations table exists.
func Open(path string) (*Log, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS registrations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			query_id INTEGER NOT NULL,
			query_text TEXT NOT NULL,
			registered_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_registrations_query_id ON registrations(query_id);
	`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create audit schema: %w", err)
	}

	return &Log{db: db}, nil
}

// RecordRegistration appends one entry to the audit trail. queryText is the
// human-readable rendering of the registered query tree (as produced by
// monitor.Describe), not a value ever parsed back.
func (l *Log) RecordRegistration(queryID uint64, queryText string) error {
	_, err := l.db.Exec(
		`INSERT INTO registrations (query_id, query_text) VALUES (?, ?)`,
		queryID, queryText,
	)
	if err != nil {
		return fmt.Errorf("record registration: %w", err)
	}
	return nil
}

// Count returns the total number of audit entries recorded, mostly useful
// for tests and the stats CLI/TUI surfaces.
func (l *Log) Count() (int64, error) {
	var n int64
	row := l.db.QueryRow(`SELECT COUNT(*) FROM registrations`)
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return n, nil
}

// Close closes the underlying database handle.
func (l *Log) Close() error {
	return l.db.Close()
}
