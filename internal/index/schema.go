// Package index stores evaluation results in SQLite: the memo of single
// evaluations and the evaluated contents of every worksheet.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS evaluations (
	id          TEXT PRIMARY KEY,
	key         TEXT NOT NULL UNIQUE,
	operation   TEXT NOT NULL,
	expression  TEXT NOT NULL,
	mode        TEXT NOT NULL,
	result      TEXT NOT NULL,
	result_tr   TEXT NOT NULL DEFAULT '',
	terms       TEXT NOT NULL DEFAULT '[]',
	value_re    REAL NOT NULL DEFAULT 0,
	value_im    REAL NOT NULL DEFAULT 0,
	lc_re       REAL NOT NULL DEFAULT 0,
	lc_im       REAL NOT NULL DEFAULT 0,
	large_n_re  REAL NOT NULL DEFAULT 0,
	large_n_im  REAL NOT NULL DEFAULT 0,
	warning     TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_evaluations_created ON evaluations(created_at);

CREATE TABLE IF NOT EXISTS worksheets (
	path           TEXT PRIMARY KEY,
	title          TEXT NOT NULL DEFAULT '',
	leading_colour INTEGER NOT NULL DEFAULT 0,
	checksum       TEXT NOT NULL DEFAULT '',
	basis          TEXT NOT NULL DEFAULT '[]',
	error          TEXT NOT NULL DEFAULT '',
	updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS worksheet_entries (
	path       TEXT NOT NULL REFERENCES worksheets(path) ON DELETE CASCADE,
	kind       TEXT NOT NULL,
	name       TEXT NOT NULL,
	row_idx    INTEGER NOT NULL DEFAULT 0,
	col_idx    INTEGER NOT NULL DEFAULT 0,
	expression TEXT NOT NULL,
	result     TEXT NOT NULL,
	value_re   REAL NOT NULL DEFAULT 0,
	value_im   REAL NOT NULL DEFAULT 0,
	warning    TEXT NOT NULL DEFAULT '',
	UNIQUE(path, kind, name)
);

CREATE INDEX IF NOT EXISTS idx_entries_path ON worksheet_entries(path);
`

// DB wraps a sql.DB with result-store operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
