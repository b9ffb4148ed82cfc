// Package store keeps imported people datasets in SQLite and keeps them in
// step with the data directory.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS datasets (
	path       TEXT PRIMARY KEY,
	checksum   TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS people (
	dataset     TEXT    NOT NULL REFERENCES datasets(path) ON DELETE CASCADE,
	position    INTEGER NOT NULL,
	slug        TEXT    NOT NULL,
	name        TEXT    NOT NULL,
	sex         TEXT    NOT NULL,
	born        INTEGER NOT NULL DEFAULT 0,
	died        INTEGER NOT NULL DEFAULT 0,
	country     TEXT    NOT NULL DEFAULT '',
	mother_name TEXT    NOT NULL DEFAULT '',
	father_name TEXT    NOT NULL DEFAULT '',
	PRIMARY KEY (dataset, position)
);

CREATE INDEX IF NOT EXISTS idx_people_slug ON people(slug, dataset);
`

// DB wraps a sql.DB with dataset-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
