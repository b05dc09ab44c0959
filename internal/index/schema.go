// Package index provides a SQLite-backed person index with optional FTS5
// full-text search.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS sources (
	path        TEXT PRIMARY KEY,
	checksum    TEXT NOT NULL DEFAULT '',
	individuals INTEGER NOT NULL DEFAULT 0,
	families    INTEGER NOT NULL DEFAULT 0,
	updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS people (
	source     TEXT NOT NULL REFERENCES sources(path) ON DELETE CASCADE,
	id         TEXT NOT NULL,
	name       TEXT NOT NULL DEFAULT '',
	nasab      TEXT NOT NULL DEFAULT '',
	search     TEXT NOT NULL DEFAULT '',
	birth      TEXT NOT NULL DEFAULT '',
	death      TEXT NOT NULL DEFAULT '',
	sex        TEXT NOT NULL DEFAULT 'U',
	is_private INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (source, id)
);

CREATE INDEX IF NOT EXISTS idx_people_source ON people(source);
`

// DB wraps a sql.DB with index-specific operations.
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
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
