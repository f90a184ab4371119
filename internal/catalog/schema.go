// Package catalog is the SQLite-backed resource catalog. It interprets the
// query predicate tree and keeps itself in sync with the resource directory.
package catalog

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS resources (
	id            TEXT PRIMARY KEY,
	path          TEXT NOT NULL UNIQUE,
	title         TEXT NOT NULL DEFAULT '',
	description   TEXT NOT NULL DEFAULT '',
	categories    TEXT NOT NULL DEFAULT '[]',
	tags          TEXT NOT NULL DEFAULT '[]',
	org_type      TEXT NOT NULL DEFAULT 'unknown',
	org_name      TEXT NOT NULL DEFAULT '',
	location      TEXT,
	verified      INTEGER NOT NULL DEFAULT 0,
	featured      INTEGER NOT NULL DEFAULT 0,
	rating        REAL NOT NULL DEFAULT 0,
	views         INTEGER NOT NULL DEFAULT 0,
	helpful_count INTEGER NOT NULL DEFAULT 0,
	contact       TEXT,
	checksum      TEXT NOT NULL DEFAULT '',
	updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_resources_updated ON resources(updated_at DESC);
CREATE INDEX IF NOT EXISTS idx_resources_org_type ON resources(org_type);
`

// DB wraps a sql.DB with catalog operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("catalog: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("catalog: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("catalog: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks that the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}
