package cache

import (
	"database/sql"
	"fmt"
)

// migrations is an ordered list of database migrations, applied once
// each in order starting from version 0. Never modify an existing
// migration after release — append a new one instead (mirrors
// mehmetkoksal-w-mind-palace's internal/memory/schema.go convention).
var migrations = []func(*sql.Tx) error{
	migrateV0,
}

func migrateV0(tx *sql.Tx) error {
	schema := `
CREATE TABLE IF NOT EXISTS files (
	id INTEGER PRIMARY KEY,
	path TEXT NOT NULL,
	branch TEXT NOT NULL,
	language TEXT NOT NULL DEFAULT '',
	content_hash TEXT NOT NULL,
	size_bytes INTEGER NOT NULL,
	content_offset INTEGER NOT NULL,
	content_length INTEGER NOT NULL,
	symbol_offset INTEGER NOT NULL DEFAULT 0,
	symbol_length INTEGER NOT NULL DEFAULT 0,
	indexed_at TEXT NOT NULL,
	UNIQUE(path, branch)
);
CREATE INDEX IF NOT EXISTS idx_files_branch ON files(branch);
CREATE INDEX IF NOT EXISTS idx_files_language ON files(branch, language);

CREATE TABLE IF NOT EXISTS branch_hashes (
	branch TEXT NOT NULL,
	path TEXT NOT NULL,
	content_hash TEXT NOT NULL,
	PRIMARY KEY (branch, path)
);

CREATE TABLE IF NOT EXISTS symbols_index (
	id INTEGER PRIMARY KEY,
	file_id INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
	kind INTEGER NOT NULL,
	identifier TEXT NOT NULL,
	start_line INTEGER NOT NULL,
	start_col INTEGER NOT NULL,
	end_line INTEGER NOT NULL,
	end_col INTEGER NOT NULL,
	exported INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_symbols_identifier ON symbols_index(identifier);
CREATE INDEX IF NOT EXISTS idx_symbols_file ON symbols_index(file_id);
CREATE INDEX IF NOT EXISTS idx_symbols_kind ON symbols_index(kind);

CREATE TABLE IF NOT EXISTS deps (
	id INTEGER PRIMARY KEY,
	file_id INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
	imported_path TEXT NOT NULL,
	kind TEXT NOT NULL,
	resolved INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_deps_file ON deps(file_id);
CREATE INDEX IF NOT EXISTS idx_deps_path ON deps(imported_path);

CREATE TABLE IF NOT EXISTS config (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS statistics (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`
	_, err := tx.Exec(schema)
	return err
}

const schemaVersionTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	applied_at TEXT NOT NULL
);
`

func (c *Cache) ensureSchema() error {
	if _, err := c.db.Exec(schemaVersionTable); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	var current int
	row := c.db.QueryRow("SELECT COALESCE(MAX(version), -1) FROM schema_migrations")
	if err := row.Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for i := current + 1; i < len(migrations); i++ {
		if err := c.runMigration(i); err != nil {
			return fmt.Errorf("run migration %d: %w", i, err)
		}
	}
	return nil
}

func (c *Cache) runMigration(version int) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := migrations[version](tx); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)", version, nowRFC3339()); err != nil {
		return fmt.Errorf("record migration: %w", err)
	}
	return tx.Commit()
}
