// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
//
// dbType selects the DDL dialect and must be "sqlite" or "postgres".
func CreateSchema(db *sql.DB, dbType string) error {
	var schema string
	switch dbType {
	case "postgres":
		schema = schemaPostgres
	case "sqlite":
		schema = schemaSqlite
	default:
		return fmt.Errorf("unsupported database type: %s", dbType)
	}

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	// Sentinel root folder. Every folder chain terminates here.
	if _, err := db.Exec(`
		INSERT INTO folders (folder_id, parent_id, folder_name)
		VALUES (0, NULL, '')
		ON CONFLICT (folder_id) DO NOTHING
	`); err != nil {
		return fmt.Errorf("failed to create root folder: %w", err)
	}

	return nil
}

const schemaPostgres = `
-- Folder hierarchy, rooted at the sentinel folder 0
CREATE TABLE IF NOT EXISTS folders (
    folder_id INT PRIMARY KEY GENERATED BY DEFAULT AS IDENTITY,
    parent_id INT REFERENCES folders (folder_id),
    folder_name TEXT NOT NULL,
    UNIQUE (folder_name, parent_id)
);

-- One row per distinct canonical path ever seen
CREATE TABLE IF NOT EXISTS paths (
    path_id INT PRIMARY KEY GENERATED BY DEFAULT AS IDENTITY,
    path TEXT NOT NULL UNIQUE
);

-- Durable per-page record; total_* baselines are written only by flush
CREATE TABLE IF NOT EXISTS pages (
    page_id INT PRIMARY KEY GENERATED BY DEFAULT AS IDENTITY,
    folder_id INT NOT NULL REFERENCES folders (folder_id),
    path_id INT NOT NULL UNIQUE REFERENCES paths (path_id),
    page_name TEXT NOT NULL,
    first_visited TIMESTAMP,
    total_views BIGINT NOT NULL DEFAULT 0,
    total_hits BIGINT NOT NULL DEFAULT 0
);

-- Ephemeral: anonymized identities under the currently active salt
CREATE TABLE IF NOT EXISTS visitors (
    visitor_id TEXT PRIMARY KEY
);

-- Ephemeral: per-(page, visitor) hit counter since the last flush.
-- The primary key doubles as the index for the per-page aggregate.
CREATE TABLE IF NOT EXISTS page_visitors (
    page_id INT NOT NULL REFERENCES pages (page_id),
    visitor_id TEXT NOT NULL REFERENCES visitors (visitor_id),
    visitor_hits INT NOT NULL DEFAULT 1,
    PRIMARY KEY (page_id, visitor_id)
);

-- Exactly one row while initialized; replaced wholesale by flush
CREATE TABLE IF NOT EXISTS salt (
    salt TEXT NOT NULL
);

-- Key/value settings; values are JSON text
CREATE TABLE IF NOT EXISTS settings (
    setting_name TEXT PRIMARY KEY,
    setting TEXT
);
`

const schemaSqlite = `
CREATE TABLE IF NOT EXISTS folders (
    folder_id INTEGER PRIMARY KEY,
    parent_id INTEGER REFERENCES folders (folder_id),
    folder_name TEXT NOT NULL,
    UNIQUE (folder_name, parent_id)
);

CREATE TABLE IF NOT EXISTS paths (
    path_id INTEGER PRIMARY KEY,
    path TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS pages (
    page_id INTEGER PRIMARY KEY,
    folder_id INTEGER NOT NULL REFERENCES folders (folder_id),
    path_id INTEGER NOT NULL UNIQUE REFERENCES paths (path_id),
    page_name TEXT NOT NULL,
    first_visited TIMESTAMP,
    total_views INTEGER NOT NULL DEFAULT 0,
    total_hits INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS visitors (
    visitor_id TEXT PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS page_visitors (
    page_id INTEGER NOT NULL REFERENCES pages (page_id),
    visitor_id TEXT NOT NULL REFERENCES visitors (visitor_id),
    visitor_hits INTEGER NOT NULL DEFAULT 1,
    PRIMARY KEY (page_id, visitor_id)
);

CREATE TABLE IF NOT EXISTS salt (
    salt TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
    setting_name TEXT PRIMARY KEY,
    setting TEXT
);
`
