// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables for the configured backend:

	if err := db.CreateSchema(conn, cfg.DatabaseType); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and seeds the
sentinel root folder idempotently.

# Tables

The schema includes:

  - folders: Hierarchical namespace, rooted at the sentinel folder 0
  - paths: One row per distinct canonical path
  - pages: Durable per-page record with flushed view/hit baselines
  - visitors: Ephemeral salted visitor identities
  - page_visitors: Ephemeral per-(page, visitor) hit counters
  - salt: The single active anonymization secret
  - settings: Key/value JSON settings, admin credentials among them

# Relationships

	folders 1──* folders (parent_id)
	folders 1──* pages
	paths   1──1 pages
	pages   1──* page_visitors
	visitors 1──* page_visitors

# Uniqueness

Creation on first visit is made race-safe by constraints rather than
check-then-insert:

  - paths.path (unique)
  - pages.path_id (unique)
  - folders.(folder_name, parent_id) (unique)
  - page_visitors.(page_id, visitor_id) (primary key)

All get-or-create statements in the engine use INSERT ... ON CONFLICT against
these constraints, so two concurrent first visits to the same unseen path
converge on a single row.
*/
package db
