// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/pagetally/auth"
	"github.com/danielhkuo/pagetally/canonical"
	"github.com/danielhkuo/pagetally/models"
)

// Engine is the view-accounting core. It owns no HTTP concerns: callers hand
// it canonical path strings and raw fingerprints, and it persists only
// anonymized state.
//
// It runs over two connection pools. The views pool serves the public
// Get/RecordVisit path; the tools pool serves maintenance (Flush, Init,
// settings, folder administration), so a long flush transaction cannot starve
// public traffic of connections.
type Engine struct {
	views *sql.DB
	tools *sql.DB
}

func New(views, tools *sql.DB) *Engine {
	return &Engine{views: views, tools: tools}
}

// Get returns the view record for a registered path. The result reflects the
// durable baselines plus the live ledger in a single aggregate read, so the
// counting formula holds at any instant, not only right after a flush.
// Returns ErrNotFound for paths never visited.
func (e *Engine) Get(ctx context.Context, path string) (models.ViewRecord, error) {
	record := models.ViewRecord{Page: path}

	var pageID int64
	err := e.views.QueryRowContext(ctx, `
		SELECT pg.page_id
		FROM pages pg
		JOIN paths pa ON pa.path_id = pg.path_id
		WHERE pa.path = $1
	`, path).Scan(&pageID)
	if errors.Is(err, sql.ErrNoRows) {
		return record, ErrNotFound
	}
	if err != nil {
		return record, fmt.Errorf("failed to resolve path: %w", err)
	}

	record.Views, record.Hits, err = pageCounts(ctx, e.views, pageID)
	if err != nil {
		return record, err
	}
	return record, nil
}

// PageExists reports whether a canonical path is already registered. The HTTP
// boundary uses it to decide whether a liveness check is needed before a
// visit may create hierarchy rows.
func (e *Engine) PageExists(ctx context.Context, path string) (bool, error) {
	var exists bool
	err := e.views.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1
			FROM pages pg
			JOIN paths pa ON pa.path_id = pg.path_id
			WHERE pa.path = $1
		)
	`, path).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check path: %w", err)
	}
	return exists, nil
}

// RecordVisit records one hit against a canonical path. The page and its
// folder chain are created on first use. The fingerprint is combined with the
// active salt and hashed before anything touches disk; only the hash is
// stored, and only until the next flush.
//
// The whole operation is one transaction: salt read, hierarchy resolution,
// and the two ledger upserts either all commit or none do.
func (e *Engine) RecordVisit(ctx context.Context, path, fingerprint string) error {
	tx, err := e.views.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var salt string
	err = tx.QueryRowContext(ctx, `SELECT salt FROM salt`).Scan(&salt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotInitialized
	}
	if err != nil {
		return fmt.Errorf("failed to read salt: %w", err)
	}

	pageID, err := resolvePage(ctx, tx, path)
	if err != nil {
		return err
	}

	visitorID := auth.HashVisitor(fingerprint, salt)

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO visitors (visitor_id)
		VALUES ($1)
		ON CONFLICT (visitor_id) DO NOTHING
	`, visitorID); err != nil {
		return fmt.Errorf("failed to record visitor: %w", err)
	}

	// One row per (page, visitor) since the last flush; repeat visits bump
	// the hit counter in place.
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO page_visitors (page_id, visitor_id)
		VALUES ($1, $2)
		ON CONFLICT (page_id, visitor_id) DO UPDATE SET visitor_hits = visitor_hits + 1
	`, pageID, visitorID); err != nil {
		return fmt.Errorf("failed to record hit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit visit: %w", err)
	}

	slog.Debug("visit recorded", "path", path)
	return nil
}

// resolvePage finds or creates the Path, Folder chain, and Page for a
// canonical path inside the caller's transaction. Every creation step is an
// upsert against a uniqueness constraint, so concurrent first visits to the
// same unseen path converge on one row instead of racing check-then-insert.
func resolvePage(ctx context.Context, tx *sql.Tx, path string) (int64, error) {
	var pathID int64
	err := tx.QueryRowContext(ctx, `
		INSERT INTO paths (path)
		VALUES ($1)
		ON CONFLICT (path) DO UPDATE SET path = excluded.path
		RETURNING path_id
	`, path).Scan(&pathID)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert path: %w", err)
	}

	var pageID int64
	err = tx.QueryRowContext(ctx, `SELECT page_id FROM pages WHERE path_id = $1`, pathID).Scan(&pageID)
	if err == nil {
		return pageID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to look up page: %w", err)
	}

	slog.Info("registering new page", "path", path)

	segments := canonical.Segments(path)

	// Walk the folder chain from the sentinel root, creating as needed.
	parentID := int64(0)
	for _, name := range segments[:len(segments)-1] {
		err = tx.QueryRowContext(ctx, `
			INSERT INTO folders (folder_name, parent_id)
			VALUES ($1, $2)
			ON CONFLICT (folder_name, parent_id) DO UPDATE SET folder_name = excluded.folder_name
			RETURNING folder_id
		`, name, parentID).Scan(&parentID)
		if err != nil {
			return 0, fmt.Errorf("failed to upsert folder %q: %w", name, err)
		}
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO pages (folder_id, path_id, page_name, first_visited)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (path_id) DO UPDATE SET path_id = excluded.path_id
		RETURNING page_id
	`, parentID, pathID, segments[len(segments)-1], time.Now()).Scan(&pageID)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert page: %w", err)
	}

	return pageID, nil
}

// pageCounts evaluates total_* + ledger for one page in a single statement.
// The ledger subquery is filtered by page id, so the cost is bounded by one
// page's visitors, not the whole table.
func pageCounts(ctx context.Context, db *sql.DB, pageID int64) (views, hits int64, err error) {
	err = db.QueryRowContext(ctx, `
		SELECT
			pg.total_views + COALESCE(pv.views, 0),
			pg.total_hits + COALESCE(pv.hits, 0)
		FROM pages pg
		LEFT JOIN (
			SELECT page_id, COUNT(visitor_id) AS views, SUM(visitor_hits) AS hits
			FROM page_visitors
			WHERE page_id = $1
			GROUP BY page_id
		) pv ON pv.page_id = pg.page_id
		WHERE pg.page_id = $2
	`, pageID, pageID).Scan(&views, &hits)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, ErrNotFound
	}
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count views: %w", err)
	}
	return views, hits, nil
}
