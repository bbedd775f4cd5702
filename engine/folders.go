// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/danielhkuo/pagetally/models"
)

// GetFolder returns one folder with its immediate subfolders and the view
// records of its pages.
func (e *Engine) GetFolder(ctx context.Context, folderID int64) (models.FolderRecord, error) {
	record := models.FolderRecord{ID: folderID}

	var parentID sql.NullInt64
	err := e.tools.QueryRowContext(ctx, `
		SELECT folder_name, parent_id FROM folders WHERE folder_id = $1
	`, folderID).Scan(&record.Name, &parentID)
	if errors.Is(err, sql.ErrNoRows) {
		return record, ErrNotFound
	}
	if err != nil {
		return record, fmt.Errorf("failed to read folder: %w", err)
	}
	if parentID.Valid {
		record.ParentID = &parentID.Int64
	}

	folderRows, err := e.tools.QueryContext(ctx, `
		SELECT folder_id, folder_name FROM folders WHERE parent_id = $1
	`, folderID)
	if err != nil {
		return record, fmt.Errorf("failed to list subfolders: %w", err)
	}
	record.Folders = []models.FolderRecordPartial{}
	for folderRows.Next() {
		var sub models.FolderRecordPartial
		if err := folderRows.Scan(&sub.ID, &sub.Name); err != nil {
			folderRows.Close()
			return record, fmt.Errorf("failed to scan subfolder: %w", err)
		}
		record.Folders = append(record.Folders, sub)
	}
	if err := folderRows.Close(); err != nil {
		return record, fmt.Errorf("failed to list subfolders: %w", err)
	}

	type pageRow struct {
		id   int64
		name string
	}
	pageRows, err := e.tools.QueryContext(ctx, `
		SELECT page_id, page_name FROM pages WHERE folder_id = $1
	`, folderID)
	if err != nil {
		return record, fmt.Errorf("failed to list pages: %w", err)
	}
	var pages []pageRow
	for pageRows.Next() {
		var p pageRow
		if err := pageRows.Scan(&p.id, &p.name); err != nil {
			pageRows.Close()
			return record, fmt.Errorf("failed to scan page: %w", err)
		}
		pages = append(pages, p)
	}
	if err := pageRows.Close(); err != nil {
		return record, fmt.Errorf("failed to list pages: %w", err)
	}

	record.Pages = []models.ViewRecord{}
	for _, p := range pages {
		views, hits, err := pageCounts(ctx, e.tools, p.id)
		if err != nil {
			return record, err
		}
		record.Pages = append(record.Pages, models.ViewRecord{Page: p.name, Views: views, Hits: hits})
	}

	return record, nil
}

// GetPage returns the view record for one page addressed by folder and name.
func (e *Engine) GetPage(ctx context.Context, folderID int64, name string) (models.ViewRecord, error) {
	record := models.ViewRecord{Page: name}

	var pageID int64
	err := e.tools.QueryRowContext(ctx, `
		SELECT page_id FROM pages WHERE folder_id = $1 AND page_name = $2
	`, folderID, name).Scan(&pageID)
	if errors.Is(err, sql.ErrNoRows) {
		return record, ErrNotFound
	}
	if err != nil {
		return record, fmt.Errorf("failed to read page: %w", err)
	}

	record.Views, record.Hits, err = pageCounts(ctx, e.tools, pageID)
	if err != nil {
		return record, err
	}
	return record, nil
}

// DeletePage removes one page, its path, and its ledger rows.
func (e *Engine) DeletePage(ctx context.Context, folderID int64, name string) error {
	tx, err := e.tools.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin delete transaction: %w", err)
	}
	defer tx.Rollback()

	var pageID, pathID int64
	err = tx.QueryRowContext(ctx, `
		SELECT page_id, path_id FROM pages WHERE folder_id = $1 AND page_name = $2
	`, folderID, name).Scan(&pageID, &pathID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read page: %w", err)
	}

	if err := deletePageRows(ctx, tx, pageID, pathID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}

	slog.Info("page deleted", "folder_id", folderID, "page", name)
	return nil
}

// DeleteFolder removes a folder and everything beneath it: subfolders, pages,
// paths, and ledger rows. The sentinel root is protected.
func (e *Engine) DeleteFolder(ctx context.Context, folderID int64) error {
	if folderID == 0 {
		return ErrRootFolder
	}

	tx, err := e.tools.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin delete transaction: %w", err)
	}
	defer tx.Rollback()

	// Deepest folders first so parent rows are never deleted before their
	// children under immediate foreign key checks.
	folderRows, err := tx.QueryContext(ctx, `
		WITH RECURSIVE subtree (folder_id, depth) AS (
			SELECT folder_id, 0 FROM folders WHERE folder_id = $1
			UNION ALL
			SELECT f.folder_id, s.depth + 1
			FROM folders f
			JOIN subtree s ON f.parent_id = s.folder_id
		)
		SELECT folder_id FROM subtree ORDER BY depth DESC
	`, folderID)
	if err != nil {
		return fmt.Errorf("failed to walk folder tree: %w", err)
	}
	var folderIDs []int64
	for folderRows.Next() {
		var id int64
		if err := folderRows.Scan(&id); err != nil {
			folderRows.Close()
			return fmt.Errorf("failed to scan folder: %w", err)
		}
		folderIDs = append(folderIDs, id)
	}
	if err := folderRows.Close(); err != nil {
		return fmt.Errorf("failed to walk folder tree: %w", err)
	}
	if len(folderIDs) == 0 {
		return ErrNotFound
	}

	for _, id := range folderIDs {
		pageRows, err := tx.QueryContext(ctx, `
			SELECT page_id, path_id FROM pages WHERE folder_id = $1
		`, id)
		if err != nil {
			return fmt.Errorf("failed to list pages: %w", err)
		}
		type pageRef struct{ pageID, pathID int64 }
		var pages []pageRef
		for pageRows.Next() {
			var p pageRef
			if err := pageRows.Scan(&p.pageID, &p.pathID); err != nil {
				pageRows.Close()
				return fmt.Errorf("failed to scan page: %w", err)
			}
			pages = append(pages, p)
		}
		if err := pageRows.Close(); err != nil {
			return fmt.Errorf("failed to list pages: %w", err)
		}

		for _, p := range pages {
			if err := deletePageRows(ctx, tx, p.pageID, p.pathID); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM folders WHERE folder_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete folder %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}

	slog.Info("folder deleted", "folder_id", folderID, "folders_removed", len(folderIDs))
	return nil
}

func deletePageRows(ctx context.Context, tx *sql.Tx, pageID, pathID int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM page_visitors WHERE page_id = $1`, pageID); err != nil {
		return fmt.Errorf("failed to delete ledger rows: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM pages WHERE page_id = $1`, pageID); err != nil {
		return fmt.Errorf("failed to delete page: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM paths WHERE path_id = $1`, pathID); err != nil {
		return fmt.Errorf("failed to delete path: %w", err)
	}
	return nil
}
