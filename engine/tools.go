// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/danielhkuo/pagetally/auth"
	"github.com/danielhkuo/pagetally/models"
)

// Flush folds the ephemeral ledger into the durable per-page baselines,
// clears it, and rotates the anonymization salt - all in one transaction on
// the maintenance pool. A failed flush rolls back completely, salt rotation
// included.
//
// The ledger is drained with DELETE ... RETURNING, so the rows folded into
// the totals are exactly the rows removed; a visit committing mid-flush is
// never aggregated-then-wiped. Such a visit stays in the ledger hashed under
// the pre-rotation salt and is folded by the next flush, where its visitor
// counts as new. That unlinkability across flushes is the point of rotating
// the salt, and it is why views undercount unique humans across flush
// boundaries.
func (e *Engine) Flush(ctx context.Context) error {
	initialized, err := e.IsInitialized(ctx)
	if err != nil {
		return err
	}
	if !initialized {
		return ErrNotInitialized
	}

	tx, err := e.tools.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin flush transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
		DELETE FROM page_visitors
		RETURNING page_id, visitor_hits
	`)
	if err != nil {
		return fmt.Errorf("failed to drain ledger: %w", err)
	}

	// Each ledger row is one distinct visitor on one page, so the row count
	// per page is the view delta and the hit sum is the hit delta.
	type delta struct{ views, hits int64 }
	deltas := make(map[int64]*delta)
	var order []int64
	for rows.Next() {
		var pageID, visitorHits int64
		if err := rows.Scan(&pageID, &visitorHits); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan ledger row: %w", err)
		}
		d, ok := deltas[pageID]
		if !ok {
			d = &delta{}
			deltas[pageID] = d
			order = append(order, pageID)
		}
		d.views++
		d.hits += visitorHits
	}
	if err := rows.Close(); err != nil {
		return fmt.Errorf("failed to drain ledger: %w", err)
	}

	for _, pageID := range order {
		d := deltas[pageID]
		if _, err := tx.ExecContext(ctx, `
			UPDATE pages
			SET total_views = total_views + $1,
			    total_hits = total_hits + $2
			WHERE page_id = $3
		`, d.views, d.hits, pageID); err != nil {
			return fmt.Errorf("failed to update page totals: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM visitors`); err != nil {
		return fmt.Errorf("failed to clear visitors: %w", err)
	}

	newSalt, err := auth.NewSalt()
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM salt`); err != nil {
		return fmt.Errorf("failed to rotate salt: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO salt (salt) VALUES ($1)`, newSalt); err != nil {
		return fmt.Errorf("failed to rotate salt: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit flush: %w", err)
	}

	slog.Info("flush complete", "pages", len(order))
	return nil
}

// Init populates settings, admin credentials, and the first salt. It may run
// exactly once; a second call returns ErrAlreadyInitialized.
func (e *Engine) Init(ctx context.Context, req models.InitRequest) error {
	if req.User == "" || req.Pass == "" {
		return errors.New("admin user and password are required")
	}
	if req.Site == "" {
		return errors.New("site is required")
	}

	hashedPass, err := auth.HashPassword(req.Pass)
	if err != nil {
		return err
	}

	settingsJSON, err := json.Marshal(req.Settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	userJSON, _ := json.Marshal(req.User)
	passJSON, _ := json.Marshal(hashedPass)

	tx, err := e.tools.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin init transaction: %w", err)
	}
	defer tx.Rollback()

	// The schema_ver insert is the init guard: if the row already exists,
	// someone else initialized first.
	res, err := tx.ExecContext(ctx, `
		INSERT INTO settings (setting_name, setting)
		VALUES ('schema_ver', '1')
		ON CONFLICT (setting_name) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("failed to write schema version: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAlreadyInitialized
	}

	for name, value := range map[string]string{
		"current_settings": string(settingsJSON),
		"user":             string(userJSON),
		"password":         string(passJSON),
	} {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO settings (setting_name, setting)
			VALUES ($1, $2)
		`, name, value); err != nil {
			return fmt.Errorf("failed to write setting %s: %w", name, err)
		}
	}

	salt, err := auth.NewSalt()
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO salt (salt) VALUES ($1)`, salt); err != nil {
		return fmt.Errorf("failed to create salt: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit init: %w", err)
	}

	slog.Info("tracker initialized", "site", req.Site)
	return nil
}

// IsInitialized reports whether Init has completed.
func (e *Engine) IsInitialized(ctx context.Context) (bool, error) {
	var initialized bool
	err := e.views.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM settings WHERE setting_name = 'schema_ver')
	`).Scan(&initialized)
	if err != nil {
		return false, fmt.Errorf("failed to check initialization: %w", err)
	}
	return initialized, nil
}

// GetSettings returns the active settings, or the defaults before Init.
func (e *Engine) GetSettings(ctx context.Context) (models.Settings, error) {
	var raw string
	err := e.views.QueryRowContext(ctx, `
		SELECT setting FROM settings WHERE setting_name = 'current_settings'
	`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DefaultSettings(), nil
	}
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to read settings: %w", err)
	}

	var s models.Settings
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return models.Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	return s, nil
}

// UpdateSettings replaces the active settings.
func (e *Engine) UpdateSettings(ctx context.Context, s models.Settings) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	res, err := e.tools.ExecContext(ctx, `
		UPDATE settings
		SET setting = $1
		WHERE setting_name = 'current_settings'
	`, string(raw))
	if err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotInitialized
	}
	return nil
}

// Auth checks an admin credential pair. Before initialization the built-in
// default pair is accepted so first-time setup can reach the init endpoint;
// afterwards the stored username and bcrypt hash are authoritative.
func (e *Engine) Auth(ctx context.Context, user, pass string) (bool, error) {
	initialized, err := e.IsInitialized(ctx)
	if err != nil {
		return false, err
	}
	if !initialized {
		return auth.CheckDefault(user, pass), nil
	}

	var userRaw, passRaw string
	if err := e.views.QueryRowContext(ctx, `
		SELECT setting FROM settings WHERE setting_name = 'user'
	`).Scan(&userRaw); err != nil {
		return false, fmt.Errorf("failed to read admin user: %w", err)
	}
	if err := e.views.QueryRowContext(ctx, `
		SELECT setting FROM settings WHERE setting_name = 'password'
	`).Scan(&passRaw); err != nil {
		return false, fmt.Errorf("failed to read admin password: %w", err)
	}

	var storedUser, storedPass string
	if err := json.Unmarshal([]byte(userRaw), &storedUser); err != nil {
		return false, fmt.Errorf("failed to decode admin user: %w", err)
	}
	if err := json.Unmarshal([]byte(passRaw), &storedPass); err != nil {
		return false, fmt.Errorf("failed to decode admin password: %w", err)
	}

	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(storedUser)) == 1
	passOK := auth.CheckPassword(storedPass, pass)
	return userOK && passOK, nil
}
