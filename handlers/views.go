// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/pagetally/canonical"
	"github.com/danielhkuo/pagetally/engine"
	"github.com/danielhkuo/pagetally/liveness"
	"github.com/danielhkuo/pagetally/middleware"
)

// Upper bound on storage and liveness work per request, so one slow tracked
// site or database stall cannot pin workers indefinitely.
const opTimeout = 15 * time.Second

type ViewsHandler struct {
	engine  *engine.Engine
	checker liveness.Checker
}

func NewViewsHandler(e *engine.Engine, checker liveness.Checker) *ViewsHandler {
	return &ViewsHandler{engine: e, checker: checker}
}

// Get handles GET /api/views/{path...}
func (h *ViewsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), opTimeout)
	defer cancel()

	settings, err := h.engine.GetSettings(ctx)
	if err != nil {
		slog.Error("failed to load settings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	path := canonical.Canonicalize(r.PathValue("path"), r.URL.RawQuery, settings)

	record, err := h.engine.Get(ctx, path)
	if errors.Is(err, engine.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Page not found")
		return
	}
	if err != nil {
		slog.Error("failed to get view record", "error", err, "path", path)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, record)
}

// RecordVisit handles POST /api/visit/{path...}
func (h *ViewsHandler) RecordVisit(w http.ResponseWriter, r *http.Request) {
	// Once a visit request reaches us, a client disconnect must not roll
	// the ledger update back.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), opTimeout)
	defer cancel()

	settings, err := h.engine.GetSettings(ctx)
	if err != nil {
		slog.Error("failed to load settings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	path := canonical.Canonicalize(r.PathValue("path"), r.URL.RawQuery, settings)

	// Unseen paths get a liveness probe before they may create hierarchy
	// rows; without this, anyone could grow the page tree with junk paths.
	exists, err := h.engine.PageExists(ctx, path)
	if err != nil {
		slog.Error("failed to check path", "error", err, "path", path)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !exists {
		live, reason, err := h.checker.Check(ctx, settings, path)
		if err != nil {
			slog.Error("liveness check failed", "error", err, "path", path)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Liveness check failed")
			return
		}
		if !live {
			slog.Info("rejected visit to dead path", "path", path, "reason", reason)
			middleware.ErrorResponse(w, http.StatusNotFound, "Path is not live on the tracked site")
			return
		}
	}

	err = h.engine.RecordVisit(ctx, path, middleware.Fingerprint(r))
	if errors.Is(err, engine.ErrNotInitialized) {
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Tracker is not initialized")
		return
	}
	if err != nil {
		slog.Error("failed to record visit", "error", err, "path", path)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	w.WriteHeader(http.StatusOK)
}
