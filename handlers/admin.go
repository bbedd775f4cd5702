// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/pagetally/engine"
	"github.com/danielhkuo/pagetally/middleware"
	"github.com/danielhkuo/pagetally/models"
)

type AdminHandler struct {
	engine *engine.Engine
}

func NewAdminHandler(e *engine.Engine) *AdminHandler {
	return &AdminHandler{engine: e}
}

// requireAuth checks basic auth credentials against the engine. Before init
// the built-in default pair is accepted; see engine.Auth.
func (h *AdminHandler) requireAuth(w http.ResponseWriter, r *http.Request) bool {
	user, pass, ok := r.BasicAuth()
	if !ok {
		w.Header().Set("WWW-Authenticate", `Basic realm="pagetally"`)
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Credentials required")
		return false
	}

	authed, err := h.engine.Auth(r.Context(), user, pass)
	if err != nil {
		slog.Error("auth check failed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return false
	}
	if !authed {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid credentials")
		return false
	}
	return true
}

// Flush handles POST /api/flush
func (h *AdminHandler) Flush(w http.ResponseWriter, r *http.Request) {
	if !h.requireAuth(w, r) {
		return
	}

	// A started flush runs to completion or rolls back on its own terms; the
	// caller going away must not abort the transaction midway.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), opTimeout)
	defer cancel()

	err := h.engine.Flush(ctx)
	if errors.Is(err, engine.ErrNotInitialized) {
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Tracker is not initialized")
		return
	}
	if err != nil {
		slog.Error("flush failed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Flush failed")
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Init handles POST /api/init
func (h *AdminHandler) Init(w http.ResponseWriter, r *http.Request) {
	var req models.InitRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Site == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "site is required")
		return
	}
	if req.User == "" || req.Pass == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "admin user and pass are required")
		return
	}

	err := h.engine.Init(r.Context(), req)
	if errors.Is(err, engine.ErrAlreadyInitialized) {
		middleware.ErrorResponse(w, http.StatusConflict, "Tracker is already initialized")
		return
	}
	if err != nil {
		slog.Error("init failed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Init failed")
		return
	}

	w.WriteHeader(http.StatusOK)
}

// GetSettings handles GET /api/settings
func (h *AdminHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	if !h.requireAuth(w, r) {
		return
	}

	settings, err := h.engine.GetSettings(r.Context())
	if err != nil {
		slog.Error("failed to load settings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, settings)
}

// UpdateSettings handles POST /api/settings
func (h *AdminHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	if !h.requireAuth(w, r) {
		return
	}

	var req models.UpdateSettingsRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Site == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "site is required")
		return
	}

	err := h.engine.UpdateSettings(r.Context(), req.Settings)
	if errors.Is(err, engine.ErrNotInitialized) {
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Tracker is not initialized")
		return
	}
	if err != nil {
		slog.Error("failed to update settings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	w.WriteHeader(http.StatusOK)
}

// GetFolder handles GET /api/folders/{id}
func (h *AdminHandler) GetFolder(w http.ResponseWriter, r *http.Request) {
	if !h.requireAuth(w, r) {
		return
	}

	folderID, ok := parseID(w, r)
	if !ok {
		return
	}

	record, err := h.engine.GetFolder(r.Context(), folderID)
	if errors.Is(err, engine.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Folder not found")
		return
	}
	if err != nil {
		slog.Error("failed to get folder", "error", err, "folder_id", folderID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, record)
}

// DeleteFolder handles DELETE /api/folders/{id}
func (h *AdminHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	if !h.requireAuth(w, r) {
		return
	}

	folderID, ok := parseID(w, r)
	if !ok {
		return
	}

	err := h.engine.DeleteFolder(r.Context(), folderID)
	if errors.Is(err, engine.ErrRootFolder) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "The root folder cannot be deleted")
		return
	}
	if errors.Is(err, engine.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Folder not found")
		return
	}
	if err != nil {
		slog.Error("failed to delete folder", "error", err, "folder_id", folderID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	w.WriteHeader(http.StatusOK)
}

// GetPage handles GET /api/folders/{id}/pages/{name}
func (h *AdminHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	if !h.requireAuth(w, r) {
		return
	}

	folderID, ok := parseID(w, r)
	if !ok {
		return
	}

	record, err := h.engine.GetPage(r.Context(), folderID, r.PathValue("name"))
	if errors.Is(err, engine.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Page not found")
		return
	}
	if err != nil {
		slog.Error("failed to get page", "error", err, "folder_id", folderID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, record)
}

// DeletePage handles DELETE /api/folders/{id}/pages/{name}
func (h *AdminHandler) DeletePage(w http.ResponseWriter, r *http.Request) {
	if !h.requireAuth(w, r) {
		return
	}

	folderID, ok := parseID(w, r)
	if !ok {
		return
	}

	err := h.engine.DeletePage(r.Context(), folderID, r.PathValue("name"))
	if errors.Is(err, engine.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Page not found")
		return
	}
	if err != nil {
		slog.Error("failed to delete page", "error", err, "folder_id", folderID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	w.WriteHeader(http.StatusOK)
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid folder id")
		return 0, false
	}
	return id, true
}
