// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/pagetally/engine"
	"github.com/danielhkuo/pagetally/handlers"
	"github.com/danielhkuo/pagetally/liveness"
	"github.com/danielhkuo/pagetally/middleware"
)

func NewRouter(e *engine.Engine, checker liveness.Checker) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	viewsHandler := handlers.NewViewsHandler(e, checker)
	adminHandler := handlers.NewAdminHandler(e)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Public view counting
	mux.HandleFunc("GET /api/views/{path...}", middleware.WithLogging(viewsHandler.Get))
	mux.HandleFunc("POST /api/visit/{path...}", middleware.WithLogging(viewsHandler.RecordVisit))

	// Maintenance (basic auth, checked by the engine)
	mux.HandleFunc("POST /api/flush", middleware.WithLogging(adminHandler.Flush))
	mux.HandleFunc("POST /api/init", middleware.WithLogging(adminHandler.Init))
	mux.HandleFunc("GET /api/settings", middleware.WithLogging(adminHandler.GetSettings))
	mux.HandleFunc("POST /api/settings", middleware.WithLogging(adminHandler.UpdateSettings))

	// Hierarchy administration
	mux.HandleFunc("GET /api/folders/{id}", middleware.WithLogging(adminHandler.GetFolder))
	mux.HandleFunc("DELETE /api/folders/{id}", middleware.WithLogging(adminHandler.DeleteFolder))
	mux.HandleFunc("GET /api/folders/{id}/pages/{name}", middleware.WithLogging(adminHandler.GetPage))
	mux.HandleFunc("DELETE /api/folders/{id}/pages/{name}", middleware.WithLogging(adminHandler.DeletePage))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pagetally API v1"))
	})

	return mux
}
