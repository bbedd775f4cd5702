// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the pagetally API.

# Handler Types

Each handler is a struct with its engine dependencies:

  - ViewsHandler: Public read/write path (view counts, visit recording)
  - AdminHandler: Authenticated maintenance (flush, init, settings, hierarchy)

Handlers are created via constructor functions:

	viewsHandler := handlers.NewViewsHandler(eng, checker)
	adminHandler := handlers.NewAdminHandler(eng)

# Public Surface

	GET  /api/views/{path...} → Get (view record, 404 if unregistered)
	POST /api/visit/{path...} → RecordVisit (liveness-gated for unseen paths)

The fingerprint for RecordVisit is assembled boundary-side from client IP +
user agent and handed to the engine, which only ever stores its salted hash.

# Admin Surface

	POST /api/flush                        → Flush
	POST /api/init                         → Init (open until first success)
	GET/POST /api/settings                 → GetSettings / UpdateSettings
	GET/DELETE /api/folders/{id}           → GetFolder / DeleteFolder
	GET/DELETE /api/folders/{id}/pages/{name} → GetPage / DeletePage

Admin operations use HTTP basic auth checked by the engine. Before
initialization, the built-in default pair is accepted so setup can reach
/api/init at all.

# Status Mapping

	engine.ErrNotFound           → 404
	auth failure                 → 401
	engine.ErrAlreadyInitialized → 409
	engine.ErrNotInitialized     → 503
	dead path (liveness)         → 404
	storage errors               → 500, generic message only
*/
package handlers
