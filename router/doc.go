// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package router wires the HTTP handlers onto a net/http ServeMux using
// Go 1.22 method and wildcard routing. Tracked-page paths are captured
// with a trailing {path...} wildcard so nested pages route through a
// single pattern. Every route is wrapped in request logging; CORS is
// applied to the whole mux in main.
package router
