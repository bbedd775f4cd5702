// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the pagetally API server.

pagetally is a self-hosted, privacy-preserving page-view counter. It
tracks views (distinct visitors) and hits (raw requests) per page of a
single site, organized into a folder hierarchy, without storing any
recoverable visitor identity.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=file:views.db go run main.go

Or with flags:

	go run main.go -p 3323 -d "postgres://..." -t postgres

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file URL or PostgreSQL connection string

Optional settings:

  - PORT (-p): Server port (default: 3323)
  - DATABASE_TYPE (-t): "sqlite" (default) or "postgres"
  - POOL_SIZE (-pool): Connections for the public counting path (default: 16)
  - FLUSH_INTERVAL (-flush-every): Periodic flush interval, e.g. 30m
    (empty disables the scheduler)

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (views, visits, admin operations)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers, visitor fingerprinting
  - models: Request/response types and settings
  - engine: Page registry, visit ledger, flush and salt rotation
  - canonical: Path normalization against the tracked-site settings
  - liveness: Tracked-site reachability probe for unknown paths
  - auth: Salts, visitor hashing, password hashing
  - db: Schema creation for both database backends
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
