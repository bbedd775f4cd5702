// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3323)
  - DatabaseURL: Database connection string (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - PoolSize: Connection pool size for the public path (default: 16)
  - FlushInterval: Periodic flush cadence; zero disables the scheduler

# CLI Flags

	-p            Server port
	-d            Database URL
	-t            Database type
	-pool         Pool size
	-flush-every  Flush interval (Go duration, e.g. 30m)

# Environment Variables

Flags fall back to environment variables:

	PORT           → -p
	DATABASE_URL   → -d
	DATABASE_TYPE  → -t
	POOL_SIZE      → -pool
	FLUSH_INTERVAL → -flush-every

CLI flags take precedence over environment variables. An optional .env file is
loaded by main before parsing.

# Validation

ParseFlags returns an error if required values are missing or malformed:

  - DATABASE_URL must be provided
  - DATABASE_TYPE must be sqlite or postgres
  - FLUSH_INTERVAL must be a positive duration when set
*/
package cliparse
