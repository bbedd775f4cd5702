package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port          int
	DatabaseURL   string
	DatabaseType  string
	PoolSize      int
	FlushInterval time.Duration
}

// ParseFlags validates flags and fills in defaults from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var flushEvery string

	fs := flag.NewFlagSet("pagetally", flag.ContinueOnError)

	// Network and storage config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.IntVar(&cfg.PoolSize, "pool", 0, "Connection pool size for the public read/write path")
	fs.StringVar(&flushEvery, "flush-every", "", "Periodic flush interval, e.g. 30m (empty disables the scheduler)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3323 // default
		}
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, errors.New("database type must be sqlite or postgres")
	}

	if cfg.PoolSize == 0 {
		if poolStr := os.Getenv("POOL_SIZE"); poolStr != "" {
			pool, err := strconv.Atoi(poolStr)
			if err != nil || pool < 1 {
				return Config{}, errors.New("invalid POOL_SIZE env variable")
			}
			cfg.PoolSize = pool
		} else {
			cfg.PoolSize = 16
		}
	}

	if flushEvery == "" {
		flushEvery = os.Getenv("FLUSH_INTERVAL")
	}
	if flushEvery != "" {
		interval, err := time.ParseDuration(flushEvery)
		if err != nil || interval <= 0 {
			return Config{}, errors.New("invalid flush interval (want a positive Go duration, e.g. 30m)")
		}
		cfg.FlushInterval = interval
	}

	return cfg, nil
}
