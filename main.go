package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/pagetally/cliparse"
	"github.com/danielhkuo/pagetally/db"
	"github.com/danielhkuo/pagetally/engine"
	"github.com/danielhkuo/pagetally/liveness"
	"github.com/danielhkuo/pagetally/middleware"
	"github.com/danielhkuo/pagetally/router"
)

func main() {
	var err error

	// Load .env if present; real env vars win
	if err := godotenv.Load(); err == nil {
		slog.Info("Loaded configuration from .env")
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	driver := "sqlite"
	if cfg.DatabaseType == "postgres" {
		driver = "postgres"
	}

	// The public counting path and maintenance operations use separate
	// pools so a burst of visits cannot starve a flush (and vice versa)
	views, err := sql.Open(driver, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer views.Close()
	views.SetMaxOpenConns(cfg.PoolSize)

	tools, err := sql.Open(driver, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer tools.Close()
	tools.SetMaxOpenConns(4)

	// Verify connection
	if err := views.Ping(); err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	// Create schema (tables)
	if err := db.CreateSchema(tools, cfg.DatabaseType); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	e := engine.New(views, tools)

	// Create router
	mux := router.NewRouter(e, liveness.NewSiteChecker())

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// Periodic flush scheduler
	stopFlush := make(chan struct{})
	if cfg.FlushInterval > 0 {
		go func() {
			ticker := time.NewTicker(cfg.FlushInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
					err := e.Flush(ctx)
					cancel()
					if err != nil && err != engine.ErrNotInitialized {
						slog.Error("scheduled flush failed", "error", err)
					}
				case <-stopFlush:
					return
				}
			}
		}()
		slog.Info("Flush scheduler running", "interval", cfg.FlushInterval)
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		close(stopFlush)
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
