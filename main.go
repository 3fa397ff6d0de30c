// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
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

	"github.com/danielhkuo/pollroom/broadcast"
	"github.com/danielhkuo/pollroom/cliparse"
	"github.com/danielhkuo/pollroom/db"
	"github.com/danielhkuo/pollroom/ratelimit"
	"github.com/danielhkuo/pollroom/router"
)

func main() {
	// Local development convenience; a missing .env is fine.
	_ = godotenv.Load()

	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	dbConn, err := sql.Open(driverName(cfg.DatabaseType), cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	if cfg.DatabaseType == "sqlite" {
		// One writer at a time; sqlite serializes anyway and this
		// avoids SQLITE_BUSY under concurrent votes.
		dbConn.SetMaxOpenConns(1)
	}

	// Verify connection
	if err := dbConn.Ping(); err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready")

	// Admission control: process-local window by default, DB-backed
	// when instances must share state.
	var limiter ratelimit.Limiter
	window := time.Duration(cfg.RateLimitWindow) * time.Second
	if cfg.RateLimitShared {
		limiter = ratelimit.NewSharedWindow(dbConn, cfg.RateLimitRequests, window)
	} else {
		limiter = ratelimit.NewSlidingWindow(cfg.RateLimitRequests, window)
	}

	// Fan-out: in-process hub, optionally bridged across instances
	// through Postgres LISTEN/NOTIFY.
	hub := broadcast.NewHub()
	var pub broadcast.Publisher = hub
	if cfg.BroadcastDriver == cliparse.BroadcastPostgres {
		bridge, err := broadcast.NewPGBridge(dbConn, cfg.DatabaseURL, hub)
		if err != nil {
			slog.Error("broadcast bridge failed", "error", err)
			os.Exit(1)
		}
		defer bridge.Close()
		pub = bridge
	}

	mux := router.NewRouter(dbConn, cfg, limiter, pub)

	server := http.Server{
		Handler: mux,
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	slog.Info("Listening", "port", cfg.Port, "broadcast", cfg.BroadcastDriver)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}

func driverName(databaseType string) string {
	if databaseType == "postgres" {
		return "postgres"
	}
	return "sqlite"
}
