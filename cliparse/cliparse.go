// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
)

// Broadcast drivers
const (
	BroadcastMemory   = "memory"
	BroadcastPostgres = "postgres"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string

	RateLimitRequests int
	RateLimitWindow   int // seconds
	RateLimitShared   bool

	BroadcastDriver string
	ShareBaseURL    string
}

// ParseFlags validates flags and applies environment fallbacks
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("pollroom", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Fairness / fan-out knobs
	fs.IntVar(&cfg.RateLimitRequests, "rate-limit", 0, "Requests per address per window")
	fs.IntVar(&cfg.RateLimitWindow, "rate-window", 0, "Rate limit window in seconds")
	fs.BoolVar(&cfg.RateLimitShared, "rate-shared", false, "Count the rate limit in the database (multi-instance)")
	fs.StringVar(&cfg.BroadcastDriver, "broadcast", "", "Broadcast driver (memory or postgres)")
	fs.StringVar(&cfg.ShareBaseURL, "share-base", "", "Base URL for share links")

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
			cfg.Port = 5000 // default
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

	if cfg.RateLimitRequests == 0 {
		cfg.RateLimitRequests = envInt("RATE_LIMIT_REQUESTS", 10)
	}
	if cfg.RateLimitWindow == 0 {
		cfg.RateLimitWindow = envInt("RATE_LIMIT_WINDOW", 60)
	}
	if !cfg.RateLimitShared {
		cfg.RateLimitShared = os.Getenv("RATE_LIMIT_SHARED") == "true"
	}

	if cfg.BroadcastDriver == "" {
		cfg.BroadcastDriver = os.Getenv("BROADCAST_DRIVER")
		if cfg.BroadcastDriver == "" {
			cfg.BroadcastDriver = BroadcastMemory
		}
	}
	if cfg.BroadcastDriver != BroadcastMemory && cfg.BroadcastDriver != BroadcastPostgres {
		return Config{}, errors.New("broadcast driver must be memory or postgres")
	}
	if cfg.BroadcastDriver == BroadcastPostgres && cfg.DatabaseType != "postgres" {
		return Config{}, errors.New("postgres broadcast driver requires the postgres database type")
	}
	if cfg.RateLimitShared && cfg.DatabaseType != "postgres" {
		return Config{}, errors.New("shared rate limiting requires the postgres database type")
	}

	if cfg.ShareBaseURL == "" {
		cfg.ShareBaseURL = os.Getenv("SHARE_BASE_URL")
	}
	if cfg.ShareBaseURL == "" {
		cfg.ShareBaseURL = "http://localhost:" + strconv.Itoa(cfg.Port)
	}

	return cfg, nil
}

func envInt(name string, def int) int {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
