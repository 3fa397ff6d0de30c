// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ratelimit

import (
	"database/sql"
	"log/slog"
	"time"
)

// SharedWindow is the externally-backed Limiter variant for
// multi-instance deployments: the window state lives in the same SQL
// database the vote store uses (rate_request table), so all instances
// count the same requests.
//
// Rate limiting is a heuristic, not a security boundary, so storage
// errors fail open: the request is admitted and the error logged.
type SharedWindow struct {
	db     *sql.DB
	limit  int
	window time.Duration

	now func() time.Time
}

// NewSharedWindow creates a SQL-backed limiter with the same contract
// as NewSlidingWindow.
func NewSharedWindow(db *sql.DB, limit int, window time.Duration) *SharedWindow {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &SharedWindow{db: db, limit: limit, window: window, now: time.Now}
}

func (l *SharedWindow) Admit(sourceAddress string) bool {
	now := l.now()
	cutoff := now.Add(-l.window)

	// Lazy prune, mirroring the in-memory variant.
	_, err := l.db.Exec(`
		DELETE FROM rate_request WHERE source_address = $1 AND requested_at <= $2
	`, sourceAddress, cutoff)
	if err != nil {
		slog.Warn("rate limiter prune failed", "error", err)
		return true
	}

	var count int
	err = l.db.QueryRow(`
		SELECT COUNT(*) FROM rate_request WHERE source_address = $1
	`, sourceAddress).Scan(&count)
	if err != nil {
		slog.Warn("rate limiter count failed", "error", err)
		return true
	}

	if count >= l.limit {
		return false
	}

	_, err = l.db.Exec(`
		INSERT INTO rate_request (source_address, requested_at) VALUES ($1, $2)
	`, sourceAddress, now)
	if err != nil {
		slog.Warn("rate limiter record failed", "error", err)
	}
	return true
}
