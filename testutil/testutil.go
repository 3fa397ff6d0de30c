// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielhkuo/pollroom/auth"
	"github.com/danielhkuo/pollroom/cliparse"
	"github.com/danielhkuo/pollroom/db"
)

var dbSeq atomic.Int64

// SetupTestDB creates a fresh in-memory sqlite database with the full
// schema. Each call gets its own database, so tests stay independent
// and need no running Postgres.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_pragma=foreign_keys(1)",
		name, dbSeq.Add(1))

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Single writer: sqlite serializes anyway and this avoids
	// SQLITE_BUSY in the concurrency tests.
	conn.SetMaxOpenConns(1)

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	t.Cleanup(func() { conn.Close() })

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:              5000,
		DatabaseURL:       ":memory:",
		DatabaseType:      "sqlite",
		RateLimitRequests: 10,
		RateLimitWindow:   60,
		BroadcastDriver:   cliparse.BroadcastMemory,
		ShareBaseURL:      "http://localhost:5000",
	}
}

// CreateTestPoll creates a poll with the given option labels and
// returns its ID, code and option IDs in label order.
func CreateTestPoll(t *testing.T, conn *sql.DB, question string, labels ...string) (pollID, code string, optionIDs []string) {
	t.Helper()

	pollID, _ = auth.GenerateID(16)
	code = auth.GeneratePollCode()

	_, err := conn.Exec(`
		INSERT INTO poll (id, code, question, created_at)
		VALUES ($1, $2, $3, $4)
	`, pollID, code, question, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}

	for i, label := range labels {
		optionID, _ := auth.GenerateID(12)
		_, err := conn.Exec(`
			INSERT INTO option (id, poll_id, label, position, vote_count)
			VALUES ($1, $2, $3, $4, 0)
		`, optionID, pollID, label, i)
		if err != nil {
			t.Fatalf("Failed to create test option: %v", err)
		}
		optionIDs = append(optionIDs, optionID)
	}

	return pollID, code, optionIDs
}

// CastTestVote inserts a vote fact and bumps the counter directly,
// bypassing the gate. For seeding state only.
func CastTestVote(t *testing.T, conn *sql.DB, pollID, optionID, sourceAddress, voterToken string) {
	t.Helper()

	voteID, _ := auth.GenerateID(16)
	_, err := conn.Exec(`
		INSERT INTO vote (id, poll_id, option_id, source_address, voter_token, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, voteID, pollID, optionID, sourceAddress, voterToken, time.Now())
	if err != nil {
		t.Fatalf("Failed to insert test vote: %v", err)
	}

	_, err = conn.Exec(`
		UPDATE option SET vote_count = vote_count + 1 WHERE id = $1
	`, optionID)
	if err != nil {
		t.Fatalf("Failed to bump test counter: %v", err)
	}
}

// CountVotes returns the number of vote facts for a poll.
func CountVotes(t *testing.T, conn *sql.DB, pollID string) int {
	t.Helper()

	var count int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM vote WHERE poll_id = $1`, pollID).Scan(&count); err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}
	return count
}

// OptionCount returns the stored counter for an option.
func OptionCount(t *testing.T, conn *sql.DB, optionID string) int {
	t.Helper()

	var count int
	if err := conn.QueryRow(`SELECT vote_count FROM option WHERE id = $1`, optionID).Scan(&count); err != nil {
		t.Fatalf("Failed to read option counter: %v", err)
	}
	return count
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
