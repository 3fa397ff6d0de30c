// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers_test

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/pollroom/broadcast"
	"github.com/danielhkuo/pollroom/ratelimit"
	"github.com/danielhkuo/pollroom/router"
	"github.com/danielhkuo/pollroom/testutil"
)

// api is the handler stack under test: the real router over an
// in-memory database, with a limiter generous enough to stay out of
// the way unless a test asks otherwise.
type api struct {
	mux  *http.ServeMux
	conn *sql.DB
	hub  *broadcast.Hub
}

func setupAPI(t *testing.T) *api {
	t.Helper()
	return setupAPIWithLimit(t, 10000)
}

func setupAPIWithLimit(t *testing.T, limit int) *api {
	t.Helper()

	conn := testutil.SetupTestDB(t)
	hub := broadcast.NewHub()
	limiter := ratelimit.NewSlidingWindow(limit, time.Minute)
	mux := router.NewRouter(conn, testutil.GetTestConfig(), limiter, hub)

	return &api{mux: mux, conn: conn, hub: hub}
}

func (a *api) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.mux.ServeHTTP(w, req)
	return w
}

// voteHeaders builds the identity headers for a vote: the forwarded
// client address and the voter token.
func voteHeaders(addr, token string) map[string]string {
	h := map[string]string{"X-Forwarded-For": addr}
	if token != "" {
		h["X-Voter-Token"] = token
	}
	return h
}
