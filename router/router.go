// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/pollroom/broadcast"
	"github.com/danielhkuo/pollroom/cliparse"
	"github.com/danielhkuo/pollroom/gate"
	"github.com/danielhkuo/pollroom/handlers"
	"github.com/danielhkuo/pollroom/middleware"
	"github.com/danielhkuo/pollroom/ratelimit"
	"github.com/danielhkuo/pollroom/store"
	"github.com/danielhkuo/pollroom/vote"
	"github.com/danielhkuo/pollroom/ws"
)

// NewRouter wires the full stack: store, gate, coordinator, transports.
// The limiter and broadcaster are composed by the caller so deployment
// variants (shared limiter, postgres broadcast) stay out of here.
func NewRouter(db *sql.DB, cfg cliparse.Config, limiter ratelimit.Limiter, pub broadcast.Publisher) *http.ServeMux {
	st := store.New(db)
	g := gate.New(limiter, st)
	coordinator := vote.New(g, st, pub)

	// Initialize handlers
	pollHandler := handlers.NewPollHandler(st, limiter, cfg)
	votingHandler := handlers.NewVotingHandler(coordinator)
	resultsHandler := handlers.NewResultsHandler(st)
	wsHandler := ws.NewHandler(pub, st)

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Poll lifecycle (public; polls are immutable after creation)
	mux.HandleFunc("POST /polls", middleware.WithLogging(pollHandler.CreatePoll))
	mux.HandleFunc("GET /polls/{code}", middleware.WithLogging(pollHandler.GetPoll))

	// Voting
	mux.HandleFunc("POST /polls/{code}/vote", middleware.WithLogging(votingHandler.SubmitVote))

	// Results (polling fallback; live updates go over /ws)
	mux.HandleFunc("GET /polls/{code}/results", middleware.WithLogging(resultsHandler.GetResults))

	// Live updates
	mux.HandleFunc("GET /ws", wsHandler.ServeWS)

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pollroom API v1"))
	})

	return mux
}
