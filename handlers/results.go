// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/pollroom/auth"
	"github.com/danielhkuo/pollroom/middleware"
	"github.com/danielhkuo/pollroom/store"
)

type ResultsHandler struct {
	store *store.Store
}

func NewResultsHandler(st *store.Store) *ResultsHandler {
	return &ResultsHandler{store: st}
}

// GetResults handles GET /polls/{code}/results
// The pull path: polling fallback and initial page load both use it.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	code := auth.NormalizeCode(r.PathValue("code"))
	if !auth.ValidCode(code) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}

	snap, err := h.store.GetSnapshot(r.Context(), code)
	if errors.Is(err, store.ErrPollNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to read snapshot", "poll_code", code, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to get results")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, snap)
}
