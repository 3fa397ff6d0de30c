// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/pollroom/auth"
	"github.com/danielhkuo/pollroom/cliparse"
	"github.com/danielhkuo/pollroom/middleware"
	"github.com/danielhkuo/pollroom/models"
	"github.com/danielhkuo/pollroom/ratelimit"
	"github.com/danielhkuo/pollroom/store"
)

type PollHandler struct {
	store   *store.Store
	limiter ratelimit.Limiter
	cfg     cliparse.Config
}

func NewPollHandler(st *store.Store, limiter ratelimit.Limiter, cfg cliparse.Config) *PollHandler {
	return &PollHandler{store: st, limiter: limiter, cfg: cfg}
}

// CreatePoll handles POST /polls
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	// Creation shares the vote rate limit: it is the other write path
	// an abusive address can hammer.
	if !h.limiter.Admit(middleware.GetClientIP(r)) {
		middleware.ErrorResponse(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
		return
	}

	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	question, options, msg := validatePollInput(req)
	if msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	poll, stored, err := h.store.CreatePoll(r.Context(), question, options)
	if err != nil {
		slog.Error("failed to create poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
		return
	}

	slog.Info("poll created", "poll_code", poll.Code, "options", len(stored))

	poll.CreatedAgo = humanize.Time(poll.CreatedAt)

	middleware.JSONResponse(w, http.StatusCreated, models.CreatePollResponse{
		Poll:     poll,
		Options:  stored,
		ShareURL: h.cfg.ShareBaseURL + "/poll/" + poll.Code,
	})
}

// GetPoll handles GET /polls/{code}
// Returns the poll, its options, the live snapshot and whether this
// browser already voted. Mints the voter token cookie on first visit.
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	code := auth.NormalizeCode(r.PathValue("code"))
	if !auth.ValidCode(code) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}

	poll, options, err := h.store.GetPollByCode(r.Context(), code)
	if errors.Is(err, store.ErrPollNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to query poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	resp := models.PollViewResponse{
		Poll:     poll,
		Options:  options,
		Snapshot: store.BuildSnapshot(poll.Code, options),
	}
	resp.Poll.CreatedAgo = humanize.Time(poll.CreatedAt)

	token := middleware.VoterToken(r)
	if token == "" {
		// First visit from this browser: mint the token the client
		// will re-send with its vote.
		middleware.SetVoterTokenCookie(w, auth.GenerateVoterToken())
	} else {
		optionID, voted, err := h.store.FindVote(r.Context(), poll.ID, token)
		if err != nil {
			slog.Error("failed to check existing vote", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		resp.HasVoted = voted
		resp.VotedOptionID = optionID
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// validatePollInput cleans and validates a creation request. Returns
// the cleaned question and options, or a non-empty rejection message.
func validatePollInput(req models.CreatePollRequest) (string, []string, string) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return "", nil, "question is required"
	}
	if len(question) > models.MaxQuestionLength {
		return "", nil, "question must be 500 characters or less"
	}

	options := make([]string, 0, len(req.Options))
	seen := make(map[string]bool)
	for _, opt := range req.Options {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			return "", nil, "options cannot be empty"
		}
		if len(opt) > models.MaxOptionLength {
			return "", nil, "each option must be 200 characters or less"
		}
		if seen[opt] {
			return "", nil, "options must be unique"
		}
		seen[opt] = true
		options = append(options, opt)
	}

	if len(options) < models.MinOptions {
		return "", nil, "at least 2 options are required"
	}
	if len(options) > models.MaxOptions {
		return "", nil, "maximum 10 options allowed"
	}

	return question, options, ""
}
