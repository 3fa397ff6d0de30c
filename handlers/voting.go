// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/pollroom/auth"
	"github.com/danielhkuo/pollroom/identity"
	"github.com/danielhkuo/pollroom/middleware"
	"github.com/danielhkuo/pollroom/models"
	"github.com/danielhkuo/pollroom/store"
	"github.com/danielhkuo/pollroom/vote"
)

type VotingHandler struct {
	coordinator *vote.Coordinator
}

func NewVotingHandler(c *vote.Coordinator) *VotingHandler {
	return &VotingHandler{coordinator: c}
}

// SubmitVote handles POST /polls/{code}/vote
func (h *VotingHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	code := auth.NormalizeCode(r.PathValue("code"))
	if !auth.ValidCode(code) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}

	var req models.SubmitVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.OptionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Please select an option")
		return
	}

	outcome, err := h.coordinator.Submit(r.Context(), vote.Request{
		PollCode:      code,
		OptionID:      req.OptionID,
		SourceAddress: middleware.GetClientIP(r),
		VoterToken:    middleware.VoterToken(r),
	})

	if err != nil {
		switch {
		case errors.Is(err, identity.ErrMissingToken):
			// The client never loaded the poll page (which mints the
			// token); voting without one would collide all anonymous
			// voters onto a single fairness key.
			middleware.ErrorResponse(w, http.StatusBadRequest, "Voting requires a voter token. Reload the poll and try again.")
		case errors.Is(err, store.ErrPollNotFound):
			middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		default:
			// Transient storage failure after retries, or an
			// unexpected error. Never leaked to the client.
			slog.Error("vote submission failed", "poll_code", code, "error", err)
			middleware.JSONResponse(w, http.StatusInternalServerError, models.VoteResponse{
				Status: models.StatusError,
			})
		}
		return
	}

	switch outcome.Status {
	case models.StatusAccepted:
		middleware.JSONResponse(w, http.StatusOK, models.VoteResponse{
			Status:   models.StatusAccepted,
			Snapshot: outcome.Snapshot,
		})
	case models.StatusRejected:
		middleware.JSONResponse(w, rejectionStatusCode(outcome.Reason), models.VoteResponse{
			Status: models.StatusRejected,
			Reason: outcome.Reason,
		})
	default:
		slog.Error("unexpected vote outcome", "poll_code", code, "status", outcome.Status)
		middleware.JSONResponse(w, http.StatusInternalServerError, models.VoteResponse{
			Status: models.StatusError,
		})
	}
}

func rejectionStatusCode(reason string) int {
	if reason == models.ReasonRateLimited {
		return http.StatusTooManyRequests
	}
	return http.StatusConflict
}
