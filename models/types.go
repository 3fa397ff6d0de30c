// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Vote submission statuses
const (
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
	StatusError    = "error"
)

// Rejection reasons surfaced to clients. These are stable wire values;
// the UI keys off them (disable the vote button vs. "please wait").
const (
	ReasonAlreadyVoted = "already_voted"
	ReasonRateLimited  = "rate_limited"
	ReasonConflict     = "conflict"
)

// Poll creation limits
const (
	MinOptions        = 2
	MaxOptions        = 10
	MaxQuestionLength = 500
	MaxOptionLength   = 200
)

// Request types

type CreatePollRequest struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type SubmitVoteRequest struct {
	OptionID string `json:"option_id"`
}

// Response types

type CreatePollResponse struct {
	Poll     Poll     `json:"poll"`
	Options  []Option `json:"options"`
	ShareURL string   `json:"share_url"`
}

type PollViewResponse struct {
	Poll          Poll           `json:"poll"`
	Options       []Option       `json:"options"`
	Snapshot      ResultSnapshot `json:"snapshot"`
	HasVoted      bool           `json:"has_voted"`
	VotedOptionID string         `json:"voted_option_id,omitempty"`
}

type VoteResponse struct {
	Status   string          `json:"status"`
	Reason   string          `json:"reason,omitempty"`
	Snapshot *ResultSnapshot `json:"snapshot,omitempty"`
}

// Domain types

type Poll struct {
	ID         string    `json:"id"`
	Code       string    `json:"code"`
	Question   string    `json:"question"`
	CreatedAt  time.Time `json:"created_at"`
	CreatedAgo string    `json:"created_ago,omitempty"`
}

type Option struct {
	ID        string `json:"id"`
	PollID    string `json:"poll_id"`
	Label     string `json:"label"`
	Position  int    `json:"position"`
	VoteCount int    `json:"vote_count"`
}

// Vote is the immutable fact record of a single cast vote. The fairness
// fields are never exposed in JSON.
type Vote struct {
	ID            string    `json:"id"`
	PollID        string    `json:"poll_id"`
	OptionID      string    `json:"option_id"`
	SourceAddress string    `json:"-"`
	VoterToken    string    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
}

// Result types

// OptionResult is one row of a live tally.
type OptionResult struct {
	OptionID   string  `json:"option_id"`
	Label      string  `json:"label"`
	VoteCount  int     `json:"vote_count"`
	Percentage float64 `json:"percentage"`
}

// ResultSnapshot is a point-in-time derived view of a poll's counts.
// It is never persisted; percentages are recomputed on every read.
// This struct is also the vote_update payload pushed to subscribers.
type ResultSnapshot struct {
	PollCode   string         `json:"poll_code"`
	Options    []OptionResult `json:"options"`
	TotalVotes int            `json:"total_votes"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
