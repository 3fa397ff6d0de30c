// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package vote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/pollroom/gate"
	"github.com/danielhkuo/pollroom/identity"
	"github.com/danielhkuo/pollroom/models"
	"github.com/danielhkuo/pollroom/store"
)

// Retry policy for transient storage failures during apply.
const (
	applyAttempts = 3
	applyBackoff  = 50 * time.Millisecond
)

// state tracks one submission attempt through its lifecycle.
type state int

const (
	stateReceived state = iota
	stateGated
	stateApplying
	stateApplied
	stateRejected
	stateFailed
)

func (s state) String() string {
	switch s {
	case stateReceived:
		return "received"
	case stateGated:
		return "gated"
	case stateApplying:
		return "applying"
	case stateApplied:
		return "applied"
	case stateRejected:
		return "rejected"
	case stateFailed:
		return "failed"
	}
	return "unknown"
}

// Request is one parsed vote submission.
type Request struct {
	PollCode      string
	OptionID      string
	SourceAddress string
	VoterToken    string
}

// Outcome is the terminal result of a submission. Exactly one of the
// three statuses is set; Snapshot is attached only when accepted.
type Outcome struct {
	Status   string
	Reason   string
	Snapshot *models.ResultSnapshot
}

// Gater is the fairness-gate contract the coordinator depends on.
type Gater interface {
	Evaluate(ctx context.Context, pollCode, optionID string, reqCtx gate.RequestContext) (gate.Decision, error)
}

// Applier is the slice of the vote store the coordinator mutates through.
type Applier interface {
	ApplyVote(ctx context.Context, pollID, optionID string, key identity.FairnessKey) (int, error)
	GetSnapshot(ctx context.Context, code string) (models.ResultSnapshot, error)
}

// Publisher fans a fresh snapshot out to a poll's subscribers.
type Publisher interface {
	Publish(pollCode string, snap models.ResultSnapshot)
}

// Coordinator orchestrates gate check, atomic apply, snapshot and
// broadcast for each vote submission.
type Coordinator struct {
	gate  Gater
	store Applier
	pub   Publisher

	attempts int
	backoff  time.Duration
}

func New(g Gater, st Applier, pub Publisher) *Coordinator {
	return &Coordinator{
		gate:     g,
		store:    st,
		pub:      pub,
		attempts: applyAttempts,
		backoff:  applyBackoff,
	}
}

// Submit drives a vote attempt to a terminal state:
//
//	received -> gated -> applying -> applied | rejected | failed
//
// Fairness rejections and conflicts come back as a rejected Outcome
// with a nil error. Protocol errors (missing token, unknown poll)
// return the underlying error for the transport to map. A non-nil
// error with StatusError means the bounded retries were exhausted.
//
// Cancellation is honored only before the apply begins; once the
// atomic apply starts it runs to completion.
func (c *Coordinator) Submit(ctx context.Context, req Request) (Outcome, error) {
	st := stateReceived
	slog.Debug("vote received",
		"poll_code", req.PollCode,
		"option_id", req.OptionID,
		"state", st.String(),
	)

	if err := ctx.Err(); err != nil {
		return Outcome{Status: models.StatusError}, err
	}

	decision, err := c.gate.Evaluate(ctx, req.PollCode, req.OptionID, gate.RequestContext{
		SourceAddress: req.SourceAddress,
		VoterToken:    req.VoterToken,
	})
	if err != nil {
		return Outcome{Status: models.StatusError}, err
	}
	st = stateGated

	if !decision.Admitted {
		st = stateRejected
		slog.Debug("vote rejected at gate",
			"poll_code", req.PollCode,
			"reason", decision.Reason,
			"state", st.String(),
		)
		return Outcome{Status: models.StatusRejected, Reason: decision.Reason}, nil
	}

	// Last cancellation point before the apply.
	if err := ctx.Err(); err != nil {
		return Outcome{Status: models.StatusError}, err
	}
	st = stateApplying
	slog.Debug("applying vote", "poll_code", req.PollCode, "state", st.String())

	newCount, outcome, err := c.apply(ctx, decision, req)
	if outcome != nil {
		return *outcome, err
	}
	st = stateApplied

	snap, err := c.store.GetSnapshot(ctx, req.PollCode)
	if err != nil {
		// The vote landed; a failed snapshot read must not turn an
		// applied vote into an error. Skip the broadcast and let the
		// caller pull results.
		slog.Warn("snapshot read failed after apply",
			"poll_code", req.PollCode, "error", err)
		return Outcome{Status: models.StatusAccepted}, nil
	}

	c.pub.Publish(req.PollCode, snap)

	slog.Info("vote applied",
		"poll_code", req.PollCode,
		"option_id", req.OptionID,
		"new_count", newCount,
		"total_votes", snap.TotalVotes,
		"state", st.String(),
	)

	return Outcome{Status: models.StatusAccepted, Snapshot: &snap}, nil
}

// apply runs the atomic store operation with bounded retries. A non-nil
// Outcome pointer means a terminal result was reached without applying.
func (c *Coordinator) apply(ctx context.Context, decision gate.Decision, req Request) (int, *Outcome, error) {
	var lastErr error

	for attempt := 1; attempt <= c.attempts; attempt++ {
		newCount, err := c.store.ApplyVote(ctx, decision.Poll.ID, req.OptionID, decision.Key)
		if err == nil {
			return newCount, nil, nil
		}

		// A duplicate that slipped through the gate's pre-check, or a
		// stale option: expected under concurrency, never retried.
		if errors.Is(err, store.ErrDuplicateVote) || errors.Is(err, store.ErrStaleOption) {
			slog.Debug("vote lost storage race",
				"poll_code", req.PollCode, "error", err)
			return 0, &Outcome{Status: models.StatusRejected, Reason: models.ReasonConflict}, nil
		}

		lastErr = err
		slog.Warn("transient apply failure",
			"poll_code", req.PollCode,
			"attempt", attempt,
			"error", err,
		)

		if attempt < c.attempts {
			time.Sleep(time.Duration(attempt) * c.backoff)
		}
	}

	// Surfaced as a server error, never as a fairness rejection: the
	// voter should retry, not be told they already voted.
	return 0, &Outcome{Status: models.StatusError},
		fmt.Errorf("vote apply failed after %d attempts: %w", c.attempts, lastErr)
}
