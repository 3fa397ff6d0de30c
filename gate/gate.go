// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package gate

import (
	"context"
	"fmt"

	"github.com/danielhkuo/pollroom/identity"
	"github.com/danielhkuo/pollroom/models"
	"github.com/danielhkuo/pollroom/ratelimit"
)

// RequestContext is the raw identity material of one vote attempt.
type RequestContext struct {
	SourceAddress string
	VoterToken    string
}

// Decision is the gate's discriminated outcome. When Admitted, Key and
// Poll carry forward so the coordinator does not re-resolve them.
type Decision struct {
	Admitted bool
	Reason   string // models.Reason* when rejected
	Key      identity.FairnessKey
	Poll     models.Poll
}

func admit(key identity.FairnessKey, poll models.Poll) Decision {
	return Decision{Admitted: true, Key: key, Poll: poll}
}

func reject(reason string) Decision {
	return Decision{Reason: reason}
}

// PollReader is the slice of the vote store the gate needs.
type PollReader interface {
	GetPollByCode(ctx context.Context, code string) (models.Poll, []models.Option, error)
	HasVoted(ctx context.Context, pollID string, key identity.FairnessKey) (bool, error)
}

// Gate composes identity resolution, rate limiting and the duplicate
// pre-check into one admit/reject decision. It performs no mutation.
type Gate struct {
	limiter ratelimit.Limiter
	polls   PollReader
}

func New(limiter ratelimit.Limiter, polls PollReader) *Gate {
	return &Gate{limiter: limiter, polls: polls}
}

// Evaluate decides whether a vote attempt is admissible.
//
// Ordering is deliberate: the rate limiter is process-cheap and checked
// before anything touches the store, so abusive load is shed first.
// Protocol errors (missing token, unknown poll) return as errors;
// fairness outcomes return as a rejected Decision.
func (g *Gate) Evaluate(ctx context.Context, pollCode, optionID string, reqCtx RequestContext) (Decision, error) {
	key, err := identity.Resolve(reqCtx.SourceAddress, reqCtx.VoterToken)
	if err != nil {
		return Decision{}, err
	}

	if !g.limiter.Admit(key.SourceAddress) {
		return reject(models.ReasonRateLimited), nil
	}

	poll, options, err := g.polls.GetPollByCode(ctx, pollCode)
	if err != nil {
		return Decision{}, err
	}

	// A stale page can offer an option from a previously seen poll.
	// The store re-checks this atomically; rejecting here just saves
	// the round trip.
	if !optionOf(options, optionID) {
		return reject(models.ReasonConflict), nil
	}

	voted, err := g.polls.HasVoted(ctx, poll.ID, key)
	if err != nil {
		return Decision{}, fmt.Errorf("duplicate pre-check failed: %w", err)
	}
	if voted {
		return reject(models.ReasonAlreadyVoted), nil
	}

	return admit(key, poll), nil
}

func optionOf(options []models.Option, optionID string) bool {
	for _, opt := range options {
		if opt.ID == optionID {
			return true
		}
	}
	return false
}
