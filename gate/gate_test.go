// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package gate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/pollroom/identity"
	"github.com/danielhkuo/pollroom/models"
	"github.com/danielhkuo/pollroom/store"
)

type fakeLimiter struct {
	admit bool
	calls []string
}

func (f *fakeLimiter) Admit(addr string) bool {
	f.calls = append(f.calls, addr)
	return f.admit
}

type fakePolls struct {
	poll    models.Poll
	options []models.Option
	voted   bool

	pollErr  error
	votedErr error

	getCalls   int
	votedCalls int
	votedKey   identity.FairnessKey
}

func (f *fakePolls) GetPollByCode(ctx context.Context, code string) (models.Poll, []models.Option, error) {
	f.getCalls++
	if f.pollErr != nil {
		return models.Poll{}, nil, f.pollErr
	}
	return f.poll, f.options, nil
}

func (f *fakePolls) HasVoted(ctx context.Context, pollID string, key identity.FairnessKey) (bool, error) {
	f.votedCalls++
	f.votedKey = key
	if f.votedErr != nil {
		return false, f.votedErr
	}
	return f.voted, nil
}

func fixture() (*fakeLimiter, *fakePolls) {
	limiter := &fakeLimiter{admit: true}
	polls := &fakePolls{
		poll: models.Poll{ID: "poll-1", Code: "3FA2B91C", Question: "Q"},
		options: []models.Option{
			{ID: "opt-a", PollID: "poll-1", Label: "A"},
			{ID: "opt-b", PollID: "poll-1", Label: "B"},
		},
	}
	return limiter, polls
}

var reqCtx = RequestContext{SourceAddress: "192.0.2.1:40000", VoterToken: "tok-1"}

func TestEvaluateAdmits(t *testing.T) {
	limiter, polls := fixture()
	g := New(limiter, polls)

	d, err := g.Evaluate(context.Background(), "3FA2B91C", "opt-a", reqCtx)
	require.NoError(t, err)
	require.True(t, d.Admitted)
	require.Empty(t, d.Reason)

	// The decision carries the resolved key and poll forward.
	require.Equal(t, "192.0.2.1", d.Key.SourceAddress)
	require.Equal(t, "tok-1", d.Key.VoterToken)
	require.Equal(t, "poll-1", d.Poll.ID)

	// The duplicate pre-check saw the normalized key.
	require.Equal(t, d.Key, polls.votedKey)
}

func TestEvaluateRateLimited(t *testing.T) {
	limiter, polls := fixture()
	limiter.admit = false
	g := New(limiter, polls)

	d, err := g.Evaluate(context.Background(), "3FA2B91C", "opt-a", reqCtx)
	require.NoError(t, err)
	require.False(t, d.Admitted)
	require.Equal(t, models.ReasonRateLimited, d.Reason)

	// Shedding happens before the store is touched.
	require.Equal(t, 0, polls.getCalls)
	require.Equal(t, 0, polls.votedCalls)
}

func TestEvaluateLimiterSeesHostOnly(t *testing.T) {
	limiter, polls := fixture()
	g := New(limiter, polls)

	_, err := g.Evaluate(context.Background(), "3FA2B91C", "opt-a", reqCtx)
	require.NoError(t, err)
	require.Equal(t, []string{"192.0.2.1"}, limiter.calls)
}

func TestEvaluateMissingToken(t *testing.T) {
	limiter, polls := fixture()
	g := New(limiter, polls)

	_, err := g.Evaluate(context.Background(), "3FA2B91C", "opt-a",
		RequestContext{SourceAddress: "192.0.2.1", VoterToken: ""})
	require.ErrorIs(t, err, identity.ErrMissingToken)

	// Identity failures do not consume rate-limit budget.
	require.Empty(t, limiter.calls)
}

func TestEvaluateUnknownPoll(t *testing.T) {
	limiter, polls := fixture()
	polls.pollErr = store.ErrPollNotFound
	g := New(limiter, polls)

	_, err := g.Evaluate(context.Background(), "DEADBEEF", "opt-a", reqCtx)
	require.ErrorIs(t, err, store.ErrPollNotFound)
}

func TestEvaluateUnknownOption(t *testing.T) {
	limiter, polls := fixture()
	g := New(limiter, polls)

	d, err := g.Evaluate(context.Background(), "3FA2B91C", "opt-stale", reqCtx)
	require.NoError(t, err)
	require.False(t, d.Admitted)
	require.Equal(t, models.ReasonConflict, d.Reason)

	// No point running the duplicate pre-check for a dead option.
	require.Equal(t, 0, polls.votedCalls)
}

func TestEvaluateAlreadyVoted(t *testing.T) {
	limiter, polls := fixture()
	polls.voted = true
	g := New(limiter, polls)

	d, err := g.Evaluate(context.Background(), "3FA2B91C", "opt-a", reqCtx)
	require.NoError(t, err)
	require.False(t, d.Admitted)
	require.Equal(t, models.ReasonAlreadyVoted, d.Reason)
}

func TestEvaluateDuplicateCheckError(t *testing.T) {
	limiter, polls := fixture()
	polls.votedErr = errors.New("connection reset")
	g := New(limiter, polls)

	_, err := g.Evaluate(context.Background(), "3FA2B91C", "opt-a", reqCtx)
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicate pre-check failed")
}
