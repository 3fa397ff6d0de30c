// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Pollroom API.

# Handler Types

  - PollHandler: poll creation and the poll view page data
  - VotingHandler: vote submission via the coordinator
  - ResultsHandler: snapshot reads (polling fallback)

Handlers are created via constructor functions with their dependencies
injected:

	pollHandler := handlers.NewPollHandler(st, limiter, cfg)
	votingHandler := handlers.NewVotingHandler(coordinator)

# Voting Flow

	GET  /polls/{code}       -> GetPoll (mints voter_token cookie)
	POST /polls/{code}/vote  -> SubmitVote
	GET  /polls/{code}/results -> GetResults

SubmitVote responds with one of three statuses:

	200 accepted  - snapshot attached
	409 rejected  - reason already_voted or conflict
	429 rejected  - reason rate_limited
	500 error     - transient failure, retry later

Rejections are specific enough to drive UI state without leaking
internals; raw storage errors never reach the client.
*/
package handlers
