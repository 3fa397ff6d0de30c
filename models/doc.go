// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines shared data types for the Pollroom API.

# Type Categories

  - Request types: CreatePollRequest, SubmitVoteRequest
  - Response types: CreatePollResponse, PollViewResponse, VoteResponse
  - Domain types: Poll, Option, Vote
  - Result types: ResultSnapshot, OptionResult
  - ErrorResponse: standard error payload

# Statuses and Reasons

A vote submission resolves to exactly one status:

	accepted  - vote applied, snapshot attached
	rejected  - fairness rejection, reason attached
	error     - infrastructure failure, caller should retry

Rejection reasons are the stable wire values already_voted,
rate_limited and conflict.

# JSON Conventions

All types use snake_case JSON tags. Vote fairness fields
(source_address, voter_token) are tagged "-" and never serialized.
*/
package models
