// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store owns poll, option and vote persistent state.

# Operations

	st := store.New(db)

	poll, options, err := st.GetPollByCode(ctx, code)
	voted, err := st.HasVoted(ctx, pollID, key)
	newCount, err := st.ApplyVote(ctx, pollID, optionID, key)
	snap, err := st.GetSnapshot(ctx, code)

# Concurrency Contract

ApplyVote is the single serialization point of the system. The counter
bump is one atomic UPDATE statement inside a transaction, so concurrent
applies to the same option are linearizable without any application
mutex - correctness is delegated to the storage engine.

Duplicate votes are finally rejected by the UNIQUE constraints on
(poll_id, source_address) and (poll_id, voter_token). HasVoted is only
a fast-path optimization for friendlier error messages; it is never
trusted alone.

# Error Taxonomy

Expected conditions come back as sentinels - ErrPollNotFound,
ErrStaleOption, ErrDuplicateVote - and are matched with errors.Is.
Everything else is a transient storage failure the coordinator retries.

# Dialects

Queries use $1 placeholders and plain SQL accepted by both lib/pq and
modernc.org/sqlite, matching the -t database type flag.
*/
package store
