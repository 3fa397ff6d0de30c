// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package vote contains the coordinator: the central state machine that
takes one parsed vote submission to a terminal state.

	received -> gated -> applying -> applied | rejected | failed

# Flow

 1. FairnessGate evaluates admission (no mutation). Rejections are
    terminal, with no broadcast.
 2. VoteStore.ApplyVote runs the atomic counter increment + vote-fact
    insert. Storage conflicts become a rejected outcome with reason
    "conflict"; transient failures are retried up to 3 times with
    linear backoff before surfacing as a server error.
 3. On success a fresh ResultSnapshot is read and handed to the
    Broadcaster for fan-out to the poll's room.

For any two submissions racing on the same option, both reach a
terminal state and the final counter equals the number of applied
transitions - lost updates are impossible because the store's atomic
statement is the only writer.
*/
package vote
