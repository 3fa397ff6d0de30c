// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides identifier and token generation.

# Poll Codes

Short shareable codes, 8 uppercase hex characters derived from a UUID:

	code := auth.GeneratePollCode() // e.g. "3FA2B91C"

Codes are validated with auth.ValidCode before any database lookup,
and normalized with auth.NormalizeCode (case-insensitive input).

# Voter Tokens

Opaque UUID tokens identifying a browser across vote attempts:

	token := auth.GenerateVoterToken()

The server mints one when a client first views a poll and stores it
in a cookie; the client re-sends it with every vote. Tokens carry no
authorization - they are a fairness heuristic, not an identity.

# Random IDs

GenerateID produces crypto/rand hex IDs for internal rows (polls,
options, votes).
*/
package auth
