// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package identity derives the per-voter fairness key.

A FairnessKey is the normalized (source address, voter token) pair the
store uses for duplicate detection. Resolve is pure - no state, no I/O:

	key, err := identity.Resolve(clientIP, token)

A missing token is an error (the HTTP layer mints tokens; a vote
arriving without one indicates a misconfigured caller).
*/
package identity
