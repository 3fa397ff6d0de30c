// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package gate implements the fairness gate: the pure decision step in
front of every vote.

	g := gate.New(limiter, st)
	d, err := g.Evaluate(ctx, code, optionID, gate.RequestContext{
		SourceAddress: clientIP,
		VoterToken:    token,
	})

Check order: resolve fairness key, rate limit, poll/option lookup,
duplicate pre-check. The gate never mutates anything; an admitted
Decision carries the resolved key forward to the coordinator.
*/
package gate
