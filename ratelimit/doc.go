// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ratelimit provides sliding-window admission control per source
address, independent of poll identity.

# Limiter Interface

Both implementations satisfy the same one-method contract:

	if !limiter.Admit(clientIP) {
		// reject with rate_limited
	}

# Implementations

  - SlidingWindow: process-local, mutex-guarded map of recent request
    timestamps. The default for single-instance deployments.
  - SharedWindow: the same window counted in the rate_request SQL
    table, for horizontally scaled deployments where every instance
    must see every request.

The implementation is selected at composition time (RATE_LIMIT_SHARED);
the fairness gate never knows which one it holds.

Default policy: 10 requests per 60-second window. The 11th request
from one address within the window is rejected; once the window
elapses, requests are admitted again.
*/
package ratelimit
