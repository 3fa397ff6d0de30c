// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Pollroom API server.

Pollroom is a real-time poll service: create a poll, share its short
code, and watch live tallies as anonymous voters cast one vote each.

# Starting the Server

	DATABASE_URL=postgres://... DATABASE_TYPE=postgres go run main.go

Or with flags:

	go run main.go -p 5000 -d "file:polls.db" -t sqlite

# Configuration

See package cliparse. Notable knobs: RATE_LIMIT_REQUESTS /
RATE_LIMIT_WINDOW for the per-address admission window, and
BROADCAST_DRIVER=postgres to fan vote updates out across instances
via LISTEN/NOTIFY.

# Architecture

The vote path is a pipeline with a single mutation point:

	request -> gate (identity + rate limit + duplicate pre-check)
	        -> vote coordinator (state machine, bounded retries)
	        -> store (atomic counter increment + vote fact, one tx)
	        -> broadcast (room fan-out)
	        -> ws (push to subscribers)

Duplicate voting is ultimately prevented by UNIQUE constraints on the
vote table, not by application checks; the storage engine is the only
serialization point.

Packages:

  - handlers, router, middleware: HTTP surface
  - ws: WebSocket live updates
  - gate, vote, store, broadcast, identity, ratelimit: the core
  - models, auth, db, cliparse: shared plumbing

See package documentation for each component.
*/
package main
