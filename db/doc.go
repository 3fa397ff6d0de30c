// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema

Four tables:

  - poll: a question with a short shareable code
  - option: choices within a poll, each with a monotonic vote counter
  - vote: one immutable fact per cast vote
  - rate_request: backing rows for the shared rate-limiter variant

The vote table carries UNIQUE (poll_id, source_address) and
UNIQUE (poll_id, voter_token). Those constraints, not application
checks, are what finally prevent duplicate votes under concurrency.

# Usage

Call CreateSchema after connecting:

	if err := db.CreateSchema(dbConn); err != nil {
		// handle error
	}

Uses IF NOT EXISTS so it's safe to run on every startup. The DDL is
portable across the postgres and sqlite database types accepted by
the -t flag.
*/
package db
