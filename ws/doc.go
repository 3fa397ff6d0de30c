// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ws is the WebSocket transport for live result updates.

# Protocol

One socket per client at GET /ws. Clients send:

	{"type": "join_poll", "poll_code": "3FA2B91C"}
	{"type": "leave_poll", "poll_code": "3FA2B91C"}
	{"type": "request_results", "poll_code": "3FA2B91C"}

The server acks joins with {"type": "joined"}, answers result requests
with a vote_update to that connection only, and pushes vote_update to
every room member whenever a vote is applied:

	{"type": "vote_update", "poll_code": "...",
	 "options": [{"option_id": "...", "label": "...",
	              "vote_count": 3, "percentage": 60.0}],
	 "total_votes": 5}

Errors go only to the offending connection as {"type": "error"}.

# Keepalive

Pings every 25 seconds; a connection silent for 60 seconds is dropped.

# Missed Updates

Delivery is best-effort. A client that connects after a publish, or
misses one, sends request_results instead of expecting a replay.
*/
package ws
