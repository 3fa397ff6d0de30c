// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package broadcast fans result snapshots out to the subscribers of a
poll's room.

# Hub

The in-process registry, sharded by poll code:

	hub := broadcast.NewHub()
	sub := hub.Subscribe(code)
	for snap := range sub.C {
		// push to the connection
	}
	hub.Unsubscribe(sub)

Delivery is best-effort and at-most-once per publish: there is no
message log and no replay. A subscriber that joins late, or falls
behind its channel buffer, requests a fresh snapshot through the read
path instead.

# PGBridge

For horizontally scaled deployments, PGBridge implements the same
Publisher interface over Postgres LISTEN/NOTIFY:

	bridge, err := broadcast.NewPGBridge(db, connInfo, hub)
	defer bridge.Close()

Publishes go through pg_notify on the poll_updates channel; every
instance's listener feeds its own local hub. Selected with
BROADCAST_DRIVER=postgres (requires the postgres database type).
*/
package broadcast
