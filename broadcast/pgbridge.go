// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package broadcast

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/danielhkuo/pollroom/models"
)

// NotifyChannel is the Postgres NOTIFY channel shared by all instances.
const NotifyChannel = "poll_updates"

const (
	listenMinReconnect = time.Second
	listenMaxReconnect = 30 * time.Second
)

// envelope is the NOTIFY payload. The snapshot already carries its
// poll code, so the envelope is just a versioning point for the wire.
type envelope struct {
	PollCode string                `json:"poll_code"`
	Snapshot models.ResultSnapshot `json:"snapshot"`
}

func encodeEnvelope(pollCode string, snap models.ResultSnapshot) ([]byte, error) {
	return json.Marshal(envelope{PollCode: pollCode, Snapshot: snap})
}

func decodeEnvelope(payload string) (envelope, error) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return envelope{}, fmt.Errorf("malformed broadcast payload: %w", err)
	}
	return env, nil
}

// PGBridge relays publishes through Postgres LISTEN/NOTIFY so that a
// vote applied on one instance reaches subscribers connected to
// another. Local delivery also flows through the notification (every
// listening session receives it, including this one), keeping ordering
// identical on all instances.
type PGBridge struct {
	local    *Hub
	db       *sql.DB
	listener *pq.Listener
	done     chan struct{}
}

// NewPGBridge starts listening on the shared channel. connInfo is the
// same connection string handed to sql.Open.
func NewPGBridge(db *sql.DB, connInfo string, local *Hub) (*PGBridge, error) {
	listener := pq.NewListener(connInfo, listenMinReconnect, listenMaxReconnect,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				slog.Warn("broadcast listener event", "event", ev, "error", err)
			}
		})

	if err := listener.Listen(NotifyChannel); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", NotifyChannel, err)
	}

	b := &PGBridge{
		local:    local,
		db:       db,
		listener: listener,
		done:     make(chan struct{}),
	}
	go b.run()

	return b, nil
}

func (b *PGBridge) Subscribe(pollCode string) *Subscription {
	return b.local.Subscribe(pollCode)
}

func (b *PGBridge) Unsubscribe(sub *Subscription) {
	b.local.Unsubscribe(sub)
}

// Publish sends the snapshot through pg_notify. If the notify fails,
// delivery degrades to local-only so this instance's subscribers still
// see the update.
func (b *PGBridge) Publish(pollCode string, snap models.ResultSnapshot) {
	payload, err := encodeEnvelope(pollCode, snap)
	if err != nil {
		slog.Error("failed to encode broadcast payload", "error", err)
		return
	}

	_, err = b.db.Exec(`SELECT pg_notify($1, $2)`, NotifyChannel, string(payload))
	if err != nil {
		slog.Warn("pg_notify failed, delivering locally only",
			"poll_code", pollCode, "error", err)
		b.local.Publish(pollCode, snap)
	}
}

func (b *PGBridge) run() {
	for {
		select {
		case n, ok := <-b.listener.Notify:
			if !ok {
				return
			}
			if n == nil {
				// Reconnect marker; subscribers missed nothing they
				// can't recover via the pull path.
				continue
			}
			env, err := decodeEnvelope(n.Extra)
			if err != nil {
				slog.Warn("dropping broadcast notification", "error", err)
				continue
			}
			b.local.Publish(env.PollCode, env.Snapshot)
		case <-b.done:
			return
		}
	}
}

// Close stops the relay and the underlying listener connection.
func (b *PGBridge) Close() error {
	close(b.done)
	return b.listener.Close()
}
