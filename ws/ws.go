// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ws

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/danielhkuo/pollroom/auth"
	"github.com/danielhkuo/pollroom/broadcast"
	"github.com/danielhkuo/pollroom/models"
	"github.com/danielhkuo/pollroom/store"
)

// Connection timing, matching the polling client's expectations:
// ping every 25s, give up after 60s of silence.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 25 * time.Second
	maxMessageSize = 512
	sendBuffer     = 16
)

// Client message types
const (
	msgJoinPoll       = "join_poll"
	msgLeavePoll      = "leave_poll"
	msgRequestResults = "request_results"
)

// Server message types
const (
	msgJoined     = "joined"
	msgVoteUpdate = "vote_update"
	msgError      = "error"
)

// clientMessage is anything a client sends over the socket.
type clientMessage struct {
	Type     string `json:"type"`
	PollCode string `json:"poll_code"`
}

// serverMessage is anything pushed to a client. vote_update carries
// the snapshot fields inline; error carries only a message and is
// delivered to the requesting connection, never broadcast.
type serverMessage struct {
	Type       string                `json:"type"`
	PollCode   string                `json:"poll_code,omitempty"`
	Options    []models.OptionResult `json:"options,omitempty"`
	TotalVotes int                   `json:"total_votes"`
	Message    string                `json:"message,omitempty"`
}

func updateMessage(snap models.ResultSnapshot) serverMessage {
	return serverMessage{
		Type:       msgVoteUpdate,
		PollCode:   snap.PollCode,
		Options:    snap.Options,
		TotalVotes: snap.TotalVotes,
	}
}

func errorMessage(text string) serverMessage {
	return serverMessage{Type: msgError, Message: text}
}

// SnapshotReader is the pull path a late joiner uses to catch up.
type SnapshotReader interface {
	GetSnapshot(ctx context.Context, code string) (models.ResultSnapshot, error)
}

// Handler upgrades HTTP connections and speaks the live-update
// protocol: join_poll / leave_poll / request_results in, vote_update
// and error out.
type Handler struct {
	broadcaster broadcast.Publisher
	snapshots   SnapshotReader
	upgrader    websocket.Upgrader
}

func NewHandler(b broadcast.Publisher, snapshots SnapshotReader) *Handler {
	return &Handler{
		broadcaster: b,
		snapshots:   snapshots,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Votes are anonymous and updates are public; no origin
			// restriction, same as the CORS policy.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeWS handles GET /ws
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Debug("websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		handler: h,
		conn:    conn,
		send:    make(chan serverMessage, sendBuffer),
		done:    make(chan struct{}),
		rooms:   make(map[string]*broadcast.Subscription),
	}

	slog.Debug("client connected", "remote", conn.RemoteAddr().String())

	go c.writePump()
	c.readPump()
}

// client is one connected subscriber. rooms maps poll code to the
// live subscription; membership changes only from the read pump, but
// teardown races the forwarders, hence the mutex.
type client struct {
	handler *Handler
	conn    *websocket.Conn
	send    chan serverMessage
	done    chan struct{}

	mu    sync.Mutex
	rooms map[string]*broadcast.Subscription
}

// trySend queues a message for the write pump, dropping it if the
// client is gone or its buffer is full.
func (c *client) trySend(msg serverMessage) {
	select {
	case <-c.done:
	case c.send <- msg:
	default:
	}
}

// forward relays snapshots from a room subscription until the
// subscription channel is closed by Unsubscribe.
func (c *client) forward(sub *broadcast.Subscription) {
	for snap := range sub.C {
		c.trySend(updateMessage(snap))
	}
}

func (c *client) readPump() {
	defer c.teardown()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg clientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("websocket read error", "error", err)
			}
			return
		}
		c.handleMessage(msg)
	}
}

func (c *client) handleMessage(msg clientMessage) {
	code := auth.NormalizeCode(msg.PollCode)

	switch msg.Type {
	case msgJoinPoll:
		if !auth.ValidCode(code) {
			c.trySend(errorMessage("invalid poll code"))
			return
		}
		c.join(code)

	case msgLeavePoll:
		c.leave(code)

	case msgRequestResults:
		if !auth.ValidCode(code) {
			c.trySend(errorMessage("invalid poll code"))
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		snap, err := c.handler.snapshots.GetSnapshot(ctx, code)
		if err != nil {
			if errors.Is(err, store.ErrPollNotFound) {
				c.trySend(errorMessage("poll not found"))
			} else {
				slog.Error("failed to read snapshot for socket", "poll_code", code, "error", err)
				c.trySend(errorMessage("failed to get results"))
			}
			return
		}
		c.trySend(updateMessage(snap))

	default:
		c.trySend(errorMessage("unknown message type"))
	}
}

func (c *client) join(code string) {
	c.mu.Lock()
	if _, ok := c.rooms[code]; ok {
		c.mu.Unlock()
		return
	}
	sub := c.handler.broadcaster.Subscribe(code)
	c.rooms[code] = sub
	c.mu.Unlock()

	go c.forward(sub)

	slog.Debug("client joined room", "poll_code", code)
	c.trySend(serverMessage{Type: msgJoined, PollCode: code})
}

func (c *client) leave(code string) {
	c.mu.Lock()
	sub, ok := c.rooms[code]
	if ok {
		delete(c.rooms, code)
	}
	c.mu.Unlock()

	if ok {
		c.handler.broadcaster.Unsubscribe(sub)
		slog.Debug("client left room", "poll_code", code)
	}
}

// teardown leaves every room and stops the write pump. Runs exactly
// once, when the read pump returns.
func (c *client) teardown() {
	c.mu.Lock()
	subs := make([]*broadcast.Subscription, 0, len(c.rooms))
	for code, sub := range c.rooms {
		subs = append(subs, sub)
		delete(c.rooms, code)
	}
	c.mu.Unlock()

	for _, sub := range subs {
		c.handler.broadcaster.Unsubscribe(sub)
	}

	close(c.done)
	c.conn.Close()
	slog.Debug("client disconnected", "remote", c.conn.RemoteAddr().String())
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
