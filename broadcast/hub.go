// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package broadcast

import (
	"hash/fnv"
	"sync"

	"github.com/danielhkuo/pollroom/models"
)

// subscriptionBuffer is the per-subscriber channel depth. Delivery is
// best-effort: a subscriber that can't keep up loses updates rather
// than blocking the publisher; it can always pull a fresh snapshot.
const subscriptionBuffer = 8

const shardCount = 16

// Publisher is the fan-out contract. Both the in-process Hub and the
// cross-process PGBridge satisfy it, so the composition root picks one
// and nothing else changes.
type Publisher interface {
	Subscribe(pollCode string) *Subscription
	Unsubscribe(sub *Subscription)
	Publish(pollCode string, snap models.ResultSnapshot)
}

// Subscription is one subscriber's membership in a poll's room.
// Snapshots arrive on C until Unsubscribe closes it.
type Subscription struct {
	PollCode string
	C        chan models.ResultSnapshot
}

// Hub is the in-process room registry: poll code -> subscriber set,
// sharded by code so join/leave/publish on different polls never
// contend on one lock.
type Hub struct {
	shards [shardCount]shard
}

type shard struct {
	mu    sync.RWMutex
	rooms map[string]map[*Subscription]struct{}
}

func NewHub() *Hub {
	h := &Hub{}
	for i := range h.shards {
		h.shards[i].rooms = make(map[string]map[*Subscription]struct{})
	}
	return h
}

func (h *Hub) shardFor(pollCode string) *shard {
	f := fnv.New32a()
	f.Write([]byte(pollCode))
	return &h.shards[f.Sum32()%shardCount]
}

func (h *Hub) Subscribe(pollCode string) *Subscription {
	sub := &Subscription{
		PollCode: pollCode,
		C:        make(chan models.ResultSnapshot, subscriptionBuffer),
	}

	sh := h.shardFor(pollCode)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	room := sh.rooms[pollCode]
	if room == nil {
		room = make(map[*Subscription]struct{})
		sh.rooms[pollCode] = room
	}
	room[sub] = struct{}{}

	return sub
}

// Unsubscribe removes the subscription and closes its channel. Safe to
// call once per subscription; the empty room is reclaimed.
func (h *Hub) Unsubscribe(sub *Subscription) {
	sh := h.shardFor(sub.PollCode)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	room, ok := sh.rooms[sub.PollCode]
	if !ok {
		return
	}
	if _, ok := room[sub]; !ok {
		return
	}

	delete(room, sub)
	if len(room) == 0 {
		delete(sh.rooms, sub.PollCode)
	}
	close(sub.C)
}

// Publish delivers the snapshot to every current subscriber of the
// poll's room, at most once each. Sends happen under the shard read
// lock - Unsubscribe closes channels under the write lock, so a send
// can never race a close.
func (h *Hub) Publish(pollCode string, snap models.ResultSnapshot) {
	sh := h.shardFor(pollCode)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	for sub := range sh.rooms[pollCode] {
		select {
		case sub.C <- snap:
		default:
			// Slow subscriber, drop this update.
		}
	}
}

// RoomSize reports the current subscriber count for a poll.
func (h *Hub) RoomSize(pollCode string) int {
	sh := h.shardFor(pollCode)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	return len(sh.rooms[pollCode])
}
