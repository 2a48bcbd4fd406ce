package sse

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
)

// Channel is the redis pub/sub channel carrying notification events between
// instances, so a dashboard connected to one instance still sees events
// produced on another.
const Channel = "erp:notifications"

// Envelope is the wire form published to redis.
type Envelope struct {
	UserID     string `json:"user_id,omitempty"`
	Department string `json:"department,omitempty"`
	Event      Event  `json:"event"`
}

// Bridge fans redis-published envelopes out to the local hub.
type Bridge struct {
	rdb *redis.Client
	hub *Hub
}

func NewBridge(rdb *redis.Client, hub *Hub) *Bridge {
	return &Bridge{rdb: rdb, hub: hub}
}

// Publish pushes an envelope to redis. Best-effort: on failure the event is
// delivered locally only.
func (b *Bridge) Publish(ctx context.Context, env Envelope) {
	payload, err := json.Marshal(env)
	if err != nil {
		log.Printf("[SSE] marshal envelope failed: %v", err)
		return
	}
	if err := b.rdb.Publish(ctx, Channel, payload).Err(); err != nil {
		log.Printf("[SSE] redis publish failed, delivering locally only: %v", err)
		b.deliver(env)
	}
}

// Run subscribes to the channel and forwards envelopes to the hub until ctx
// is cancelled. Intended to run in its own goroutine from main.
func (b *Bridge) Run(ctx context.Context) {
	sub := b.rdb.Subscribe(ctx, Channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				log.Printf("[SSE] bad envelope on %s: %v", Channel, err)
				continue
			}
			b.deliver(env)
		}
	}
}

func (b *Bridge) deliver(env Envelope) {
	switch {
	case env.UserID != "":
		b.hub.SendToUser(env.UserID, env.Event)
	case env.Department != "":
		b.hub.SendToDepartment(env.Department, env.Event)
	default:
		b.hub.Broadcast(env.Event)
	}
}
