package mq

import (
	"context"
	"encoding/json"
	"log"

	"cropshare/rdx"
)

const channel = "entity-events"

// Event describes a domain mutation other components may react to.
type Event struct {
	EntityType string `json:"entity_type"` // "crop", "request", "message", "pickup"
	EntityID   string `json:"entity_id"`
	Method     string `json:"method"` // "POST", "PUT", "DELETE"
	Title      string `json:"title,omitempty"`
}

// Emit publishes an entity event to redis. Failures are logged and
// swallowed; event delivery is best effort and never blocks a request.
func Emit(ctx context.Context, eventName string, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[Emit] marshal %s: %v", eventName, err)
		return
	}
	if err := rdx.Conn.Publish(ctx, channel, data).Err(); err != nil {
		log.Printf("[Emit] publish %s: %v", eventName, err)
	}
}

// StartWorker consumes entity events: crop mutations invalidate the redis
// caches and feed the autocomplete set. Runs until the subscription dies.
func StartWorker() {
	ctx := context.Background()
	sub := rdx.Conn.Subscribe(ctx, channel)
	ch := sub.Channel()

	log.Println("[Worker] listening for entity events")

	for msg := range ch {
		var ev Event
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			log.Printf("[Worker] bad event payload: %v", err)
			continue
		}

		if ev.EntityType != "crop" {
			continue
		}
		rdx.InvalidateCropCaches(ev.EntityID)
		if ev.Method != "DELETE" && ev.Title != "" {
			if err := rdx.AddCropToAutocomplete(ctx, ev.Title); err != nil {
				log.Printf("[Worker] autocomplete add: %v", err)
			}
		}
	}
}
