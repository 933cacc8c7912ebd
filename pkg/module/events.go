package module

import (
	"context"
	"time"
)

// Event is a message published on the shared bus.
type Event struct {
	Topic     string    `json:"topic"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// EventHandler processes a single event.
type EventHandler func(ctx context.Context, event Event)

// EventBus is the in-process publish/subscribe contract shared by modules.
type EventBus interface {
	// Publish delivers an event to all matching subscribers synchronously.
	Publish(ctx context.Context, event Event) error

	// PublishAsync delivers an event without waiting for subscribers.
	PublishAsync(ctx context.Context, event Event)

	// Subscribe registers a handler for one topic and returns an
	// unsubscribe function.
	Subscribe(topic string, handler EventHandler) func()

	// SubscribeAll registers a handler for every topic.
	SubscribeAll(handler EventHandler) func()
}
