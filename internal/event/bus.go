// Package event implements the in-process publish/subscribe bus modules
// use to broadcast state changes.
package event

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/aldenmeer/gridline/pkg/module"
)

// Bus is an in-memory event bus. Subscribers are keyed by topic; wildcard
// subscribers receive every event.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	byTopic  map[string]map[int]module.EventHandler
	wildcard map[int]module.EventHandler
	logger   *zap.Logger
}

var _ module.EventBus = (*Bus)(nil)

// NewBus creates an empty Bus.
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{
		byTopic:  make(map[string]map[int]module.EventHandler),
		wildcard: make(map[int]module.EventHandler),
		logger:   logger,
	}
}

// Subscribe registers a handler for a topic. The returned function removes
// the subscription.
func (b *Bus) Subscribe(topic string, handler module.EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	if b.byTopic[topic] == nil {
		b.byTopic[topic] = make(map[int]module.EventHandler)
	}
	b.byTopic[topic][id] = handler

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.byTopic[topic], id)
	}
}

// SubscribeAll registers a handler for every topic. The returned function
// removes the subscription.
func (b *Bus) SubscribeAll(handler module.EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.wildcard[id] = handler

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.wildcard, id)
	}
}

// Publish delivers an event synchronously to all matching handlers.
// Publishing with no subscribers is not an error.
func (b *Bus) Publish(ctx context.Context, e module.Event) error {
	for _, h := range b.handlersFor(e.Topic) {
		b.invoke(ctx, h, e)
	}
	return nil
}

// PublishAsync delivers an event to all matching handlers, each on its own
// goroutine.
func (b *Bus) PublishAsync(ctx context.Context, e module.Event) {
	for _, h := range b.handlersFor(e.Topic) {
		go b.invoke(ctx, h, e)
	}
}

// handlersFor snapshots the matching handlers so delivery runs without the
// lock held.
func (b *Bus) handlersFor(topic string) []module.EventHandler {
	b.mu.RLock()
	defer b.mu.RUnlock()

	handlers := make([]module.EventHandler, 0, len(b.byTopic[topic])+len(b.wildcard))
	for _, h := range b.byTopic[topic] {
		handlers = append(handlers, h)
	}
	for _, h := range b.wildcard {
		handlers = append(handlers, h)
	}
	return handlers
}

// invoke runs a handler, recovering panics so one bad subscriber cannot
// take down the publisher.
func (b *Bus) invoke(ctx context.Context, h module.EventHandler, e module.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				zap.String("topic", e.Topic),
				zap.Any("panic", r))
		}
	}()
	h(ctx, e)
}
