package memory

import (
	"context"
	"sync"

	"familytree-backend/application/ports"
	"familytree-backend/domain/events"

	"go.uber.org/zap"
)

// InMemoryEventBus provides an in-process implementation of EventBus.
// Handlers run synchronously on publish; a handler error is logged and
// does not stop delivery to the remaining handlers.
type InMemoryEventBus struct {
	mu       sync.RWMutex
	handlers map[string][]ports.EventHandler
	logger   *zap.Logger

	published []events.DomainEvent
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		handlers: make(map[string][]ports.EventHandler),
		logger:   logger,
	}
}

var _ ports.EventBus = (*InMemoryEventBus)(nil)

// Publish delivers an event to all subscribed handlers
func (b *InMemoryEventBus) Publish(ctx context.Context, event events.DomainEvent) error {
	b.mu.Lock()
	b.published = append(b.published, event)
	handlers := append([]ports.EventHandler(nil), b.handlers[event.GetEventType()]...)
	b.mu.Unlock()

	for _, handler := range handlers {
		if !handler.CanHandle(event.GetEventType()) {
			continue
		}
		if err := handler.Handle(ctx, event); err != nil {
			b.logger.Error("Event handler failed",
				zap.String("eventType", event.GetEventType()),
				zap.Error(err),
			)
		}
	}
	return nil
}

// PublishBatch delivers multiple events
func (b *InMemoryEventBus) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	for _, event := range batch {
		if err := b.Publish(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// Subscribe registers a handler for an event type
func (b *InMemoryEventBus) Subscribe(eventType string, handler ports.EventHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
	return nil
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(eventType string, handler ports.EventHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	registered := b.handlers[eventType]
	for i, h := range registered {
		if h == handler {
			b.handlers[eventType] = append(registered[:i], registered[i+1:]...)
			break
		}
	}
	return nil
}

// Published returns every event published so far. Test helper.
func (b *InMemoryEventBus) Published() []events.DomainEvent {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return append([]events.DomainEvent(nil), b.published...)
}
