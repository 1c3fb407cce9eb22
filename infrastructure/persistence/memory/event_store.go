package memory

import (
	"context"
	"encoding/json"
	"sync"

	"familytree-backend/application/ports"
	"familytree-backend/domain/events"
)

// InMemoryEventStore provides an in-memory implementation of EventStore
// for tests and local runs
type InMemoryEventStore struct {
	mu     sync.RWMutex
	stored []ports.StoredEvent
}

// NewInMemoryEventStore creates a new in-memory event store
func NewInMemoryEventStore() *InMemoryEventStore {
	return &InMemoryEventStore{}
}

var _ ports.EventStore = (*InMemoryEventStore)(nil)

// SaveEvents persists domain events
func (s *InMemoryEventStore) SaveEvents(ctx context.Context, batch []events.DomainEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, event := range batch {
		payload, err := json.Marshal(event)
		if err != nil {
			return err
		}
		s.stored = append(s.stored, ports.StoredEvent{
			AggregateID: event.GetAggregateID(),
			EventType:   event.GetEventType(),
			Payload:     payload,
			Timestamp:   event.GetTimestamp(),
			Version:     event.GetVersion(),
		})
	}
	return nil
}

// GetEvents retrieves events for an aggregate in append order
func (s *InMemoryEventStore) GetEvents(ctx context.Context, aggregateID string) ([]ports.StoredEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []ports.StoredEvent
	for _, event := range s.stored {
		if event.AggregateID == aggregateID {
			matched = append(matched, event)
		}
	}
	return matched, nil
}

// GetEventsByType retrieves events of a specific type, newest first
func (s *InMemoryEventStore) GetEventsByType(ctx context.Context, eventType string, limit int) ([]ports.StoredEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []ports.StoredEvent
	for i := len(s.stored) - 1; i >= 0; i-- {
		if s.stored[i].EventType == eventType {
			matched = append(matched, s.stored[i])
			if limit > 0 && len(matched) >= limit {
				break
			}
		}
	}
	return matched, nil
}
