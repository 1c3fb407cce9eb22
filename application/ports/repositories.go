package ports

import (
	"context"
	"time"

	"familytree-backend/domain/core/entities"
	"familytree-backend/domain/core/valueobjects"
	"familytree-backend/domain/events"
)

// AccountRepository defines the interface for account persistence
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type AccountRepository interface {
	// Save persists an account (create or update)
	Save(ctx context.Context, account *entities.Account) error

	// GetByID retrieves an account by its ID
	GetByID(ctx context.Context, id valueobjects.PersonID) (*entities.Account, error)

	// GetByEmail retrieves an account by its email
	GetByEmail(ctx context.Context, email string) (*entities.Account, error)

	// Exists checks whether an account exists without loading it
	Exists(ctx context.Context, id valueobjects.PersonID) (bool, error)

	// SearchByName finds accounts whose display name matches a prefix
	SearchByName(ctx context.Context, name string, limit int) ([]*entities.Account, error)
}

// ManualMemberRepository defines the interface for manual member persistence
type ManualMemberRepository interface {
	// Save persists a member (create or update)
	Save(ctx context.Context, member *entities.ManualMember) error

	// GetByID retrieves a member by its ID
	GetByID(ctx context.Context, id valueobjects.PersonID) (*entities.ManualMember, error)

	// GetByAdder retrieves all members recorded by an account
	GetByAdder(ctx context.Context, adderID valueobjects.PersonID) ([]*entities.ManualMember, error)

	// FindMatches returns unlinked members whose name (and date of birth,
	// when given) match a newly registered account
	FindMatches(ctx context.Context, name string, dateOfBirth *time.Time) ([]*entities.ManualMember, error)

	// Delete removes a member
	Delete(ctx context.Context, id valueobjects.PersonID) error
}

// RelationshipRepository defines the interface for relationship edge
// persistence. Pair operations are atomic: either both halves land or
// neither does.
type RelationshipRepository interface {
	// CreatePair writes an edge and its reciprocal twin in one
	// transaction. A uniqueness collision on either half aborts both and
	// surfaces as a duplicate-relationship error.
	CreatePair(ctx context.Context, primary, reciprocal *entities.Relationship) error

	// DeletePair removes both halves in one transaction
	DeletePair(ctx context.Context, primaryID, reciprocalID valueobjects.RelationshipID) error

	// Delete removes a single half. Used when the reciprocal has already
	// drifted away, and by reconciliation.
	Delete(ctx context.Context, id valueobjects.RelationshipID) error

	// GetByID retrieves an edge by its ID
	GetByID(ctx context.Context, id valueobjects.RelationshipID) (*entities.Relationship, error)

	// GetByInitiator retrieves all edges a person initiated
	GetByInitiator(ctx context.Context, initiatorID valueobjects.PersonID) ([]*entities.Relationship, error)

	// GetByTarget retrieves all edges pointing at a person
	GetByTarget(ctx context.Context, targetID valueobjects.PersonID) ([]*entities.Relationship, error)

	// FindReciprocal looks up the twin of an edge by (target, initiator,
	// reciprocal type). Returns nil without error when the twin is
	// missing; callers tolerate drift.
	FindReciprocal(ctx context.Context, of *entities.Relationship) (*entities.Relationship, error)

	// Exists checks for an edge by its unique (initiator, target, type) triple
	Exists(ctx context.Context, initiatorID, targetID valueobjects.PersonID, relType valueobjects.RelationshipType) (bool, error)
}

// StoredEvent is a persisted domain event record
type StoredEvent struct {
	AggregateID string
	EventType   string
	Payload     []byte
	Timestamp   time.Time
	Version     int
}

// EventStore defines the interface for event persistence. Events are
// appended before publication so a failed publish can be replayed.
type EventStore interface {
	// SaveEvents persists domain events
	SaveEvents(ctx context.Context, batch []events.DomainEvent) error

	// GetEvents retrieves events for an aggregate
	GetEvents(ctx context.Context, aggregateID string) ([]StoredEvent, error)

	// GetEventsByType retrieves events of a specific type
	GetEventsByType(ctx context.Context, eventType string, limit int) ([]StoredEvent, error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, batch []events.DomainEvent) error
}

// EventBus defines the interface for publishing domain events
type EventBus interface {
	EventPublisher

	// Subscribe registers a handler for an event type
	Subscribe(eventType string, handler EventHandler) error

	// Unsubscribe removes a handler
	Unsubscribe(eventType string, handler EventHandler) error
}

// EventHandler defines the interface for handling domain events
type EventHandler interface {
	// Handle processes an event
	Handle(ctx context.Context, event events.DomainEvent) error

	// CanHandle checks if this handler can process the event
	CanHandle(eventType string) bool
}

// Cache defines the interface for caching
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set stores a value in cache with TTL in seconds
	Set(ctx context.Context, key string, value interface{}, ttl int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// Clear removes all values from cache
	Clear(ctx context.Context) error
}

// TreeNotifier pushes tree-changed notices to the connected clients of
// the accounts touched by a mutation
type TreeNotifier interface {
	NotifyTreeChanged(ctx context.Context, accountIDs []valueobjects.PersonID) error
}
