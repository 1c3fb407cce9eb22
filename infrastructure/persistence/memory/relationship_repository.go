package memory

import (
	"context"
	"fmt"
	"sync"

	"familytree-backend/application/ports"
	"familytree-backend/domain/core/entities"
	"familytree-backend/domain/core/valueobjects"
	pkgerrors "familytree-backend/pkg/errors"
)

// InMemoryRelationshipRepository provides an in-memory implementation of
// RelationshipRepository for tests and local runs. It enforces the same
// uniqueness and pair atomicity rules as the DynamoDB store.
type InMemoryRelationshipRepository struct {
	mu      sync.RWMutex
	byID    map[string]*entities.Relationship
	triples map[string]string // (initiator, target, type) -> edge ID
}

// NewInMemoryRelationshipRepository creates a new in-memory edge repository
func NewInMemoryRelationshipRepository() *InMemoryRelationshipRepository {
	return &InMemoryRelationshipRepository{
		byID:    make(map[string]*entities.Relationship),
		triples: make(map[string]string),
	}
}

var _ ports.RelationshipRepository = (*InMemoryRelationshipRepository)(nil)

func tripleKey(initiatorID, targetID valueobjects.PersonID, relType valueobjects.RelationshipType) string {
	return fmt.Sprintf("%s|%s|%s", initiatorID.String(), targetID.String(), relType.String())
}

// CreatePair writes both halves atomically. A collision on either
// triple rejects the whole pair.
func (r *InMemoryRelationshipRepository) CreatePair(ctx context.Context, primary, reciprocal *entities.Relationship) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	primaryKey := tripleKey(primary.InitiatorID(), primary.TargetID(), primary.Type())
	reciprocalKey := tripleKey(reciprocal.InitiatorID(), reciprocal.TargetID(), reciprocal.Type())

	if _, exists := r.triples[primaryKey]; exists {
		return pkgerrors.NewDuplicateRelationshipError(
			primary.InitiatorID().String(),
			primary.TargetID().String(),
			primary.Type().String(),
		)
	}
	if _, exists := r.triples[reciprocalKey]; exists {
		return pkgerrors.NewDuplicateRelationshipError(
			reciprocal.InitiatorID().String(),
			reciprocal.TargetID().String(),
			reciprocal.Type().String(),
		)
	}

	r.byID[primary.ID().String()] = primary
	r.byID[reciprocal.ID().String()] = reciprocal
	r.triples[primaryKey] = primary.ID().String()
	r.triples[reciprocalKey] = reciprocal.ID().String()
	return nil
}

// DeletePair removes both halves atomically
func (r *InMemoryRelationshipRepository) DeletePair(ctx context.Context, primaryID, reciprocalID valueobjects.RelationshipID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	primary := r.byID[primaryID.String()]
	reciprocal := r.byID[reciprocalID.String()]
	if primary == nil || reciprocal == nil {
		return pkgerrors.ErrRelationshipNotFound
	}

	r.remove(primary)
	r.remove(reciprocal)
	return nil
}

// Delete removes a single half. Missing edges are a no-op.
func (r *InMemoryRelationshipRepository) Delete(ctx context.Context, id valueobjects.RelationshipID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if edge := r.byID[id.String()]; edge != nil {
		r.remove(edge)
	}
	return nil
}

func (r *InMemoryRelationshipRepository) remove(edge *entities.Relationship) {
	delete(r.byID, edge.ID().String())
	delete(r.triples, tripleKey(edge.InitiatorID(), edge.TargetID(), edge.Type()))
}

// GetByID retrieves an edge, nil when missing
func (r *InMemoryRelationshipRepository) GetByID(ctx context.Context, id valueobjects.RelationshipID) (*entities.Relationship, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.byID[id.String()], nil
}

// GetByInitiator retrieves all edges a person initiated
func (r *InMemoryRelationshipRepository) GetByInitiator(ctx context.Context, initiatorID valueobjects.PersonID) ([]*entities.Relationship, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var edges []*entities.Relationship
	for _, edge := range r.byID {
		if edge.InitiatorID().Equals(initiatorID) {
			edges = append(edges, edge)
		}
	}
	return edges, nil
}

// GetByTarget retrieves all edges pointing at a person
func (r *InMemoryRelationshipRepository) GetByTarget(ctx context.Context, targetID valueobjects.PersonID) ([]*entities.Relationship, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var edges []*entities.Relationship
	for _, edge := range r.byID {
		if edge.TargetID().Equals(targetID) {
			edges = append(edges, edge)
		}
	}
	return edges, nil
}

// FindReciprocal looks up the twin of an edge, nil when missing
func (r *InMemoryRelationshipRepository) FindReciprocal(ctx context.Context, of *entities.Relationship) (*entities.Relationship, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := tripleKey(of.TargetID(), of.InitiatorID(), of.Type().Reciprocal())
	id, ok := r.triples[key]
	if !ok {
		return nil, nil
	}
	return r.byID[id], nil
}

// Exists checks for an edge by its unique triple
func (r *InMemoryRelationshipRepository) Exists(ctx context.Context, initiatorID, targetID valueobjects.PersonID, relType valueobjects.RelationshipType) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.triples[tripleKey(initiatorID, targetID, relType)]
	return ok, nil
}
