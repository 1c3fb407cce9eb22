package entities

import (
	"time"

	"familytree-backend/domain/core/valueobjects"
	pkgerrors "familytree-backend/pkg/errors"
)

// Relationship is one directed half of a reciprocal edge pair between
// two registered accounts. The type reads "initiator is type of target":
// a PARENT edge means the initiator is the target's parent. The store
// must never hold a half without its twin.
type Relationship struct {
	id          valueobjects.RelationshipID
	initiatorID valueobjects.PersonID
	targetID    valueobjects.PersonID
	relType     valueobjects.RelationshipType
	createdAt   time.Time
}

// NewRelationship creates one half of an edge pair
func NewRelationship(
	initiatorID, targetID valueobjects.PersonID,
	relType valueobjects.RelationshipType,
) (*Relationship, error) {
	if initiatorID.IsEmpty() || targetID.IsEmpty() {
		return nil, pkgerrors.NewValidationError("initiator and target IDs are required")
	}
	if initiatorID.Equals(targetID) {
		return nil, pkgerrors.ErrSelfRelationship
	}
	if !relType.IsValid() {
		return nil, pkgerrors.NewUnsupportedTypeError(relType.String())
	}

	return &Relationship{
		id:          valueobjects.NewRelationshipID(),
		initiatorID: initiatorID,
		targetID:    targetID,
		relType:     relType,
		createdAt:   time.Now(),
	}, nil
}

// NewRelationshipPair creates both halves of a reciprocal pair in one
// step. The twin runs target-to-initiator with the reciprocal type. Both
// halves must be persisted in the same transaction.
func NewRelationshipPair(
	initiatorID, targetID valueobjects.PersonID,
	relType valueobjects.RelationshipType,
) (*Relationship, *Relationship, error) {
	primary, err := NewRelationship(initiatorID, targetID, relType)
	if err != nil {
		return nil, nil, err
	}

	reciprocal, err := NewRelationship(targetID, initiatorID, relType.Reciprocal())
	if err != nil {
		return nil, nil, err
	}

	return primary, reciprocal, nil
}

// ReconstructRelationship rebuilds an edge from persistence without validation
func ReconstructRelationship(
	id valueobjects.RelationshipID,
	initiatorID, targetID valueobjects.PersonID,
	relType valueobjects.RelationshipType,
	createdAt time.Time,
) *Relationship {
	return &Relationship{
		id:          id,
		initiatorID: initiatorID,
		targetID:    targetID,
		relType:     relType,
		createdAt:   createdAt,
	}
}

// ID returns the relationship ID
func (r *Relationship) ID() valueobjects.RelationshipID { return r.id }

// InitiatorID returns the person the edge starts from
func (r *Relationship) InitiatorID() valueobjects.PersonID { return r.initiatorID }

// TargetID returns the person the edge points at
func (r *Relationship) TargetID() valueobjects.PersonID { return r.targetID }

// Type returns the relationship type
func (r *Relationship) Type() valueobjects.RelationshipType { return r.relType }

// CreatedAt returns the creation timestamp
func (r *Relationship) CreatedAt() time.Time { return r.createdAt }

// CanBeDeletedBy reports whether caller may delete this edge. Only the
// initiator may; the check runs before any write.
func (r *Relationship) CanBeDeletedBy(caller valueobjects.PersonID) bool {
	return caller.Equals(r.initiatorID)
}

// IsReciprocalOf reports whether other is this edge's twin
func (r *Relationship) IsReciprocalOf(other *Relationship) bool {
	return r.initiatorID.Equals(other.targetID) &&
		r.targetID.Equals(other.initiatorID) &&
		r.relType == other.relType.Reciprocal()
}
