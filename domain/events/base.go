package events

import (
	"time"

	"familytree-backend/domain/core/valueobjects"
)

// Source identifies this service on the event bus
const Source = "familytree.backend"

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// Account events

// AccountRegistered is raised when a new account is created
type AccountRegistered struct {
	BaseEvent
	AccountID   valueobjects.PersonID `json:"account_id"`
	Email       string                `json:"email"`
	DisplayName string                `json:"display_name"`
	DateOfBirth string                `json:"date_of_birth,omitempty"`
}

// NewAccountRegistered creates an AccountRegistered event
func NewAccountRegistered(accountID valueobjects.PersonID, email, displayName, dateOfBirth string, timestamp time.Time) AccountRegistered {
	return AccountRegistered{
		BaseEvent: BaseEvent{
			AggregateID: accountID.String(),
			EventType:   "account.registered",
			Timestamp:   timestamp,
			Version:     1,
		},
		AccountID:   accountID,
		Email:       email,
		DisplayName: displayName,
		DateOfBirth: dateOfBirth,
	}
}

// Relationship events

// RelationshipCreated is raised when a reciprocal edge pair is written
type RelationshipCreated struct {
	BaseEvent
	RelationshipID valueobjects.RelationshipID   `json:"relationship_id"`
	InitiatorID    valueobjects.PersonID         `json:"initiator_id"`
	TargetID       valueobjects.PersonID         `json:"target_id"`
	Type           valueobjects.RelationshipType `json:"type"`
}

// NewRelationshipCreated creates a RelationshipCreated event
func NewRelationshipCreated(id valueobjects.RelationshipID, initiatorID, targetID valueobjects.PersonID, relType valueobjects.RelationshipType, timestamp time.Time) RelationshipCreated {
	return RelationshipCreated{
		BaseEvent: BaseEvent{
			AggregateID: id.String(),
			EventType:   "relationship.created",
			Timestamp:   timestamp,
			Version:     1,
		},
		RelationshipID: id,
		InitiatorID:    initiatorID,
		TargetID:       targetID,
		Type:           relType,
	}
}

// RelationshipDeleted is raised when a reciprocal edge pair is removed
type RelationshipDeleted struct {
	BaseEvent
	RelationshipID valueobjects.RelationshipID   `json:"relationship_id"`
	InitiatorID    valueobjects.PersonID         `json:"initiator_id"`
	TargetID       valueobjects.PersonID         `json:"target_id"`
	Type           valueobjects.RelationshipType `json:"type"`
	ReciprocalGone bool                          `json:"reciprocal_gone"`
}

// NewRelationshipDeleted creates a RelationshipDeleted event. reciprocalGone
// records whether the twin edge was already missing when the delete ran.
func NewRelationshipDeleted(id valueobjects.RelationshipID, initiatorID, targetID valueobjects.PersonID, relType valueobjects.RelationshipType, reciprocalGone bool, timestamp time.Time) RelationshipDeleted {
	return RelationshipDeleted{
		BaseEvent: BaseEvent{
			AggregateID: id.String(),
			EventType:   "relationship.deleted",
			Timestamp:   timestamp,
			Version:     1,
		},
		RelationshipID: id,
		InitiatorID:    initiatorID,
		TargetID:       targetID,
		Type:           relType,
		ReciprocalGone: reciprocalGone,
	}
}

// Manual member events

// MemberAdded is raised when an account holder records a family member
// who has no account of their own
type MemberAdded struct {
	BaseEvent
	MemberID      valueobjects.PersonID         `json:"member_id"`
	AddedBy       valueobjects.PersonID         `json:"added_by"`
	DisplayName   string                        `json:"display_name"`
	RelationToAdder valueobjects.RelationshipType `json:"relation_to_adder"`
}

// NewMemberAdded creates a MemberAdded event
func NewMemberAdded(memberID, addedBy valueobjects.PersonID, displayName string, relation valueobjects.RelationshipType, timestamp time.Time) MemberAdded {
	return MemberAdded{
		BaseEvent: BaseEvent{
			AggregateID: memberID.String(),
			EventType:   "member.added",
			Timestamp:   timestamp,
			Version:     1,
		},
		MemberID:        memberID,
		AddedBy:         addedBy,
		DisplayName:     displayName,
		RelationToAdder: relation,
	}
}

// MemberLinked is raised when a manual member is tied to a registered account
type MemberLinked struct {
	BaseEvent
	MemberID        valueobjects.PersonID `json:"member_id"`
	LinkedAccountID valueobjects.PersonID `json:"linked_account_id"`
	LinkedBy        valueobjects.PersonID `json:"linked_by"`
}

// NewMemberLinked creates a MemberLinked event
func NewMemberLinked(memberID, linkedAccountID, linkedBy valueobjects.PersonID, timestamp time.Time) MemberLinked {
	return MemberLinked{
		BaseEvent: BaseEvent{
			AggregateID: memberID.String(),
			EventType:   "member.linked",
			Timestamp:   timestamp,
			Version:     1,
		},
		MemberID:        memberID,
		LinkedAccountID: linkedAccountID,
		LinkedBy:        linkedBy,
	}
}

// MemberUnlinked is raised when a link is rolled back by compensation
type MemberUnlinked struct {
	BaseEvent
	MemberID valueobjects.PersonID `json:"member_id"`
}

// NewMemberUnlinked creates a MemberUnlinked event
func NewMemberUnlinked(memberID valueobjects.PersonID, timestamp time.Time) MemberUnlinked {
	return MemberUnlinked{
		BaseEvent: BaseEvent{
			AggregateID: memberID.String(),
			EventType:   "member.unlinked",
			Timestamp:   timestamp,
			Version:     1,
		},
		MemberID: memberID,
	}
}

// Maintenance events

// EdgesReconciled is raised after a reciprocity repair pass
type EdgesReconciled struct {
	BaseEvent
	AccountID valueobjects.PersonID `json:"account_id"`
	Scanned   int                   `json:"scanned"`
	Removed   int                   `json:"removed"`
}

// NewEdgesReconciled creates an EdgesReconciled event
func NewEdgesReconciled(accountID valueobjects.PersonID, scanned, removed int, timestamp time.Time) EdgesReconciled {
	return EdgesReconciled{
		BaseEvent: BaseEvent{
			AggregateID: accountID.String(),
			EventType:   "edges.reconciled",
			Timestamp:   timestamp,
			Version:     1,
		},
		AccountID: accountID,
		Scanned:   scanned,
		Removed:   removed,
	}
}

// MemberMatchSuggested is raised when a newly registered account matches
// an unlinked manual member by name and date of birth. The adder decides
// whether to link; nothing is linked automatically.
type MemberMatchSuggested struct {
	BaseEvent
	MemberID  valueobjects.PersonID `json:"member_id"`
	AddedBy   valueobjects.PersonID `json:"added_by"`
	AccountID valueobjects.PersonID `json:"account_id"`
}

// NewMemberMatchSuggested creates a MemberMatchSuggested event
func NewMemberMatchSuggested(memberID, addedBy, accountID valueobjects.PersonID, timestamp time.Time) MemberMatchSuggested {
	return MemberMatchSuggested{
		BaseEvent: BaseEvent{
			AggregateID: memberID.String(),
			EventType:   "member.match_suggested",
			Timestamp:   timestamp,
			Version:     1,
		},
		MemberID:  memberID,
		AddedBy:   addedBy,
		AccountID: accountID,
	}
}
