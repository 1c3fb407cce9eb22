package entities

import (
	"time"

	"familytree-backend/domain/core/valueobjects"
	"familytree-backend/domain/events"
	pkgerrors "familytree-backend/pkg/errors"
)

// ManualMember is a person recorded by an account holder who has no
// account of their own. Manual members never own edges; the recorded
// relationship always runs between the adder and the member.
type ManualMember struct {
	id              valueobjects.PersonID
	addedBy         valueobjects.PersonID
	details         valueobjects.PersonDetails
	notes           string
	relationToAdder valueobjects.RelationshipType
	linkedAccountID *valueobjects.PersonID
	createdAt       time.Time
	updatedAt       time.Time

	uncommittedEvents []events.DomainEvent
}

// NewManualMember records a new manual family member
func NewManualMember(
	addedBy valueobjects.PersonID,
	details valueobjects.PersonDetails,
	relationToAdder valueobjects.RelationshipType,
	notes string,
) (*ManualMember, error) {
	if addedBy.IsEmpty() {
		return nil, pkgerrors.NewValidationError("adder account ID is required")
	}
	if details.DisplayName() == "" {
		return nil, pkgerrors.ErrMemberNameRequired
	}
	if !relationToAdder.IsValid() {
		return nil, pkgerrors.NewUnsupportedTypeError(relationToAdder.String())
	}

	now := time.Now()
	member := &ManualMember{
		id:              valueobjects.NewPersonID(),
		addedBy:         addedBy,
		details:         details,
		notes:           notes,
		relationToAdder: relationToAdder,
		createdAt:       now,
		updatedAt:       now,
	}

	member.raise(events.NewMemberAdded(
		member.id, addedBy, details.DisplayName(), relationToAdder, now,
	))

	return member, nil
}

// ReconstructManualMember rebuilds a member from persistence without
// validation or events
func ReconstructManualMember(
	id, addedBy valueobjects.PersonID,
	details valueobjects.PersonDetails,
	notes string,
	relationToAdder valueobjects.RelationshipType,
	linkedAccountID *valueobjects.PersonID,
	createdAt, updatedAt time.Time,
) *ManualMember {
	return &ManualMember{
		id:              id,
		addedBy:         addedBy,
		details:         details,
		notes:           notes,
		relationToAdder: relationToAdder,
		linkedAccountID: linkedAccountID,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// ID returns the member's person ID
func (m *ManualMember) ID() valueobjects.PersonID { return m.id }

// AddedBy returns the account that recorded this member
func (m *ManualMember) AddedBy() valueobjects.PersonID { return m.addedBy }

// Details returns the displayable profile
func (m *ManualMember) Details() valueobjects.PersonDetails { return m.details }

// Notes returns free-form notes about the member
func (m *ManualMember) Notes() string { return m.notes }

// RelationToAdder returns how this member relates to the adder, read
// adder-to-member ("PARENT" means the member is the adder's parent)
func (m *ManualMember) RelationToAdder() valueobjects.RelationshipType {
	return m.relationToAdder
}

// LinkedAccountID returns the linked account, or nil when unlinked
func (m *ManualMember) LinkedAccountID() *valueobjects.PersonID {
	return m.linkedAccountID
}

// IsLinked reports whether the member is tied to a registered account
func (m *ManualMember) IsLinked() bool { return m.linkedAccountID != nil }

// CreatedAt returns the creation timestamp
func (m *ManualMember) CreatedAt() time.Time { return m.createdAt }

// UpdatedAt returns the last update timestamp
func (m *ManualMember) UpdatedAt() time.Time { return m.updatedAt }

// NodeKey returns this member's key in a rendered tree. Linked members
// keep their manual key; provenance does not change on link.
func (m *ManualMember) NodeKey() valueobjects.NodeKey {
	return valueobjects.ManualNodeKey(m.id)
}

// CanBeLinkedBy reports whether caller may link this member to the given
// account: the adder may link anyone, and an account may claim itself.
func (m *ManualMember) CanBeLinkedBy(caller, account valueobjects.PersonID) bool {
	return caller.Equals(m.addedBy) || caller.Equals(account)
}

// LinkTo ties the member to a registered account. A link, once set, never
// changes: linking to the same account again is a no-op (alreadyLinked
// true), linking to a different account fails.
func (m *ManualMember) LinkTo(accountID valueobjects.PersonID) (alreadyLinked bool, err error) {
	if accountID.IsEmpty() {
		return false, pkgerrors.NewValidationError("account ID is required")
	}

	if m.linkedAccountID != nil {
		if m.linkedAccountID.Equals(accountID) {
			return true, nil
		}
		return false, pkgerrors.NewAlreadyLinkedError(m.linkedAccountID.String())
	}

	now := time.Now()
	m.linkedAccountID = &accountID
	m.updatedAt = now
	m.raise(events.NewMemberLinked(m.id, accountID, m.addedBy, now))
	return false, nil
}

// Unlink clears the link. Used only by saga compensation when the edge
// pair behind a fresh link could not be written.
func (m *ManualMember) Unlink() {
	if m.linkedAccountID == nil {
		return
	}
	now := time.Now()
	m.linkedAccountID = nil
	m.updatedAt = now
	m.raise(events.NewMemberUnlinked(m.id, now))
}

// GetUncommittedEvents returns events raised since the last commit
func (m *ManualMember) GetUncommittedEvents() []events.DomainEvent {
	return m.uncommittedEvents
}

// MarkEventsAsCommitted clears the uncommitted event list
func (m *ManualMember) MarkEventsAsCommitted() {
	m.uncommittedEvents = nil
}

func (m *ManualMember) raise(event events.DomainEvent) {
	m.uncommittedEvents = append(m.uncommittedEvents, event)
}
