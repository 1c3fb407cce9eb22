package entities

import (
	"strings"
	"time"

	"familytree-backend/domain/core/valueobjects"
	"familytree-backend/domain/events"
	pkgerrors "familytree-backend/pkg/errors"
)

// ProfileVisibility controls how much of an account's profile other
// people see when the account appears in their tree
type ProfileVisibility string

const (
	VisibilityPublic  ProfileVisibility = "PUBLIC"
	VisibilityMembers ProfileVisibility = "MEMBERS"
	VisibilityPrivate ProfileVisibility = "PRIVATE"
)

// IsValid reports whether the visibility is a known level
func (v ProfileVisibility) IsValid() bool {
	switch v {
	case VisibilityPublic, VisibilityMembers, VisibilityPrivate:
		return true
	default:
		return false
	}
}

// Account is a registered person. Accounts own relationship edges and
// manual members; they are the only traversal frontiers in a tree build.
type Account struct {
	id         valueobjects.PersonID
	email      string
	details    valueobjects.PersonDetails
	visibility ProfileVisibility
	createdAt  time.Time
	updatedAt  time.Time

	uncommittedEvents []events.DomainEvent
}

// NewAccount creates a new registered account
func NewAccount(email string, details valueobjects.PersonDetails) (*Account, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, pkgerrors.NewValidationError("a valid email is required")
	}
	if details.DisplayName() == "" {
		return nil, pkgerrors.NewValidationError("display name is required")
	}

	now := time.Now()
	account := &Account{
		id:         valueobjects.NewPersonID(),
		email:      email,
		details:    details,
		visibility: VisibilityMembers,
		createdAt:  now,
		updatedAt:  now,
	}

	account.raise(events.NewAccountRegistered(
		account.id, email, details.DisplayName(), details.DateOfBirthString(), now,
	))

	return account, nil
}

// ReconstructAccount rebuilds an account from persistence without
// validation or events
func ReconstructAccount(
	id valueobjects.PersonID,
	email string,
	details valueobjects.PersonDetails,
	visibility ProfileVisibility,
	createdAt, updatedAt time.Time,
) *Account {
	return &Account{
		id:         id,
		email:      email,
		details:    details,
		visibility: visibility,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// ID returns the account's person ID
func (a *Account) ID() valueobjects.PersonID { return a.id }

// Email returns the account's email
func (a *Account) Email() string { return a.email }

// Details returns the displayable profile
func (a *Account) Details() valueobjects.PersonDetails { return a.details }

// Visibility returns the profile visibility level
func (a *Account) Visibility() ProfileVisibility { return a.visibility }

// CreatedAt returns the creation timestamp
func (a *Account) CreatedAt() time.Time { return a.createdAt }

// UpdatedAt returns the last update timestamp
func (a *Account) UpdatedAt() time.Time { return a.updatedAt }

// NodeKey returns this account's key in a rendered tree
func (a *Account) NodeKey() valueobjects.NodeKey {
	return valueobjects.UserNodeKey(a.id)
}

// UpdateDetails replaces the profile details
func (a *Account) UpdateDetails(details valueobjects.PersonDetails) error {
	if details.DisplayName() == "" {
		return pkgerrors.NewValidationError("display name is required")
	}
	a.details = details
	a.updatedAt = time.Now()
	return nil
}

// SetVisibility changes the profile visibility level
func (a *Account) SetVisibility(v ProfileVisibility) error {
	if !v.IsValid() {
		return pkgerrors.NewValidationError("invalid profile visibility")
	}
	a.visibility = v
	a.updatedAt = time.Now()
	return nil
}

// GetUncommittedEvents returns events raised since the last commit
func (a *Account) GetUncommittedEvents() []events.DomainEvent {
	return a.uncommittedEvents
}

// MarkEventsAsCommitted clears the uncommitted event list
func (a *Account) MarkEventsAsCommitted() {
	a.uncommittedEvents = nil
}

func (a *Account) raise(event events.DomainEvent) {
	a.uncommittedEvents = append(a.uncommittedEvents, event)
}
