package valueobjects

import (
	"errors"

	"github.com/google/uuid"
)

// PersonID uniquely identifies a person, whether a registered account
// or a manually added family member
type PersonID struct {
	value string
}

// NewPersonID generates a new unique person ID
func NewPersonID() PersonID {
	return PersonID{value: uuid.New().String()}
}

// NewPersonIDFromString creates a PersonID from an existing string
func NewPersonIDFromString(s string) (PersonID, error) {
	if s == "" {
		return PersonID{}, errors.New("person ID cannot be empty")
	}

	if _, err := uuid.Parse(s); err != nil {
		return PersonID{}, errors.New("invalid person ID format")
	}

	return PersonID{value: s}, nil
}

// String returns the string representation
func (id PersonID) String() string {
	return id.value
}

// IsEmpty checks if the ID is empty
func (id PersonID) IsEmpty() bool {
	return id.value == ""
}

// Equals checks equality with another PersonID
func (id PersonID) Equals(other PersonID) bool {
	return id.value == other.value
}

// MarshalText implements encoding.TextMarshaler
func (id PersonID) MarshalText() ([]byte, error) {
	return []byte(id.value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (id *PersonID) UnmarshalText(data []byte) error {
	parsed, err := NewPersonIDFromString(string(data))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// RelationshipID uniquely identifies a directed relationship edge
type RelationshipID struct {
	value string
}

// NewRelationshipID generates a new unique relationship ID
func NewRelationshipID() RelationshipID {
	return RelationshipID{value: uuid.New().String()}
}

// NewRelationshipIDFromString creates a RelationshipID from an existing string
func NewRelationshipIDFromString(s string) (RelationshipID, error) {
	if s == "" {
		return RelationshipID{}, errors.New("relationship ID cannot be empty")
	}

	if _, err := uuid.Parse(s); err != nil {
		return RelationshipID{}, errors.New("invalid relationship ID format")
	}

	return RelationshipID{value: s}, nil
}

// String returns the string representation
func (id RelationshipID) String() string {
	return id.value
}

// IsEmpty checks if the ID is empty
func (id RelationshipID) IsEmpty() bool {
	return id.value == ""
}

// Equals checks equality with another RelationshipID
func (id RelationshipID) Equals(other RelationshipID) bool {
	return id.value == other.value
}

// MarshalText implements encoding.TextMarshaler
func (id RelationshipID) MarshalText() ([]byte, error) {
	return []byte(id.value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (id *RelationshipID) UnmarshalText(data []byte) error {
	parsed, err := NewRelationshipIDFromString(string(data))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
