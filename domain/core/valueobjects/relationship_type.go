package valueobjects

import (
	"strings"

	pkgerrors "familytree-backend/pkg/errors"
)

// RelationshipType classifies a directed family relationship edge.
// The type reads "initiator is type of target": an edge of type PARENT
// means the initiator is the target's parent.
type RelationshipType string

const (
	RelationshipParent  RelationshipType = "PARENT"
	RelationshipChild   RelationshipType = "CHILD"
	RelationshipSpouse  RelationshipType = "SPOUSE"
	RelationshipSibling RelationshipType = "SIBLING"
)

// ParseRelationshipType validates and normalizes a relationship type string
func ParseRelationshipType(s string) (RelationshipType, error) {
	t := RelationshipType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", pkgerrors.NewUnsupportedTypeError(s)
	}
	return t, nil
}

// IsValid reports whether the type is one of the four supported kinds
func (t RelationshipType) IsValid() bool {
	switch t {
	case RelationshipParent, RelationshipChild, RelationshipSpouse, RelationshipSibling:
		return true
	default:
		return false
	}
}

// Reciprocal returns the type of the twin edge that must accompany an
// edge of this type. PARENT and CHILD invert, SPOUSE and SIBLING are
// symmetric.
func (t RelationshipType) Reciprocal() RelationshipType {
	switch t {
	case RelationshipParent:
		return RelationshipChild
	case RelationshipChild:
		return RelationshipParent
	default:
		return t
	}
}

// String returns the string representation
func (t RelationshipType) String() string {
	return string(t)
}
