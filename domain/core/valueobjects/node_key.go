package valueobjects

import (
	"strings"
)

// NodeKeyPrefix namespaces tree node keys by the provenance of the person
// behind them. Keys from different namespaces never collide even when the
// underlying IDs do.
type NodeKeyPrefix string

const (
	PrefixUser        NodeKeyPrefix = "user-"
	PrefixManual      NodeKeyPrefix = "manual-"
	PrefixPlaceholder NodeKeyPrefix = "placeholder-"
)

// NodeKey is the namespaced identifier of a node in a rendered family tree
type NodeKey struct {
	value string
}

// UserNodeKey builds the key for a registered account node
func UserNodeKey(accountID PersonID) NodeKey {
	return NodeKey{value: string(PrefixUser) + accountID.String()}
}

// ManualNodeKey builds the key for a manually added member node
func ManualNodeKey(memberID PersonID) NodeKey {
	return NodeKey{value: string(PrefixManual) + memberID.String()}
}

// PlaceholderFatherKey builds the deterministic key for the synthetic
// father injected above a parentless root
func PlaceholderFatherKey(rootID PersonID) NodeKey {
	return NodeKey{value: string(PrefixPlaceholder) + "father-" + rootID.String()}
}

// PlaceholderMotherKey builds the deterministic key for the synthetic
// mother injected above a parentless root
func PlaceholderMotherKey(rootID PersonID) NodeKey {
	return NodeKey{value: string(PrefixPlaceholder) + "mother-" + rootID.String()}
}

// String returns the string representation
func (k NodeKey) String() string {
	return k.value
}

// IsEmpty checks if the key is empty
func (k NodeKey) IsEmpty() bool {
	return k.value == ""
}

// Equals checks equality with another NodeKey
func (k NodeKey) Equals(other NodeKey) bool {
	return k.value == other.value
}

// IsUser reports whether the key belongs to a registered account node
func (k NodeKey) IsUser() bool {
	return strings.HasPrefix(k.value, string(PrefixUser))
}

// IsManual reports whether the key belongs to a manual member node
func (k NodeKey) IsManual() bool {
	return strings.HasPrefix(k.value, string(PrefixManual))
}

// IsPlaceholder reports whether the key belongs to a synthetic node
func (k NodeKey) IsPlaceholder() bool {
	return strings.HasPrefix(k.value, string(PrefixPlaceholder))
}

// MarshalText implements encoding.TextMarshaler
func (k NodeKey) MarshalText() ([]byte, error) {
	return []byte(k.value), nil
}
