package valueobjects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeKeyNamespaces(t *testing.T) {
	id := NewPersonID()

	userKey := UserNodeKey(id)
	manualKey := ManualNodeKey(id)

	// The same underlying ID never collides across namespaces
	assert.NotEqual(t, userKey.String(), manualKey.String())

	assert.True(t, userKey.IsUser())
	assert.False(t, userKey.IsManual())
	assert.False(t, userKey.IsPlaceholder())

	assert.True(t, manualKey.IsManual())
	assert.False(t, manualKey.IsUser())
}

func TestPlaceholderKeysAreDeterministic(t *testing.T) {
	rootID := NewPersonID()

	father1 := PlaceholderFatherKey(rootID)
	father2 := PlaceholderFatherKey(rootID)
	mother := PlaceholderMotherKey(rootID)

	assert.True(t, father1.Equals(father2))
	assert.True(t, father1.IsPlaceholder())
	assert.True(t, mother.IsPlaceholder())
	assert.NotEqual(t, father1.String(), mother.String())

	otherRoot := NewPersonID()
	assert.NotEqual(t, father1.String(), PlaceholderFatherKey(otherRoot).String())
}

func TestPersonIDRoundTrip(t *testing.T) {
	id := NewPersonID()

	parsed, err := NewPersonIDFromString(id.String())
	require.NoError(t, err)
	assert.True(t, id.Equals(parsed))

	_, err = NewPersonIDFromString("")
	assert.Error(t, err)

	_, err = NewPersonIDFromString("not-a-uuid")
	assert.Error(t, err)
}
