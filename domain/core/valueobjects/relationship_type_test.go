package valueobjects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRelationshipType(t *testing.T) {
	t.Run("accepts the four supported kinds", func(t *testing.T) {
		for _, input := range []string{"PARENT", "CHILD", "SPOUSE", "SIBLING"} {
			parsed, err := ParseRelationshipType(input)
			require.NoError(t, err)
			assert.Equal(t, input, parsed.String())
		}
	})

	t.Run("normalizes case and whitespace", func(t *testing.T) {
		parsed, err := ParseRelationshipType("  parent ")
		require.NoError(t, err)
		assert.Equal(t, RelationshipParent, parsed)
	})

	t.Run("rejects unknown kinds", func(t *testing.T) {
		for _, input := range []string{"", "COUSIN", "GRANDPARENT", "friend"} {
			_, err := ParseRelationshipType(input)
			assert.Error(t, err, "input %q", input)
		}
	})
}

func TestRelationshipTypeReciprocal(t *testing.T) {
	assert.Equal(t, RelationshipChild, RelationshipParent.Reciprocal())
	assert.Equal(t, RelationshipParent, RelationshipChild.Reciprocal())
	assert.Equal(t, RelationshipSpouse, RelationshipSpouse.Reciprocal())
	assert.Equal(t, RelationshipSibling, RelationshipSibling.Reciprocal())
}

func TestRelationshipTypeReciprocalIsInvolution(t *testing.T) {
	// Applying Reciprocal twice always lands back on the original type
	for _, relType := range []RelationshipType{
		RelationshipParent, RelationshipChild, RelationshipSpouse, RelationshipSibling,
	} {
		assert.Equal(t, relType, relType.Reciprocal().Reciprocal())
	}
}
