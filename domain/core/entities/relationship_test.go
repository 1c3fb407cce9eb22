package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"familytree-backend/domain/core/valueobjects"
	pkgerrors "familytree-backend/pkg/errors"
)

func TestNewRelationship(t *testing.T) {
	initiator := valueobjects.NewPersonID()
	target := valueobjects.NewPersonID()

	t.Run("valid edge", func(t *testing.T) {
		edge, err := NewRelationship(initiator, target, valueobjects.RelationshipParent)
		require.NoError(t, err)

		assert.False(t, edge.ID().IsEmpty())
		assert.True(t, edge.InitiatorID().Equals(initiator))
		assert.True(t, edge.TargetID().Equals(target))
		assert.Equal(t, valueobjects.RelationshipParent, edge.Type())
	})

	t.Run("rejects self loop", func(t *testing.T) {
		_, err := NewRelationship(initiator, initiator, valueobjects.RelationshipSpouse)
		assert.ErrorIs(t, err, pkgerrors.ErrSelfRelationship)
	})

	t.Run("rejects empty IDs", func(t *testing.T) {
		_, err := NewRelationship(valueobjects.PersonID{}, target, valueobjects.RelationshipParent)
		assert.Error(t, err)
	})

	t.Run("rejects invalid type", func(t *testing.T) {
		_, err := NewRelationship(initiator, target, valueobjects.RelationshipType("COUSIN"))
		assert.Error(t, err)
	})
}

func TestNewRelationshipPair(t *testing.T) {
	initiator := valueobjects.NewPersonID()
	target := valueobjects.NewPersonID()

	primary, reciprocal, err := NewRelationshipPair(initiator, target, valueobjects.RelationshipParent)
	require.NoError(t, err)

	// The primary reads "initiator is parent of target"; the twin runs
	// target-to-initiator with the reciprocal type
	assert.Equal(t, valueobjects.RelationshipParent, primary.Type())
	assert.True(t, reciprocal.InitiatorID().Equals(target))
	assert.True(t, reciprocal.TargetID().Equals(initiator))
	assert.Equal(t, valueobjects.RelationshipChild, reciprocal.Type())

	assert.True(t, primary.IsReciprocalOf(reciprocal))
	assert.True(t, reciprocal.IsReciprocalOf(primary))
	assert.False(t, primary.ID().Equals(reciprocal.ID()))
}

func TestNewRelationshipPairSymmetricTypes(t *testing.T) {
	initiator := valueobjects.NewPersonID()
	target := valueobjects.NewPersonID()

	primary, reciprocal, err := NewRelationshipPair(initiator, target, valueobjects.RelationshipSpouse)
	require.NoError(t, err)

	assert.Equal(t, valueobjects.RelationshipSpouse, primary.Type())
	assert.Equal(t, valueobjects.RelationshipSpouse, reciprocal.Type())
	assert.True(t, primary.IsReciprocalOf(reciprocal))
}

func TestRelationshipCanBeDeletedBy(t *testing.T) {
	initiator := valueobjects.NewPersonID()
	target := valueobjects.NewPersonID()

	edge, err := NewRelationship(initiator, target, valueobjects.RelationshipSibling)
	require.NoError(t, err)

	assert.True(t, edge.CanBeDeletedBy(initiator))
	assert.False(t, edge.CanBeDeletedBy(target))
	assert.False(t, edge.CanBeDeletedBy(valueobjects.NewPersonID()))
}
