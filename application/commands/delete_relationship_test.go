package commands_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"familytree-backend/application/commands"
	"familytree-backend/domain/core/entities"
	"familytree-backend/domain/core/valueobjects"
	pkgerrors "familytree-backend/pkg/errors"
)

// createPair seeds a persisted edge pair between two accounts
func createPair(t *testing.T, f *fixture, initiator, target *entities.Account, relType valueobjects.RelationshipType) (*entities.Relationship, *entities.Relationship) {
	t.Helper()

	primary, reciprocal, err := entities.NewRelationshipPair(initiator.ID(), target.ID(), relType)
	require.NoError(t, err)
	require.NoError(t, f.edges.CreatePair(context.Background(), primary, reciprocal))
	return primary, reciprocal
}

func TestDeleteRelationship(t *testing.T) {
	ctx := context.Background()

	t.Run("initiator deletes both halves", func(t *testing.T) {
		f := newFixture()
		alice := f.registerAccount(t, "Alice", "alice@example.com")
		bob := f.registerAccount(t, "Bob", "bob@example.com")
		primary, reciprocal := createPair(t, f, alice, bob, valueobjects.RelationshipSpouse)
		handler := commands.NewDeleteRelationshipHandler(f.edges, f.store, f.bus, nil, f.logger)

		err := handler.Handle(ctx, commands.DeleteRelationshipCommand{
			CallerID:       alice.ID().String(),
			RelationshipID: primary.ID().String(),
		})
		require.NoError(t, err)

		gone, err := f.edges.GetByID(ctx, primary.ID())
		require.NoError(t, err)
		assert.Nil(t, gone)

		twinGone, err := f.edges.GetByID(ctx, reciprocal.ID())
		require.NoError(t, err)
		assert.Nil(t, twinGone)

		assert.Equal(t, []string{"relationship.deleted"}, f.publishedTypes())
	})

	t.Run("only the initiator may delete", func(t *testing.T) {
		f := newFixture()
		alice := f.registerAccount(t, "Alice", "alice@example.com")
		bob := f.registerAccount(t, "Bob", "bob@example.com")
		primary, _ := createPair(t, f, alice, bob, valueobjects.RelationshipParent)
		handler := commands.NewDeleteRelationshipHandler(f.edges, f.store, f.bus, nil, f.logger)

		err := handler.Handle(ctx, commands.DeleteRelationshipCommand{
			CallerID:       bob.ID().String(),
			RelationshipID: primary.ID().String(),
		})
		assert.ErrorIs(t, err, pkgerrors.ErrNotRelationshipInitiator)

		still, err := f.edges.GetByID(ctx, primary.ID())
		require.NoError(t, err)
		assert.NotNil(t, still, "a forbidden delete must not write")
	})

	t.Run("missing edge", func(t *testing.T) {
		f := newFixture()
		alice := f.registerAccount(t, "Alice", "alice@example.com")
		handler := commands.NewDeleteRelationshipHandler(f.edges, f.store, f.bus, nil, f.logger)

		err := handler.Handle(ctx, commands.DeleteRelationshipCommand{
			CallerID:       alice.ID().String(),
			RelationshipID: valueobjects.NewRelationshipID().String(),
		})
		assert.ErrorIs(t, err, pkgerrors.ErrRelationshipNotFound)
	})

	t.Run("tolerates a missing reciprocal", func(t *testing.T) {
		f := newFixture()
		alice := f.registerAccount(t, "Alice", "alice@example.com")
		bob := f.registerAccount(t, "Bob", "bob@example.com")
		primary, reciprocal := createPair(t, f, alice, bob, valueobjects.RelationshipSibling)

		// Simulate legacy drift: the twin is already gone
		require.NoError(t, f.edges.Delete(ctx, reciprocal.ID()))

		handler := commands.NewDeleteRelationshipHandler(f.edges, f.store, f.bus, nil, f.logger)
		err := handler.Handle(ctx, commands.DeleteRelationshipCommand{
			CallerID:       alice.ID().String(),
			RelationshipID: primary.ID().String(),
		})
		require.NoError(t, err)

		gone, err := f.edges.GetByID(ctx, primary.ID())
		require.NoError(t, err)
		assert.Nil(t, gone)
		assert.Equal(t, []string{"relationship.deleted"}, f.publishedTypes())
	})
}
