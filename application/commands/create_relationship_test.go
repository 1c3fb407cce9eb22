package commands_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"familytree-backend/application/commands"
	"familytree-backend/domain/core/valueobjects"
	pkgerrors "familytree-backend/pkg/errors"
)

func TestCreateRelationship(t *testing.T) {
	ctx := context.Background()

	t.Run("writes both halves of the pair", func(t *testing.T) {
		f := newFixture()
		alice := f.registerAccount(t, "Alice", "alice@example.com")
		bob := f.registerAccount(t, "Bob", "bob@example.com")
		handler := commands.NewCreateRelationshipHandler(f.accounts, f.edges, f.store, f.bus, nil, f.logger)

		primary, err := handler.Handle(ctx, commands.CreateRelationshipCommand{
			InitiatorID: alice.ID().String(),
			TargetID:    bob.ID().String(),
			Type:        "PARENT",
		})
		require.NoError(t, err)

		assert.Equal(t, valueobjects.RelationshipParent, primary.Type())

		reciprocal, err := f.edges.FindReciprocal(ctx, primary)
		require.NoError(t, err)
		require.NotNil(t, reciprocal)
		assert.Equal(t, valueobjects.RelationshipChild, reciprocal.Type())
		assert.True(t, reciprocal.InitiatorID().Equals(bob.ID()))

		assert.Equal(t, []string{"relationship.created"}, f.publishedTypes())
	})

	t.Run("rejects duplicate pair", func(t *testing.T) {
		f := newFixture()
		alice := f.registerAccount(t, "Alice", "alice@example.com")
		bob := f.registerAccount(t, "Bob", "bob@example.com")
		handler := commands.NewCreateRelationshipHandler(f.accounts, f.edges, f.store, f.bus, nil, f.logger)

		cmd := commands.CreateRelationshipCommand{
			InitiatorID: alice.ID().String(),
			TargetID:    bob.ID().String(),
			Type:        "SPOUSE",
		}
		_, err := handler.Handle(ctx, cmd)
		require.NoError(t, err)

		_, err = handler.Handle(ctx, cmd)
		assert.ErrorIs(t, err, pkgerrors.ErrDuplicateRelationship)
	})

	t.Run("rejects mirror of an existing pair", func(t *testing.T) {
		f := newFixture()
		alice := f.registerAccount(t, "Alice", "alice@example.com")
		bob := f.registerAccount(t, "Bob", "bob@example.com")
		handler := commands.NewCreateRelationshipHandler(f.accounts, f.edges, f.store, f.bus, nil, f.logger)

		_, err := handler.Handle(ctx, commands.CreateRelationshipCommand{
			InitiatorID: alice.ID().String(),
			TargetID:    bob.ID().String(),
			Type:        "PARENT",
		})
		require.NoError(t, err)

		// Bob declaring Alice his child collides with the reciprocal half
		_, err = handler.Handle(ctx, commands.CreateRelationshipCommand{
			InitiatorID: bob.ID().String(),
			TargetID:    alice.ID().String(),
			Type:        "CHILD",
		})
		assert.ErrorIs(t, err, pkgerrors.ErrDuplicateRelationship)
	})

	t.Run("rejects self relationship", func(t *testing.T) {
		f := newFixture()
		alice := f.registerAccount(t, "Alice", "alice@example.com")
		handler := commands.NewCreateRelationshipHandler(f.accounts, f.edges, f.store, f.bus, nil, f.logger)

		_, err := handler.Handle(ctx, commands.CreateRelationshipCommand{
			InitiatorID: alice.ID().String(),
			TargetID:    alice.ID().String(),
			Type:        "SIBLING",
		})
		assert.ErrorIs(t, err, pkgerrors.ErrSelfRelationship)
	})

	t.Run("rejects unregistered target", func(t *testing.T) {
		f := newFixture()
		alice := f.registerAccount(t, "Alice", "alice@example.com")
		handler := commands.NewCreateRelationshipHandler(f.accounts, f.edges, f.store, f.bus, nil, f.logger)

		_, err := handler.Handle(ctx, commands.CreateRelationshipCommand{
			InitiatorID: alice.ID().String(),
			TargetID:    valueobjects.NewPersonID().String(),
			Type:        "SPOUSE",
		})
		assert.ErrorIs(t, err, pkgerrors.ErrAccountNotFound)
	})

	t.Run("rejects unsupported type", func(t *testing.T) {
		f := newFixture()
		alice := f.registerAccount(t, "Alice", "alice@example.com")
		bob := f.registerAccount(t, "Bob", "bob@example.com")
		handler := commands.NewCreateRelationshipHandler(f.accounts, f.edges, f.store, f.bus, nil, f.logger)

		_, err := handler.Handle(ctx, commands.CreateRelationshipCommand{
			InitiatorID: alice.ID().String(),
			TargetID:    bob.ID().String(),
			Type:        "COUSIN",
		})
		assert.Error(t, err)
	})
}
