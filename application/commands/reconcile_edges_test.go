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

func TestReconcileEdges(t *testing.T) {
	ctx := context.Background()

	t.Run("intact pairs are left alone", func(t *testing.T) {
		f := newFixture()
		alice := f.registerAccount(t, "Alice", "alice@example.com")
		bob := f.registerAccount(t, "Bob", "bob@example.com")
		createPair(t, f, alice, bob, valueobjects.RelationshipSpouse)
		handler := commands.NewReconcileEdgesHandler(f.accounts, f.edges, f.store, f.bus, nil, f.logger)

		result, err := handler.Handle(ctx, commands.ReconcileEdgesCommand{
			AccountID: alice.ID().String(),
		})
		require.NoError(t, err)

		assert.Equal(t, 2, result.Scanned)
		assert.Equal(t, 0, result.Removed)
		assert.Empty(t, result.Orphans)
		assert.Empty(t, f.publishedTypes())
	})

	t.Run("removes orphaned halves", func(t *testing.T) {
		f := newFixture()
		alice := f.registerAccount(t, "Alice", "alice@example.com")
		bob := f.registerAccount(t, "Bob", "bob@example.com")
		primary, reciprocal := createPair(t, f, alice, bob, valueobjects.RelationshipParent)
		require.NoError(t, f.edges.Delete(ctx, reciprocal.ID()))

		handler := commands.NewReconcileEdgesHandler(f.accounts, f.edges, f.store, f.bus, nil, f.logger)
		result, err := handler.Handle(ctx, commands.ReconcileEdgesCommand{
			AccountID: alice.ID().String(),
		})
		require.NoError(t, err)

		assert.Equal(t, 1, result.Scanned)
		assert.Equal(t, 1, result.Removed)
		assert.Equal(t, []string{primary.ID().String()}, result.Orphans)

		gone, err := f.edges.GetByID(ctx, primary.ID())
		require.NoError(t, err)
		assert.Nil(t, gone)

		assert.Equal(t, []string{"edges.reconciled"}, f.publishedTypes())
	})

	t.Run("dry run reports without removing", func(t *testing.T) {
		f := newFixture()
		alice := f.registerAccount(t, "Alice", "alice@example.com")
		bob := f.registerAccount(t, "Bob", "bob@example.com")
		primary, reciprocal := createPair(t, f, alice, bob, valueobjects.RelationshipSibling)
		require.NoError(t, f.edges.Delete(ctx, reciprocal.ID()))

		handler := commands.NewReconcileEdgesHandler(f.accounts, f.edges, f.store, f.bus, nil, f.logger)
		result, err := handler.Handle(ctx, commands.ReconcileEdgesCommand{
			AccountID: alice.ID().String(),
			DryRun:    true,
		})
		require.NoError(t, err)

		assert.Equal(t, 0, result.Removed)
		assert.Equal(t, []string{primary.ID().String()}, result.Orphans)

		still, err := f.edges.GetByID(ctx, primary.ID())
		require.NoError(t, err)
		assert.NotNil(t, still)
		assert.Empty(t, f.publishedTypes())
	})

	t.Run("unknown account", func(t *testing.T) {
		f := newFixture()
		handler := commands.NewReconcileEdgesHandler(f.accounts, f.edges, f.store, f.bus, nil, f.logger)

		_, err := handler.Handle(ctx, commands.ReconcileEdgesCommand{
			AccountID: valueobjects.NewPersonID().String(),
		})
		assert.ErrorIs(t, err, pkgerrors.ErrAccountNotFound)
	})
}
