package handlers_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"familytree-backend/application/queries"
	"familytree-backend/application/queries/handlers"
	"familytree-backend/domain/core/entities"
	"familytree-backend/domain/core/valueobjects"
	"familytree-backend/pkg/common"
)

func TestListRelationships(t *testing.T) {
	ctx := context.Background()

	t.Run("lists initiated edges with target names", func(t *testing.T) {
		f := newFixture()
		alice := f.registerAccount(t, "Alice", "alice@example.com", "")
		bob := f.registerAccount(t, "Bob", "bob@example.com", "")
		carol := f.registerAccount(t, "Carol", "carol@example.com", "")
		f.connect(t, alice, bob, valueobjects.RelationshipParent)
		f.connect(t, alice, carol, valueobjects.RelationshipSpouse)

		handler := handlers.NewListRelationshipsHandler(f.accounts, f.edges, f.logger)
		result, err := handler.Handle(ctx, queries.ListRelationshipsQuery{
			AccountID: alice.ID().String(),
		})
		require.NoError(t, err)
		require.Len(t, result.Relationships, 2)

		byTarget := make(map[string]queries.RelationshipView)
		for _, view := range result.Relationships {
			byTarget[view.TargetID] = view
		}

		parentView := byTarget[bob.ID().String()]
		assert.Equal(t, "PARENT", parentView.Type)
		assert.Equal(t, "Bob", parentView.TargetName)

		spouseView := byTarget[carol.ID().String()]
		assert.Equal(t, "SPOUSE", spouseView.Type)
		assert.Equal(t, "Carol", spouseView.TargetName)

		require.NotNil(t, result.Pagination)
		assert.Equal(t, 2, result.Pagination.Total)
		assert.Equal(t, 1, result.Pagination.Page)
	})

	t.Run("pages through a long listing", func(t *testing.T) {
		f := newFixture()
		alice := f.registerAccount(t, "Alice", "alice@example.com", "")
		for _, name := range []string{"Bob", "Carol", "Dave"} {
			target := f.registerAccount(t, name, name+"@example.com", "")
			f.connect(t, alice, target, valueobjects.RelationshipSibling)
		}

		handler := handlers.NewListRelationshipsHandler(f.accounts, f.edges, f.logger)
		result, err := handler.Handle(ctx, queries.ListRelationshipsQuery{
			AccountID:  alice.ID().String(),
			Pagination: common.PaginationParams{Page: 2, PageSize: 2},
		})
		require.NoError(t, err)

		assert.Len(t, result.Relationships, 1)
		require.NotNil(t, result.Pagination)
		assert.Equal(t, 3, result.Pagination.Total)
		assert.Equal(t, 2, result.Pagination.TotalPages)
		assert.True(t, result.Pagination.HasPrev)
		assert.False(t, result.Pagination.HasNext)
	})

	t.Run("a page past the end is empty", func(t *testing.T) {
		f := newFixture()
		alice := f.registerAccount(t, "Alice", "alice@example.com", "")
		bob := f.registerAccount(t, "Bob", "bob@example.com", "")
		f.connect(t, alice, bob, valueobjects.RelationshipParent)

		handler := handlers.NewListRelationshipsHandler(f.accounts, f.edges, f.logger)
		result, err := handler.Handle(ctx, queries.ListRelationshipsQuery{
			AccountID:  alice.ID().String(),
			Pagination: common.PaginationParams{Page: 5, PageSize: 20},
		})
		require.NoError(t, err)

		assert.Empty(t, result.Relationships)
		assert.Equal(t, 1, result.Pagination.Total)
	})

	t.Run("a missing target leaves the name empty", func(t *testing.T) {
		f := newFixture()
		alice := f.registerAccount(t, "Alice", "alice@example.com", "")

		// An edge whose target account is gone, as after a deletion
		primary, reciprocal, err := entities.NewRelationshipPair(
			alice.ID(), valueobjects.NewPersonID(), valueobjects.RelationshipChild,
		)
		require.NoError(t, err)
		require.NoError(t, f.edges.CreatePair(ctx, primary, reciprocal))

		handler := handlers.NewListRelationshipsHandler(f.accounts, f.edges, f.logger)
		result, err := handler.Handle(ctx, queries.ListRelationshipsQuery{
			AccountID: alice.ID().String(),
		})
		require.NoError(t, err)
		require.Len(t, result.Relationships, 1)
		assert.Empty(t, result.Relationships[0].TargetName)
	})

	t.Run("rejects a malformed account id", func(t *testing.T) {
		f := newFixture()
		handler := handlers.NewListRelationshipsHandler(f.accounts, f.edges, f.logger)

		_, err := handler.Handle(ctx, queries.ListRelationshipsQuery{AccountID: "not-a-uuid"})
		assert.Error(t, err)
	})
}
