package handlers_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"familytree-backend/application/queries"
	"familytree-backend/application/queries/handlers"
	"familytree-backend/domain/core/valueobjects"
	pkgerrors "familytree-backend/pkg/errors"
)

func TestGetAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("the holder sees everything", func(t *testing.T) {
		f := newFixture()
		bob := f.registerAccount(t, "Bob", "bob@example.com", "1980-06-01")
		handler := handlers.NewGetAccountHandler(f.accounts, f.logger)

		view, err := handler.Handle(ctx, queries.GetAccountQuery{
			ViewerID:  bob.ID().String(),
			AccountID: bob.ID().String(),
		})
		require.NoError(t, err)

		assert.Equal(t, "Bob", view.DisplayName)
		assert.Equal(t, "1980-06-01", view.DateOfBirth)
		assert.Equal(t, "bob@example.com", view.Email)
	})

	t.Run("members visibility hides the date of birth and email", func(t *testing.T) {
		f := newFixture()
		alice := f.registerAccount(t, "Alice", "alice@example.com", "")
		bob := f.registerAccount(t, "Bob", "bob@example.com", "1980-06-01")
		handler := handlers.NewGetAccountHandler(f.accounts, f.logger)

		view, err := handler.Handle(ctx, queries.GetAccountQuery{
			ViewerID:  alice.ID().String(),
			AccountID: bob.ID().String(),
		})
		require.NoError(t, err)

		assert.Equal(t, "Bob", view.DisplayName)
		assert.Empty(t, view.DateOfBirth)
		assert.Empty(t, view.Email)
	})

	t.Run("private visibility hides the name as well", func(t *testing.T) {
		f := newFixture()
		alice := f.registerAccount(t, "Alice", "alice@example.com", "")
		bob := f.registerAccount(t, "Bob", "bob@example.com", "1980-06-01")
		require.NoError(t, bob.SetVisibility("PRIVATE"))
		require.NoError(t, f.accounts.Save(ctx, bob))
		handler := handlers.NewGetAccountHandler(f.accounts, f.logger)

		view, err := handler.Handle(ctx, queries.GetAccountQuery{
			ViewerID:  alice.ID().String(),
			AccountID: bob.ID().String(),
		})
		require.NoError(t, err)

		assert.Equal(t, "Private member", view.DisplayName)
		assert.Empty(t, view.DateOfBirth)
	})

	t.Run("unknown account", func(t *testing.T) {
		f := newFixture()
		handler := handlers.NewGetAccountHandler(f.accounts, f.logger)

		_, err := handler.Handle(ctx, queries.GetAccountQuery{
			ViewerID:  valueobjects.NewPersonID().String(),
			AccountID: valueobjects.NewPersonID().String(),
		})
		assert.ErrorIs(t, err, pkgerrors.ErrAccountNotFound)
	})
}

func TestSearchAccounts(t *testing.T) {
	ctx := context.Background()

	f := newFixture()
	f.registerAccount(t, "Ada Lovelace", "ada@example.com", "1815-12-10")
	grace := f.registerAccount(t, "Grace Hopper", "grace@example.com", "1906-12-09")
	require.NoError(t, grace.SetVisibility("PUBLIC"))
	require.NoError(t, f.accounts.Save(ctx, grace))
	hidden := f.registerAccount(t, "Grace Kelly", "kelly@example.com", "")
	require.NoError(t, hidden.SetVisibility("PRIVATE"))
	require.NoError(t, f.accounts.Save(ctx, hidden))

	handler := handlers.NewSearchAccountsHandler(f.accounts, f.logger)

	t.Run("matches by name prefix", func(t *testing.T) {
		result, err := handler.Handle(ctx, queries.SearchAccountsQuery{Name: "Ada"})
		require.NoError(t, err)

		require.Len(t, result.Accounts, 1)
		assert.Equal(t, "Ada Lovelace", result.Accounts[0].DisplayName)
		assert.Empty(t, result.Accounts[0].DateOfBirth, "members visibility hides the date of birth")
	})

	t.Run("private profiles never appear", func(t *testing.T) {
		result, err := handler.Handle(ctx, queries.SearchAccountsQuery{Name: "Grace"})
		require.NoError(t, err)

		require.Len(t, result.Accounts, 1)
		assert.Equal(t, "Grace Hopper", result.Accounts[0].DisplayName)
		assert.Equal(t, "1906-12-09", result.Accounts[0].DateOfBirth, "public profiles show the date of birth")
	})

	t.Run("requires a name", func(t *testing.T) {
		_, err := handler.Handle(ctx, queries.SearchAccountsQuery{})
		assert.Error(t, err)
	})
}
