package commands_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"familytree-backend/application/commands"
)

func TestRegisterAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("registers and publishes account.registered", func(t *testing.T) {
		f := newFixture()
		handler := commands.NewRegisterAccountHandler(f.accounts, f.store, f.bus, f.logger)

		account, err := handler.Handle(ctx, commands.RegisterAccountCommand{
			Email:       "Ada@Example.com",
			DisplayName: "Ada Lovelace",
			DateOfBirth: "1815-12-10",
			Gender:      "female",
		})
		require.NoError(t, err)

		assert.Equal(t, "ada@example.com", account.Email())
		assert.Empty(t, account.GetUncommittedEvents())
		assert.Equal(t, []string{"account.registered"}, f.publishedTypes())

		stored, err := f.store.GetEventsByType(ctx, "account.registered", 0)
		require.NoError(t, err)
		assert.Len(t, stored, 1)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		f := newFixture()
		f.registerAccount(t, "Ada Lovelace", "ada@example.com")
		handler := commands.NewRegisterAccountHandler(f.accounts, f.store, f.bus, f.logger)

		_, err := handler.Handle(ctx, commands.RegisterAccountCommand{
			Email:       "ADA@example.com",
			DisplayName: "Ada Again",
		})
		assert.Error(t, err)
		assert.Empty(t, f.publishedTypes())
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		f := newFixture()
		handler := commands.NewRegisterAccountHandler(f.accounts, f.store, f.bus, f.logger)

		_, err := handler.Handle(ctx, commands.RegisterAccountCommand{Email: "ada@example.com"})
		assert.Error(t, err)

		_, err = handler.Handle(ctx, commands.RegisterAccountCommand{DisplayName: "Ada"})
		assert.Error(t, err)
	})
}
