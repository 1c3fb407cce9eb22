package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"familytree-backend/domain/core/valueobjects"
)

func TestNewAccount(t *testing.T) {
	details, err := valueobjects.NewPersonDetails("Ada Lovelace", "1815-12-10", "female")
	require.NoError(t, err)

	t.Run("valid account", func(t *testing.T) {
		account, err := NewAccount("Ada@Example.com", details)
		require.NoError(t, err)

		assert.Equal(t, "ada@example.com", account.Email(), "email is normalized")
		assert.Equal(t, VisibilityMembers, account.Visibility(), "default visibility")
		assert.True(t, account.NodeKey().IsUser())

		events := account.GetUncommittedEvents()
		require.Len(t, events, 1)
		assert.Equal(t, "account.registered", events[0].GetEventType())
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		for _, email := range []string{"", "  ", "no-at-sign"} {
			_, err := NewAccount(email, details)
			assert.Error(t, err, "email %q", email)
		}
	})
}

func TestAccountSetVisibility(t *testing.T) {
	details, err := valueobjects.NewPersonDetails("Ada", "", "")
	require.NoError(t, err)
	account, err := NewAccount("ada@example.com", details)
	require.NoError(t, err)

	require.NoError(t, account.SetVisibility(VisibilityPrivate))
	assert.Equal(t, VisibilityPrivate, account.Visibility())

	assert.Error(t, account.SetVisibility(ProfileVisibility("SECRET")))
	assert.Equal(t, VisibilityPrivate, account.Visibility())
}

func TestAccountUpdateDetails(t *testing.T) {
	details, err := valueobjects.NewPersonDetails("Ada", "", "")
	require.NoError(t, err)
	account, err := NewAccount("ada@example.com", details)
	require.NoError(t, err)

	updated, err := valueobjects.NewPersonDetails("Ada King", "1815-12-10", "female")
	require.NoError(t, err)

	require.NoError(t, account.UpdateDetails(updated))
	assert.Equal(t, "Ada King", account.Details().DisplayName())
}
