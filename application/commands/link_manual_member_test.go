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

// addMember seeds a persisted manual member recorded by adder
func addMember(t *testing.T, f *fixture, adder *entities.Account, name string, relType valueobjects.RelationshipType) *entities.ManualMember {
	t.Helper()

	details, err := valueobjects.NewPersonDetails(name, "", "")
	require.NoError(t, err)

	member, err := entities.NewManualMember(adder.ID(), details, relType, "")
	require.NoError(t, err)
	member.MarkEventsAsCommitted()

	require.NoError(t, f.members.Save(context.Background(), member))
	return member
}

func newLinkHandler(f *fixture) *commands.LinkManualMemberHandler {
	return commands.NewLinkManualMemberHandler(
		f.accounts, f.members, f.edges, f.store, f.bus, nil, nil, f.logger,
	)
}

func TestLinkManualMember(t *testing.T) {
	ctx := context.Background()

	t.Run("links and creates the edge pair", func(t *testing.T) {
		f := newFixture()
		alice := f.registerAccount(t, "Alice", "alice@example.com")
		rose := f.registerAccount(t, "Rose", "rose@example.com")
		member := addMember(t, f, alice, "Grandma Rose", valueobjects.RelationshipParent)
		handler := newLinkHandler(f)

		result, err := handler.Handle(ctx, commands.LinkManualMemberCommand{
			CallerID:  alice.ID().String(),
			MemberID:  member.ID().String(),
			AccountID: rose.ID().String(),
		})
		require.NoError(t, err)

		assert.False(t, result.AlreadyLinked)
		assert.True(t, result.PairCreated)
		assert.True(t, result.Member.LinkedAccountID().Equals(rose.ID()))

		// The linked account stands in for the member, so it initiates the
		// member's recorded relation toward the adder
		exists, err := f.edges.Exists(ctx, rose.ID(), alice.ID(), valueobjects.RelationshipParent)
		require.NoError(t, err)
		assert.True(t, exists)

		twin, err := f.edges.Exists(ctx, alice.ID(), rose.ID(), valueobjects.RelationshipChild)
		require.NoError(t, err)
		assert.True(t, twin)

		assert.Equal(t, []string{"member.linked"}, f.publishedTypes())
	})

	t.Run("relinking to the same account is a no-op", func(t *testing.T) {
		f := newFixture()
		alice := f.registerAccount(t, "Alice", "alice@example.com")
		rose := f.registerAccount(t, "Rose", "rose@example.com")
		member := addMember(t, f, alice, "Grandma Rose", valueobjects.RelationshipParent)
		handler := newLinkHandler(f)

		cmd := commands.LinkManualMemberCommand{
			CallerID:  alice.ID().String(),
			MemberID:  member.ID().String(),
			AccountID: rose.ID().String(),
		}
		_, err := handler.Handle(ctx, cmd)
		require.NoError(t, err)

		result, err := handler.Handle(ctx, cmd)
		require.NoError(t, err)
		assert.True(t, result.AlreadyLinked)
		assert.False(t, result.PairCreated)
	})

	t.Run("linking to a different account conflicts", func(t *testing.T) {
		f := newFixture()
		alice := f.registerAccount(t, "Alice", "alice@example.com")
		rose := f.registerAccount(t, "Rose", "rose@example.com")
		eve := f.registerAccount(t, "Eve", "eve@example.com")
		member := addMember(t, f, alice, "Grandma Rose", valueobjects.RelationshipParent)
		handler := newLinkHandler(f)

		_, err := handler.Handle(ctx, commands.LinkManualMemberCommand{
			CallerID:  alice.ID().String(),
			MemberID:  member.ID().String(),
			AccountID: rose.ID().String(),
		})
		require.NoError(t, err)

		_, err = handler.Handle(ctx, commands.LinkManualMemberCommand{
			CallerID:  alice.ID().String(),
			MemberID:  member.ID().String(),
			AccountID: eve.ID().String(),
		})
		assert.ErrorIs(t, err, pkgerrors.ErrAlreadyLinked)
	})

	t.Run("a stranger may not link", func(t *testing.T) {
		f := newFixture()
		alice := f.registerAccount(t, "Alice", "alice@example.com")
		rose := f.registerAccount(t, "Rose", "rose@example.com")
		eve := f.registerAccount(t, "Eve", "eve@example.com")
		member := addMember(t, f, alice, "Grandma Rose", valueobjects.RelationshipParent)
		handler := newLinkHandler(f)

		_, err := handler.Handle(ctx, commands.LinkManualMemberCommand{
			CallerID:  eve.ID().String(),
			MemberID:  member.ID().String(),
			AccountID: rose.ID().String(),
		})
		assert.ErrorIs(t, err, pkgerrors.ErrNotMemberAdder)
	})

	t.Run("the claimed account may link itself", func(t *testing.T) {
		f := newFixture()
		alice := f.registerAccount(t, "Alice", "alice@example.com")
		rose := f.registerAccount(t, "Rose", "rose@example.com")
		member := addMember(t, f, alice, "Grandma Rose", valueobjects.RelationshipParent)
		handler := newLinkHandler(f)

		result, err := handler.Handle(ctx, commands.LinkManualMemberCommand{
			CallerID:  rose.ID().String(),
			MemberID:  member.ID().String(),
			AccountID: rose.ID().String(),
		})
		require.NoError(t, err)
		assert.True(t, result.Member.IsLinked())
	})

	t.Run("an existing pair counts as satisfied", func(t *testing.T) {
		f := newFixture()
		alice := f.registerAccount(t, "Alice", "alice@example.com")
		rose := f.registerAccount(t, "Rose", "rose@example.com")
		member := addMember(t, f, alice, "Grandma Rose", valueobjects.RelationshipParent)
		createPair(t, f, rose, alice, valueobjects.RelationshipParent)
		handler := newLinkHandler(f)

		result, err := handler.Handle(ctx, commands.LinkManualMemberCommand{
			CallerID:  alice.ID().String(),
			MemberID:  member.ID().String(),
			AccountID: rose.ID().String(),
		})
		require.NoError(t, err)
		assert.False(t, result.PairCreated)
		assert.True(t, result.Member.IsLinked())
	})

	t.Run("compensates the link when the pair cannot exist", func(t *testing.T) {
		f := newFixture()
		alice := f.registerAccount(t, "Alice", "alice@example.com")
		member := addMember(t, f, alice, "Alice Senior", valueobjects.RelationshipParent)
		handler := newLinkHandler(f)

		// Claiming the adder's own account would make a self edge; the
		// saga must unlink what the first step wrote
		_, err := handler.Handle(ctx, commands.LinkManualMemberCommand{
			CallerID:  alice.ID().String(),
			MemberID:  member.ID().String(),
			AccountID: alice.ID().String(),
		})
		require.Error(t, err)

		reloaded, err := f.members.GetByID(ctx, member.ID())
		require.NoError(t, err)
		assert.False(t, reloaded.IsLinked(), "compensation must clear the link")
		assert.Empty(t, f.publishedTypes())
	})

	t.Run("missing member and account", func(t *testing.T) {
		f := newFixture()
		alice := f.registerAccount(t, "Alice", "alice@example.com")
		member := addMember(t, f, alice, "Grandma Rose", valueobjects.RelationshipParent)
		handler := newLinkHandler(f)

		_, err := handler.Handle(ctx, commands.LinkManualMemberCommand{
			CallerID:  alice.ID().String(),
			MemberID:  valueobjects.NewPersonID().String(),
			AccountID: alice.ID().String(),
		})
		assert.ErrorIs(t, err, pkgerrors.ErrMemberNotFound)

		_, err = handler.Handle(ctx, commands.LinkManualMemberCommand{
			CallerID:  alice.ID().String(),
			MemberID:  member.ID().String(),
			AccountID: valueobjects.NewPersonID().String(),
		})
		assert.ErrorIs(t, err, pkgerrors.ErrAccountNotFound)
	})
}
