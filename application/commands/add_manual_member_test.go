package commands_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"familytree-backend/application/commands"
)

func TestAddManualMember(t *testing.T) {
	ctx := context.Background()

	t.Run("records the member without any relationship edges", func(t *testing.T) {
		f := newFixture()
		alice := f.registerAccount(t, "Alice", "alice@example.com")
		handler := commands.NewAddManualMemberHandler(f.members, f.store, f.bus, nil, f.logger)

		member, err := handler.Handle(ctx, commands.AddManualMemberCommand{
			AdderID:         alice.ID().String(),
			Name:            "Grandma Rose",
			RelationToAdder: "PARENT",
			DateOfBirth:     "1940-03-15",
			Gender:          "female",
			ImageURL:        "https://cdn.example.com/rose.jpg",
			Notes:           "maternal side",
		})
		require.NoError(t, err)

		assert.True(t, member.AddedBy().Equals(alice.ID()))
		assert.Equal(t, "PARENT", member.RelationToAdder().String())
		assert.Equal(t, "https://cdn.example.com/rose.jpg", member.Details().ImageURL())
		assert.False(t, member.IsLinked())

		// The connection lives only in the relation-to-adder field until
		// the member is linked to a registered account
		initiated, err := f.edges.GetByInitiator(ctx, alice.ID())
		require.NoError(t, err)
		assert.Empty(t, initiated)

		received, err := f.edges.GetByTarget(ctx, alice.ID())
		require.NoError(t, err)
		assert.Empty(t, received)

		assert.Equal(t, []string{"member.added"}, f.publishedTypes())
	})

	t.Run("succeeds without an event store or publisher wired", func(t *testing.T) {
		f := newFixture()
		alice := f.registerAccount(t, "Alice", "alice@example.com")
		handler := commands.NewAddManualMemberHandler(f.members, nil, nil, nil, f.logger)

		member, err := handler.Handle(ctx, commands.AddManualMemberCommand{
			AdderID:         alice.ID().String(),
			Name:            "Uncle Joe",
			RelationToAdder: "SIBLING",
		})
		require.NoError(t, err)
		assert.False(t, member.IsLinked())
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		f := newFixture()
		alice := f.registerAccount(t, "Alice", "alice@example.com")
		handler := commands.NewAddManualMemberHandler(f.members, f.store, f.bus, nil, f.logger)

		cases := []commands.AddManualMemberCommand{
			{AdderID: alice.ID().String(), Name: "", RelationToAdder: "PARENT"},
			{AdderID: alice.ID().String(), Name: "Rose", RelationToAdder: "AUNT"},
			{AdderID: alice.ID().String(), Name: "Rose", RelationToAdder: "PARENT", DateOfBirth: "15/03/1940"},
			{AdderID: "", Name: "Rose", RelationToAdder: "PARENT"},
		}
		for _, cmd := range cases {
			_, err := handler.Handle(ctx, cmd)
			assert.Error(t, err, "command %+v", cmd)
		}
	})
}
