package handlers_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"familytree-backend/application/ports"
	"familytree-backend/application/queries"
	"familytree-backend/application/queries/handlers"
	"familytree-backend/domain/core/aggregates"
	"familytree-backend/domain/core/valueobjects"
	pkgerrors "familytree-backend/pkg/errors"
)

func newTreeHandler(f *fixture, cache *stubCache) *handlers.GetFamilyTreeHandler {
	var c ports.Cache
	if cache != nil {
		c = cache
	}
	return handlers.NewGetFamilyTreeHandler(
		f.accounts, f.members, f.edges, f.augmenter, c, f.cfg, f.logger,
	)
}

func nodeByKey(nodes []*aggregates.TreeNode, key string) *aggregates.TreeNode {
	for _, node := range nodes {
		if node.Key == key {
			return node
		}
	}
	return nil
}

func TestFamilyTreeTraversal(t *testing.T) {
	ctx := context.Background()

	t.Run("walks connected accounts breadth first", func(t *testing.T) {
		f := newFixture()
		f.cfg.EnablePlaceholderParents = false
		alice := f.registerAccount(t, "Alice", "alice@example.com", "")
		bob := f.registerAccount(t, "Bob", "bob@example.com", "")
		carol := f.registerAccount(t, "Carol", "carol@example.com", "")
		// Bob is Alice's parent, Bob and Carol are spouses
		f.connect(t, bob, alice, valueobjects.RelationshipParent)
		f.connect(t, bob, carol, valueobjects.RelationshipSpouse)

		result, err := newTreeHandler(f, nil).Handle(ctx, queries.GetFamilyTreeQuery{
			ViewerID:       alice.ID().String(),
			StartAccountID: alice.ID().String(),
		})
		require.NoError(t, err)

		assert.Equal(t, valueobjects.UserNodeKey(alice.ID()).String(), result.RootKey)
		assert.Equal(t, 3, result.Stats.NodeCount)
		assert.Equal(t, 3, result.Stats.AccountNodes)

		root := nodeByKey(result.Nodes, result.RootKey)
		require.NotNil(t, root)
		assert.True(t, root.IsRoot)
		assert.Equal(t, []string{valueobjects.UserNodeKey(bob.ID()).String()}, root.Parents)

		bobNode := nodeByKey(result.Nodes, valueobjects.UserNodeKey(bob.ID()).String())
		require.NotNil(t, bobNode)
		assert.Contains(t, bobNode.Children, root.Key)
		assert.Contains(t, bobNode.Spouses, valueobjects.UserNodeKey(carol.ID()).String())
	})

	t.Run("an initiated parent edge makes the initiator the parent", func(t *testing.T) {
		f := newFixture()
		f.cfg.EnablePlaceholderParents = false
		alice := f.registerAccount(t, "Alice", "alice@example.com", "")
		bob := f.registerAccount(t, "Bob", "bob@example.com", "")
		f.connect(t, alice, bob, valueobjects.RelationshipParent)

		result, err := newTreeHandler(f, nil).Handle(ctx, queries.GetFamilyTreeQuery{
			ViewerID:       bob.ID().String(),
			StartAccountID: bob.ID().String(),
		})
		require.NoError(t, err)

		assert.Equal(t, 2, result.Stats.NodeCount)

		aliceKey := valueobjects.UserNodeKey(alice.ID()).String()
		bobNode := nodeByKey(result.Nodes, result.RootKey)
		require.NotNil(t, bobNode)
		assert.Equal(t, []string{aliceKey}, bobNode.Parents)
		assert.Empty(t, bobNode.Children)

		aliceNode := nodeByKey(result.Nodes, aliceKey)
		require.NotNil(t, aliceNode)
		assert.Equal(t, []string{bobNode.Key}, aliceNode.Children)
		assert.Empty(t, aliceNode.Parents)
	})

	t.Run("terminates on cyclic graphs", func(t *testing.T) {
		f := newFixture()
		f.cfg.EnablePlaceholderParents = false
		alice := f.registerAccount(t, "Alice", "alice@example.com", "")
		bob := f.registerAccount(t, "Bob", "bob@example.com", "")
		carol := f.registerAccount(t, "Carol", "carol@example.com", "")
		f.connect(t, alice, bob, valueobjects.RelationshipSibling)
		f.connect(t, bob, carol, valueobjects.RelationshipSibling)
		f.connect(t, carol, alice, valueobjects.RelationshipSibling)

		result, err := newTreeHandler(f, nil).Handle(ctx, queries.GetFamilyTreeQuery{
			ViewerID:       alice.ID().String(),
			StartAccountID: alice.ID().String(),
		})
		require.NoError(t, err)

		assert.Equal(t, 3, result.Stats.NodeCount)
		for _, node := range result.Nodes {
			// Both halves of each pair were walked; adjacency must still
			// list each sibling once
			assert.Len(t, node.Siblings, 2, "node %s", node.Key)
		}
	})

	t.Run("renders manual members without expanding them", func(t *testing.T) {
		f := newFixture()
		f.cfg.EnablePlaceholderParents = false
		alice := f.registerAccount(t, "Alice", "alice@example.com", "")
		member := f.addMember(t, alice, "Grandma Rose", valueobjects.RelationshipParent)

		result, err := newTreeHandler(f, nil).Handle(ctx, queries.GetFamilyTreeQuery{
			ViewerID:       alice.ID().String(),
			StartAccountID: alice.ID().String(),
		})
		require.NoError(t, err)

		assert.Equal(t, 2, result.Stats.NodeCount)
		assert.Equal(t, 1, result.Stats.ManualNodes)

		memberKey := valueobjects.ManualNodeKey(member.ID()).String()
		memberNode := nodeByKey(result.Nodes, memberKey)
		require.NotNil(t, memberNode)
		assert.Equal(t, aggregates.KindManual, memberNode.Kind)
		assert.Equal(t, "Grandma Rose", memberNode.DisplayName)

		root := nodeByKey(result.Nodes, result.RootKey)
		assert.Equal(t, []string{memberKey}, root.Parents)
	})

	t.Run("linked members display account data under the manual key", func(t *testing.T) {
		f := newFixture()
		f.cfg.EnablePlaceholderParents = false
		alice := f.registerAccount(t, "Alice", "alice@example.com", "")
		rose := f.registerAccount(t, "Rose Senior", "rose@example.com", "1940-03-15")
		member := f.addMember(t, alice, "Grandma Rose", valueobjects.RelationshipParent)

		_, err := member.LinkTo(rose.ID())
		require.NoError(t, err)
		member.MarkEventsAsCommitted()
		require.NoError(t, f.members.Save(ctx, member))

		result, err := newTreeHandler(f, nil).Handle(ctx, queries.GetFamilyTreeQuery{
			ViewerID:       rose.ID().String(),
			StartAccountID: alice.ID().String(),
		})
		require.NoError(t, err)

		memberKey := valueobjects.ManualNodeKey(member.ID()).String()
		memberNode := nodeByKey(result.Nodes, memberKey)
		require.NotNil(t, memberNode)
		assert.Equal(t, aggregates.KindManual, memberNode.Kind, "provenance survives linking")
		assert.Equal(t, "Rose Senior", memberNode.DisplayName)
		assert.Equal(t, "1940-03-15", memberNode.DateOfBirth, "the linked account sees its own data")
	})

	t.Run("unknown start account", func(t *testing.T) {
		f := newFixture()
		viewer := valueobjects.NewPersonID().String()

		_, err := newTreeHandler(f, nil).Handle(ctx, queries.GetFamilyTreeQuery{
			ViewerID:       viewer,
			StartAccountID: valueobjects.NewPersonID().String(),
		})
		assert.ErrorIs(t, err, pkgerrors.ErrAccountNotFound)
	})

	t.Run("truncates at the node limit", func(t *testing.T) {
		f := newFixture()
		f.cfg.EnablePlaceholderParents = false
		f.cfg.MaxTreeNodes = 2
		alice := f.registerAccount(t, "Alice", "alice@example.com", "")
		bob := f.registerAccount(t, "Bob", "bob@example.com", "")
		carol := f.registerAccount(t, "Carol", "carol@example.com", "")
		f.connect(t, alice, bob, valueobjects.RelationshipSpouse)
		f.connect(t, bob, carol, valueobjects.RelationshipSibling)

		result, err := newTreeHandler(f, nil).Handle(ctx, queries.GetFamilyTreeQuery{
			ViewerID:       alice.ID().String(),
			StartAccountID: alice.ID().String(),
		})
		require.NoError(t, err)

		assert.Equal(t, 2, result.Stats.NodeCount)
		assert.Nil(t, nodeByKey(result.Nodes, valueobjects.UserNodeKey(carol.ID()).String()))
	})
}

func TestFamilyTreePlaceholders(t *testing.T) {
	ctx := context.Background()

	t.Run("parentless root gets synthetic parents", func(t *testing.T) {
		f := newFixture()
		alice := f.registerAccount(t, "Alice", "alice@example.com", "")

		result, err := newTreeHandler(f, nil).Handle(ctx, queries.GetFamilyTreeQuery{
			ViewerID:       alice.ID().String(),
			StartAccountID: alice.ID().String(),
		})
		require.NoError(t, err)

		assert.True(t, result.Stats.PlaceholdersUsed)

		fatherKey := valueobjects.PlaceholderFatherKey(alice.ID()).String()
		father := nodeByKey(result.Nodes, fatherKey)
		require.NotNil(t, father)
		assert.Equal(t, aggregates.KindPlaceholder, father.Kind)

		root := nodeByKey(result.Nodes, result.RootKey)
		assert.Len(t, root.Parents, 2)
	})

	t.Run("root with recorded parents gets none", func(t *testing.T) {
		f := newFixture()
		alice := f.registerAccount(t, "Alice", "alice@example.com", "")
		bob := f.registerAccount(t, "Bob", "bob@example.com", "")
		f.connect(t, bob, alice, valueobjects.RelationshipParent)

		result, err := newTreeHandler(f, nil).Handle(ctx, queries.GetFamilyTreeQuery{
			ViewerID:       alice.ID().String(),
			StartAccountID: alice.ID().String(),
		})
		require.NoError(t, err)

		assert.False(t, result.Stats.PlaceholdersUsed)
		for _, node := range result.Nodes {
			assert.NotEqual(t, aggregates.KindPlaceholder, node.Kind)
		}
	})

	t.Run("disabled by feature flag", func(t *testing.T) {
		f := newFixture()
		f.cfg.EnablePlaceholderParents = false
		alice := f.registerAccount(t, "Alice", "alice@example.com", "")

		result, err := newTreeHandler(f, nil).Handle(ctx, queries.GetFamilyTreeQuery{
			ViewerID:       alice.ID().String(),
			StartAccountID: alice.ID().String(),
		})
		require.NoError(t, err)

		assert.False(t, result.Stats.PlaceholdersUsed)
		assert.Equal(t, 1, result.Stats.NodeCount)
	})
}

func TestFamilyTreePrivacy(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*fixture, string, string) {
		f := newFixture()
		f.cfg.EnablePlaceholderParents = false
		alice := f.registerAccount(t, "Alice", "alice@example.com", "")
		bob := f.registerAccount(t, "Bob", "bob@example.com", "1980-06-01")
		require.NoError(t, bob.UpdateDetails(bob.Details().WithImageURL("https://cdn.example.com/bob.jpg")))
		require.NoError(t, bob.SetVisibility("PRIVATE"))
		require.NoError(t, f.accounts.Save(ctx, bob))
		f.connect(t, alice, bob, valueobjects.RelationshipSpouse)
		return f, alice.ID().String(), bob.ID().String()
	}

	t.Run("private profiles are hidden from other viewers", func(t *testing.T) {
		f, aliceID, bobID := setup(t)

		result, err := newTreeHandler(f, nil).Handle(ctx, queries.GetFamilyTreeQuery{
			ViewerID:       aliceID,
			StartAccountID: aliceID,
		})
		require.NoError(t, err)

		bobKey := "user-" + bobID
		bobNode := nodeByKey(result.Nodes, bobKey)
		require.NotNil(t, bobNode)
		assert.Equal(t, "Private member", bobNode.DisplayName)
		assert.Empty(t, bobNode.DateOfBirth)
		assert.Empty(t, bobNode.ImageURL)
	})

	t.Run("the account holder always sees their own data", func(t *testing.T) {
		f, aliceID, bobID := setup(t)

		result, err := newTreeHandler(f, nil).Handle(ctx, queries.GetFamilyTreeQuery{
			ViewerID:       bobID,
			StartAccountID: aliceID,
		})
		require.NoError(t, err)

		bobNode := nodeByKey(result.Nodes, "user-"+bobID)
		require.NotNil(t, bobNode)
		assert.Equal(t, "Bob", bobNode.DisplayName)
		assert.Equal(t, "1980-06-01", bobNode.DateOfBirth)
		assert.Equal(t, "https://cdn.example.com/bob.jpg", bobNode.ImageURL)
	})

	t.Run("members visibility hides only the date of birth", func(t *testing.T) {
		f := newFixture()
		f.cfg.EnablePlaceholderParents = false
		alice := f.registerAccount(t, "Alice", "alice@example.com", "")
		bob := f.registerAccount(t, "Bob", "bob@example.com", "1980-06-01")
		f.connect(t, alice, bob, valueobjects.RelationshipSpouse)

		result, err := newTreeHandler(f, nil).Handle(ctx, queries.GetFamilyTreeQuery{
			ViewerID:       alice.ID().String(),
			StartAccountID: alice.ID().String(),
		})
		require.NoError(t, err)

		bobNode := nodeByKey(result.Nodes, valueobjects.UserNodeKey(bob.ID()).String())
		require.NotNil(t, bobNode)
		assert.Equal(t, "Bob", bobNode.DisplayName)
		assert.Empty(t, bobNode.DateOfBirth)
	})
}

func TestFamilyTreeCaching(t *testing.T) {
	ctx := context.Background()

	f := newFixture()
	f.cfg.EnablePlaceholderParents = false
	alice := f.registerAccount(t, "Alice", "alice@example.com", "")
	cache := newStubCache()
	handler := newTreeHandler(f, cache)

	query := queries.GetFamilyTreeQuery{
		ViewerID:       alice.ID().String(),
		StartAccountID: alice.ID().String(),
	}

	first, err := handler.Handle(ctx, query)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Stats.NodeCount)

	// A mutation the cache has not seen yet stays invisible until the
	// cached tree is invalidated
	bob := f.registerAccount(t, "Bob", "bob@example.com", "")
	f.connect(t, alice, bob, valueobjects.RelationshipSpouse)

	second, err := handler.Handle(ctx, query)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Stats.NodeCount)

	require.NoError(t, cache.Delete(ctx, "tree:"+alice.ID().String()))

	third, err := handler.Handle(ctx, query)
	require.NoError(t, err)
	assert.Equal(t, 2, third.Stats.NodeCount)
}
