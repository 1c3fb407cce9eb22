package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"familytree-backend/domain/core/aggregates"
	"familytree-backend/domain/core/valueobjects"
)

func buildRootedGraph(t *testing.T, rootID valueobjects.PersonID) *aggregates.FamilyGraph {
	t.Helper()

	graph, err := aggregates.NewFamilyGraph(valueobjects.UserNodeKey(rootID))
	require.NoError(t, err)
	graph.AddNode(&aggregates.TreeNode{
		Key:  valueobjects.UserNodeKey(rootID).String(),
		Kind: aggregates.KindUser,
	})
	return graph
}

func TestAugmentParentlessRoot(t *testing.T) {
	augmenter := NewPlaceholderAugmenter(zap.NewNop())
	rootID := valueobjects.NewPersonID()
	graph := buildRootedGraph(t, rootID)

	added := augmenter.Augment(graph, rootID)
	require.True(t, added)

	root := graph.Root()
	fatherKey := valueobjects.PlaceholderFatherKey(rootID).String()
	motherKey := valueobjects.PlaceholderMotherKey(rootID).String()

	assert.Equal(t, []string{fatherKey, motherKey}, root.Parents)

	father := graph.Node(fatherKey)
	require.NotNil(t, father)
	assert.Equal(t, aggregates.KindPlaceholder, father.Kind)
	assert.Equal(t, "Father", father.DisplayName)
	assert.Equal(t, valueobjects.GenderMale.String(), father.Gender)
	assert.Equal(t, []string{root.Key}, father.Children)
	assert.Equal(t, []string{motherKey}, father.Spouses)

	mother := graph.Node(motherKey)
	require.NotNil(t, mother)
	assert.Equal(t, "Mother", mother.DisplayName)
	assert.Equal(t, []string{fatherKey}, mother.Spouses)
}

func TestAugmentIsDeterministic(t *testing.T) {
	augmenter := NewPlaceholderAugmenter(zap.NewNop())
	rootID := valueobjects.NewPersonID()

	first := buildRootedGraph(t, rootID)
	second := buildRootedGraph(t, rootID)

	require.True(t, augmenter.Augment(first, rootID))
	require.True(t, augmenter.Augment(second, rootID))

	// Rebuilding the same tree yields the same placeholder keys
	assert.Equal(t, first.Root().Parents, second.Root().Parents)
}

func TestAugmentSkipsRootWithParents(t *testing.T) {
	augmenter := NewPlaceholderAugmenter(zap.NewNop())
	rootID := valueobjects.NewPersonID()
	graph := buildRootedGraph(t, rootID)

	parentKey := valueobjects.UserNodeKey(valueobjects.NewPersonID()).String()
	graph.AddNode(&aggregates.TreeNode{Key: parentKey, Kind: aggregates.KindUser})
	graph.AddParent(graph.RootKey(), parentKey)

	assert.False(t, augmenter.Augment(graph, rootID))
	assert.Equal(t, 2, graph.NodeCount())
}

func TestAugmentLeavesNonRootNodesAlone(t *testing.T) {
	augmenter := NewPlaceholderAugmenter(zap.NewNop())
	rootID := valueobjects.NewPersonID()
	graph := buildRootedGraph(t, rootID)

	// A parentless non-root node must never receive placeholders
	spouseKey := valueobjects.UserNodeKey(valueobjects.NewPersonID()).String()
	graph.AddNode(&aggregates.TreeNode{Key: spouseKey, Kind: aggregates.KindUser})
	graph.AddSpouse(graph.RootKey(), spouseKey)

	require.True(t, augmenter.Augment(graph, rootID))
	assert.Empty(t, graph.Node(spouseKey).Parents)
}

func TestAugmentMissingRoot(t *testing.T) {
	augmenter := NewPlaceholderAugmenter(zap.NewNop())
	rootID := valueobjects.NewPersonID()

	graph, err := aggregates.NewFamilyGraph(valueobjects.UserNodeKey(rootID))
	require.NoError(t, err)

	assert.False(t, augmenter.Augment(graph, rootID))
}
