package aggregates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"familytree-backend/domain/core/valueobjects"
)

func newTestGraph(t *testing.T) (*FamilyGraph, string) {
	t.Helper()

	rootKey := valueobjects.UserNodeKey(valueobjects.NewPersonID())
	graph, err := NewFamilyGraph(rootKey)
	require.NoError(t, err)
	return graph, rootKey.String()
}

func TestNewFamilyGraph(t *testing.T) {
	_, err := NewFamilyGraph(valueobjects.NodeKey{})
	assert.Error(t, err)
}

func TestFamilyGraphAddNode(t *testing.T) {
	graph, rootKey := newTestGraph(t)

	root := graph.AddNode(&TreeNode{Key: rootKey, Kind: KindUser, DisplayName: "Root"})
	assert.True(t, root.IsRoot)
	assert.Same(t, root, graph.Root())

	// Re-adding an existing key keeps the first version
	again := graph.AddNode(&TreeNode{Key: rootKey, Kind: KindUser, DisplayName: "Changed"})
	assert.Same(t, root, again)
	assert.Equal(t, "Root", graph.Node(rootKey).DisplayName)
	assert.Equal(t, 1, graph.NodeCount())
}

func TestFamilyGraphMarkProcessed(t *testing.T) {
	graph, rootKey := newTestGraph(t)

	assert.True(t, graph.MarkProcessed(rootKey), "first visit expands")
	assert.False(t, graph.MarkProcessed(rootKey), "second visit must not")
	assert.True(t, graph.IsProcessed(rootKey))
}

func TestFamilyGraphAdjacencySymmetry(t *testing.T) {
	graph, rootKey := newTestGraph(t)
	parentKey := valueobjects.UserNodeKey(valueobjects.NewPersonID()).String()
	spouseKey := valueobjects.UserNodeKey(valueobjects.NewPersonID()).String()

	graph.AddNode(&TreeNode{Key: rootKey, Kind: KindUser})
	graph.AddNode(&TreeNode{Key: parentKey, Kind: KindUser})
	graph.AddNode(&TreeNode{Key: spouseKey, Kind: KindUser})

	graph.AddParent(rootKey, parentKey)
	assert.Equal(t, []string{parentKey}, graph.Node(rootKey).Parents)
	assert.Equal(t, []string{rootKey}, graph.Node(parentKey).Children)

	graph.AddSpouse(rootKey, spouseKey)
	assert.Equal(t, []string{spouseKey}, graph.Node(rootKey).Spouses)
	assert.Equal(t, []string{rootKey}, graph.Node(spouseKey).Spouses)
}

func TestFamilyGraphDedupAdjacency(t *testing.T) {
	graph, rootKey := newTestGraph(t)
	siblingKey := valueobjects.UserNodeKey(valueobjects.NewPersonID()).String()

	graph.AddNode(&TreeNode{Key: rootKey, Kind: KindUser})
	graph.AddNode(&TreeNode{Key: siblingKey, Kind: KindUser})

	// Reaching the same pair along both edge halves duplicates the links
	graph.AddSibling(rootKey, siblingKey)
	graph.AddSibling(siblingKey, rootKey)
	require.Len(t, graph.Node(rootKey).Siblings, 2)

	graph.DedupAdjacency()
	assert.Equal(t, []string{siblingKey}, graph.Node(rootKey).Siblings)
	assert.Equal(t, []string{rootKey}, graph.Node(siblingKey).Siblings)
}

func TestFamilyGraphNodesPreserveInsertionOrder(t *testing.T) {
	graph, rootKey := newTestGraph(t)
	secondKey := valueobjects.UserNodeKey(valueobjects.NewPersonID()).String()
	thirdKey := valueobjects.ManualNodeKey(valueobjects.NewPersonID()).String()

	graph.AddNode(&TreeNode{Key: rootKey, Kind: KindUser})
	graph.AddNode(&TreeNode{Key: secondKey, Kind: KindUser})
	graph.AddNode(&TreeNode{Key: thirdKey, Kind: KindManual})

	nodes := graph.Nodes()
	require.Len(t, nodes, 3)
	assert.Equal(t, rootKey, nodes[0].Key)
	assert.Equal(t, secondKey, nodes[1].Key)
	assert.Equal(t, thirdKey, nodes[2].Key)
}
