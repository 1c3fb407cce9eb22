package aggregates

import (
	"errors"

	"familytree-backend/domain/core/valueobjects"
)

// NodeKind classifies a tree node by the provenance of the person behind it
type NodeKind string

const (
	KindUser        NodeKind = "USER"
	KindManual      NodeKind = "MANUAL"
	KindPlaceholder NodeKind = "PLACEHOLDER"
)

// TreeNode is the rendered view of one person in a family tree
type TreeNode struct {
	Key         string   `json:"key"`
	Kind        NodeKind `json:"kind"`
	DisplayName string   `json:"display_name"`
	Gender      string   `json:"gender"`
	DateOfBirth string   `json:"date_of_birth,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
	Parents     []string `json:"parents"`
	Children    []string `json:"children"`
	Spouses     []string `json:"spouses"`
	Siblings    []string `json:"siblings"`
	IsRoot      bool     `json:"is_root"`
}

// FamilyGraph is the aggregate assembled during a tree build. It is the
// consistency boundary for the traversal: node identity, the processed
// set that guarantees termination on cyclic graphs, and adjacency lists.
type FamilyGraph struct {
	rootKey   string
	nodes     map[string]*TreeNode
	order     []string
	processed map[string]bool
}

// NewFamilyGraph creates an empty graph rooted at the given node key
func NewFamilyGraph(rootKey valueobjects.NodeKey) (*FamilyGraph, error) {
	if rootKey.IsEmpty() {
		return nil, errors.New("root key required")
	}

	return &FamilyGraph{
		rootKey:   rootKey.String(),
		nodes:     make(map[string]*TreeNode),
		order:     make([]string, 0),
		processed: make(map[string]bool),
	}, nil
}

// RootKey returns the key of the traversal root
func (g *FamilyGraph) RootKey() string {
	return g.rootKey
}

// Root returns the root node, or nil before it has been added
func (g *FamilyGraph) Root() *TreeNode {
	return g.nodes[g.rootKey]
}

// AddNode registers a node. Re-adding an existing key keeps the first
// version; traversal may reach the same person along several paths.
func (g *FamilyGraph) AddNode(node *TreeNode) *TreeNode {
	if existing, ok := g.nodes[node.Key]; ok {
		return existing
	}

	if node.Key == g.rootKey {
		node.IsRoot = true
	}
	g.nodes[node.Key] = node
	g.order = append(g.order, node.Key)
	return node
}

// Node returns the node for a key, or nil
func (g *FamilyGraph) Node(key string) *TreeNode {
	return g.nodes[key]
}

// HasNode reports whether a key is present
func (g *FamilyGraph) HasNode(key string) bool {
	_, ok := g.nodes[key]
	return ok
}

// MarkProcessed records that a node's edges have been expanded. It
// returns false when the node was already processed; callers must not
// expand it again. This is what terminates BFS on cyclic graphs.
func (g *FamilyGraph) MarkProcessed(key string) bool {
	if g.processed[key] {
		return false
	}
	g.processed[key] = true
	return true
}

// IsProcessed reports whether a node's edges have been expanded
func (g *FamilyGraph) IsProcessed(key string) bool {
	return g.processed[key]
}

// AddParent records parentKey as a parent of key, and key as a child of
// parentKey when both nodes exist. Adjacency stays symmetric by
// construction.
func (g *FamilyGraph) AddParent(key, parentKey string) {
	if node, ok := g.nodes[key]; ok {
		node.Parents = append(node.Parents, parentKey)
	}
	if parent, ok := g.nodes[parentKey]; ok {
		parent.Children = append(parent.Children, key)
	}
}

// AddChild records childKey as a child of key and the mirror link
func (g *FamilyGraph) AddChild(key, childKey string) {
	g.AddParent(childKey, key)
}

// AddSpouse records a mutual spouse link
func (g *FamilyGraph) AddSpouse(key, spouseKey string) {
	if node, ok := g.nodes[key]; ok {
		node.Spouses = append(node.Spouses, spouseKey)
	}
	if spouse, ok := g.nodes[spouseKey]; ok {
		spouse.Spouses = append(spouse.Spouses, key)
	}
}

// AddSibling records a mutual sibling link
func (g *FamilyGraph) AddSibling(key, siblingKey string) {
	if node, ok := g.nodes[key]; ok {
		node.Siblings = append(node.Siblings, siblingKey)
	}
	if sibling, ok := g.nodes[siblingKey]; ok {
		sibling.Siblings = append(sibling.Siblings, key)
	}
}

// DedupAdjacency removes duplicate keys from every adjacency list while
// preserving first-seen order. Reaching the same pair along both edge
// halves, or along several paths, otherwise leaves duplicates behind.
func (g *FamilyGraph) DedupAdjacency() {
	for _, node := range g.nodes {
		node.Parents = dedupKeys(node.Parents)
		node.Children = dedupKeys(node.Children)
		node.Spouses = dedupKeys(node.Spouses)
		node.Siblings = dedupKeys(node.Siblings)
	}
}

// Nodes returns all nodes in insertion order
func (g *FamilyGraph) Nodes() []*TreeNode {
	out := make([]*TreeNode, 0, len(g.order))
	for _, key := range g.order {
		out = append(out, g.nodes[key])
	}
	return out
}

// NodeCount returns the number of nodes in the graph
func (g *FamilyGraph) NodeCount() int {
	return len(g.nodes)
}

func dedupKeys(keys []string) []string {
	if len(keys) < 2 {
		return keys
	}

	seen := make(map[string]bool, len(keys))
	out := keys[:0]
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}
