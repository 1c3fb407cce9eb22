package services

import (
	"go.uber.org/zap"

	"familytree-backend/domain/core/aggregates"
	"familytree-backend/domain/core/valueobjects"
)

// PlaceholderAugmenter injects synthetic Father and Mother nodes above a
// tree root that has no recorded parents. Keys are deterministic per
// root, so rebuilding the same tree always yields the same placeholders.
type PlaceholderAugmenter struct {
	logger *zap.Logger
}

// NewPlaceholderAugmenter creates a new augmenter
func NewPlaceholderAugmenter(logger *zap.Logger) *PlaceholderAugmenter {
	return &PlaceholderAugmenter{logger: logger}
}

// Augment applies placeholder parents when, and only when, the root node
// has zero parents. Non-root parentless nodes are never touched. Returns
// whether placeholders were added.
func (s *PlaceholderAugmenter) Augment(graph *aggregates.FamilyGraph, rootID valueobjects.PersonID) bool {
	root := graph.Root()
	if root == nil || len(root.Parents) > 0 {
		return false
	}

	fatherKey := valueobjects.PlaceholderFatherKey(rootID).String()
	motherKey := valueobjects.PlaceholderMotherKey(rootID).String()

	graph.AddNode(&aggregates.TreeNode{
		Key:         fatherKey,
		Kind:        aggregates.KindPlaceholder,
		DisplayName: "Father",
		Gender:      valueobjects.GenderMale.String(),
		Children:    []string{root.Key},
		Spouses:     []string{motherKey},
	})
	graph.AddNode(&aggregates.TreeNode{
		Key:         motherKey,
		Kind:        aggregates.KindPlaceholder,
		DisplayName: "Mother",
		Gender:      valueobjects.GenderFemale.String(),
		Children:    []string{root.Key},
		Spouses:     []string{fatherKey},
	})

	// The root's parent list becomes exactly the placeholder pair
	root.Parents = []string{fatherKey, motherKey}

	s.logger.Debug("Placeholder parents injected",
		zap.String("root_key", root.Key),
		zap.String("father_key", fatherKey),
		zap.String("mother_key", motherKey),
	)

	return true
}
