package queries

import (
	"errors"

	"familytree-backend/domain/core/aggregates"
)

// GetFamilyTreeQuery requests the connected family view from a starting
// account. ViewerID drives privacy redaction; it is usually the start
// account but any member may view another member's tree.
type GetFamilyTreeQuery struct {
	ViewerID       string `json:"viewer_id"`
	StartAccountID string `json:"start_account_id"`
}

// Validate validates the query
func (q GetFamilyTreeQuery) Validate() error {
	if q.ViewerID == "" {
		return errors.New("viewerID is required")
	}
	if q.StartAccountID == "" {
		return errors.New("startAccountID is required")
	}
	return nil
}

// GetFamilyTreeResult is the rendered tree
type GetFamilyTreeResult struct {
	RootKey string                 `json:"root_key"`
	Nodes   []*aggregates.TreeNode `json:"nodes"`
	Stats   TreeStats              `json:"stats"`
}

// TreeStats contains tree statistics
type TreeStats struct {
	NodeCount        int  `json:"node_count"`
	AccountNodes     int  `json:"account_nodes"`
	ManualNodes      int  `json:"manual_nodes"`
	PlaceholdersUsed bool `json:"placeholders_used"`
}
