package queries

import (
	"errors"
	"time"

	"familytree-backend/pkg/common"
)

// ListRelationshipsQuery lists the edges an account initiated, one
// page at a time
type ListRelationshipsQuery struct {
	AccountID  string                  `json:"account_id"`
	Pagination common.PaginationParams `json:"pagination"`
}

// Validate validates the query
func (q ListRelationshipsQuery) Validate() error {
	if q.AccountID == "" {
		return errors.New("accountID is required")
	}
	return nil
}

// RelationshipView is one edge as the API renders it. The type reads
// "the listing account is type of target".
type RelationshipView struct {
	ID         string    `json:"id"`
	TargetID   string    `json:"target_id"`
	TargetName string    `json:"target_name,omitempty"`
	Type       string    `json:"type"`
	CreatedAt  time.Time `json:"created_at"`
}

// ListRelationshipsResult holds one page of listed edges
type ListRelationshipsResult struct {
	Relationships []RelationshipView     `json:"relationships"`
	Pagination    *common.PaginationInfo `json:"pagination"`
}
