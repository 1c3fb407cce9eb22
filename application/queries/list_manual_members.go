package queries

import (
	"errors"
	"time"
)

// ListManualMembersQuery lists the members an account has recorded
type ListManualMembersQuery struct {
	AdderID string `json:"adder_id"`
}

// Validate validates the query
func (q ListManualMembersQuery) Validate() error {
	if q.AdderID == "" {
		return errors.New("adderID is required")
	}
	return nil
}

// ManualMemberView is one manual member as the API renders it
type ManualMemberView struct {
	ID              string    `json:"id"`
	DisplayName     string    `json:"display_name"`
	Gender          string    `json:"gender"`
	DateOfBirth     string    `json:"date_of_birth,omitempty"`
	RelationToAdder string    `json:"relation_to_adder"`
	Notes           string    `json:"notes,omitempty"`
	LinkedAccountID string    `json:"linked_account_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// ListManualMembersResult holds the listed members
type ListManualMembersResult struct {
	Members []ManualMemberView `json:"members"`
}
