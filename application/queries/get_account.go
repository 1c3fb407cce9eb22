package queries

import (
	"errors"
)

// GetAccountQuery fetches one account profile as seen by a viewer
type GetAccountQuery struct {
	ViewerID  string `json:"viewer_id"`
	AccountID string `json:"account_id"`
}

// Validate validates the query
func (q GetAccountQuery) Validate() error {
	if q.ViewerID == "" {
		return errors.New("viewerID is required")
	}
	if q.AccountID == "" {
		return errors.New("accountID is required")
	}
	return nil
}

// AccountView is a profile rendered for a viewer, after visibility rules
type AccountView struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Gender      string `json:"gender"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	Visibility  string `json:"visibility"`
	Email       string `json:"email,omitempty"`
}
