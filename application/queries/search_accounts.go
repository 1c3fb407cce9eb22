package queries

import (
	"errors"
)

// SearchAccountsQuery finds registered accounts by display name prefix.
// Used by the UI when picking a relationship target.
type SearchAccountsQuery struct {
	Name  string `json:"name"`
	Limit int    `json:"limit"`
}

// Validate validates the query
func (q SearchAccountsQuery) Validate() error {
	if q.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

// SearchAccountsResult holds the matched accounts
type SearchAccountsResult struct {
	Accounts []AccountView `json:"accounts"`
}
