package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"familytree-backend/application/ports"
	"familytree-backend/application/queries"
	"familytree-backend/domain/core/entities"
)

const defaultSearchLimit = 20

// SearchAccountsHandler finds accounts by display name prefix. Results
// carry only what a stranger may see; private profiles are skipped.
type SearchAccountsHandler struct {
	accountRepo ports.AccountRepository
	logger      *zap.Logger
}

// NewSearchAccountsHandler creates a new handler
func NewSearchAccountsHandler(accountRepo ports.AccountRepository, logger *zap.Logger) *SearchAccountsHandler {
	return &SearchAccountsHandler{
		accountRepo: accountRepo,
		logger:      logger,
	}
}

// Handle executes the search accounts query
func (h *SearchAccountsHandler) Handle(ctx context.Context, query queries.SearchAccountsQuery) (*queries.SearchAccountsResult, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	limit := query.Limit
	if limit <= 0 || limit > 100 {
		limit = defaultSearchLimit
	}

	accounts, err := h.accountRepo.SearchByName(ctx, query.Name, limit)
	if err != nil {
		return nil, err
	}

	result := &queries.SearchAccountsResult{
		Accounts: make([]queries.AccountView, 0, len(accounts)),
	}
	for _, account := range accounts {
		if account.Visibility() == entities.VisibilityPrivate {
			continue
		}
		details := account.Details()
		view := queries.AccountView{
			ID:          account.ID().String(),
			DisplayName: details.DisplayName(),
			Gender:      details.Gender().String(),
			Visibility:  string(account.Visibility()),
		}
		if account.Visibility() == entities.VisibilityPublic {
			view.DateOfBirth = details.DateOfBirthString()
		}
		result.Accounts = append(result.Accounts, view)
	}

	return result, nil
}
