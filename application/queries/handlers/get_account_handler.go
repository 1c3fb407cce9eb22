package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"familytree-backend/application/ports"
	"familytree-backend/application/queries"
	"familytree-backend/domain/core/entities"
	"familytree-backend/domain/core/valueobjects"
	pkgerrors "familytree-backend/pkg/errors"
)

// GetAccountHandler fetches one account profile with visibility applied
type GetAccountHandler struct {
	accountRepo ports.AccountRepository
	logger      *zap.Logger
}

// NewGetAccountHandler creates a new handler
func NewGetAccountHandler(accountRepo ports.AccountRepository, logger *zap.Logger) *GetAccountHandler {
	return &GetAccountHandler{
		accountRepo: accountRepo,
		logger:      logger,
	}
}

// Handle executes the get account query
func (h *GetAccountHandler) Handle(ctx context.Context, query queries.GetAccountQuery) (*queries.AccountView, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	accountID, err := valueobjects.NewPersonIDFromString(query.AccountID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	account, err := h.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, pkgerrors.ErrAccountNotFound
	}

	details := account.Details()
	view := &queries.AccountView{
		ID:          account.ID().String(),
		DisplayName: details.DisplayName(),
		Gender:      details.Gender().String(),
		DateOfBirth: details.DateOfBirthString(),
		Visibility:  string(account.Visibility()),
	}

	// Only the account holder sees their own email and, for private
	// profiles, their own data
	self := query.ViewerID == account.ID().String()
	if self {
		view.Email = account.Email()
		return view, nil
	}

	switch account.Visibility() {
	case entities.VisibilityPrivate:
		view.DisplayName = "Private member"
		view.DateOfBirth = ""
	case entities.VisibilityMembers:
		view.DateOfBirth = ""
	}

	return view, nil
}
