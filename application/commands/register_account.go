package commands

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"familytree-backend/application/ports"
	"familytree-backend/domain/core/entities"
	"familytree-backend/domain/core/valueobjects"
	pkgerrors "familytree-backend/pkg/errors"
)

// RegisterAccountCommand creates a new registered account
type RegisterAccountCommand struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"display_name" validate:"required,min=1,max=120"`
	DateOfBirth string `json:"date_of_birth,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Gender      string `json:"gender,omitempty"`
	ImageURL    string `json:"image_url,omitempty" validate:"omitempty,url"`
}

// Validate validates the command
func (cmd RegisterAccountCommand) Validate() error {
	if strings.TrimSpace(cmd.Email) == "" {
		return errors.New("email is required")
	}
	if strings.TrimSpace(cmd.DisplayName) == "" {
		return errors.New("display name is required")
	}
	return nil
}

// RegisterAccountHandler handles the RegisterAccountCommand
type RegisterAccountHandler struct {
	accountRepo ports.AccountRepository
	eventStore  ports.EventStore
	eventBus    ports.EventPublisher
	logger      *zap.Logger
}

// NewRegisterAccountHandler creates a new handler instance
func NewRegisterAccountHandler(
	accountRepo ports.AccountRepository,
	eventStore ports.EventStore,
	eventBus ports.EventPublisher,
	logger *zap.Logger,
) *RegisterAccountHandler {
	return &RegisterAccountHandler{
		accountRepo: accountRepo,
		eventStore:  eventStore,
		eventBus:    eventBus,
		logger:      logger,
	}
}

// Handle executes the register account command
func (h *RegisterAccountHandler) Handle(ctx context.Context, cmd RegisterAccountCommand) (*entities.Account, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	existing, err := h.accountRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(cmd.Email)))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, pkgerrors.NewConflictError("an account with this email already exists")
	}

	details, err := valueobjects.NewPersonDetails(cmd.DisplayName, cmd.DateOfBirth, cmd.Gender)
	if err != nil {
		return nil, err
	}
	details = details.WithImageURL(cmd.ImageURL)

	account, err := entities.NewAccount(cmd.Email, details)
	if err != nil {
		return nil, err
	}

	if err := h.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}

	h.logger.Info("Account registered",
		zap.String("account_id", account.ID().String()),
	)

	// account.registered fans out to the member-match suggester
	persistAndPublish(ctx, h.eventStore, h.eventBus, h.logger, account.GetUncommittedEvents())
	account.MarkEventsAsCommitted()

	return account, nil
}
