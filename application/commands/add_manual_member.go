package commands

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"familytree-backend/application/ports"
	"familytree-backend/domain/core/entities"
	"familytree-backend/domain/core/validators"
	"familytree-backend/domain/core/valueobjects"
	pkgerrors "familytree-backend/pkg/errors"
)

// AddManualMemberCommand records a family member who has no account of
// their own. No relationship edges are written: the connection lives in
// the member's relation-to-adder field until the member is linked to a
// registered account.
type AddManualMemberCommand struct {
	AdderID         string `json:"adder_id" validate:"required,uuid"`
	Name            string `json:"name" validate:"required,min=1,max=120"`
	RelationToAdder string `json:"relation_to_adder" validate:"required,oneof=PARENT CHILD SPOUSE SIBLING"`
	DateOfBirth     string `json:"date_of_birth,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Gender          string `json:"gender,omitempty"`
	ImageURL        string `json:"image_url,omitempty" validate:"omitempty,url"`
	Notes           string `json:"notes,omitempty" validate:"max=2000"`
}

// Validate validates the command
func (cmd AddManualMemberCommand) Validate() error {
	if cmd.AdderID == "" {
		return errors.New("adder ID is required")
	}
	return validators.NewMemberValidator().ValidateNewMember(
		cmd.Name, cmd.DateOfBirth, cmd.RelationToAdder, cmd.Notes,
	)
}

// AddManualMemberHandler handles the AddManualMemberCommand
type AddManualMemberHandler struct {
	memberRepo ports.ManualMemberRepository
	eventStore ports.EventStore
	eventBus   ports.EventPublisher
	cache      ports.Cache
	logger     *zap.Logger
}

// NewAddManualMemberHandler creates a new handler instance
func NewAddManualMemberHandler(
	memberRepo ports.ManualMemberRepository,
	eventStore ports.EventStore,
	eventBus ports.EventPublisher,
	cache ports.Cache,
	logger *zap.Logger,
) *AddManualMemberHandler {
	return &AddManualMemberHandler{
		memberRepo: memberRepo,
		eventStore: eventStore,
		eventBus:   eventBus,
		cache:      cache,
		logger:     logger,
	}
}

// Handle executes the add manual member command
func (h *AddManualMemberHandler) Handle(ctx context.Context, cmd AddManualMemberCommand) (*entities.ManualMember, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	adderID, err := valueobjects.NewPersonIDFromString(cmd.AdderID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	relType, err := valueobjects.ParseRelationshipType(cmd.RelationToAdder)
	if err != nil {
		return nil, err
	}
	details, err := valueobjects.NewPersonDetails(cmd.Name, cmd.DateOfBirth, cmd.Gender)
	if err != nil {
		return nil, err
	}
	details = details.WithImageURL(cmd.ImageURL)

	member, err := entities.NewManualMember(adderID, details, relType, cmd.Notes)
	if err != nil {
		return nil, err
	}

	if err := h.memberRepo.Save(ctx, member); err != nil {
		return nil, err
	}

	h.logger.Info("Manual member added",
		zap.String("member_id", member.ID().String()),
		zap.String("adder_id", adderID.String()),
		zap.String("relation_to_adder", relType.String()),
	)

	invalidateTrees(ctx, h.cache, adderID.String())

	persistAndPublish(ctx, h.eventStore, h.eventBus, h.logger, member.GetUncommittedEvents())
	member.MarkEventsAsCommitted()

	return member, nil
}
