package commands

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"familytree-backend/application/ports"
	"familytree-backend/domain/core/entities"
	"familytree-backend/domain/core/valueobjects"
	domainevents "familytree-backend/domain/events"
	pkgerrors "familytree-backend/pkg/errors"
)

// CreateRelationshipCommand records a relationship from the caller to a
// target account. The type reads "caller is type of target"; the
// reciprocal twin is written in the same transaction.
type CreateRelationshipCommand struct {
	InitiatorID string `json:"initiator_id" validate:"required,uuid"`
	TargetID    string `json:"target_id" validate:"required,uuid"`
	Type        string `json:"type" validate:"required,oneof=PARENT CHILD SPOUSE SIBLING"`
}

// Validate validates the command
func (cmd CreateRelationshipCommand) Validate() error {
	if cmd.InitiatorID == "" {
		return errors.New("initiator ID is required")
	}
	if cmd.TargetID == "" {
		return errors.New("target ID is required")
	}
	if cmd.InitiatorID == cmd.TargetID {
		return pkgerrors.ErrSelfRelationship
	}
	if _, err := valueobjects.ParseRelationshipType(cmd.Type); err != nil {
		return err
	}
	return nil
}

// CreateRelationshipHandler handles the CreateRelationshipCommand
type CreateRelationshipHandler struct {
	accountRepo      ports.AccountRepository
	relationshipRepo ports.RelationshipRepository
	eventStore       ports.EventStore
	eventBus         ports.EventPublisher
	cache            ports.Cache
	logger           *zap.Logger
}

// NewCreateRelationshipHandler creates a new handler instance
func NewCreateRelationshipHandler(
	accountRepo ports.AccountRepository,
	relationshipRepo ports.RelationshipRepository,
	eventStore ports.EventStore,
	eventBus ports.EventPublisher,
	cache ports.Cache,
	logger *zap.Logger,
) *CreateRelationshipHandler {
	return &CreateRelationshipHandler{
		accountRepo:      accountRepo,
		relationshipRepo: relationshipRepo,
		eventStore:       eventStore,
		eventBus:         eventBus,
		cache:            cache,
		logger:           logger,
	}
}

// Handle executes the create relationship command
func (h *CreateRelationshipHandler) Handle(ctx context.Context, cmd CreateRelationshipCommand) (*entities.Relationship, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	initiatorID, err := valueobjects.NewPersonIDFromString(cmd.InitiatorID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	targetID, err := valueobjects.NewPersonIDFromString(cmd.TargetID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	relType, err := valueobjects.ParseRelationshipType(cmd.Type)
	if err != nil {
		return nil, err
	}

	// The target must be a registered account before an edge can point at it
	exists, err := h.accountRepo.Exists(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, pkgerrors.ErrAccountNotFound
	}

	primary, reciprocal, err := entities.NewRelationshipPair(initiatorID, targetID, relType)
	if err != nil {
		return nil, err
	}

	// Both halves land or neither does. A uniqueness collision on either
	// half aborts the pair and surfaces as DUPLICATE_RELATIONSHIP.
	if err := h.relationshipRepo.CreatePair(ctx, primary, reciprocal); err != nil {
		return nil, err
	}

	h.logger.Info("Relationship pair created",
		zap.String("relationship_id", primary.ID().String()),
		zap.String("initiator_id", initiatorID.String()),
		zap.String("target_id", targetID.String()),
		zap.String("type", relType.String()),
	)

	invalidateTrees(ctx, h.cache, initiatorID.String(), targetID.String())

	persistAndPublish(ctx, h.eventStore, h.eventBus, h.logger, []domainevents.DomainEvent{
		domainevents.NewRelationshipCreated(
			primary.ID(), initiatorID, targetID, relType, time.Now(),
		),
	})

	return primary, nil
}
