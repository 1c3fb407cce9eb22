package commands

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"familytree-backend/application/ports"
	"familytree-backend/domain/core/valueobjects"
	domainevents "familytree-backend/domain/events"
	pkgerrors "familytree-backend/pkg/errors"
)

// DeleteRelationshipCommand removes a relationship and its reciprocal twin
type DeleteRelationshipCommand struct {
	CallerID       string `json:"caller_id" validate:"required,uuid"`
	RelationshipID string `json:"relationship_id" validate:"required,uuid"`
}

// Validate validates the command
func (cmd DeleteRelationshipCommand) Validate() error {
	if cmd.CallerID == "" {
		return errors.New("caller ID is required")
	}
	if cmd.RelationshipID == "" {
		return errors.New("relationship ID is required")
	}
	return nil
}

// DeleteRelationshipHandler handles the DeleteRelationshipCommand
type DeleteRelationshipHandler struct {
	relationshipRepo ports.RelationshipRepository
	eventStore       ports.EventStore
	eventBus         ports.EventPublisher
	cache            ports.Cache
	logger           *zap.Logger
}

// NewDeleteRelationshipHandler creates a new handler instance
func NewDeleteRelationshipHandler(
	relationshipRepo ports.RelationshipRepository,
	eventStore ports.EventStore,
	eventBus ports.EventPublisher,
	cache ports.Cache,
	logger *zap.Logger,
) *DeleteRelationshipHandler {
	return &DeleteRelationshipHandler{
		relationshipRepo: relationshipRepo,
		eventStore:       eventStore,
		eventBus:         eventBus,
		cache:            cache,
		logger:           logger,
	}
}

// Handle executes the delete relationship command
func (h *DeleteRelationshipHandler) Handle(ctx context.Context, cmd DeleteRelationshipCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	callerID, err := valueobjects.NewPersonIDFromString(cmd.CallerID)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	relationshipID, err := valueobjects.NewRelationshipIDFromString(cmd.RelationshipID)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}

	edge, err := h.relationshipRepo.GetByID(ctx, relationshipID)
	if err != nil {
		return err
	}
	if edge == nil {
		return pkgerrors.ErrRelationshipNotFound
	}

	// Permission runs before any write: only the initiator deletes.
	if !edge.CanBeDeletedBy(callerID) {
		return pkgerrors.ErrNotRelationshipInitiator
	}

	reciprocal, err := h.relationshipRepo.FindReciprocal(ctx, edge)
	if err != nil {
		return err
	}

	reciprocalGone := reciprocal == nil
	if reciprocalGone {
		// Legacy drift: the twin is already missing. Deleting the primary
		// alone still succeeds, the warning keeps an audit trail.
		h.logger.Warn("Reciprocal relationship missing, deleting primary edge alone",
			zap.String("relationship_id", edge.ID().String()),
			zap.String("initiator_id", edge.InitiatorID().String()),
			zap.String("target_id", edge.TargetID().String()),
			zap.String("type", edge.Type().String()),
		)
		if err := h.relationshipRepo.Delete(ctx, edge.ID()); err != nil {
			return err
		}
	} else {
		if err := h.relationshipRepo.DeletePair(ctx, edge.ID(), reciprocal.ID()); err != nil {
			return err
		}
	}

	h.logger.Info("Relationship deleted",
		zap.String("relationship_id", edge.ID().String()),
		zap.Bool("reciprocal_gone", reciprocalGone),
	)

	invalidateTrees(ctx, h.cache, edge.InitiatorID().String(), edge.TargetID().String())

	persistAndPublish(ctx, h.eventStore, h.eventBus, h.logger, []domainevents.DomainEvent{
		domainevents.NewRelationshipDeleted(
			edge.ID(), edge.InitiatorID(), edge.TargetID(), edge.Type(), reciprocalGone, time.Now(),
		),
	})

	return nil
}
