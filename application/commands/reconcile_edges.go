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

// ReconcileEdgesCommand repairs reciprocity drift around one account:
// edge halves whose twin has gone missing are removed. Deletes tolerate
// missing twins at run time; this pass cleans up what they left behind.
type ReconcileEdgesCommand struct {
	AccountID string `json:"account_id" validate:"required,uuid"`
	DryRun    bool   `json:"dry_run"`
}

// Validate validates the command
func (cmd ReconcileEdgesCommand) Validate() error {
	if cmd.AccountID == "" {
		return errors.New("account ID is required")
	}
	return nil
}

// ReconcileEdgesResult reports what the pass found and did
type ReconcileEdgesResult struct {
	Scanned int      `json:"scanned"`
	Removed int      `json:"removed"`
	Orphans []string `json:"orphans,omitempty"`
}

// ReconcileEdgesHandler handles the ReconcileEdgesCommand
type ReconcileEdgesHandler struct {
	accountRepo      ports.AccountRepository
	relationshipRepo ports.RelationshipRepository
	eventStore       ports.EventStore
	eventBus         ports.EventPublisher
	cache            ports.Cache
	logger           *zap.Logger
}

// NewReconcileEdgesHandler creates a new handler instance
func NewReconcileEdgesHandler(
	accountRepo ports.AccountRepository,
	relationshipRepo ports.RelationshipRepository,
	eventStore ports.EventStore,
	eventBus ports.EventPublisher,
	cache ports.Cache,
	logger *zap.Logger,
) *ReconcileEdgesHandler {
	return &ReconcileEdgesHandler{
		accountRepo:      accountRepo,
		relationshipRepo: relationshipRepo,
		eventStore:       eventStore,
		eventBus:         eventBus,
		cache:            cache,
		logger:           logger,
	}
}

// Handle executes the reconcile edges command
func (h *ReconcileEdgesHandler) Handle(ctx context.Context, cmd ReconcileEdgesCommand) (*ReconcileEdgesResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	accountID, err := valueobjects.NewPersonIDFromString(cmd.AccountID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	exists, err := h.accountRepo.Exists(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, pkgerrors.ErrAccountNotFound
	}

	initiated, err := h.relationshipRepo.GetByInitiator(ctx, accountID)
	if err != nil {
		return nil, err
	}
	received, err := h.relationshipRepo.GetByTarget(ctx, accountID)
	if err != nil {
		return nil, err
	}

	result := &ReconcileEdgesResult{}
	seen := make(map[string]bool)

	for _, edge := range append(initiated, received...) {
		if seen[edge.ID().String()] {
			continue
		}
		seen[edge.ID().String()] = true
		result.Scanned++

		if err := h.reconcileEdge(ctx, edge, cmd.DryRun, result); err != nil {
			return nil, err
		}
	}

	h.logger.Info("Edge reconciliation completed",
		zap.String("account_id", accountID.String()),
		zap.Int("scanned", result.Scanned),
		zap.Int("removed", result.Removed),
		zap.Bool("dry_run", cmd.DryRun),
	)

	if !cmd.DryRun && result.Removed > 0 {
		invalidateTrees(ctx, h.cache, accountID.String())
		persistAndPublish(ctx, h.eventStore, h.eventBus, h.logger, []domainevents.DomainEvent{
			domainevents.NewEdgesReconciled(accountID, result.Scanned, result.Removed, time.Now()),
		})
	}

	return result, nil
}

func (h *ReconcileEdgesHandler) reconcileEdge(ctx context.Context, edge *entities.Relationship, dryRun bool, result *ReconcileEdgesResult) error {
	reciprocal, err := h.relationshipRepo.FindReciprocal(ctx, edge)
	if err != nil {
		return err
	}
	if reciprocal != nil {
		return nil
	}

	result.Orphans = append(result.Orphans, edge.ID().String())
	h.logger.Warn("Orphaned edge half found",
		zap.String("relationship_id", edge.ID().String()),
		zap.String("initiator_id", edge.InitiatorID().String()),
		zap.String("target_id", edge.TargetID().String()),
		zap.String("type", edge.Type().String()),
	)

	if dryRun {
		return nil
	}

	if err := h.relationshipRepo.Delete(ctx, edge.ID()); err != nil {
		return err
	}
	result.Removed++
	return nil
}
