package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"familytree-backend/application/ports"
	"familytree-backend/application/queries"
	"familytree-backend/domain/core/valueobjects"
	"familytree-backend/pkg/common"
	pkgerrors "familytree-backend/pkg/errors"
)

// ListRelationshipsHandler lists the edges an account initiated
type ListRelationshipsHandler struct {
	accountRepo      ports.AccountRepository
	relationshipRepo ports.RelationshipRepository
	logger           *zap.Logger
}

// NewListRelationshipsHandler creates a new handler
func NewListRelationshipsHandler(
	accountRepo ports.AccountRepository,
	relationshipRepo ports.RelationshipRepository,
	logger *zap.Logger,
) *ListRelationshipsHandler {
	return &ListRelationshipsHandler{
		accountRepo:      accountRepo,
		relationshipRepo: relationshipRepo,
		logger:           logger,
	}
}

// Handle executes the list relationships query
func (h *ListRelationshipsHandler) Handle(ctx context.Context, query queries.ListRelationshipsQuery) (*queries.ListRelationshipsResult, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	accountID, err := valueobjects.NewPersonIDFromString(query.AccountID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	edges, err := h.relationshipRepo.GetByInitiator(ctx, accountID)
	if err != nil {
		return nil, err
	}

	params := query.Pagination.Normalize()
	lo, hi := params.Bounds(len(edges))

	result := &queries.ListRelationshipsResult{
		Relationships: make([]queries.RelationshipView, 0, hi-lo),
		Pagination:    common.BuildPaginationMeta(params.Page, params.PageSize, len(edges)),
	}

	for _, edge := range edges[lo:hi] {
		view := queries.RelationshipView{
			ID:        edge.ID().String(),
			TargetID:  edge.TargetID().String(),
			Type:      edge.Type().String(),
			CreatedAt: edge.CreatedAt(),
		}
		view.TargetName = h.resolveTargetName(ctx, edge.TargetID())
		result.Relationships = append(result.Relationships, view)
	}

	return result, nil
}

// resolveTargetName looks up a display name for the listing. A missing
// target leaves the name empty rather than failing the list.
func (h *ListRelationshipsHandler) resolveTargetName(ctx context.Context, targetID valueobjects.PersonID) string {
	account, err := h.accountRepo.GetByID(ctx, targetID)
	if err != nil || account == nil {
		return ""
	}
	return account.Details().DisplayName()
}
