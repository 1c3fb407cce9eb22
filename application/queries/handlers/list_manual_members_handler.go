package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"familytree-backend/application/ports"
	"familytree-backend/application/queries"
	"familytree-backend/domain/core/valueobjects"
	pkgerrors "familytree-backend/pkg/errors"
)

// ListManualMembersHandler lists the members an account has recorded
type ListManualMembersHandler struct {
	memberRepo ports.ManualMemberRepository
	logger     *zap.Logger
}

// NewListManualMembersHandler creates a new handler
func NewListManualMembersHandler(memberRepo ports.ManualMemberRepository, logger *zap.Logger) *ListManualMembersHandler {
	return &ListManualMembersHandler{
		memberRepo: memberRepo,
		logger:     logger,
	}
}

// Handle executes the list manual members query
func (h *ListManualMembersHandler) Handle(ctx context.Context, query queries.ListManualMembersQuery) (*queries.ListManualMembersResult, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	adderID, err := valueobjects.NewPersonIDFromString(query.AdderID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	members, err := h.memberRepo.GetByAdder(ctx, adderID)
	if err != nil {
		return nil, err
	}

	result := &queries.ListManualMembersResult{
		Members: make([]queries.ManualMemberView, 0, len(members)),
	}

	for _, member := range members {
		details := member.Details()
		view := queries.ManualMemberView{
			ID:              member.ID().String(),
			DisplayName:     details.DisplayName(),
			Gender:          details.Gender().String(),
			DateOfBirth:     details.DateOfBirthString(),
			RelationToAdder: member.RelationToAdder().String(),
			Notes:           member.Notes(),
			CreatedAt:       member.CreatedAt(),
		}
		if member.IsLinked() {
			view.LinkedAccountID = member.LinkedAccountID().String()
		}
		result.Members = append(result.Members, view)
	}

	return result, nil
}
