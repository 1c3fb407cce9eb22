package handlers

import (
	"encoding/json"
	"net/http"

	"familytree-backend/application/commands"
	"familytree-backend/application/commands/bus"
	"familytree-backend/application/queries"
	querybus "familytree-backend/application/queries/bus"
	"familytree-backend/pkg/auth"
	"familytree-backend/pkg/common"
	pkgerrors "familytree-backend/pkg/errors"
	"familytree-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RelationshipHandler handles relationship edge HTTP requests
type RelationshipHandler struct {
	create     *commands.CreateRelationshipHandler
	reconcile  *commands.ReconcileEdgesHandler
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewRelationshipHandler creates a new relationship handler
func NewRelationshipHandler(
	create *commands.CreateRelationshipHandler,
	reconcile *commands.ReconcileEdgesHandler,
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *RelationshipHandler {
	return &RelationshipHandler{
		create:     create,
		reconcile:  reconcile,
		commandBus: commandBus,
		queryBus:   queryBus,
		errors:     errHandler,
		logger:     logger,
	}
}

// CreateRelationshipRequest represents the request body for creating an edge
type CreateRelationshipRequest struct {
	TargetID string `json:"target_id" validate:"required,uuid"`
	Type     string `json:"type" validate:"required,oneof=PARENT CHILD SPOUSE SIBLING"`
}

// RelationshipResponse represents one created edge
type RelationshipResponse struct {
	ID          string `json:"id"`
	InitiatorID string `json:"initiator_id"`
	TargetID    string `json:"target_id"`
	Type        string `json:"type"`
	CreatedAt   string `json:"created_at"`
}

// CreateRelationship handles POST /relationships
func (h *RelationshipHandler) CreateRelationship(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, pkgerrors.NewUnauthorizedError("authentication required"))
		return
	}

	var req CreateRelationshipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError(err.Error()))
		return
	}

	relationship, err := h.create.Handle(r.Context(), commands.CreateRelationshipCommand{
		InitiatorID: userCtx.AccountID,
		TargetID:    req.TargetID,
		Type:        req.Type,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, RelationshipResponse{
		ID:          relationship.ID().String(),
		InitiatorID: relationship.InitiatorID().String(),
		TargetID:    relationship.TargetID().String(),
		Type:        relationship.Type().String(),
		CreatedAt:   relationship.CreatedAt().Format(timeLayout),
	})
}

// DeleteRelationship handles DELETE /relationships/{relationshipID}
func (h *RelationshipHandler) DeleteRelationship(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, pkgerrors.NewUnauthorizedError("authentication required"))
		return
	}

	cmd := commands.DeleteRelationshipCommand{
		CallerID:       userCtx.AccountID,
		RelationshipID: chi.URLParam(r, "relationshipID"),
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListRelationships handles GET /relationships
func (h *RelationshipHandler) ListRelationships(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, pkgerrors.NewUnauthorizedError("authentication required"))
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.ListRelationshipsQuery{
		AccountID:  userCtx.AccountID,
		Pagination: common.ExtractPaginationParams(r),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// ReconcileRequest represents the request body for a reconciliation pass
type ReconcileRequest struct {
	AccountID string `json:"account_id" validate:"required,uuid"`
	DryRun    bool   `json:"dry_run"`
}

// Reconcile handles POST /maintenance/reconcile. It repairs reciprocity
// drift around one account and reports what it found.
func (h *RelationshipHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.GetUserFromContext(r.Context()); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewUnauthorizedError("authentication required"))
		return
	}

	var req ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError(err.Error()))
		return
	}

	result, err := h.reconcile.Handle(r.Context(), commands.ReconcileEdgesCommand{
		AccountID: req.AccountID,
		DryRun:    req.DryRun,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
