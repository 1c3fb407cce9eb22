package handlers

import (
	"net/http"

	"familytree-backend/application/queries"
	querybus "familytree-backend/application/queries/bus"
	"familytree-backend/pkg/auth"
	pkgerrors "familytree-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// TreeHandler handles family tree HTTP requests
type TreeHandler struct {
	queryBus *querybus.QueryBus
	errors   *pkgerrors.ErrorHandler
	logger   *zap.Logger
}

// NewTreeHandler creates a new tree handler
func NewTreeHandler(queryBus *querybus.QueryBus, errHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *TreeHandler {
	return &TreeHandler{
		queryBus: queryBus,
		errors:   errHandler,
		logger:   logger,
	}
}

// GetOwnTree handles GET /tree. The viewer's own account is the root.
func (h *TreeHandler) GetOwnTree(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, pkgerrors.NewUnauthorizedError("authentication required"))
		return
	}

	h.serveTree(w, r, userCtx.AccountID, userCtx.AccountID)
}

// GetTree handles GET /tree/{accountID}. Any member may view another
// member's tree; redaction happens per the viewer.
func (h *TreeHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, pkgerrors.NewUnauthorizedError("authentication required"))
		return
	}

	h.serveTree(w, r, userCtx.AccountID, chi.URLParam(r, "accountID"))
}

func (h *TreeHandler) serveTree(w http.ResponseWriter, r *http.Request, viewerID, startAccountID string) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetFamilyTreeQuery{
		ViewerID:       viewerID,
		StartAccountID: startAccountID,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
