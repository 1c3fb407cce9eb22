package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"familytree-backend/application/commands"
	"familytree-backend/application/queries"
	querybus "familytree-backend/application/queries/bus"
	"familytree-backend/pkg/auth"
	pkgerrors "familytree-backend/pkg/errors"
	"familytree-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AccountHandler handles account-related HTTP requests
type AccountHandler struct {
	register  *commands.RegisterAccountHandler
	queryBus  *querybus.QueryBus
	tokens    *auth.JWTGenerator
	errors    *pkgerrors.ErrorHandler
	logger    *zap.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(
	register *commands.RegisterAccountHandler,
	queryBus *querybus.QueryBus,
	tokens *auth.JWTGenerator,
	errHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *AccountHandler {
	return &AccountHandler{
		register: register,
		queryBus: queryBus,
		tokens:   tokens,
		errors:   errHandler,
		logger:   logger,
	}
}

// RegisterAccountRequest represents the request body for registration
type RegisterAccountRequest struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"display_name" validate:"required,min=1,max=120"`
	DateOfBirth string `json:"date_of_birth,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Gender      string `json:"gender,omitempty"`
	ImageURL    string `json:"image_url,omitempty" validate:"omitempty,url"`
}

// RegisterAccountResponse represents the response for registration
type RegisterAccountResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Token       string `json:"token,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// Register handles POST /accounts
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError(err.Error()))
		return
	}

	account, err := h.register.Handle(r.Context(), commands.RegisterAccountCommand{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		DateOfBirth: req.DateOfBirth,
		Gender:      req.Gender,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	token, err := h.tokens.GenerateToken(account.ID().String(), account.Email())
	if err != nil {
		// The account exists; a token failure should not hide that
		h.logger.Error("Failed to issue token on registration",
			zap.String("account_id", account.ID().String()),
			zap.Error(err),
		)
		token = ""
	}

	respondJSON(w, http.StatusCreated, RegisterAccountResponse{
		ID:          account.ID().String(),
		Email:       account.Email(),
		DisplayName: account.Details().DisplayName(),
		Token:       token,
		CreatedAt:   account.CreatedAt().Format(timeLayout),
	})
}

// GetAccount handles GET /accounts/{accountID}
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, pkgerrors.NewUnauthorizedError("authentication required"))
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetAccountQuery{
		ViewerID:  userCtx.AccountID,
		AccountID: chi.URLParam(r, "accountID"),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// SearchAccounts handles GET /accounts?name=
func (h *AccountHandler) SearchAccounts(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.GetUserFromContext(r.Context()); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewUnauthorizedError("authentication required"))
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("name query parameter is required"))
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	result, err := h.queryBus.Ask(r.Context(), queries.SearchAccountsQuery{
		Name:  name,
		Limit: limit,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
