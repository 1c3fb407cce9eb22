package handlers

import (
	"encoding/json"
	"net/http"

	"familytree-backend/application/commands"
	"familytree-backend/application/queries"
	querybus "familytree-backend/application/queries/bus"
	"familytree-backend/pkg/auth"
	pkgerrors "familytree-backend/pkg/errors"
	"familytree-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// MemberHandler handles manual member HTTP requests
type MemberHandler struct {
	add      *commands.AddManualMemberHandler
	link     *commands.LinkManualMemberHandler
	queryBus *querybus.QueryBus
	errors   *pkgerrors.ErrorHandler
	logger   *zap.Logger
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(
	add *commands.AddManualMemberHandler,
	link *commands.LinkManualMemberHandler,
	queryBus *querybus.QueryBus,
	errHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *MemberHandler {
	return &MemberHandler{
		add:      add,
		link:     link,
		queryBus: queryBus,
		errors:   errHandler,
		logger:   logger,
	}
}

// AddMemberRequest represents the request body for recording a member
type AddMemberRequest struct {
	Name            string `json:"name" validate:"required,min=1,max=120"`
	RelationToAdder string `json:"relation_to_adder" validate:"required,oneof=PARENT CHILD SPOUSE SIBLING"`
	DateOfBirth     string `json:"date_of_birth,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Gender          string `json:"gender,omitempty"`
	ImageURL        string `json:"image_url,omitempty" validate:"omitempty,url"`
	Notes           string `json:"notes,omitempty" validate:"max=2000"`
}

// MemberResponse represents one recorded member
type MemberResponse struct {
	ID              string `json:"id"`
	DisplayName     string `json:"display_name"`
	RelationToAdder string `json:"relation_to_adder"`
	DateOfBirth     string `json:"date_of_birth,omitempty"`
	Gender          string `json:"gender,omitempty"`
	ImageURL        string `json:"image_url,omitempty"`
	Notes           string `json:"notes,omitempty"`
	LinkedAccountID string `json:"linked_account_id,omitempty"`
	CreatedAt       string `json:"created_at"`
}

// AddMember handles POST /members
func (h *MemberHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, pkgerrors.NewUnauthorizedError("authentication required"))
		return
	}

	var req AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError(err.Error()))
		return
	}

	member, err := h.add.Handle(r.Context(), commands.AddManualMemberCommand{
		AdderID:         userCtx.AccountID,
		Name:            req.Name,
		RelationToAdder: req.RelationToAdder,
		DateOfBirth:     req.DateOfBirth,
		Gender:          req.Gender,
		ImageURL:        req.ImageURL,
		Notes:           req.Notes,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, MemberResponse{
		ID:              member.ID().String(),
		DisplayName:     member.Details().DisplayName(),
		RelationToAdder: member.RelationToAdder().String(),
		DateOfBirth:     member.Details().DateOfBirthString(),
		Gender:          member.Details().Gender().String(),
		ImageURL:        member.Details().ImageURL(),
		Notes:           member.Notes(),
		CreatedAt:       member.CreatedAt().Format(timeLayout),
	})
}

// LinkMemberRequest represents the request body for linking a member
type LinkMemberRequest struct {
	AccountID string `json:"account_id" validate:"required,uuid"`
}

// LinkMemberResponse reports what the link operation did
type LinkMemberResponse struct {
	Member        MemberResponse `json:"member"`
	AlreadyLinked bool           `json:"already_linked"`
	PairCreated   bool           `json:"pair_created"`
}

// LinkMember handles POST /members/{memberID}/link
func (h *MemberHandler) LinkMember(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, pkgerrors.NewUnauthorizedError("authentication required"))
		return
	}

	var req LinkMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError(err.Error()))
		return
	}

	result, err := h.link.Handle(r.Context(), commands.LinkManualMemberCommand{
		CallerID:  userCtx.AccountID,
		MemberID:  chi.URLParam(r, "memberID"),
		AccountID: req.AccountID,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	member := result.Member
	response := LinkMemberResponse{
		Member: MemberResponse{
			ID:              member.ID().String(),
			DisplayName:     member.Details().DisplayName(),
			RelationToAdder: member.RelationToAdder().String(),
			DateOfBirth:     member.Details().DateOfBirthString(),
			Gender:          member.Details().Gender().String(),
			ImageURL:        member.Details().ImageURL(),
			Notes:           member.Notes(),
			CreatedAt:       member.CreatedAt().Format(timeLayout),
		},
		AlreadyLinked: result.AlreadyLinked,
		PairCreated:   result.PairCreated,
	}
	if linked := member.LinkedAccountID(); linked != nil {
		response.Member.LinkedAccountID = linked.String()
	}

	respondJSON(w, http.StatusOK, response)
}

// ListMembers handles GET /members
func (h *MemberHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, pkgerrors.NewUnauthorizedError("authentication required"))
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.ListManualMembersQuery{
		AdderID: userCtx.AccountID,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
