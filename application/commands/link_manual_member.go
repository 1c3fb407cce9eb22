package commands

import (
	"context"
	goerrors "errors"
	"time"

	"go.uber.org/zap"

	"familytree-backend/application/ports"
	"familytree-backend/application/sagas"
	"familytree-backend/domain/core/entities"
	"familytree-backend/domain/core/valueobjects"
	pkgerrors "familytree-backend/pkg/errors"
)

// ResourceLocker serializes multi-step flows on a named resource
type ResourceLocker interface {
	TryAcquireLock(ctx context.Context, resource, owner string, duration, timeout time.Duration) (ResourceLock, error)
}

// ResourceLock is a held lock
type ResourceLock interface {
	Release(ctx context.Context) error
}

// LinkManualMemberCommand ties a manual member to a registered account.
// Linking is idempotent: relinking to the same account is a no-op.
type LinkManualMemberCommand struct {
	CallerID  string `json:"caller_id" validate:"required,uuid"`
	MemberID  string `json:"member_id" validate:"required,uuid"`
	AccountID string `json:"account_id" validate:"required,uuid"`
}

// Validate validates the command
func (cmd LinkManualMemberCommand) Validate() error {
	if cmd.CallerID == "" {
		return goerrors.New("caller ID is required")
	}
	if cmd.MemberID == "" {
		return goerrors.New("member ID is required")
	}
	if cmd.AccountID == "" {
		return goerrors.New("account ID is required")
	}
	return nil
}

// LinkManualMemberResult reports what the link operation did
type LinkManualMemberResult struct {
	Member        *entities.ManualMember
	AlreadyLinked bool
	PairCreated   bool
}

// LinkManualMemberHandler handles the LinkManualMemberCommand
type LinkManualMemberHandler struct {
	accountRepo      ports.AccountRepository
	memberRepo       ports.ManualMemberRepository
	relationshipRepo ports.RelationshipRepository
	eventStore       ports.EventStore
	eventBus         ports.EventPublisher
	cache            ports.Cache
	locker           ResourceLocker
	logger           *zap.Logger
}

// NewLinkManualMemberHandler creates a new handler instance
func NewLinkManualMemberHandler(
	accountRepo ports.AccountRepository,
	memberRepo ports.ManualMemberRepository,
	relationshipRepo ports.RelationshipRepository,
	eventStore ports.EventStore,
	eventBus ports.EventPublisher,
	cache ports.Cache,
	locker ResourceLocker,
	logger *zap.Logger,
) *LinkManualMemberHandler {
	return &LinkManualMemberHandler{
		accountRepo:      accountRepo,
		memberRepo:       memberRepo,
		relationshipRepo: relationshipRepo,
		eventStore:       eventStore,
		eventBus:         eventBus,
		cache:            cache,
		locker:           locker,
		logger:           logger,
	}
}

// Handle executes the link manual member command
func (h *LinkManualMemberHandler) Handle(ctx context.Context, cmd LinkManualMemberCommand) (*LinkManualMemberResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	callerID, err := valueobjects.NewPersonIDFromString(cmd.CallerID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	memberID, err := valueobjects.NewPersonIDFromString(cmd.MemberID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	accountID, err := valueobjects.NewPersonIDFromString(cmd.AccountID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	// Serialize concurrent link attempts on the same member
	if h.locker != nil {
		lock, lockErr := h.locker.TryAcquireLock(ctx, "member_link_"+memberID.String(), callerID.String(), 30*time.Second, 5*time.Second)
		if lockErr != nil {
			return nil, pkgerrors.ErrConcurrentModification.WithCause(lockErr)
		}
		defer func() {
			if releaseErr := lock.Release(ctx); releaseErr != nil {
				h.logger.Error("Failed to release member link lock",
					zap.String("member_id", memberID.String()),
					zap.Error(releaseErr),
				)
			}
		}()
	}

	member, err := h.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, pkgerrors.ErrMemberNotFound
	}

	exists, err := h.accountRepo.Exists(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, pkgerrors.ErrAccountNotFound
	}

	// The adder may link anyone they recorded; an account may claim itself
	if !member.CanBeLinkedBy(callerID, accountID) {
		return nil, pkgerrors.ErrNotMemberAdder
	}

	// Idempotence before anything is written
	if member.IsLinked() {
		if member.LinkedAccountID().Equals(accountID) {
			return &LinkManualMemberResult{Member: member, AlreadyLinked: true}, nil
		}
		return nil, pkgerrors.NewAlreadyLinkedError(member.LinkedAccountID().String())
	}

	result := &LinkManualMemberResult{Member: member}

	// Two writes that must end consistent: the link on the member record
	// and the edge pair between adder and linked account. A pair failure
	// compensates by clearing the fresh link.
	saga := sagas.New("link-manual-member", h.logger).
		AddStep(sagas.Step{
			Name: "set-link",
			Run: func(ctx context.Context) error {
				if _, linkErr := member.LinkTo(accountID); linkErr != nil {
					return linkErr
				}
				return h.memberRepo.Save(ctx, member)
			},
			Compensate: func(ctx context.Context) error {
				member.Unlink()
				return h.memberRepo.Save(ctx, member)
			},
		}).
		AddStep(sagas.Step{
			Name: "create-pair",
			Run: func(ctx context.Context) error {
				created, pairErr := h.ensurePair(ctx, member, accountID)
				result.PairCreated = created
				return pairErr
			},
		})

	if err := saga.Execute(ctx); err != nil {
		return nil, err
	}

	h.logger.Info("Manual member linked",
		zap.String("member_id", memberID.String()),
		zap.String("account_id", accountID.String()),
		zap.Bool("pair_created", result.PairCreated),
	)

	invalidateTrees(ctx, h.cache, member.AddedBy().String(), accountID.String())

	persistAndPublish(ctx, h.eventStore, h.eventBus, h.logger, member.GetUncommittedEvents())
	member.MarkEventsAsCommitted()

	return result, nil
}

// ensurePair upserts the edge pair mirroring the member's recorded
// relationship. The linked account stands in for the member, so it
// initiates the member's relation toward the adder: a member recorded
// as PARENT of the adder yields (account, PARENT, adder) plus the twin.
// An existing pair counts as satisfied.
func (h *LinkManualMemberHandler) ensurePair(ctx context.Context, member *entities.ManualMember, accountID valueobjects.PersonID) (bool, error) {
	adderID := member.AddedBy()
	relType := member.RelationToAdder()

	// Self-claim by the adder's own account would make a self edge
	if adderID.Equals(accountID) {
		return false, pkgerrors.ErrSelfRelationship
	}

	alreadyThere, err := h.relationshipRepo.Exists(ctx, accountID, adderID, relType)
	if err != nil {
		return false, err
	}
	if alreadyThere {
		return false, nil
	}

	primary, reciprocal, err := entities.NewRelationshipPair(accountID, adderID, relType)
	if err != nil {
		return false, err
	}

	if err := h.relationshipRepo.CreatePair(ctx, primary, reciprocal); err != nil {
		// A concurrent writer beat us to the pair; that satisfies the goal
		if goerrors.Is(err, pkgerrors.ErrDuplicateRelationship) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}
