package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"familytree-backend/application/ports"
	"familytree-backend/application/queries"
	"familytree-backend/application/services"
	"familytree-backend/domain/config"
	"familytree-backend/domain/core/aggregates"
	"familytree-backend/domain/core/entities"
	"familytree-backend/domain/core/valueobjects"
	pkgerrors "familytree-backend/pkg/errors"
)

// nodePrivacy is what redaction needs to know about the person behind a
// node: which account owns the displayed data and how visible it is.
// Placeholders and unlinked manual members have no account and are never
// redacted.
type nodePrivacy struct {
	AccountID  string
	Visibility entities.ProfileVisibility
}

// builtTree is the viewer-independent build result kept in cache. The
// per-viewer redaction pass runs on a copy after every fetch.
type builtTree struct {
	RootKey string
	Nodes   []*aggregates.TreeNode
	Privacy map[string]nodePrivacy
	Stats   queries.TreeStats
}

// GetFamilyTreeHandler builds the connected family view from a starting
// account. Traversal is breadth first; the aggregate's processed set
// terminates it on cyclic graphs.
type GetFamilyTreeHandler struct {
	accountRepo      ports.AccountRepository
	memberRepo       ports.ManualMemberRepository
	relationshipRepo ports.RelationshipRepository
	augmenter        *services.PlaceholderAugmenter
	cache            ports.Cache
	domainCfg        *config.DomainConfig
	logger           *zap.Logger
}

// NewGetFamilyTreeHandler creates a new tree handler
func NewGetFamilyTreeHandler(
	accountRepo ports.AccountRepository,
	memberRepo ports.ManualMemberRepository,
	relationshipRepo ports.RelationshipRepository,
	augmenter *services.PlaceholderAugmenter,
	cache ports.Cache,
	domainCfg *config.DomainConfig,
	logger *zap.Logger,
) *GetFamilyTreeHandler {
	if domainCfg == nil {
		domainCfg = config.DefaultDomainConfig()
	}
	return &GetFamilyTreeHandler{
		accountRepo:      accountRepo,
		memberRepo:       memberRepo,
		relationshipRepo: relationshipRepo,
		augmenter:        augmenter,
		cache:            cache,
		domainCfg:        domainCfg,
		logger:           logger,
	}
}

// Handle executes the family tree query
func (h *GetFamilyTreeHandler) Handle(ctx context.Context, query queries.GetFamilyTreeQuery) (*queries.GetFamilyTreeResult, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	startID, err := valueobjects.NewPersonIDFromString(query.StartAccountID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	tree, err := h.loadOrBuild(ctx, startID)
	if err != nil {
		return nil, err
	}

	nodes := h.redactForViewer(tree, query.ViewerID)

	return &queries.GetFamilyTreeResult{
		RootKey: tree.RootKey,
		Nodes:   nodes,
		Stats:   tree.Stats,
	}, nil
}

// loadOrBuild returns the cached viewer-independent tree or builds it
func (h *GetFamilyTreeHandler) loadOrBuild(ctx context.Context, startID valueobjects.PersonID) (*builtTree, error) {
	cacheKey := "tree:" + startID.String()
	if h.cache != nil {
		if cached, found := h.cache.Get(ctx, cacheKey); found {
			if tree, ok := cached.(*builtTree); ok {
				return tree, nil
			}
		}
	}

	tree, err := h.build(ctx, startID)
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		ttl := int(h.domainCfg.TreeCacheTTL.Seconds())
		if ttl > 0 {
			_ = h.cache.Set(ctx, cacheKey, tree, ttl)
		}
	}

	return tree, nil
}

// build runs the BFS traversal and placeholder augmentation
func (h *GetFamilyTreeHandler) build(ctx context.Context, startID valueobjects.PersonID) (*builtTree, error) {
	rootKey := valueobjects.UserNodeKey(startID)
	graph, err := aggregates.NewFamilyGraph(rootKey)
	if err != nil {
		return nil, err
	}

	privacy := make(map[string]nodePrivacy)
	queue := []valueobjects.PersonID{startID}
	isRoot := true

	for len(queue) > 0 {
		accountID := queue[0]
		queue = queue[1:]

		key := valueobjects.UserNodeKey(accountID).String()
		if !graph.MarkProcessed(key) {
			continue
		}

		account, err := h.accountRepo.GetByID(ctx, accountID)
		if err != nil {
			return nil, err
		}
		if account == nil {
			if isRoot {
				return nil, pkgerrors.ErrAccountNotFound
			}
			// A dangling edge target; skip rather than fail the build
			h.logger.Warn("Edge points at missing account",
				zap.String("account_id", accountID.String()),
			)
			continue
		}
		isRoot = false

		h.ensureAccountNode(graph, privacy, account)

		if graph.NodeCount() >= h.domainCfg.MaxTreeNodes {
			h.logger.Warn("Tree node limit reached, truncating traversal",
				zap.String("start_id", startID.String()),
				zap.Int("limit", h.domainCfg.MaxTreeNodes),
			)
			break
		}

		initiated, err := h.relationshipRepo.GetByInitiator(ctx, accountID)
		if err != nil {
			return nil, err
		}
		received, err := h.relationshipRepo.GetByTarget(ctx, accountID)
		if err != nil {
			return nil, err
		}
		members, err := h.memberRepo.GetByAdder(ctx, accountID)
		if err != nil {
			return nil, err
		}

		// An initiated edge of type T says this account is T of the
		// target, so the target relates back by T's reciprocal
		for _, edge := range initiated {
			if err := h.expandEdge(ctx, graph, privacy, &queue, key, edge.TargetID(), edge.Type().Reciprocal()); err != nil {
				return nil, err
			}
		}

		// A received edge of type T says the initiator is T of this account
		for _, edge := range received {
			if err := h.expandEdge(ctx, graph, privacy, &queue, key, edge.InitiatorID(), edge.Type()); err != nil {
				return nil, err
			}
		}

		// Manual members carry no edges of their own; their connection is
		// the recorded relation to the adder
		for _, member := range members {
			memberKey, err := h.ensureManualNode(ctx, graph, privacy, member)
			if err != nil {
				return nil, err
			}
			h.connect(graph, key, memberKey, member.RelationToAdder())
		}
	}

	graph.DedupAdjacency()

	placeholdersUsed := false
	if h.domainCfg.EnablePlaceholderParents {
		placeholdersUsed = h.augmenter.Augment(graph, startID)
	}

	nodes := graph.Nodes()
	stats := queries.TreeStats{
		NodeCount:        len(nodes),
		PlaceholdersUsed: placeholdersUsed,
	}
	for _, node := range nodes {
		switch node.Kind {
		case aggregates.KindUser:
			stats.AccountNodes++
		case aggregates.KindManual:
			stats.ManualNodes++
		}
	}

	h.logger.Debug("Family tree built",
		zap.String("start_id", startID.String()),
		zap.Int("node_count", stats.NodeCount),
		zap.Bool("placeholders_used", placeholdersUsed),
	)

	return &builtTree{
		RootKey: rootKey.String(),
		Nodes:   nodes,
		Privacy: privacy,
		Stats:   stats,
	}, nil
}

// expandEdge renders the account on the far side of an edge, enqueues it
// when unprocessed and records the adjacency. relType is how the other
// account relates to fromKey's node. Edges only ever run between
// registered accounts.
func (h *GetFamilyTreeHandler) expandEdge(
	ctx context.Context,
	graph *aggregates.FamilyGraph,
	privacy map[string]nodePrivacy,
	queue *[]valueobjects.PersonID,
	fromKey string,
	otherID valueobjects.PersonID,
	relType valueobjects.RelationshipType,
) error {
	account, err := h.accountRepo.GetByID(ctx, otherID)
	if err != nil {
		return err
	}
	if account == nil {
		h.logger.Warn("Edge points at missing account",
			zap.String("account_id", otherID.String()),
		)
		return nil
	}

	otherKey := h.ensureAccountNode(graph, privacy, account).Key
	if !graph.IsProcessed(otherKey) {
		*queue = append(*queue, otherID)
	}

	h.connect(graph, fromKey, otherKey, relType)
	return nil
}

// connect records adjacency between two rendered nodes. relType reads
// fromKey-to-other: PARENT means other is fromKey's parent.
func (h *GetFamilyTreeHandler) connect(graph *aggregates.FamilyGraph, fromKey, otherKey string, relType valueobjects.RelationshipType) {
	switch relType {
	case valueobjects.RelationshipParent:
		graph.AddParent(fromKey, otherKey)
	case valueobjects.RelationshipChild:
		graph.AddChild(fromKey, otherKey)
	case valueobjects.RelationshipSpouse:
		graph.AddSpouse(fromKey, otherKey)
	case valueobjects.RelationshipSibling:
		graph.AddSibling(fromKey, otherKey)
	}
}

// ensureAccountNode renders an account into the graph once
func (h *GetFamilyTreeHandler) ensureAccountNode(graph *aggregates.FamilyGraph, privacy map[string]nodePrivacy, account *entities.Account) *aggregates.TreeNode {
	key := account.NodeKey().String()
	if existing := graph.Node(key); existing != nil {
		return existing
	}

	details := account.Details()
	node := graph.AddNode(&aggregates.TreeNode{
		Key:         key,
		Kind:        aggregates.KindUser,
		DisplayName: details.DisplayName(),
		Gender:      details.Gender().String(),
		DateOfBirth: details.DateOfBirthString(),
		ImageURL:    details.ImageURL(),
	})
	privacy[key] = nodePrivacy{
		AccountID:  account.ID().String(),
		Visibility: account.Visibility(),
	}
	return node
}

// ensureManualNode renders a manual member into the graph once. Linked
// members display the linked account's data but keep their manual key
// and kind; provenance does not change on link.
func (h *GetFamilyTreeHandler) ensureManualNode(ctx context.Context, graph *aggregates.FamilyGraph, privacy map[string]nodePrivacy, member *entities.ManualMember) (string, error) {
	key := member.NodeKey().String()
	if graph.HasNode(key) {
		return key, nil
	}

	details := member.Details()
	if member.IsLinked() {
		linked, err := h.accountRepo.GetByID(ctx, *member.LinkedAccountID())
		if err != nil {
			return "", err
		}
		if linked != nil {
			details = linked.Details()
			privacy[key] = nodePrivacy{
				AccountID:  linked.ID().String(),
				Visibility: linked.Visibility(),
			}
		}
	}

	graph.AddNode(&aggregates.TreeNode{
		Key:         key,
		Kind:        aggregates.KindManual,
		DisplayName: details.DisplayName(),
		Gender:      details.Gender().String(),
		DateOfBirth: details.DateOfBirthString(),
		ImageURL:    details.ImageURL(),
	})
	return key, nil
}

// redactForViewer applies visibility rules on a copy of the cached
// nodes. PRIVATE hides name, date of birth and image, MEMBERS hides the
// date of birth. The viewer's own nodes are never redacted.
func (h *GetFamilyTreeHandler) redactForViewer(tree *builtTree, viewerID string) []*aggregates.TreeNode {
	out := make([]*aggregates.TreeNode, 0, len(tree.Nodes))
	for _, node := range tree.Nodes {
		copied := *node
		if p, ok := tree.Privacy[node.Key]; ok && p.AccountID != viewerID {
			switch p.Visibility {
			case entities.VisibilityPrivate:
				copied.DisplayName = "Private member"
				copied.DateOfBirth = ""
				copied.ImageURL = ""
			case entities.VisibilityMembers:
				copied.DateOfBirth = ""
			}
		}
		out = append(out, &copied)
	}
	return out
}
