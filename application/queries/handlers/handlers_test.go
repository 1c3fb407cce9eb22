package handlers_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"familytree-backend/application/services"
	"familytree-backend/domain/config"
	"familytree-backend/domain/core/entities"
	"familytree-backend/domain/core/valueobjects"
	"familytree-backend/infrastructure/persistence/memory"
)

// fixture wires query handlers against the in-memory stores
type fixture struct {
	accounts  *memory.InMemoryAccountRepository
	members   *memory.InMemoryManualMemberRepository
	edges     *memory.InMemoryRelationshipRepository
	augmenter *services.PlaceholderAugmenter
	cfg       *config.DomainConfig
	logger    *zap.Logger
}

func newFixture() *fixture {
	logger := zap.NewNop()
	return &fixture{
		accounts:  memory.NewInMemoryAccountRepository(),
		members:   memory.NewInMemoryManualMemberRepository(),
		edges:     memory.NewInMemoryRelationshipRepository(),
		augmenter: services.NewPlaceholderAugmenter(logger),
		cfg:       config.DefaultDomainConfig(),
		logger:    logger,
	}
}

func (f *fixture) registerAccount(t *testing.T, name, email, dob string) *entities.Account {
	t.Helper()

	details, err := valueobjects.NewPersonDetails(name, dob, "")
	require.NoError(t, err)

	account, err := entities.NewAccount(email, details)
	require.NoError(t, err)
	account.MarkEventsAsCommitted()

	require.NoError(t, f.accounts.Save(context.Background(), account))
	return account
}

// connect seeds a persisted edge pair reading "initiator is relType of
// target"
func (f *fixture) connect(t *testing.T, initiator, target *entities.Account, relType valueobjects.RelationshipType) {
	t.Helper()

	primary, reciprocal, err := entities.NewRelationshipPair(initiator.ID(), target.ID(), relType)
	require.NoError(t, err)
	require.NoError(t, f.edges.CreatePair(context.Background(), primary, reciprocal))
}

// addMember seeds a manual member; members carry no edges of their own
func (f *fixture) addMember(t *testing.T, adder *entities.Account, name string, relType valueobjects.RelationshipType) *entities.ManualMember {
	t.Helper()

	details, err := valueobjects.NewPersonDetails(name, "", "")
	require.NoError(t, err)

	member, err := entities.NewManualMember(adder.ID(), details, relType, "")
	require.NoError(t, err)
	member.MarkEventsAsCommitted()
	require.NoError(t, f.members.Save(context.Background(), member))

	return member
}

// stubCache is a minimal ports.Cache for testing cached tree builds
type stubCache struct {
	items map[string]interface{}
}

func newStubCache() *stubCache {
	return &stubCache{items: make(map[string]interface{})}
}

func (c *stubCache) Get(ctx context.Context, key string) (interface{}, bool) {
	value, ok := c.items[key]
	return value, ok
}

func (c *stubCache) Set(ctx context.Context, key string, value interface{}, ttl int) error {
	c.items[key] = value
	return nil
}

func (c *stubCache) Delete(ctx context.Context, key string) error {
	delete(c.items, key)
	return nil
}

func (c *stubCache) Clear(ctx context.Context) error {
	c.items = make(map[string]interface{})
	return nil
}
