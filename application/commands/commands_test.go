package commands_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"familytree-backend/domain/core/entities"
	"familytree-backend/domain/core/valueobjects"
	"familytree-backend/infrastructure/persistence/memory"
)

// fixture wires command handlers against the in-memory stores
type fixture struct {
	accounts *memory.InMemoryAccountRepository
	members  *memory.InMemoryManualMemberRepository
	edges    *memory.InMemoryRelationshipRepository
	store    *memory.InMemoryEventStore
	bus      *memory.InMemoryEventBus
	logger   *zap.Logger
}

func newFixture() *fixture {
	logger := zap.NewNop()
	return &fixture{
		accounts: memory.NewInMemoryAccountRepository(),
		members:  memory.NewInMemoryManualMemberRepository(),
		edges:    memory.NewInMemoryRelationshipRepository(),
		store:    memory.NewInMemoryEventStore(),
		bus:      memory.NewInMemoryEventBus(logger),
		logger:   logger,
	}
}

func (f *fixture) registerAccount(t *testing.T, name, email string) *entities.Account {
	t.Helper()

	details, err := valueobjects.NewPersonDetails(name, "", "")
	require.NoError(t, err)

	account, err := entities.NewAccount(email, details)
	require.NoError(t, err)
	account.MarkEventsAsCommitted()

	require.NoError(t, f.accounts.Save(context.Background(), account))
	return account
}

// publishedTypes lists the event types published so far, in order
func (f *fixture) publishedTypes() []string {
	var types []string
	for _, event := range f.bus.Published() {
		types = append(types, event.GetEventType())
	}
	return types
}
