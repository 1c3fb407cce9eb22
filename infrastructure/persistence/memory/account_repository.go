package memory

import (
	"context"
	"strings"
	"sync"

	"familytree-backend/application/ports"
	"familytree-backend/domain/core/entities"
	"familytree-backend/domain/core/valueobjects"
)

// InMemoryAccountRepository provides an in-memory implementation of
// AccountRepository for tests and local runs
type InMemoryAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*entities.Account
}

// NewInMemoryAccountRepository creates a new in-memory account repository
func NewInMemoryAccountRepository() *InMemoryAccountRepository {
	return &InMemoryAccountRepository{
		accounts: make(map[string]*entities.Account),
	}
}

var _ ports.AccountRepository = (*InMemoryAccountRepository)(nil)

// Save persists an account
func (r *InMemoryAccountRepository) Save(ctx context.Context, account *entities.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.accounts[account.ID().String()] = account
	return nil
}

// GetByID retrieves an account, nil when missing
func (r *InMemoryAccountRepository) GetByID(ctx context.Context, id valueobjects.PersonID) (*entities.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.accounts[id.String()], nil
}

// GetByEmail retrieves an account by email, nil when missing
func (r *InMemoryAccountRepository) GetByEmail(ctx context.Context, email string) (*entities.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, account := range r.accounts {
		if account.Email() == email {
			return account, nil
		}
	}
	return nil, nil
}

// Exists checks whether an account exists
func (r *InMemoryAccountRepository) Exists(ctx context.Context, id valueobjects.PersonID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.accounts[id.String()]
	return ok, nil
}

// SearchByName finds accounts whose display name starts with the prefix
func (r *InMemoryAccountRepository) SearchByName(ctx context.Context, name string, limit int) ([]*entities.Account, error) {
	if limit <= 0 {
		limit = 100
	}
	prefix := strings.ToLower(name)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []*entities.Account
	for _, account := range r.accounts {
		if strings.HasPrefix(strings.ToLower(account.Details().DisplayName()), prefix) {
			matches = append(matches, account)
			if len(matches) >= limit {
				break
			}
		}
	}
	return matches, nil
}
