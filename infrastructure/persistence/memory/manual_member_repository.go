package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"familytree-backend/application/ports"
	"familytree-backend/domain/core/entities"
	"familytree-backend/domain/core/valueobjects"
)

// InMemoryManualMemberRepository provides an in-memory implementation of
// ManualMemberRepository for tests and local runs
type InMemoryManualMemberRepository struct {
	mu      sync.RWMutex
	members map[string]*entities.ManualMember
}

// NewInMemoryManualMemberRepository creates a new in-memory member repository
func NewInMemoryManualMemberRepository() *InMemoryManualMemberRepository {
	return &InMemoryManualMemberRepository{
		members: make(map[string]*entities.ManualMember),
	}
}

var _ ports.ManualMemberRepository = (*InMemoryManualMemberRepository)(nil)

// Save persists a member
func (r *InMemoryManualMemberRepository) Save(ctx context.Context, member *entities.ManualMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.members[member.ID().String()] = member
	return nil
}

// GetByID retrieves a member, nil when missing
func (r *InMemoryManualMemberRepository) GetByID(ctx context.Context, id valueobjects.PersonID) (*entities.ManualMember, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.members[id.String()], nil
}

// GetByAdder retrieves all members recorded by an account
func (r *InMemoryManualMemberRepository) GetByAdder(ctx context.Context, adderID valueobjects.PersonID) ([]*entities.ManualMember, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var members []*entities.ManualMember
	for _, member := range r.members {
		if member.AddedBy().Equals(adderID) {
			members = append(members, member)
		}
	}
	return members, nil
}

// FindMatches returns unlinked members matching a name and optional date
// of birth
func (r *InMemoryManualMemberRepository) FindMatches(ctx context.Context, name string, dateOfBirth *time.Time) ([]*entities.ManualMember, error) {
	name = strings.ToLower(strings.TrimSpace(name))

	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []*entities.ManualMember
	for _, member := range r.members {
		if member.IsLinked() {
			continue
		}
		if strings.ToLower(member.Details().DisplayName()) != name {
			continue
		}
		if dateOfBirth != nil {
			dob := member.Details().DateOfBirth()
			if dob == nil || !dob.Equal(*dateOfBirth) {
				continue
			}
		}
		matches = append(matches, member)
	}
	return matches, nil
}

// Delete removes a member. Missing members are a no-op.
func (r *InMemoryManualMemberRepository) Delete(ctx context.Context, id valueobjects.PersonID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.members, id.String())
	return nil
}
