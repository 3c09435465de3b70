package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/civicpulse/grievance-portal/internal/core/domain"
	"github.com/civicpulse/grievance-portal/internal/core/ports"
)

// AccountRepository is the in-process account directory. Accounts keep their
// registration order, which FindFirstByRole relies on.
type AccountRepository struct {
	mu       sync.RWMutex
	accounts []*domain.User
}

var _ ports.AccountRepository = (*AccountRepository)(nil)

// NewAccountRepository returns a directory holding copies of seed.
func NewAccountRepository(seed []*domain.User) *AccountRepository {
	r := &AccountRepository{accounts: make([]*domain.User, 0, len(seed))}
	for _, u := range seed {
		r.accounts = append(r.accounts, u.Clone())
	}
	return r
}

// FindByEmail returns the first account whose email matches, ignoring case.
func (r *AccountRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.accounts {
		if strings.EqualFold(u.Email, email) {
			return u.Clone(), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *AccountRepository) FindFirstByRole(_ context.Context, role domain.Role) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.accounts {
		if u.Role == role {
			return u.Clone(), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *AccountRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.accounts), nil
}

// Create appends user. Duplicate emails are accepted; lookups return the
// earliest match.
func (r *AccountRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.accounts = append(r.accounts, user.Clone())
	return user.Clone(), nil
}
