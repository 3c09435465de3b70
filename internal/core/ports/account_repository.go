package ports

import (
	"context"

	"github.com/civicpulse/grievance-portal/internal/core/domain"
)

// AccountRepository is the identity directory the session store looks
// accounts up in. Lookups that miss return domain.ErrUserNotFound.
type AccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindFirstByRole returns the earliest-registered account with role.
	FindFirstByRole(ctx context.Context, role domain.Role) (*domain.User, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
