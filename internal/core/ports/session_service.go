package ports

import (
	"context"
	"time"

	"github.com/civicpulse/grievance-portal/internal/core/domain"
)

// RegisterInput carries the sign-up form.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// SessionService owns "who is logged in" for every session identifier.
type SessionService interface {
	Login(ctx context.Context, sessionID, email, password string) (*domain.User, error)
	DemoLogin(ctx context.Context, sessionID string, role domain.Role) (*domain.User, error)
	Register(ctx context.Context, sessionID string, in RegisterInput) (*domain.User, error)
	Logout(ctx context.Context, sessionID string) error
	// Restore returns (nil, nil) when the session has no user.
	Restore(ctx context.Context, sessionID string) (*domain.User, error)
}

// SessionToken is a verified session token.
type SessionToken struct {
	SessionID string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Stale reports whether more than half of the token's lifetime has passed
// at now. Stale tokens are re-issued for the same session id.
func (t SessionToken) Stale(now time.Time) bool {
	half := t.ExpiresAt.Sub(t.IssuedAt) / 2
	return !now.Before(t.IssuedAt.Add(half))
}

// TokenService signs and verifies the session identifier carried by clients.
type TokenService interface {
	Issue(sessionID string) (string, error)
	Parse(raw string) (SessionToken, error)
}
