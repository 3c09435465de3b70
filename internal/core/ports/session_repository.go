package ports

import (
	"context"

	"github.com/civicpulse/grievance-portal/internal/core/domain"
)

// SessionRepository is the durable mirror of the current user, keyed by the
// session identifier.
type SessionRepository interface {
	Save(ctx context.Context, sessionID string, user *domain.User) error
	// Load returns domain.ErrSessionNotFound when nothing is stored and
	// domain.ErrSessionCorrupt when the stored record does not decode.
	Load(ctx context.Context, sessionID string) (*domain.User, error)
	Delete(ctx context.Context, sessionID string) error
}

// FlagStore keeps durable per-session boolean flags.
type FlagStore interface {
	IsSet(ctx context.Context, sessionID string) (bool, error)
	Set(ctx context.Context, sessionID string) error
}
