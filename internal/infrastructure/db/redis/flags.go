package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/civicpulse/grievance-portal/internal/core/ports"
)

// WelcomeFlags records which sessions have seen the welcome splash.
// Key format: welcome_seen:<session_id>
type WelcomeFlags struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ports.FlagStore = (*WelcomeFlags)(nil)

// NewWelcomeFlags creates a WelcomeFlags. A ttl of zero keeps flags forever.
func NewWelcomeFlags(client *redis.Client, ttl time.Duration) *WelcomeFlags {
	return &WelcomeFlags{client: client, ttl: ttl}
}

func (f *WelcomeFlags) IsSet(ctx context.Context, sessionID string) (bool, error) {
	n, err := f.client.Exists(ctx, welcomeKey(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("welcome flag check: %w", err)
	}
	return n > 0, nil
}

func (f *WelcomeFlags) Set(ctx context.Context, sessionID string) error {
	if err := f.client.Set(ctx, welcomeKey(sessionID), "1", f.ttl).Err(); err != nil {
		return fmt.Errorf("welcome flag set: %w", err)
	}
	return nil
}

func welcomeKey(sessionID string) string {
	return "welcome_seen:" + sessionID
}
