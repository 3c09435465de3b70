package ports

import (
	"context"

	"github.com/civicpulse/grievance-portal/internal/pkg/timeline"
)

// WelcomeService drives the first-visit splash.
type WelcomeService interface {
	Seen(ctx context.Context, sessionID string) (bool, error)
	Dismiss(ctx context.Context, sessionID string) error
	// Play runs the splash timeline, calling emit for each step. It returns
	// played=false without emitting when the splash was already seen.
	Play(ctx context.Context, sessionID string, emit func(timeline.Step)) (played bool, err error)
}
