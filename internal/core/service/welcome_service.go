package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/civicpulse/grievance-portal/internal/core/ports"
	"github.com/civicpulse/grievance-portal/internal/pkg/timeline"
)

// SplashTimings configures the welcome splash. Steps fire at the given
// offsets; Settle is added after the last step before the splash hides.
type SplashTimings struct {
	Steps  []time.Duration
	Settle time.Duration
}

// DefaultSplashTimings is the 1s/2s/3s/4s sequence with a 1.5s settle.
func DefaultSplashTimings() SplashTimings {
	return SplashTimings{
		Steps:  []time.Duration{time.Second, 2 * time.Second, 3 * time.Second, 4 * time.Second},
		Settle: 1500 * time.Millisecond,
	}
}

var splashStepNames = []string{"logo", "tagline", "features", "ready"}

// SplashDone is the name of the final step, after which the splash hides.
const SplashDone = "done"

// SplashSequence builds the timeline for t. Steps beyond the named ones are
// called step5, step6 and so on.
func SplashSequence(t SplashTimings) timeline.Sequence {
	seq := make(timeline.Sequence, 0, len(t.Steps)+1)
	var last time.Duration
	for i, at := range t.Steps {
		name := fmt.Sprintf("step%d", i+1)
		if i < len(splashStepNames) {
			name = splashStepNames[i]
		}
		seq = append(seq, timeline.Step{Name: name, At: at})
		last = at
	}
	return append(seq, timeline.Step{Name: SplashDone, At: last + t.Settle})
}

type WelcomeService struct {
	flags ports.FlagStore
	seq   timeline.Sequence
	log   zerolog.Logger
}

func NewWelcomeService(flags ports.FlagStore, timings SplashTimings, log zerolog.Logger) *WelcomeService {
	return &WelcomeService{flags: flags, seq: SplashSequence(timings), log: log}
}

// Seen reports whether the session has already been shown the splash.
func (s *WelcomeService) Seen(ctx context.Context, sessionID string) (bool, error) {
	seen, err := s.flags.IsSet(ctx, sessionID)
	if err != nil {
		return false, fmt.Errorf("welcome seen: %w", err)
	}
	return seen, nil
}

// Dismiss marks the splash as seen without waiting for the timeline.
func (s *WelcomeService) Dismiss(ctx context.Context, sessionID string) error {
	if err := s.flags.Set(ctx, sessionID); err != nil {
		return fmt.Errorf("welcome dismiss: %w", err)
	}
	return nil
}

// Play runs the splash for a first-time session and marks it seen once the
// final step fires. Cancelling ctx stops every pending step and leaves the
// flag unset.
func (s *WelcomeService) Play(ctx context.Context, sessionID string, emit func(timeline.Step)) (bool, error) {
	seen, err := s.Seen(ctx, sessionID)
	if err != nil {
		return false, err
	}
	if seen {
		return false, nil
	}

	if err := timeline.Run(ctx, s.seq, emit); err != nil {
		s.log.Debug().Err(err).Str("session", shortID(sessionID)).Msg("welcome splash interrupted")
		return true, err
	}

	// The session may already be gone; marking seen must still succeed.
	if err := s.flags.Set(context.WithoutCancel(ctx), sessionID); err != nil {
		return true, fmt.Errorf("welcome mark seen: %w", err)
	}
	return true, nil
}

// Sequence exposes the configured timeline.
func (s *WelcomeService) Sequence() timeline.Sequence { return s.seq }
