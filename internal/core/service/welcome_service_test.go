package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/civicpulse/grievance-portal/internal/pkg/timeline"
)

type stubFlagStore struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newStubFlagStore() *stubFlagStore { return &stubFlagStore{seen: map[string]bool{}} }

func (f *stubFlagStore) IsSet(_ context.Context, sid string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen[sid], nil
}

func (f *stubFlagStore) Set(_ context.Context, sid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen[sid] = true
	return nil
}

func fastTimings() SplashTimings {
	return SplashTimings{
		Steps:  []time.Duration{time.Millisecond, 2 * time.Millisecond, 3 * time.Millisecond, 4 * time.Millisecond},
		Settle: time.Millisecond,
	}
}

func TestSplashSequence_Default(t *testing.T) {
	seq := SplashSequence(DefaultSplashTimings())

	want := timeline.Sequence{
		{Name: "logo", At: time.Second},
		{Name: "tagline", At: 2 * time.Second},
		{Name: "features", At: 3 * time.Second},
		{Name: "ready", At: 4 * time.Second},
		{Name: SplashDone, At: 5500 * time.Millisecond},
	}
	if len(seq) != len(want) {
		t.Fatalf("expected %d steps, got %d", len(want), len(seq))
	}
	for i := range want {
		if seq[i] != want[i] {
			t.Fatalf("step %d: expected %+v, got %+v", i, want[i], seq[i])
		}
	}
}

func TestWelcomeService_PlayFirstVisitMarksSeen(t *testing.T) {
	flags := newStubFlagStore()
	svc := NewWelcomeService(flags, fastTimings(), zerolog.Nop())

	var steps []string
	played, err := svc.Play(context.Background(), "sid-1", func(s timeline.Step) { steps = append(steps, s.Name) })
	if err != nil {
		t.Fatalf("Play returned error: %v", err)
	}
	if !played {
		t.Fatalf("expected the splash to play on first visit")
	}
	if len(steps) != 5 || steps[4] != SplashDone {
		t.Fatalf("unexpected steps: %v", steps)
	}
	if !flags.seen["sid-1"] {
		t.Fatalf("splash not marked seen")
	}
}

func TestWelcomeService_PlaySkipsWhenSeen(t *testing.T) {
	flags := newStubFlagStore()
	flags.seen["sid-1"] = true
	svc := NewWelcomeService(flags, fastTimings(), zerolog.Nop())

	played, err := svc.Play(context.Background(), "sid-1", func(timeline.Step) {
		t.Fatalf("no step should fire for a returning visitor")
	})
	if err != nil || played {
		t.Fatalf("expected (false, nil), got (%v, %v)", played, err)
	}
}

func TestWelcomeService_PlayCancelledLeavesFlagUnset(t *testing.T) {
	flags := newStubFlagStore()
	svc := NewWelcomeService(flags, DefaultSplashTimings(), zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	_, err := svc.Play(ctx, "sid-1", func(timeline.Step) {})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
	if flags.seen["sid-1"] {
		t.Fatalf("interrupted splash must not be marked seen")
	}
}

func TestWelcomeService_Dismiss(t *testing.T) {
	flags := newStubFlagStore()
	svc := NewWelcomeService(flags, fastTimings(), zerolog.Nop())
	ctx := context.Background()

	if err := svc.Dismiss(ctx, "sid-1"); err != nil {
		t.Fatalf("Dismiss returned error: %v", err)
	}
	seen, err := svc.Seen(ctx, "sid-1")
	if err != nil || !seen {
		t.Fatalf("expected seen after dismiss, got %v, %v", seen, err)
	}
}
