package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/civicpulse/grievance-portal/internal/core/domain"
)

type stubSessionRepo struct {
	records map[string]*domain.User
	loads   int
	saveErr error
}

func newStubSessionRepo() *stubSessionRepo {
	return &stubSessionRepo{records: map[string]*domain.User{}}
}

func (s *stubSessionRepo) Save(_ context.Context, sid string, u *domain.User) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.records[sid] = u.Clone()
	return nil
}

func (s *stubSessionRepo) Load(_ context.Context, sid string) (*domain.User, error) {
	s.loads++
	u, ok := s.records[sid]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return u.Clone(), nil
}

func (s *stubSessionRepo) Delete(_ context.Context, sid string) error {
	delete(s.records, sid)
	return nil
}

func TestSessionCache_LoadHitsBackingStoreOnce(t *testing.T) {
	repo := newStubSessionRepo()
	repo.records["sid-1"] = domain.DemoAccounts()[0]
	c := NewSessionCache(repo, 8, time.Minute)
	ctx := context.Background()

	for range_i := 0; range_i < 3; range_i++ {
		u, err := c.Load(ctx, "sid-1")
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if u.Email != "alice@example.com" {
			t.Fatalf("unexpected user: %+v", u)
		}
	}
	if repo.loads != 1 {
		t.Fatalf("expected 1 backing load, got %d", repo.loads)
	}
}

func TestSessionCache_MissIsNotCached(t *testing.T) {
	repo := newStubSessionRepo()
	c := NewSessionCache(repo, 8, time.Minute)
	ctx := context.Background()

	for range_i := 0; range_i < 2; range_i++ {
		if _, err := c.Load(ctx, "sid-1"); !errors.Is(err, domain.ErrSessionNotFound) {
			t.Fatalf("expected ErrSessionNotFound, got %v", err)
		}
	}
	if repo.loads != 2 {
		t.Fatalf("misses should reach the backing store, got %d loads", repo.loads)
	}
}

func TestSessionCache_ReturnsCopies(t *testing.T) {
	repo := newStubSessionRepo()
	c := NewSessionCache(repo, 8, time.Minute)
	ctx := context.Background()

	if err := c.Save(ctx, "sid-1", domain.DemoAccounts()[0]); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	u, _ := c.Load(ctx, "sid-1")
	u.Name = "mutated"
	u.Badges[0] = "mutated"

	again, _ := c.Load(ctx, "sid-1")
	if again.Name == "mutated" || again.Badges[0] == "mutated" {
		t.Fatalf("cached entry was mutated through a returned copy")
	}
}

func TestSessionCache_DropsPasswordHash(t *testing.T) {
	repo := newStubSessionRepo()
	c := NewSessionCache(repo, 8, time.Minute)
	ctx := context.Background()

	u := domain.DemoAccounts()[1]
	u.PasswordHash = "hash"
	if err := c.Save(ctx, "sid-1", u); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	got, _ := c.Load(ctx, "sid-1")
	if got.PasswordHash != "" {
		t.Fatalf("cache must not hold password hashes")
	}
}

func TestSessionCache_SaveFailureEvicts(t *testing.T) {
	repo := newStubSessionRepo()
	c := NewSessionCache(repo, 8, time.Minute)
	ctx := context.Background()

	if err := c.Save(ctx, "sid-1", domain.DemoAccounts()[0]); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	repo.saveErr = errors.New("redis down")
	if err := c.Save(ctx, "sid-1", domain.DemoAccounts()[1]); err == nil {
		t.Fatalf("expected save error")
	}
	if c.Len() != 0 {
		t.Fatalf("failed save must evict the cached entry")
	}
}

func TestSessionCache_DeleteEvicts(t *testing.T) {
	repo := newStubSessionRepo()
	c := NewSessionCache(repo, 8, time.Minute)
	ctx := context.Background()

	if err := c.Save(ctx, "sid-1", domain.DemoAccounts()[0]); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if err := c.Delete(ctx, "sid-1"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := c.Load(ctx, "sid-1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
	}
}

type recordingBroadcaster struct {
	published []string
}

func (b *recordingBroadcaster) Publish(_ context.Context, sid string) error {
	b.published = append(b.published, sid)
	return nil
}

func TestSessionCache_AnnouncesChanges(t *testing.T) {
	repo := newStubSessionRepo()
	b := &recordingBroadcaster{}
	c := NewSessionCache(repo, 8, time.Minute).WithBroadcaster(b, zerolog.Nop())
	ctx := context.Background()

	if err := c.Save(ctx, "sid-1", domain.DemoAccounts()[0]); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if err := c.Delete(ctx, "sid-1"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	repo.saveErr = errors.New("redis down")
	_ = c.Save(ctx, "sid-2", domain.DemoAccounts()[1])

	if len(b.published) != 2 || b.published[0] != "sid-1" || b.published[1] != "sid-1" {
		t.Fatalf("expected two announcements for sid-1 only, got %v", b.published)
	}
}

func TestSessionCache_EvictForcesFreshLoad(t *testing.T) {
	repo := newStubSessionRepo()
	repo.records["sid-1"] = domain.DemoAccounts()[0]
	c := NewSessionCache(repo, 8, time.Minute)
	ctx := context.Background()

	if _, err := c.Load(ctx, "sid-1"); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	delete(repo.records, "sid-1")
	c.Evict("sid-1")

	if _, err := c.Load(ctx, "sid-1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after eviction, got %v", err)
	}
}
