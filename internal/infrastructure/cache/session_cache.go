package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"

	"github.com/civicpulse/grievance-portal/internal/core/domain"
	"github.com/civicpulse/grievance-portal/internal/core/ports"
)

const (
	defaultSize = 4096
	defaultTTL  = 30 * time.Second
)

// Broadcaster tells other instances that a session record changed.
type Broadcaster interface {
	Publish(ctx context.Context, sessionID string) error
}

// SessionCache is a read-through LRU in front of a SessionRepository.
// Writes go to the backing store first and then refresh the cache; deletes
// evict. With a Broadcaster every change is announced so other instances
// evict too; without one their entries may be stale for up to ttl.
type SessionCache struct {
	next      ports.SessionRepository
	cache     *expirable.LRU[string, *domain.User]
	broadcast Broadcaster
	log       zerolog.Logger
}

var _ ports.SessionRepository = (*SessionCache)(nil)

// NewSessionCache wraps next. Non-positive size or ttl fall back to defaults.
func NewSessionCache(next ports.SessionRepository, size int, ttl time.Duration) *SessionCache {
	if size <= 0 {
		size = defaultSize
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &SessionCache{
		next:  next,
		cache: expirable.NewLRU[string, *domain.User](size, nil, ttl),
		log:   zerolog.Nop(),
	}
}

// WithBroadcaster announces every Save and Delete through b. Failures to
// publish are logged; the local write has already succeeded.
func (c *SessionCache) WithBroadcaster(b Broadcaster, log zerolog.Logger) *SessionCache {
	c.broadcast = b
	c.log = log
	return c
}

// Evict drops the cached copy of a session changed elsewhere.
func (c *SessionCache) Evict(sessionID string) {
	c.cache.Remove(sessionID)
}

func (c *SessionCache) Save(ctx context.Context, sessionID string, user *domain.User) error {
	if err := c.next.Save(ctx, sessionID, user); err != nil {
		c.cache.Remove(sessionID)
		return err
	}
	c.cache.Add(sessionID, cacheable(user))
	c.announce(ctx, sessionID)
	return nil
}

// Load serves a copy from the cache when present. Misses and errors of the
// backing store are not cached.
func (c *SessionCache) Load(ctx context.Context, sessionID string) (*domain.User, error) {
	if u, ok := c.cache.Get(sessionID); ok {
		return u.Clone(), nil
	}
	u, err := c.next.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	c.cache.Add(sessionID, cacheable(u))
	return u, nil
}

func (c *SessionCache) Delete(ctx context.Context, sessionID string) error {
	c.cache.Remove(sessionID)
	if err := c.next.Delete(ctx, sessionID); err != nil {
		return err
	}
	c.announce(ctx, sessionID)
	return nil
}

func (c *SessionCache) announce(ctx context.Context, sessionID string) {
	if c.broadcast == nil {
		return
	}
	if err := c.broadcast.Publish(ctx, sessionID); err != nil {
		c.log.Warn().Err(err).Msg("session invalidation not published")
	}
}

// Len reports the number of cached sessions.
func (c *SessionCache) Len() int { return c.cache.Len() }

func cacheable(u *domain.User) *domain.User {
	cp := u.Clone()
	cp.PasswordHash = ""
	return cp
}
