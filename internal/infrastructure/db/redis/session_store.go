package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/civicpulse/grievance-portal/internal/core/domain"
	"github.com/civicpulse/grievance-portal/internal/core/ports"
)

const defaultSessionTTL = 30 * 24 * time.Hour

// sessionRecord is the stored form of a session. User carries its own json
// tags except for the password hash, which never leaves the directory.
type sessionRecord struct {
	User    *domain.User `json:"user"`
	SavedAt int64        `json:"saved_at"`
}

// SessionStore keeps the current user of each session.
// Key format: session:<session_id>
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

var _ ports.SessionRepository = (*SessionStore)(nil)

// NewSessionStore creates a SessionStore whose records expire ttl after
// their last read or write. If ttl <= 0, defaultSessionTTL is used.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionStore{client: client, ttl: ttl, now: time.Now}
}

func (s *SessionStore) Save(ctx context.Context, sessionID string, user *domain.User) error {
	data, err := json.Marshal(sessionRecord{User: user, SavedAt: s.now().Unix()})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load reads the record and slides its expiry forward.
func (s *SessionStore) Load(ctx context.Context, sessionID string) (*domain.User, error) {
	data, err := s.client.GetEx(ctx, sessionKey(sessionID), s.ttl).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSessionCorrupt, err)
	}
	if rec.User == nil {
		return nil, fmt.Errorf("%w: empty record", domain.ErrSessionCorrupt)
	}
	return rec.User, nil
}

func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID
}
