package redis

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// InvalidationChannel carries "<instance>|<session_id>" whenever an
// instance changes or drops a session record.
const InvalidationChannel = "session:invalidate"

// SessionInvalidations broadcasts session changes so other instances can
// evict their cached copy.
type SessionInvalidations struct {
	client   *redis.Client
	instance string
}

func NewSessionInvalidations(client *redis.Client, instanceID string) *SessionInvalidations {
	return &SessionInvalidations{client: client, instance: instanceID}
}

func (s *SessionInvalidations) Publish(ctx context.Context, sessionID string) error {
	if err := s.client.Publish(ctx, InvalidationChannel, s.instance+"|"+sessionID).Err(); err != nil {
		return fmt.Errorf("session invalidation publish: %w", err)
	}
	return nil
}

// Listen calls evict for every session changed by another instance. It
// blocks until ctx is cancelled or the subscription fails.
func (s *SessionInvalidations) Listen(ctx context.Context, evict func(sessionID string)) error {
	pubsub := s.client.Subscribe(ctx, InvalidationChannel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("session invalidation subscribe: %w", err)
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			origin, sid, found := strings.Cut(msg.Payload, "|")
			if !found || sid == "" || origin == s.instance {
				continue
			}
			evict(sid)
		}
	}
}
