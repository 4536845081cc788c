package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mindhaven/counseling-system/internal/core/ports"
)

const defaultTokenTTL = 24 * time.Hour

// TokenStore persists the single active credential per user.
// Key format: session:token:<user_id>
//
// Remove publishes a session_revoked event on the bus so that every
// subscriber — expiry watchers, the realtime bridge, other instances —
// observes the logout.
type TokenStore struct {
	client *redis.Client
	bus    ports.EventBus
}

// NewTokenStore creates a TokenStore wrapping the given Redis client.
func NewTokenStore(client *redis.Client, bus ports.EventBus) *TokenStore {
	return &TokenStore{client: client, bus: bus}
}

// Get returns the stored credential, or "" when none exists. Plain absence
// is not an error.
func (s *TokenStore) Get(ctx context.Context, userID string) (string, error) {
	val, err := s.client.Get(ctx, s.key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("token get: %w", err)
	}
	return val, nil
}

// Set stores the credential, replacing any previous one for the user.
func (s *TokenStore) Set(ctx context.Context, userID, token string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	if err := s.client.Set(ctx, s.key(userID), token, ttl).Err(); err != nil {
		return fmt.Errorf("token set: %w", err)
	}
	return nil
}

// Remove deletes the credential and broadcasts the revocation.
func (s *TokenStore) Remove(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("token remove: %w", err)
	}
	return s.bus.Publish(ctx, ports.Event{Name: ports.EventSessionRevoked, UserID: userID})
}

func (s *TokenStore) key(userID string) string {
	return fmt.Sprintf("session:token:%s", userID)
}
