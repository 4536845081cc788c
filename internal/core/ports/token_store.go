package ports

import (
	"context"
	"time"
)

// TokenStore persists the single active bearer credential per user.
// Implementations publish EventSessionRevoked on Remove so that other
// listeners (expiry watchers in other processes, the realtime bridge)
// observe the logout no matter which instance triggered it.
//
// Get returns ("", nil) when no credential is stored; plain absence is
// advisory, never an error.
type TokenStore interface {
	Get(ctx context.Context, userID string) (string, error)
	Set(ctx context.Context, userID, token string, ttl time.Duration) error
	Remove(ctx context.Context, userID string) error
}
