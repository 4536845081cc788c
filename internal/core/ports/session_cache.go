package ports

import (
	"context"
	"time"

	"github.com/mindhaven/counseling-system/internal/core/domain"
)

// SessionCache holds tag-keyed cached query results. Invalidate deletes the
// tags so the next access refetches — it never triggers a fetch itself.
type SessionCache interface {
	Get(ctx context.Context, tag string) (*domain.User, bool, error)
	Set(ctx context.Context, tag string, user *domain.User, ttl time.Duration) error
	Invalidate(ctx context.Context, tags ...string) error
}
