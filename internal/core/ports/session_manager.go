package ports

import (
	"context"

	"github.com/mindhaven/counseling-system/internal/core/domain"
)

// SessionManager owns the per-user session machinery: the auth state
// container, the expiry watcher and the realtime bridge. Open is called
// after a successful login; Close tears everything down. State reports the
// container snapshot for a tracked user; the second return is false when no
// session, active or ended, exists for them in this process.
type SessionManager interface {
	Open(ctx context.Context, user *domain.User, token string)
	Close(userID string)
	State(userID string) (domain.AuthState, bool)
}
