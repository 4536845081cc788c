package ports

import (
	"context"

	"github.com/mindhaven/counseling-system/internal/core/domain"
)

// RegisterInput is the DTO passed from the transport layer to AuthService.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Role     domain.Role
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	Logout(ctx context.Context, userID string) error
}

// SessionService is the cached, deduplicated current-user lookup shared
// across the app.
type SessionService interface {
	CurrentUser(ctx context.Context, userID string) (*domain.User, error)
	Invalidate(ctx context.Context, tags ...string) error
}
