package ports

import (
	"context"

	"github.com/mindhaven/counseling-system/internal/core/domain"
)

// UserRepository defines the persistence interface for user identities.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}
