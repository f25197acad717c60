package repositories

import (
	"context"
	"time"

	"github.com/Vinay1727/labour-backend/internal/core/domain"
)

// UserRepository defines persistence operations for marketplace users.
type UserRepository interface {
	// SaveUser persists a newly registered user.
	SaveUser(ctx context.Context, user domain.User) error

	// FindUserByID retrieves a user by primary key.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUserByPhone retrieves a user by phone number (login identifier).
	FindUserByPhone(ctx context.Context, phone string) (*domain.User, error)

	// FindUserByProviderID retrieves a user created via an OAuth provider.
	FindUserByProviderID(ctx context.Context, provider, providerID string) (*domain.User, error)

	// UpdateUser persists profile changes.
	UpdateUser(ctx context.Context, user domain.User) error

	// UpdateRefreshToken stores the hash and expiry of the user's current
	// refresh token; empty hash clears it.
	UpdateRefreshToken(ctx context.Context, userID string, tokenHash string, expiresAt *time.Time) error

	// UpdateUserRating updates the denormalized rating aggregate.
	UpdateUserRating(ctx context.Context, userID string, rating float64, ratingCount int) error
}
