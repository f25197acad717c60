package services

import (
	"context"
	"time"

	"github.com/Vinay1727/labour-backend/internal/core/domain"
	"github.com/Vinay1727/labour-backend/internal/dto"
)

// UserSvcFacade defines operations on user accounts and profiles.
type UserSvcFacade interface {
	// RegisterUser creates a new phone+password account.
	RegisterUser(ctx context.Context, req dto.RegisterUserRequest) (*domain.User, error)

	// AuthenticateUser verifies phone+password credentials.
	AuthenticateUser(ctx context.Context, phone, password string) (*domain.User, error)

	// GetUserByID retrieves a user profile.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)

	// UpdateUser applies profile changes for the acting user.
	UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, requestingUserID string) (*domain.User, error)

	// FindOrCreateOAuthUser resolves an OAuth identity to a local account,
	// creating one on first sign-in.
	FindOrCreateOAuthUser(ctx context.Context, provider, providerID, name, email string) (*domain.User, error)

	// StoreRefreshToken persists the hash of a freshly issued refresh token.
	StoreRefreshToken(ctx context.Context, userID, refreshToken string, expiresAt time.Time) error

	// ClearRefreshToken invalidates the stored refresh token on logout.
	ClearRefreshToken(ctx context.Context, userID string) error
}
