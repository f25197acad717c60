package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Vinay1727/labour-backend/internal/apperrors"
	"github.com/Vinay1727/labour-backend/internal/core/domain"
	portsrepo "github.com/Vinay1727/labour-backend/internal/core/ports/repositories"
	portssvc "github.com/Vinay1727/labour-backend/internal/core/ports/services"
	"github.com/Vinay1727/labour-backend/internal/dto"
	"github.com/Vinay1727/labour-backend/internal/middleware"
	"github.com/Vinay1727/labour-backend/internal/utils"
)

var ErrInvalidCredentials = errors.New("invalid phone or password")

// userService implements the UserSvcFacade interface.
type userService struct {
	userRepo portsrepo.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo portsrepo.UserRepository) portssvc.UserSvcFacade {
	return &userService{userRepo: userRepo}
}

// Ensure userService implements the portssvc.UserSvcFacade interface
var _ portssvc.UserSvcFacade = (*userService)(nil)

// RegisterUser creates a new phone+password account.
func (s *userService) RegisterUser(ctx context.Context, req dto.RegisterUserRequest) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	existing, err := s.userRepo.FindUserByPhone(ctx, req.Phone)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		logger.Error("Failed to check phone availability", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to check phone availability: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: phone already registered", apperrors.ErrDuplicate)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		logger.Error("Failed to hash password", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to hash password: %w", apperrors.ErrInternal)
	}

	now := time.Now().UTC()
	userID := uuid.NewString()
	user := domain.User{
		UserID:       userID,
		Name:         req.Name,
		Phone:        req.Phone,
		Role:         req.Role,
		PasswordHash: hash,
		Skills:       req.Skills,
		Location:     req.Location,
		IsActive:     true,
		AuthProvider: "local",
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		logger.Error("Failed to save user", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	logger.Info("User registered", slog.String("user_id", user.UserID), slog.String("role", string(user.Role)))
	return &user, nil
}

// AuthenticateUser verifies phone+password credentials.
func (s *userService) AuthenticateUser(ctx context.Context, phone, password string) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, err := s.userRepo.FindUserByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		logger.Error("Failed to look up user for login", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account is deactivated", apperrors.ErrForbidden)
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUserByID retrieves a user profile.
func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find user by ID", slog.String("error", err.Error()), slog.String("user_id", userID))
		}
		return nil, fmt.Errorf("failed to find user %s: %w", userID, err)
	}
	return user, nil
}

// UpdateUser applies profile changes for the acting user. Users may only
// update their own profile.
func (s *userService) UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, requestingUserID string) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if userID != requestingUserID {
		return nil, fmt.Errorf("%w: users may only update their own profile", apperrors.ErrForbidden)
	}

	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user %s: %w", userID, err)
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Location != nil {
		user.Location = *req.Location
	}
	if req.Skills != nil {
		user.Skills = req.Skills
	}
	user.LastUpdatedAt = time.Now().UTC()
	user.LastUpdatedBy = requestingUserID

	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		logger.Error("Failed to update user", slog.String("error", err.Error()), slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	logger.Info("User profile updated", slog.String("user_id", userID))
	return user, nil
}

// FindOrCreateOAuthUser resolves an OAuth identity to a local account,
// creating one on first sign-in. OAuth accounts default to the labour role;
// the profile can be adjusted afterwards.
func (s *userService) FindOrCreateOAuthUser(ctx context.Context, provider, providerID, name, email string) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, err := s.userRepo.FindUserByProviderID(ctx, provider, providerID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		logger.Error("Failed to look up OAuth user", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to look up OAuth user: %w", err)
	}

	now := time.Now().UTC()
	userID := uuid.NewString()
	newUser := domain.User{
		UserID:       userID,
		Name:         name,
		Email:        &email,
		Role:         domain.RoleLabour,
		IsActive:     true,
		AuthProvider: provider,
		ProviderID:   providerID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.userRepo.SaveUser(ctx, newUser); err != nil {
		logger.Error("Failed to save OAuth user", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save OAuth user: %w", err)
	}

	logger.Info("OAuth user created", slog.String("user_id", newUser.UserID), slog.String("provider", provider))
	return &newUser, nil
}

// StoreRefreshToken persists the hash of a freshly issued refresh token.
func (s *userService) StoreRefreshToken(ctx context.Context, userID, refreshToken string, expiresAt time.Time) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	hash := utils.HashRefreshToken(refreshToken)
	if err := s.userRepo.UpdateRefreshToken(ctx, userID, hash, &expiresAt); err != nil {
		logger.Error("Failed to store refresh token", slog.String("error", err.Error()), slog.String("user_id", userID))
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

// ClearRefreshToken invalidates the stored refresh token on logout.
func (s *userService) ClearRefreshToken(ctx context.Context, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.userRepo.UpdateRefreshToken(ctx, userID, "", nil); err != nil {
		logger.Error("Failed to clear refresh token", slog.String("error", err.Error()), slog.String("user_id", userID))
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}
	return nil
}
