package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"

	"github.com/Vinay1727/labour-backend/internal/apperrors"
	"github.com/Vinay1727/labour-backend/internal/core/domain"
	portsrepo "github.com/Vinay1727/labour-backend/internal/core/ports/repositories"
	portssvc "github.com/Vinay1727/labour-backend/internal/core/ports/services"
	"github.com/Vinay1727/labour-backend/internal/middleware"
	"github.com/Vinay1727/labour-backend/internal/platform/config"
	"github.com/Vinay1727/labour-backend/internal/utils"
)

var ErrInvalidRefreshToken = errors.New("refresh token is invalid or expired")

// tokenService implements the TokenSvcFacade interface.
type tokenService struct {
	userRepo portsrepo.UserRepository
	cfg      *config.Config
}

// NewTokenService creates a new TokenService.
func NewTokenService(userRepo portsrepo.UserRepository, cfg *config.Config) portssvc.TokenSvcFacade {
	return &tokenService{
		userRepo: userRepo,
		cfg:      cfg,
	}
}

// Ensure tokenService implements the portssvc.TokenSvcFacade interface
var _ portssvc.TokenSvcFacade = (*tokenService)(nil)

// GenerateAccessToken creates a new JWT access token for the given user. The
// token carries the user's marketplace role as a claim.
func (s *tokenService) GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	expiresAt := time.Now().UTC().Add(s.cfg.JWTExpiryDuration)
	token, err := utils.GenerateJWT(user.UserID, user.Role, s.cfg.JWTSecret, s.cfg.JWTExpiryDuration, s.cfg.JWTIssuer)
	if err != nil {
		logger.Error("Failed to generate access token", slog.String("error", err.Error()), slog.String("user_id", user.UserID))
		return "", time.Time{}, fmt.Errorf("failed to generate access token: %w", apperrors.ErrInternal)
	}
	return token, expiresAt, nil
}

// GenerateRefreshToken creates a new opaque refresh token for the given user.
func (s *tokenService) GenerateRefreshToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	token, err := utils.GenerateSecureRandomString(32)
	if err != nil {
		logger.Error("Failed to generate refresh token", slog.String("error", err.Error()), slog.String("user_id", user.UserID))
		return "", time.Time{}, fmt.Errorf("failed to generate refresh token: %w", apperrors.ErrInternal)
	}

	expiresAt := time.Now().UTC().Add(s.cfg.RefreshTokenExpiryDuration)
	return token, expiresAt, nil
}

// ValidateAndParseRefreshToken validates a refresh token string against the
// stored hash and expiry and returns the associated user.
func (s *tokenService) ValidateAndParseRefreshToken(ctx context.Context, userID string, refreshTokenString string) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		logger.Error("Failed to look up user for token refresh", slog.String("error", err.Error()), slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to validate refresh token: %w", err)
	}

	if user.RefreshTokenHash == "" || user.RefreshTokenExpiryTime == nil {
		return nil, ErrInvalidRefreshToken
	}
	if time.Now().UTC().After(*user.RefreshTokenExpiryTime) {
		return nil, ErrInvalidRefreshToken
	}
	if !utils.CompareRefreshTokenHash(refreshTokenString, user.RefreshTokenHash) {
		logger.Warn("Refresh token hash mismatch", slog.String("user_id", userID))
		return nil, ErrInvalidRefreshToken
	}

	return user, nil
}

// googleOAuthService implements the GoogleOAuthSvcFacade interface.
type googleOAuthService struct {
	oauthConfig *oauth2.Config
	clientID    string
}

// NewGoogleOAuthService creates a new GoogleOAuthService.
func NewGoogleOAuthService(cfg *config.Config) portssvc.GoogleOAuthSvcFacade {
	return &googleOAuthService{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     google.Endpoint,
		},
		clientID: cfg.GoogleClientID,
	}
}

// Ensure googleOAuthService implements the portssvc.GoogleOAuthSvcFacade interface
var _ portssvc.GoogleOAuthSvcFacade = (*googleOAuthService)(nil)

// ExchangeCodeForToken exchanges an authorization code for Google tokens.
func (s *googleOAuthService) ExchangeCodeForToken(ctx context.Context, code string) (*oauth2.Token, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		logger.Error("Failed to exchange Google authorization code", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: google code exchange failed", apperrors.ErrUnauthorized)
	}
	return token, nil
}

// ValidateGoogleIDToken validates a Google ID token and returns its payload.
func (s *googleOAuthService) ValidateGoogleIDToken(ctx context.Context, idToken string) (*idtoken.Payload, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	payload, err := idtoken.Validate(ctx, idToken, s.clientID)
	if err != nil {
		logger.Warn("Google ID token validation failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: invalid google id token", apperrors.ErrUnauthorized)
	}
	return payload, nil
}
