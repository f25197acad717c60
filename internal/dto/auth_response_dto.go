package dto

import "time"

// AuthResponse is returned by login, registration and token refresh.
type AuthResponse struct {
	Token        string       `json:"token"`
	ExpiresAt    time.Time    `json:"expiresAt"`
	RefreshToken string       `json:"refreshToken"`
	User         UserResponse `json:"user"`
}

// RefreshTokenRequest defines data for rotating a refresh token.
type RefreshTokenRequest struct {
	UserID       string `json:"userID" binding:"required"`
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// GoogleExchangeCodeRequest defines the authorization code payload from the
// mobile client's Google sign-in.
type GoogleExchangeCodeRequest struct {
	Code string `json:"code" binding:"required"`
}
