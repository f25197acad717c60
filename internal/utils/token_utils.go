package utils

import (
	"time"

	"github.com/Vinay1727/labour-backend/internal/core/domain"
	"github.com/golang-jwt/jwt/v5"
)

// AppClaims are the JWT claims carried by access tokens. The marketplace role
// travels with the token so handlers can build the explicit actor parameter
// without an extra user lookup.
type AppClaims struct {
	Role domain.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// GenerateJWT generates a new JWT access token with the given parameters.
func GenerateJWT(userID string, role domain.UserRole, secret string, expiryDuration time.Duration, issuer string) (string, error) {
	claims := AppClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiryDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseAndValidateJWT parses a JWT token string and validates its signature
// and standard claims. It returns the AppClaims if the token is valid.
func ParseAndValidateJWT(tokenString string, secretKey string) (*AppClaims, error) {
	claims := &AppClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secretKey), nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}

	return claims, nil
}
