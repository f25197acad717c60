package dto

import (
	"time"

	"github.com/Vinay1727/labour-backend/internal/core/domain"
)

// --- User DTOs ---

// RegisterUserRequest defines data for registering a new user.
type RegisterUserRequest struct {
	Name     string          `json:"name" binding:"required"`
	Phone    string          `json:"phone" binding:"required,e164"`
	Password string          `json:"password" binding:"required,min=8"`
	Role     domain.UserRole `json:"role" binding:"required,oneof=CONTRACTOR LABOUR"`
	Skills   []string        `json:"skills,omitempty"`
	Location string          `json:"location"`
}

// LoginRequest defines data for a phone+password login.
type LoginRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateUserRequest defines profile fields a user may change.
type UpdateUserRequest struct {
	Name     *string  `json:"name,omitempty"`
	Location *string  `json:"location,omitempty"`
	Skills   []string `json:"skills,omitempty"`
}

// UserResponse defines data returned for a user profile.
type UserResponse struct {
	UserID      string          `json:"userID"`
	Name        string          `json:"name"`
	Phone       string          `json:"phone"`
	Email       *string         `json:"email,omitempty"`
	Role        domain.UserRole `json:"role"`
	Skills      []string        `json:"skills,omitempty"`
	Location    string          `json:"location"`
	Rating      float64         `json:"rating"`
	RatingCount int             `json:"ratingCount"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// ToUserResponse converts domain.User to DTO.
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		UserID:      u.UserID,
		Name:        u.Name,
		Phone:       u.Phone,
		Email:       u.Email,
		Role:        u.Role,
		Skills:      u.Skills,
		Location:    u.Location,
		Rating:      u.Rating,
		RatingCount: u.RatingCount,
		CreatedAt:   u.CreatedAt,
	}
}
