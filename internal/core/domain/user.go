package domain

import "time"

// UserRole identifies which side of the marketplace a user acts on.
type UserRole string

const (
	RoleContractor UserRole = "CONTRACTOR" // Posts jobs, approves applications and completions
	RoleLabour     UserRole = "LABOUR"     // Applies to jobs, marks attendance and completion
)

// User represents a registered marketplace user (contractor or labour).
type User struct {
	UserID       string   `json:"userID"` // Primary Key (UUID)
	Name         string   `json:"name"`
	Phone        string   `json:"phone"` // Unique, primary login identifier on mobile
	Email        *string  `json:"email,omitempty"`
	Role         UserRole `json:"role"`
	PasswordHash string   `json:"-"`
	// Skills the labour user offers (empty for contractors).
	Skills   []string `json:"skills,omitempty"`
	Location string   `json:"location"`
	// Average counterparty rating, denormalized from reviews.
	Rating      float64 `json:"rating"`
	RatingCount int     `json:"ratingCount"`
	IsActive    bool    `json:"isActive"`
	// Refresh token state for token rotation.
	RefreshTokenHash       string     `json:"-"`
	RefreshTokenExpiryTime *time.Time `json:"-"`
	// AuthProvider is empty for phone+password accounts, "google" for OAuth accounts.
	AuthProvider string `json:"-"`
	ProviderID   string `json:"-"`
	AuditFields
}
