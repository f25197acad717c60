package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Vinay1727/labour-backend/internal/apperrors"
	"github.com/Vinay1727/labour-backend/internal/core/domain"
	portsrepo "github.com/Vinay1727/labour-backend/internal/core/ports/repositories"
)

type PgxUserRepository struct {
	BaseRepository
}

// newPgxUserRepository creates a new repository for user data.
func newPgxUserRepository(pool *pgxpool.Pool) portsrepo.UserRepository {
	return &PgxUserRepository{BaseRepository{Pool: pool}}
}

// Ensure PgxUserRepository implements portsrepo.UserRepository
var _ portsrepo.UserRepository = (*PgxUserRepository)(nil)

const userColumns = `
	user_id, name, phone, email, role, password_hash,
	skills, location, rating, rating_count, is_active,
	refresh_token_hash, refresh_token_expiry,
	auth_provider, provider_id,
	created_at, created_by, last_updated_at, last_updated_by
`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.UserID,
		&u.Name,
		&u.Phone,
		&u.Email,
		&u.Role,
		&u.PasswordHash,
		&u.Skills,
		&u.Location,
		&u.Rating,
		&u.RatingCount,
		&u.IsActive,
		&u.RefreshTokenHash,
		&u.RefreshTokenExpiryTime,
		&u.AuthProvider,
		&u.ProviderID,
		&u.CreatedAt,
		&u.CreatedBy,
		&u.LastUpdatedAt,
		&u.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// SaveUser inserts a new user.
func (r *PgxUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	query := `
		INSERT INTO users (user_id, name, phone, email, role, password_hash,
			skills, location, rating, rating_count, is_active,
			refresh_token_hash, refresh_token_expiry, auth_provider, provider_id,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19);
	`
	_, err := r.Pool.Exec(ctx, query,
		user.UserID,
		user.Name,
		user.Phone,
		user.Email,
		user.Role,
		user.PasswordHash,
		user.Skills,
		user.Location,
		user.Rating,
		user.RatingCount,
		user.IsActive,
		user.RefreshTokenHash,
		user.RefreshTokenExpiryTime,
		user.AuthProvider,
		user.ProviderID,
		user.CreatedAt,
		user.CreatedBy,
		user.LastUpdatedAt,
		user.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: phone or provider identity already registered", apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save user %s: %w", user.UserID, err)
	}
	return nil
}

// FindUserByID retrieves a user by primary key.
func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1;`
	return r.findOne(ctx, query, userID)
}

// FindUserByPhone retrieves a user by phone number.
func (r *PgxUserRepository) FindUserByPhone(ctx context.Context, phone string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE phone = $1;`
	return r.findOne(ctx, query, phone)
}

// FindUserByProviderID retrieves a user created via an OAuth provider.
func (r *PgxUserRepository) FindUserByProviderID(ctx context.Context, provider, providerID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE auth_provider = $1 AND provider_id = $2;`
	return r.findOne(ctx, query, provider, providerID)
}

func (r *PgxUserRepository) findOne(ctx context.Context, query string, args ...interface{}) (*domain.User, error) {
	user, err := scanUser(r.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// UpdateUser persists profile changes.
func (r *PgxUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	query := `
		UPDATE users
		SET name = $1, skills = $2, location = $3,
			last_updated_at = $4, last_updated_by = $5
		WHERE user_id = $6;
	`
	result, err := r.Pool.Exec(ctx, query,
		user.Name,
		user.Skills,
		user.Location,
		user.LastUpdatedAt,
		user.LastUpdatedBy,
		user.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user %s: %w", user.UserID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateRefreshToken stores the hash and expiry of the user's current
// refresh token; an empty hash clears it.
func (r *PgxUserRepository) UpdateRefreshToken(ctx context.Context, userID string, tokenHash string, expiresAt *time.Time) error {
	query := `
		UPDATE users
		SET refresh_token_hash = $1, refresh_token_expiry = $2, last_updated_at = NOW()
		WHERE user_id = $3;
	`
	result, err := r.Pool.Exec(ctx, query, tokenHash, expiresAt, userID)
	if err != nil {
		return fmt.Errorf("failed to update refresh token for user %s: %w", userID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateUserRating updates the denormalized rating aggregate.
func (r *PgxUserRepository) UpdateUserRating(ctx context.Context, userID string, rating float64, ratingCount int) error {
	query := `
		UPDATE users
		SET rating = $1, rating_count = $2, last_updated_at = NOW()
		WHERE user_id = $3;
	`
	result, err := r.Pool.Exec(ctx, query, rating, ratingCount, userID)
	if err != nil {
		return fmt.Errorf("failed to update rating for user %s: %w", userID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
