package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Vinay1727/labour-backend/internal/apperrors"
	"github.com/Vinay1727/labour-backend/internal/core/domain"
	portsrepo "github.com/Vinay1727/labour-backend/internal/core/ports/repositories"
)

type PgxReviewRepository struct {
	BaseRepository
}

// newPgxReviewRepository creates a new repository for reviews.
func newPgxReviewRepository(pool *pgxpool.Pool) portsrepo.ReviewRepository {
	return &PgxReviewRepository{BaseRepository{Pool: pool}}
}

// Ensure PgxReviewRepository implements portsrepo.ReviewRepository
var _ portsrepo.ReviewRepository = (*PgxReviewRepository)(nil)

const reviewColumns = `review_id, deal_id, reviewer_id, reviewee_id, rating, comment, created_at`

// SaveReview persists a review. The (deal_id, reviewer_id) unique constraint
// backs the one-review-per-reviewer rule.
func (r *PgxReviewRepository) SaveReview(ctx context.Context, review domain.Review) error {
	query := `
		INSERT INTO reviews (review_id, deal_id, reviewer_id, reviewee_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.Pool.Exec(ctx, query,
		review.ReviewID,
		review.DealID,
		review.ReviewerID,
		review.RevieweeID,
		review.Rating,
		review.Comment,
		review.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: review for deal %s by this user already exists", apperrors.ErrDuplicate, review.DealID)
		}
		return fmt.Errorf("failed to save review %s: %w", review.ReviewID, err)
	}
	return nil
}

// FindReviewsByDeal retrieves the reviews attached to a deal.
func (r *PgxReviewRepository) FindReviewsByDeal(ctx context.Context, dealID string) ([]domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE deal_id = $1 ORDER BY created_at ASC;`

	rows, err := r.Pool.Query(ctx, query, dealID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews for deal %s: %w", dealID, err)
	}

	reviews, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.Review])
	if err != nil {
		return nil, fmt.Errorf("failed to collect reviews for deal %s: %w", dealID, err)
	}
	return reviews, nil
}

// FindReviewsByReviewee retrieves reviews received by a user, newest first.
func (r *PgxReviewRepository) FindReviewsByReviewee(ctx context.Context, revieweeID string, limit, offset int) ([]domain.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE reviewee_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, revieweeID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews for user %s: %w", revieweeID, err)
	}

	reviews, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.Review])
	if err != nil {
		return nil, fmt.Errorf("failed to collect reviews for user %s: %w", revieweeID, err)
	}
	return reviews, nil
}

// HasReviewed reports whether the reviewer already rated this deal.
func (r *PgxReviewRepository) HasReviewed(ctx context.Context, dealID, reviewerID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM reviews WHERE deal_id = $1 AND reviewer_id = $2);`

	var exists bool
	if err := r.Pool.QueryRow(ctx, query, dealID, reviewerID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check review existence for deal %s: %w", dealID, err)
	}
	return exists, nil
}
