package repositories

import (
	"context"

	"github.com/Vinay1727/labour-backend/internal/core/domain"
)

// ReviewRepository defines persistence operations for post-completion reviews.
type ReviewRepository interface {
	// SaveReview persists a review.
	SaveReview(ctx context.Context, review domain.Review) error

	// FindReviewsByDeal retrieves the reviews attached to a deal.
	FindReviewsByDeal(ctx context.Context, dealID string) ([]domain.Review, error)

	// FindReviewsByReviewee retrieves reviews received by a user, newest first.
	FindReviewsByReviewee(ctx context.Context, revieweeID string, limit, offset int) ([]domain.Review, error)

	// HasReviewed reports whether the reviewer already rated this deal.
	HasReviewed(ctx context.Context, dealID, reviewerID string) (bool, error)
}
