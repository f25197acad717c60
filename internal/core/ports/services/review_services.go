package services

import (
	"context"

	"github.com/Vinay1727/labour-backend/internal/core/domain"
	"github.com/Vinay1727/labour-backend/internal/dto"
)

// ReviewSvcFacade defines post-completion review operations.
type ReviewSvcFacade interface {
	// CreateReview rates the counterparty on a completed deal. One review
	// per reviewer per deal.
	CreateReview(ctx context.Context, dealID string, actor domain.Actor, req dto.CreateReviewRequest) (*domain.Review, error)

	// ListReviewsForUser retrieves reviews received by a user.
	ListReviewsForUser(ctx context.Context, userID string, limit, offset int) (*dto.ListReviewsResponse, error)

	// ListReviewsForDeal retrieves the reviews attached to a deal.
	ListReviewsForDeal(ctx context.Context, dealID string, requestingUserID string) (*dto.ListReviewsResponse, error)
}
