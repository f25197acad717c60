package dto

import (
	"time"

	"github.com/Vinay1727/labour-backend/internal/core/domain"
)

// --- Review DTOs ---

// CreateReviewRequest defines data for rating the counterparty on a deal.
type CreateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// ReviewResponse defines data returned for a review.
type ReviewResponse struct {
	ReviewID   string    `json:"reviewID"`
	DealID     string    `json:"dealID"`
	ReviewerID string    `json:"reviewerID"`
	RevieweeID string    `json:"revieweeID"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ToReviewResponse converts domain.Review to DTO.
func ToReviewResponse(r *domain.Review) ReviewResponse {
	return ReviewResponse{
		ReviewID:   r.ReviewID,
		DealID:     r.DealID,
		ReviewerID: r.ReviewerID,
		RevieweeID: r.RevieweeID,
		Rating:     r.Rating,
		Comment:    r.Comment,
		CreatedAt:  r.CreatedAt,
	}
}

// ListReviewsResponse wraps a list of reviews.
type ListReviewsResponse struct {
	Reviews []ReviewResponse `json:"reviews"`
}

// ToListReviewsResponse converts a slice of domain.Review to DTO.
func ToListReviewsResponse(reviews []domain.Review) ListReviewsResponse {
	list := make([]ReviewResponse, len(reviews))
	for i, r := range reviews {
		list[i] = ToReviewResponse(&r)
	}
	return ListReviewsResponse{Reviews: list}
}
