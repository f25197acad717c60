package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Vinay1727/labour-backend/internal/apperrors"
	"github.com/Vinay1727/labour-backend/internal/core/domain"
	portsrepo "github.com/Vinay1727/labour-backend/internal/core/ports/repositories"
	portssvc "github.com/Vinay1727/labour-backend/internal/core/ports/services"
	"github.com/Vinay1727/labour-backend/internal/dto"
	"github.com/Vinay1727/labour-backend/internal/middleware"
)

var (
	ErrDealNotCompleted = errors.New("deal is not completed, reviews require a completed deal")
	ErrAlreadyReviewed  = errors.New("reviewer has already rated this deal")
)

const defaultReviewPageSize = 20

// reviewService implements the ReviewSvcFacade interface.
type reviewService struct {
	reviewRepo portsrepo.ReviewRepository
	dealRepo   portsrepo.DealRepository
	userRepo   portsrepo.UserRepository
}

// NewReviewService creates a new ReviewService.
func NewReviewService(reviewRepo portsrepo.ReviewRepository, dealRepo portsrepo.DealRepository, userRepo portsrepo.UserRepository) portssvc.ReviewSvcFacade {
	return &reviewService{
		reviewRepo: reviewRepo,
		dealRepo:   dealRepo,
		userRepo:   userRepo,
	}
}

// Ensure reviewService implements the portssvc.ReviewSvcFacade interface
var _ portssvc.ReviewSvcFacade = (*reviewService)(nil)

// CreateReview rates the counterparty on a completed deal. The reviewee is
// derived from the deal, never taken from the caller.
func (s *reviewService) CreateReview(ctx context.Context, dealID string, actor domain.Actor, req dto.CreateReviewRequest) (*domain.Review, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	deal, err := s.dealRepo.FindDealByID(ctx, dealID)
	if err != nil {
		return nil, fmt.Errorf("failed to find deal %s: %w", dealID, err)
	}

	if !deal.IsParticipant(actor.UserID) {
		return nil, fmt.Errorf("%w: user is not a participant of deal %s", apperrors.ErrForbidden, dealID)
	}
	if deal.Status != domain.DealCompleted {
		return nil, fmt.Errorf("%w: deal %s is %s", ErrDealNotCompleted, dealID, deal.Status)
	}

	reviewed, err := s.reviewRepo.HasReviewed(ctx, dealID, actor.UserID)
	if err != nil {
		logger.Error("Failed to check existing review", slog.String("error", err.Error()), slog.String("deal_id", dealID))
		return nil, fmt.Errorf("failed to check existing review: %w", err)
	}
	if reviewed {
		return nil, fmt.Errorf("%w: deal %s", ErrAlreadyReviewed, dealID)
	}

	revieweeID := deal.ContractorID
	if actor.UserID == deal.ContractorID {
		revieweeID = deal.LabourID
	}

	review := domain.Review{
		ReviewID:   uuid.NewString(),
		DealID:     deal.DealID,
		ReviewerID: actor.UserID,
		RevieweeID: revieweeID,
		Rating:     req.Rating,
		Comment:    req.Comment,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.reviewRepo.SaveReview(ctx, review); err != nil {
		logger.Error("Failed to save review", slog.String("error", err.Error()), slog.String("deal_id", dealID))
		return nil, fmt.Errorf("failed to save review: %w", err)
	}

	if err := s.dealRepo.MarkDealReviewed(ctx, dealID); err != nil {
		logger.Error("Failed to mark deal reviewed", slog.String("error", err.Error()), slog.String("deal_id", dealID))
	}

	s.refreshRatingAggregate(ctx, revieweeID)

	logger.Info("Review created", slog.String("review_id", review.ReviewID), slog.String("deal_id", dealID))
	return &review, nil
}

// refreshRatingAggregate recomputes the reviewee's denormalized average from
// their full review list. Aggregate drift here is tolerable; the reviews
// themselves are the source of truth.
func (s *reviewService) refreshRatingAggregate(ctx context.Context, revieweeID string) {
	logger := middleware.GetLoggerFromCtx(ctx)

	reviews, err := s.reviewRepo.FindReviewsByReviewee(ctx, revieweeID, 1000, 0)
	if err != nil {
		logger.Error("Failed to load reviews for rating aggregate", slog.String("error", err.Error()), slog.String("user_id", revieweeID))
		return
	}
	if len(reviews) == 0 {
		return
	}

	total := 0
	for _, r := range reviews {
		total += r.Rating
	}
	avg := float64(total) / float64(len(reviews))

	if err := s.userRepo.UpdateUserRating(ctx, revieweeID, avg, len(reviews)); err != nil {
		logger.Error("Failed to update rating aggregate", slog.String("error", err.Error()), slog.String("user_id", revieweeID))
	}
}

// ListReviewsForUser retrieves reviews received by a user.
func (s *reviewService) ListReviewsForUser(ctx context.Context, userID string, limit, offset int) (*dto.ListReviewsResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if limit <= 0 || limit > 100 {
		limit = defaultReviewPageSize
	}
	if offset < 0 {
		offset = 0
	}

	reviews, err := s.reviewRepo.FindReviewsByReviewee(ctx, userID, limit, offset)
	if err != nil {
		logger.Error("Failed to list reviews", slog.String("error", err.Error()), slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to retrieve reviews: %w", err)
	}

	resp := dto.ToListReviewsResponse(reviews)
	return &resp, nil
}

// ListReviewsForDeal retrieves the reviews attached to a deal. Only a
// participant may read them.
func (s *reviewService) ListReviewsForDeal(ctx context.Context, dealID string, requestingUserID string) (*dto.ListReviewsResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	deal, err := s.dealRepo.FindDealByID(ctx, dealID)
	if err != nil {
		return nil, fmt.Errorf("failed to find deal %s: %w", dealID, err)
	}
	if !deal.IsParticipant(requestingUserID) {
		return nil, apperrors.ErrNotFound // Obscure existence
	}

	reviews, err := s.reviewRepo.FindReviewsByDeal(ctx, dealID)
	if err != nil {
		logger.Error("Failed to list deal reviews", slog.String("error", err.Error()), slog.String("deal_id", dealID))
		return nil, fmt.Errorf("failed to retrieve reviews: %w", err)
	}

	resp := dto.ToListReviewsResponse(reviews)
	return &resp, nil
}
