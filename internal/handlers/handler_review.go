package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/Vinay1727/labour-backend/internal/core/ports/services"
	"github.com/Vinay1727/labour-backend/internal/core/services"
	"github.com/Vinay1727/labour-backend/internal/dto"
	"github.com/Vinay1727/labour-backend/internal/middleware"
)

// reviewHandler handles HTTP requests for post-completion reviews.
type reviewHandler struct {
	reviewService portssvc.ReviewSvcFacade
}

// newReviewHandler creates a new reviewHandler.
func newReviewHandler(rs portssvc.ReviewSvcFacade) *reviewHandler {
	return &reviewHandler{reviewService: rs}
}

// registerReviewRoutes registers deal-scoped review routes.
func registerReviewRoutes(rg *gin.RouterGroup, reviewService portssvc.ReviewSvcFacade) {
	h := newReviewHandler(reviewService)

	deals := rg.Group("/deals")
	{
		deals.POST("/:id/reviews", h.createReview)
		deals.GET("/:id/reviews", h.listDealReviews)
	}
}

// createReview godoc
// @Summary Review the counterparty
// @Description Rates the other participant on a completed deal; one review per reviewer per deal
// @Tags reviews
// @Accept json
// @Produce json
// @Param id path string true "Deal ID"
// @Param review body dto.CreateReviewRequest true "Rating and comment"
// @Success 201 {object} dto.ReviewResponse
// @Failure 400 {object} map[string]string "Deal not completed or invalid rating"
// @Failure 403 {object} map[string]string "Not a participant"
// @Failure 409 {object} map[string]string "Already reviewed"
// @Security BearerAuth
// @Router /deals/{id}/reviews [post]
func (h *reviewHandler) createReview(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	dealID := c.Param("id")

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	review, err := h.reviewService.CreateReview(c.Request.Context(), dealID, actor, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDealNotCompleted):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrAlreadyReviewed):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			respondDealError(c, logger, err, "create review")
		}
		return
	}

	logger.Info("Review created", slog.String("review_id", review.ReviewID), slog.String("deal_id", dealID))
	c.JSON(http.StatusCreated, dto.ToReviewResponse(review))
}

// listDealReviews godoc
// @Summary List a deal's reviews
// @Description Lists the reviews attached to a deal; participants only
// @Tags reviews
// @Produce json
// @Param id path string true "Deal ID"
// @Success 200 {object} dto.ListReviewsResponse
// @Failure 404 {object} map[string]string "Deal not found"
// @Security BearerAuth
// @Router /deals/{id}/reviews [get]
func (h *reviewHandler) listDealReviews(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	dealID := c.Param("id")

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.reviewService.ListReviewsForDeal(c.Request.Context(), dealID, actor.UserID)
	if err != nil {
		respondDealError(c, logger, err, "list deal reviews")
		return
	}
	c.JSON(http.StatusOK, resp)
}
