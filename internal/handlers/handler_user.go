package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	portssvc "github.com/Vinay1727/labour-backend/internal/core/ports/services"
	"github.com/Vinay1727/labour-backend/internal/dto"
	"github.com/Vinay1727/labour-backend/internal/middleware"
)

// userHandler handles HTTP requests related to user profiles.
type userHandler struct {
	userService   portssvc.UserSvcFacade
	reviewService portssvc.ReviewSvcFacade
}

// newUserHandler creates a new userHandler.
func newUserHandler(us portssvc.UserSvcFacade, rs portssvc.ReviewSvcFacade) *userHandler {
	return &userHandler{userService: us, reviewService: rs}
}

// registerUserRoutes registers routes related to user profiles.
func registerUserRoutes(rg *gin.RouterGroup, userService portssvc.UserSvcFacade, reviewService portssvc.ReviewSvcFacade) {
	h := newUserHandler(userService, reviewService)

	users := rg.Group("/users")
	{
		users.GET("/:id", h.getUser)
		users.PUT("/:id", h.updateUser)
		users.GET("/:id/reviews", h.listUserReviews)
	}
}

// getUser godoc
// @Summary Get a user profile
// @Description Retrieves a user's public profile with their rating aggregate
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} dto.UserResponse
// @Failure 404 {object} map[string]string "User not found"
// @Security BearerAuth
// @Router /users/{id} [get]
func (h *userHandler) getUser(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID := c.Param("id")

	user, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		respondDealError(c, logger, err, "get user")
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

// updateUser godoc
// @Summary Update my profile
// @Description Applies profile changes; users may only update their own profile
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param user body dto.UpdateUserRequest true "Profile changes"
// @Success 200 {object} dto.UserResponse
// @Failure 403 {object} map[string]string "Not your profile"
// @Security BearerAuth
// @Router /users/{id} [put]
func (h *userHandler) updateUser(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID := c.Param("id")

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	user, err := h.userService.UpdateUser(c.Request.Context(), userID, req, requestingUserID)
	if err != nil {
		respondDealError(c, logger, err, "update user")
		return
	}

	logger.Info("User profile updated", slog.String("user_id", userID))
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

// listUserReviews godoc
// @Summary List reviews for a user
// @Description Lists reviews received by a user, newest first
// @Tags reviews
// @Produce json
// @Param id path string true "User ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} dto.ListReviewsResponse
// @Security BearerAuth
// @Router /users/{id}/reviews [get]
func (h *userHandler) listUserReviews(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID := c.Param("id")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	resp, err := h.reviewService.ListReviewsForUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondDealError(c, logger, err, "list reviews")
		return
	}
	c.JSON(http.StatusOK, resp)
}
