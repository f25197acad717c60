package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Vinay1727/labour-backend/internal/apperrors"
	portssvc "github.com/Vinay1727/labour-backend/internal/core/ports/services"
	"github.com/Vinay1727/labour-backend/internal/core/services"
	"github.com/Vinay1727/labour-backend/internal/dto"
	"github.com/Vinay1727/labour-backend/internal/middleware"
)

// dealHandler handles HTTP requests for the deal lifecycle and its
// attendance sub-workflow.
type dealHandler struct {
	dealService portssvc.DealSvcFacade
}

// newDealHandler creates a new dealHandler.
func newDealHandler(ds portssvc.DealSvcFacade) *dealHandler {
	return &dealHandler{dealService: ds}
}

// RegisterDealRoutes registers routes related to deals.
func RegisterDealRoutes(rg *gin.RouterGroup, dealService portssvc.DealSvcFacade) {
	h := newDealHandler(dealService)

	deals := rg.Group("/deals")
	{
		deals.GET("", h.listDeals)
		deals.GET("/:id", h.getDeal)
		deals.POST("/:id/approve", h.approveApplication)
		deals.POST("/:id/reject", h.rejectApplication)
		deals.POST("/:id/request-completion", h.requestCompletion)
		deals.POST("/:id/approve-completion", h.approveCompletion)
		deals.POST("/:id/reject-completion", h.rejectCompletion)
		deals.POST("/:id/attendance", h.submitAttendance)
		deals.GET("/:id/attendance", h.listAttendance)
	}

	attendance := rg.Group("/attendance")
	{
		attendance.POST("/:id/resolve", h.resolveAttendance)
	}
}

// respondDealError translates service-layer failures to HTTP responses.
// Wrong-actor failures come back as 403 before illegal transitions are even
// considered, matching the order the service checks them in.
func respondDealError(c *gin.Context, logger *slog.Logger, err error, action string) {
	switch {
	case errors.Is(err, apperrors.ErrForbidden):
		logger.Warn("Actor not permitted", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrSlotFull),
		errors.Is(err, services.ErrAlreadyResolved),
		errors.Is(err, services.ErrAlreadyApplied),
		errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, apperrors.ErrDuplicate):
		logger.Warn("Conflicting deal mutation", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrMissingRequiredField),
		errors.Is(err, services.ErrSkillChoiceRequired),
		errors.Is(err, services.ErrJobClosed),
		errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error("Deal operation failed", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action})
	}
}

// listDeals godoc
// @Summary List my deals
// @Description Lists the deals where the logged-in user is a participant, optionally filtered by status
// @Tags deals
// @Produce json
// @Param status query string false "Deal status filter"
// @Success 200 {object} dto.ListDealsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /deals [get]
func (h *dealHandler) listDeals(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var params dto.ListDealsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.dealService.ListDeals(c.Request.Context(), actor, params)
	if err != nil {
		respondDealError(c, logger, err, "list deals")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getDeal godoc
// @Summary Get a deal by ID
// @Description Retrieves a deal with its rejection history and attendance records
// @Tags deals
// @Produce json
// @Param id path string true "Deal ID"
// @Success 200 {object} dto.DealResponse
// @Failure 404 {object} map[string]string "Deal not found"
// @Security BearerAuth
// @Router /deals/{id} [get]
func (h *dealHandler) getDeal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	dealID := c.Param("id")

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	deal, err := h.dealService.GetDealByID(c.Request.Context(), dealID, actor.UserID)
	if err != nil {
		respondDealError(c, logger, err, "get deal")
		return
	}
	c.JSON(http.StatusOK, dto.ToDealResponse(deal))
}

// approveApplication godoc
// @Summary Approve an application
// @Description Contractor accepts an application; the deal becomes active and the selected skill slot is filled
// @Tags deals
// @Accept json
// @Produce json
// @Param id path string true "Deal ID"
// @Param body body dto.ApproveApplicationRequest false "Skill selection"
// @Success 200 {object} dto.DealResponse
// @Failure 400 {object} map[string]string "Skill selection required or unknown"
// @Failure 403 {object} map[string]string "Actor not permitted"
// @Failure 409 {object} map[string]string "Slot full, invalid transition or stale state"
// @Security BearerAuth
// @Router /deals/{id}/approve [post]
func (h *dealHandler) approveApplication(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	dealID := c.Param("id")

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.ApproveApplicationRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}

	deal, err := h.dealService.ApproveApplication(c.Request.Context(), dealID, actor, req)
	if err != nil {
		respondDealError(c, logger, err, "approve application")
		return
	}

	logger.Info("Application approved", slog.String("deal_id", deal.DealID))
	c.JSON(http.StatusOK, dto.ToDealResponse(deal))
}

// rejectApplication godoc
// @Summary Reject an application
// @Description Contractor declines an application; the deal reaches the terminal rejected status
// @Tags deals
// @Produce json
// @Param id path string true "Deal ID"
// @Success 200 {object} dto.DealResponse
// @Failure 403 {object} map[string]string "Actor not permitted"
// @Failure 409 {object} map[string]string "Invalid transition or stale state"
// @Security BearerAuth
// @Router /deals/{id}/reject [post]
func (h *dealHandler) rejectApplication(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	dealID := c.Param("id")

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	deal, err := h.dealService.RejectApplication(c.Request.Context(), dealID, actor)
	if err != nil {
		respondDealError(c, logger, err, "reject application")
		return
	}
	c.JSON(http.StatusOK, dto.ToDealResponse(deal))
}

// requestCompletion godoc
// @Summary Request completion
// @Description Labourer marks the work as finished, pending contractor sign-off
// @Tags deals
// @Produce json
// @Param id path string true "Deal ID"
// @Success 200 {object} dto.DealResponse
// @Failure 403 {object} map[string]string "Actor not permitted"
// @Failure 409 {object} map[string]string "Invalid transition or stale state"
// @Security BearerAuth
// @Router /deals/{id}/request-completion [post]
func (h *dealHandler) requestCompletion(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	dealID := c.Param("id")

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	deal, err := h.dealService.RequestCompletion(c.Request.Context(), dealID, actor)
	if err != nil {
		respondDealError(c, logger, err, "request completion")
		return
	}
	c.JSON(http.StatusOK, dto.ToDealResponse(deal))
}

// approveCompletion godoc
// @Summary Approve completion
// @Description Contractor signs off; the deal reaches the terminal completed status
// @Tags deals
// @Produce json
// @Param id path string true "Deal ID"
// @Success 200 {object} dto.DealResponse
// @Failure 403 {object} map[string]string "Actor not permitted"
// @Failure 409 {object} map[string]string "Invalid transition or stale state"
// @Security BearerAuth
// @Router /deals/{id}/approve-completion [post]
func (h *dealHandler) approveCompletion(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	dealID := c.Param("id")

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	deal, err := h.dealService.ApproveCompletion(c.Request.Context(), dealID, actor)
	if err != nil {
		respondDealError(c, logger, err, "approve completion")
		return
	}

	logger.Info("Deal completed", slog.String("deal_id", deal.DealID))
	c.JSON(http.StatusOK, dto.ToDealResponse(deal))
}

// rejectCompletion godoc
// @Summary Reject completion
// @Description Contractor sends the work back; the deal returns to active and one rejection event is recorded
// @Tags deals
// @Accept json
// @Produce json
// @Param id path string true "Deal ID"
// @Param body body dto.RejectCompletionRequest true "Rejection reasons"
// @Success 200 {object} dto.DealResponse
// @Failure 400 {object} map[string]string "Reason codes missing"
// @Failure 403 {object} map[string]string "Actor not permitted"
// @Failure 409 {object} map[string]string "Invalid transition or stale state"
// @Security BearerAuth
// @Router /deals/{id}/reject-completion [post]
func (h *dealHandler) rejectCompletion(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	dealID := c.Param("id")

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.RejectCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + bindingErrorMessage(err)})
		return
	}

	deal, err := h.dealService.RejectCompletion(c.Request.Context(), dealID, actor, req)
	if err != nil {
		respondDealError(c, logger, err, "reject completion")
		return
	}
	c.JSON(http.StatusOK, dto.ToDealResponse(deal))
}

// submitAttendance godoc
// @Summary Submit attendance
// @Description Labourer submits a GPS+photo attendance proof on an active deal
// @Tags attendance
// @Accept json
// @Produce json
// @Param id path string true "Deal ID"
// @Param body body dto.SubmitAttendanceRequest true "Attendance evidence"
// @Success 201 {object} dto.AttendanceResponse
// @Failure 400 {object} map[string]string "Location or photo missing"
// @Failure 403 {object} map[string]string "Actor not permitted"
// @Security BearerAuth
// @Router /deals/{id}/attendance [post]
func (h *dealHandler) submitAttendance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	dealID := c.Param("id")

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.SubmitAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	record, err := h.dealService.SubmitAttendance(c.Request.Context(), dealID, actor, req)
	if err != nil {
		respondDealError(c, logger, err, "submit attendance")
		return
	}

	logger.Info("Attendance submitted", slog.String("attendance_id", record.AttendanceID))
	c.JSON(http.StatusCreated, dto.ToAttendanceResponse(record))
}

// listAttendance godoc
// @Summary List attendance
// @Description Lists a deal's attendance records in submission order
// @Tags attendance
// @Produce json
// @Param id path string true "Deal ID"
// @Success 200 {object} dto.ListAttendanceResponse
// @Failure 404 {object} map[string]string "Deal not found"
// @Security BearerAuth
// @Router /deals/{id}/attendance [get]
func (h *dealHandler) listAttendance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	dealID := c.Param("id")

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	records, err := h.dealService.ListAttendance(c.Request.Context(), dealID, actor.UserID)
	if err != nil {
		respondDealError(c, logger, err, "list attendance")
		return
	}
	c.JSON(http.StatusOK, dto.ToListAttendanceResponse(records))
}

// resolveAttendance godoc
// @Summary Resolve attendance
// @Description Contractor approves or rejects a pending attendance record; the decision is permanent
// @Tags attendance
// @Accept json
// @Produce json
// @Param id path string true "Attendance ID"
// @Param body body dto.ResolveAttendanceRequest true "Decision"
// @Success 200 {object} dto.AttendanceResponse
// @Failure 403 {object} map[string]string "Actor not permitted"
// @Failure 409 {object} map[string]string "Record already resolved"
// @Security BearerAuth
// @Router /attendance/{id}/resolve [post]
func (h *dealHandler) resolveAttendance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	attendanceID := c.Param("id")

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.ResolveAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + bindingErrorMessage(err)})
		return
	}

	record, err := h.dealService.ResolveAttendance(c.Request.Context(), attendanceID, actor, req.Decision)
	if err != nil {
		respondDealError(c, logger, err, "resolve attendance")
		return
	}

	logger.Info("Attendance resolved", slog.String("attendance_id", record.AttendanceID), slog.String("decision", string(record.Status)))
	c.JSON(http.StatusOK, dto.ToAttendanceResponse(record))
}
