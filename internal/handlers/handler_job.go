package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/Vinay1727/labour-backend/internal/core/ports/services"
	"github.com/Vinay1727/labour-backend/internal/dto"
	"github.com/Vinay1727/labour-backend/internal/middleware"
)

// jobHandler handles HTTP requests related to job postings.
type jobHandler struct {
	jobService  portssvc.JobSvcFacade
	dealService portssvc.DealSvcFacade
}

// newJobHandler creates a new jobHandler.
func newJobHandler(js portssvc.JobSvcFacade, ds portssvc.DealSvcFacade) *jobHandler {
	return &jobHandler{jobService: js, dealService: ds}
}

// registerJobRoutes registers routes related to job postings.
func registerJobRoutes(rg *gin.RouterGroup, jobService portssvc.JobSvcFacade, dealService portssvc.DealSvcFacade) {
	h := newJobHandler(jobService, dealService)

	jobs := rg.Group("/jobs")
	{
		jobs.POST("", h.createJob)
		jobs.GET("", h.listJobs)
		jobs.GET("/mine", h.listMyJobs)
		jobs.GET("/:id", h.getJob)
		jobs.DELETE("/:id", h.closeJob)
		jobs.POST("/:id/apply", h.applyToJob)
	}
}

// createJob godoc
// @Summary Create a job posting
// @Description Creates a new posting with its skill slots for the logged-in contractor
// @Tags jobs
// @Accept json
// @Produce json
// @Param job body dto.CreateJobRequest true "Job details"
// @Success 201 {object} dto.JobResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 403 {object} map[string]string "Actor not permitted"
// @Security BearerAuth
// @Router /jobs [post]
func (h *jobHandler) createJob(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateJob", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	job, err := h.jobService.CreateJob(c.Request.Context(), actor, req)
	if err != nil {
		respondDealError(c, logger, err, "create job")
		return
	}

	logger.Info("Job created", slog.String("job_id", job.JobID))
	c.JSON(http.StatusCreated, dto.ToJobResponse(job))
}

// listJobs godoc
// @Summary Browse active jobs
// @Description Lists active postings, optionally filtered by work type and location
// @Tags jobs
// @Produce json
// @Param workType query string false "Work type filter"
// @Param location query string false "Location substring filter"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} dto.ListJobsResponse
// @Security BearerAuth
// @Router /jobs [get]
func (h *jobHandler) listJobs(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListJobsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.jobService.ListJobs(c.Request.Context(), params)
	if err != nil {
		respondDealError(c, logger, err, "list jobs")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// listMyJobs godoc
// @Summary List my postings
// @Description Lists the logged-in contractor's own postings
// @Tags jobs
// @Produce json
// @Success 200 {object} dto.ListJobsResponse
// @Failure 403 {object} map[string]string "Actor not permitted"
// @Security BearerAuth
// @Router /jobs/mine [get]
func (h *jobHandler) listMyJobs(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.jobService.ListMyJobs(c.Request.Context(), actor)
	if err != nil {
		respondDealError(c, logger, err, "list my jobs")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getJob godoc
// @Summary Get a job by ID
// @Description Retrieves a posting with its skill slots and fill state
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} dto.JobResponse
// @Failure 404 {object} map[string]string "Job not found"
// @Security BearerAuth
// @Router /jobs/{id} [get]
func (h *jobHandler) getJob(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	jobID := c.Param("id")

	job, err := h.jobService.GetJobByID(c.Request.Context(), jobID)
	if err != nil {
		respondDealError(c, logger, err, "get job")
		return
	}
	c.JSON(http.StatusOK, dto.ToJobResponse(job))
}

// closeJob godoc
// @Summary Close a posting
// @Description Deactivates a posting; only its contractor may do so
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 204 "Job closed"
// @Failure 403 {object} map[string]string "Actor not permitted"
// @Failure 404 {object} map[string]string "Job not found"
// @Security BearerAuth
// @Router /jobs/{id} [delete]
func (h *jobHandler) closeJob(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	jobID := c.Param("id")

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.jobService.CloseJob(c.Request.Context(), jobID, actor); err != nil {
		respondDealError(c, logger, err, "close job")
		return
	}

	logger.Info("Job closed", slog.String("job_id", jobID))
	c.Status(http.StatusNoContent)
}

// applyToJob godoc
// @Summary Apply to a job
// @Description Labourer applies to a posting; a deal is created in the applied status
// @Tags jobs
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param body body dto.ApplyToJobRequest false "Applied skill"
// @Success 201 {object} dto.DealResponse
// @Failure 400 {object} map[string]string "Job closed or unknown skill"
// @Failure 403 {object} map[string]string "Actor not permitted"
// @Failure 409 {object} map[string]string "Already applied"
// @Security BearerAuth
// @Router /jobs/{id}/apply [post]
func (h *jobHandler) applyToJob(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	jobID := c.Param("id")

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.ApplyToJobRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}

	deal, err := h.dealService.ApplyToJob(c.Request.Context(), jobID, actor, req)
	if err != nil {
		respondDealError(c, logger, err, "apply to job")
		return
	}

	logger.Info("Application created", slog.String("deal_id", deal.DealID), slog.String("job_id", jobID))
	c.JSON(http.StatusCreated, dto.ToDealResponse(deal))
}
