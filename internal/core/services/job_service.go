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

const defaultJobPageSize = 20

// jobService implements the JobSvcFacade interface.
type jobService struct {
	jobRepo portsrepo.JobRepository
}

// NewJobService creates a new JobService.
func NewJobService(jobRepo portsrepo.JobRepository) portssvc.JobSvcFacade {
	return &jobService{jobRepo: jobRepo}
}

// Ensure jobService implements the portssvc.JobSvcFacade interface
var _ portssvc.JobSvcFacade = (*jobService)(nil)

// CreateJob persists a new posting for a contractor.
func (s *jobService) CreateJob(ctx context.Context, actor domain.Actor, req dto.CreateJobRequest) (*domain.Job, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if actor.Role != domain.RoleContractor {
		return nil, fmt.Errorf("%w: only contractors may post jobs", apperrors.ErrForbidden)
	}
	if req.DailyWage.IsNegative() || req.DailyWage.IsZero() {
		return nil, fmt.Errorf("%w: daily wage must be positive", apperrors.ErrValidation)
	}

	skills := make([]domain.SkillSlot, len(req.Skills))
	seen := make(map[string]struct{}, len(req.Skills))
	for i, sk := range req.Skills {
		if _, dup := seen[sk.SkillName]; dup {
			return nil, fmt.Errorf("%w: duplicate skill %q", apperrors.ErrValidation, sk.SkillName)
		}
		seen[sk.SkillName] = struct{}{}
		skills[i] = domain.SkillSlot{
			SkillName:     sk.SkillName,
			RequiredCount: sk.RequiredCount,
		}
	}

	now := time.Now().UTC()
	job := domain.Job{
		JobID:        uuid.NewString(),
		ContractorID: actor.UserID,
		WorkType:     req.WorkType,
		Description:  req.Description,
		Location:     req.Location,
		WorkDate:     req.WorkDate,
		DailyWage:    req.DailyWage,
		Skills:       skills,
		IsActive:     true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.UserID,
		},
	}

	if err := s.jobRepo.SaveJob(ctx, job); err != nil {
		logger.Error("Failed to save job", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save job: %w", err)
	}

	logger.Info("Job created", slog.String("job_id", job.JobID), slog.String("work_type", job.WorkType))
	return &job, nil
}

// GetJobByID retrieves a posting with its skill slots.
func (s *jobService) GetJobByID(ctx context.Context, jobID string) (*domain.Job, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	job, err := s.jobRepo.FindJobByID(ctx, jobID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find job by ID", slog.String("error", err.Error()), slog.String("job_id", jobID))
		}
		return nil, fmt.Errorf("failed to find job %s: %w", jobID, err)
	}
	return job, nil
}

// ListJobs retrieves active postings for browsing.
func (s *jobService) ListJobs(ctx context.Context, params dto.ListJobsParams) (*dto.ListJobsResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	limit := params.Limit
	if limit <= 0 || limit > 100 {
		limit = defaultJobPageSize
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	jobs, err := s.jobRepo.ListActiveJobs(ctx, params.WorkType, params.Location, limit, offset)
	if err != nil {
		logger.Error("Failed to list active jobs", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to retrieve jobs: %w", err)
	}

	resp := dto.ToListJobsResponse(jobs)
	return &resp, nil
}

// ListMyJobs retrieves the contractor's own postings.
func (s *jobService) ListMyJobs(ctx context.Context, actor domain.Actor) (*dto.ListJobsResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if actor.Role != domain.RoleContractor {
		return nil, fmt.Errorf("%w: only contractors have postings", apperrors.ErrForbidden)
	}

	jobs, err := s.jobRepo.ListJobsByContractor(ctx, actor.UserID)
	if err != nil {
		logger.Error("Failed to list contractor jobs", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to retrieve jobs: %w", err)
	}

	resp := dto.ToListJobsResponse(jobs)
	return &resp, nil
}

// CloseJob deactivates a posting; only its contractor may do so.
func (s *jobService) CloseJob(ctx context.Context, jobID string, actor domain.Actor) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	job, err := s.jobRepo.FindJobByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to find job %s: %w", jobID, err)
	}
	if job.ContractorID != actor.UserID {
		logger.Warn("Job close refused", slog.String("job_id", jobID))
		return fmt.Errorf("%w: user is not the contractor on job %s", apperrors.ErrForbidden, jobID)
	}

	if err := s.jobRepo.DeactivateJob(ctx, jobID, actor.UserID); err != nil {
		logger.Error("Failed to deactivate job", slog.String("error", err.Error()), slog.String("job_id", jobID))
		return fmt.Errorf("failed to close job: %w", err)
	}

	logger.Info("Job closed", slog.String("job_id", jobID))
	return nil
}
