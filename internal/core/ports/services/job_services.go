package services

import (
	"context"

	"github.com/Vinay1727/labour-backend/internal/core/domain"
	"github.com/Vinay1727/labour-backend/internal/dto"
)

// JobSvcFacade defines operations on job postings.
type JobSvcFacade interface {
	// CreateJob persists a new posting for a contractor.
	CreateJob(ctx context.Context, actor domain.Actor, req dto.CreateJobRequest) (*domain.Job, error)

	// GetJobByID retrieves a posting with its skill slots.
	GetJobByID(ctx context.Context, jobID string) (*domain.Job, error)

	// ListJobs retrieves active postings for browsing.
	ListJobs(ctx context.Context, params dto.ListJobsParams) (*dto.ListJobsResponse, error)

	// ListMyJobs retrieves the contractor's own postings.
	ListMyJobs(ctx context.Context, actor domain.Actor) (*dto.ListJobsResponse, error)

	// CloseJob deactivates a posting; only its contractor may do so.
	CloseJob(ctx context.Context, jobID string, actor domain.Actor) error
}
