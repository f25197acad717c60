package repositories

import (
	"context"

	"github.com/Vinay1727/labour-backend/internal/core/domain"
)

// JobRepository defines persistence operations for job postings and their
// skill slots.
type JobRepository interface {
	// SaveJob persists a job posting with its skill slots.
	SaveJob(ctx context.Context, job domain.Job) error

	// FindJobByID retrieves a job with its skill slots.
	FindJobByID(ctx context.Context, jobID string) (*domain.Job, error)

	// ListActiveJobs retrieves active postings, optionally filtered by work
	// type and location, newest first.
	ListActiveJobs(ctx context.Context, workType, location *string, limit, offset int) ([]domain.Job, error)

	// ListJobsByContractor retrieves a contractor's own postings.
	ListJobsByContractor(ctx context.Context, contractorID string) ([]domain.Job, error)

	// DeactivateJob closes a posting to new applications.
	DeactivateJob(ctx context.Context, jobID string, userID string) error
}
