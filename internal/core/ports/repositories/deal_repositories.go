package repositories

import (
	"context"

	"github.com/Vinay1727/labour-backend/internal/core/domain"
)

// DealReaderRepository defines read operations for deal data.
type DealReaderRepository interface {
	// FindDealByID retrieves a deal with its rejection history.
	FindDealByID(ctx context.Context, dealID string) (*domain.Deal, error)

	// ListDealsByParticipant retrieves deals where the user is contractor or
	// labour (depending on their role), optionally filtered by status.
	ListDealsByParticipant(ctx context.Context, userID string, role domain.UserRole, status *domain.DealStatus) ([]domain.Deal, error)

	// FindDealByJobAndLabour retrieves the deal a labourer holds on a job, if any.
	FindDealByJobAndLabour(ctx context.Context, jobID, labourID string) (*domain.Deal, error)
}

// DealWriterRepository defines write operations for deal data. Status writes
// are version-checked: a concurrent writer on the same deal makes the update
// affect zero rows, which surfaces as a stale-state conflict.
type DealWriterRepository interface {
	// SaveDeal persists a newly created deal.
	SaveDeal(ctx context.Context, deal domain.Deal) error

	// UpdateDealStatus persists a status change (and the workflow flags that
	// travel with it) against the expected version.
	UpdateDealStatus(ctx context.Context, deal domain.Deal) error

	// ApproveApplication atomically moves the deal to active and fills the
	// selected skill slot on the job, in a single transaction.
	ApproveApplication(ctx context.Context, deal domain.Deal, skillName string) error

	// RejectCompletion atomically returns the deal to active and appends one
	// rejection event, in a single transaction.
	RejectCompletion(ctx context.Context, deal domain.Deal, event domain.RejectionEvent) error

	// MarkDealReviewed flips the reviewed flag once a review lands.
	MarkDealReviewed(ctx context.Context, dealID string) error
}

// DealRepository combines read and write operations on deals.
type DealRepository interface {
	DealReaderRepository
	DealWriterRepository
}
