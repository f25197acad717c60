package services

import (
	"context"

	"github.com/Vinay1727/labour-backend/internal/core/domain"
	"github.com/Vinay1727/labour-backend/internal/dto"
)

// DealReaderSvc defines read operations for deal data. Reads are pure
// projections over the stored deal collection.
type DealReaderSvc interface {
	// GetDealByID retrieves a deal; only a participant may read it.
	GetDealByID(ctx context.Context, dealID string, requestingUserID string) (*domain.Deal, error)

	// ListDeals retrieves the acting user's deals, optionally filtered by status.
	ListDeals(ctx context.Context, actor domain.Actor, params dto.ListDealsParams) (*dto.ListDealsResponse, error)
}

// DealWriterSvc defines the lifecycle operations on deals. Every operation
// takes the acting user's identity and role explicitly.
type DealWriterSvc interface {
	// ApplyToJob creates a deal in the applied status for a labourer.
	ApplyToJob(ctx context.Context, jobID string, actor domain.Actor, req dto.ApplyToJobRequest) (*domain.Deal, error)

	// ApproveApplication moves applied -> active, filling the selected skill slot.
	ApproveApplication(ctx context.Context, dealID string, actor domain.Actor, req dto.ApproveApplicationRequest) (*domain.Deal, error)

	// RejectApplication moves applied -> rejected.
	RejectApplication(ctx context.Context, dealID string, actor domain.Actor) (*domain.Deal, error)

	// RequestCompletion moves active -> completion_requested.
	RequestCompletion(ctx context.Context, dealID string, actor domain.Actor) (*domain.Deal, error)

	// ApproveCompletion moves completion_requested -> completed.
	ApproveCompletion(ctx context.Context, dealID string, actor domain.Actor) (*domain.Deal, error)

	// RejectCompletion moves completion_requested -> active and appends one
	// rejection history entry.
	RejectCompletion(ctx context.Context, dealID string, actor domain.Actor, req dto.RejectCompletionRequest) (*domain.Deal, error)
}

// AttendanceSvc defines the attendance sub-workflow operations, owned by the
// deal aggregate.
type AttendanceSvc interface {
	// SubmitAttendance appends a pending GPS+photo proof to a deal.
	SubmitAttendance(ctx context.Context, dealID string, actor domain.Actor, req dto.SubmitAttendanceRequest) (*domain.AttendanceRecord, error)

	// ResolveAttendance approves or rejects a pending record, permanently.
	ResolveAttendance(ctx context.Context, attendanceID string, actor domain.Actor, decision domain.AttendanceStatus) (*domain.AttendanceRecord, error)

	// ListAttendance retrieves a deal's attendance records in submission order.
	ListAttendance(ctx context.Context, dealID string, requestingUserID string) ([]domain.AttendanceRecord, error)
}

// DealSvcFacade combines all deal-related service interfaces. This is the
// single entry point callers use; nothing else mutates a deal or appends an
// attendance record.
type DealSvcFacade interface {
	DealReaderSvc
	DealWriterSvc
	AttendanceSvc
}
