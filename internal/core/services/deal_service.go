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
	ErrInvalidTransition    = errors.New("invalid deal status transition")
	ErrSlotFull             = errors.New("skill slot is already full")
	ErrMissingRequiredField = errors.New("attendance submission requires both location and photo")
	ErrAlreadyResolved      = errors.New("attendance record is already resolved")
	ErrSkillChoiceRequired  = errors.New("job defines multiple skills, an explicit selection is required")
	ErrAlreadyApplied       = errors.New("labourer has already applied to this job")
	ErrJobClosed            = errors.New("job posting is no longer active")
)

// dealService is the single entry point for deal mutations. It composes the
// status state machine, the transition authorization policy and the
// attendance sub-workflow. Every mutating operation takes the acting user's
// identity and role as an explicit parameter.
type dealService struct {
	dealRepo       portsrepo.DealRepository
	attendanceRepo portsrepo.AttendanceRepository
	jobRepo        portsrepo.JobRepository
	// inferSingleSkill lets approval default the skill slot when the job
	// defines exactly one skill. Multi-skill jobs always require an explicit
	// selection.
	inferSingleSkill bool
}

// NewDealService creates a new DealService.
func NewDealService(dealRepo portsrepo.DealRepository, attendanceRepo portsrepo.AttendanceRepository, jobRepo portsrepo.JobRepository, inferSingleSkill bool) portssvc.DealSvcFacade {
	return &dealService{
		dealRepo:         dealRepo,
		attendanceRepo:   attendanceRepo,
		jobRepo:          jobRepo,
		inferSingleSkill: inferSingleSkill,
	}
}

// Ensure dealService implements the portssvc.DealSvcFacade interface
var _ portssvc.DealSvcFacade = (*dealService)(nil)

// authorizeTransition runs the two independent checks for a status change.
// Authorization comes first: an actor whose role may never drive a deal into
// the target status is rejected as forbidden even when the transition itself
// would also be illegal. Only then is the (from, to) pair checked against the
// transition table.
func (s *dealService) authorizeTransition(deal *domain.Deal, actor domain.Actor, target domain.DealStatus) error {
	if requiredRole, ok := domain.TransitionActor(target); ok {
		if actor.Role != requiredRole {
			return fmt.Errorf("%w: role %s may not move a deal to %s", apperrors.ErrForbidden, actor.Role, target)
		}
		if deal.ParticipantID(requiredRole) != actor.UserID {
			return fmt.Errorf("%w: user is not the %s on deal %s", apperrors.ErrForbidden, requiredRole, deal.DealID)
		}
	} else if !deal.IsParticipant(actor.UserID) {
		return fmt.Errorf("%w: user is not a participant of deal %s", apperrors.ErrForbidden, deal.DealID)
	}

	if !domain.CanTransition(deal.Status, target) {
		return fmt.Errorf("%w: from %s to %s", ErrInvalidTransition, deal.Status, target)
	}
	return nil
}

// GetDealByID retrieves a deal with its rejection history and attendance.
// Only a participant may read it.
func (s *dealService) GetDealByID(ctx context.Context, dealID string, requestingUserID string) (*domain.Deal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	deal, err := s.dealRepo.FindDealByID(ctx, dealID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find deal by ID", slog.String("error", err.Error()), slog.String("deal_id", dealID))
		}
		return nil, fmt.Errorf("failed to find deal %s: %w", dealID, err)
	}

	if !deal.IsParticipant(requestingUserID) {
		logger.Warn("Deal read by non-participant", slog.String("deal_id", dealID))
		return nil, apperrors.ErrNotFound // Obscure existence
	}

	attendance, err := s.attendanceRepo.ListAttendanceByDeal(ctx, dealID)
	if err != nil {
		logger.Error("Failed to fetch attendance for deal", slog.String("error", err.Error()), slog.String("deal_id", dealID))
		return nil, fmt.Errorf("failed to retrieve attendance for deal %s: %w", dealID, apperrors.ErrInternal)
	}
	deal.Attendance = attendance

	return deal, nil
}

// ListDeals retrieves the acting user's deals, optionally filtered by status.
func (s *dealService) ListDeals(ctx context.Context, actor domain.Actor, params dto.ListDealsParams) (*dto.ListDealsResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	deals, err := s.dealRepo.ListDealsByParticipant(ctx, actor.UserID, actor.Role, params.Status)
	if err != nil {
		logger.Error("Failed to list deals from repository", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to retrieve deals: %w", err)
	}

	resp := dto.ToListDealsResponse(deals)
	logger.Debug("Deals listed successfully", slog.Int("count", len(deals)))
	return &resp, nil
}

// ApplyToJob creates a deal in the applied status for a labourer.
func (s *dealService) ApplyToJob(ctx context.Context, jobID string, actor domain.Actor, req dto.ApplyToJobRequest) (*domain.Deal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if actor.Role != domain.RoleLabour {
		return nil, fmt.Errorf("%w: only labour users may apply to a job", apperrors.ErrForbidden)
	}

	job, err := s.jobRepo.FindJobByID(ctx, jobID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to fetch job for application", slog.String("error", err.Error()), slog.String("job_id", jobID))
		}
		return nil, fmt.Errorf("failed to find job %s: %w", jobID, err)
	}
	if !job.IsActive {
		return nil, fmt.Errorf("%w: job %s", ErrJobClosed, jobID)
	}

	appliedSkill := req.AppliedSkill
	if appliedSkill == "" && len(job.Skills) == 1 {
		appliedSkill = job.Skills[0].SkillName
	}
	if appliedSkill != "" {
		if _, ok := job.SkillByName(appliedSkill); !ok {
			return nil, fmt.Errorf("%w: job %s does not require skill %q", apperrors.ErrValidation, jobID, appliedSkill)
		}
	}

	existing, err := s.dealRepo.FindDealByJobAndLabour(ctx, jobID, actor.UserID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		logger.Error("Failed to check for existing application", slog.String("error", err.Error()), slog.String("job_id", jobID))
		return nil, fmt.Errorf("failed to check existing application: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: deal %s", ErrAlreadyApplied, existing.DealID)
	}

	now := time.Now().UTC()
	deal := domain.Deal{
		DealID:       uuid.NewString(),
		JobID:        job.JobID,
		Status:       domain.DealApplied,
		ContractorID: job.ContractorID,
		LabourID:     actor.UserID,
		WorkType:     job.WorkType,
		Location:     job.Location,
		WorkDate:     job.WorkDate,
		Payment:      job.DailyWage,
		AppliedSkill: appliedSkill,
		Version:      1,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.UserID,
		},
	}

	if err := s.dealRepo.SaveDeal(ctx, deal); err != nil {
		logger.Error("Failed to save deal", slog.String("error", err.Error()), slog.String("job_id", jobID))
		return nil, fmt.Errorf("failed to save application: %w", err)
	}

	logger.Info("Application created", slog.String("deal_id", deal.DealID), slog.String("job_id", jobID))
	return &deal, nil
}

// ApproveApplication moves a deal from applied to active, filling the
// selected skill slot on the job in the same transaction as the status
// change. A full slot fails the operation before any transition happens.
func (s *dealService) ApproveApplication(ctx context.Context, dealID string, actor domain.Actor, req dto.ApproveApplicationRequest) (*domain.Deal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	deal, err := s.dealRepo.FindDealByID(ctx, dealID)
	if err != nil {
		return nil, fmt.Errorf("failed to find deal %s: %w", dealID, err)
	}

	if err := s.authorizeTransition(deal, actor, domain.DealActive); err != nil {
		logger.Warn("Approve application refused", slog.String("deal_id", dealID), slog.String("error", err.Error()))
		return nil, err
	}

	job, err := s.jobRepo.FindJobByID(ctx, deal.JobID)
	if err != nil {
		logger.Error("Failed to fetch job for approval", slog.String("error", err.Error()), slog.String("job_id", deal.JobID))
		return nil, fmt.Errorf("failed to find job %s: %w", deal.JobID, err)
	}

	selectedSkill := req.SelectedSkill
	if selectedSkill == "" {
		if s.inferSingleSkill && len(job.Skills) == 1 {
			selectedSkill = job.Skills[0].SkillName
		} else if deal.AppliedSkill != "" && len(job.Skills) == 1 {
			selectedSkill = deal.AppliedSkill
		} else {
			return nil, fmt.Errorf("%w: job %s", ErrSkillChoiceRequired, job.JobID)
		}
	}

	slot, ok := job.SkillByName(selectedSkill)
	if !ok {
		return nil, fmt.Errorf("%w: job %s does not require skill %q", apperrors.ErrValidation, job.JobID, selectedSkill)
	}
	if !slot.HasCapacity() {
		return nil, fmt.Errorf("%w: skill %q is %d/%d filled", ErrSlotFull, selectedSkill, slot.FilledCount, slot.RequiredCount)
	}

	now := time.Now().UTC()
	deal.Status = domain.DealActive
	deal.AppliedSkill = selectedSkill
	deal.LastUpdatedAt = now
	deal.LastUpdatedBy = actor.UserID

	if err := s.dealRepo.ApproveApplication(ctx, *deal, selectedSkill); err != nil {
		logger.Error("Failed to persist application approval", slog.String("error", err.Error()), slog.String("deal_id", dealID))
		return nil, fmt.Errorf("failed to approve application: %w", err)
	}
	deal.Version++

	logger.Info("Application approved", slog.String("deal_id", dealID), slog.String("skill", selectedSkill))
	return deal, nil
}

// RejectApplication moves a deal from applied to rejected.
func (s *dealService) RejectApplication(ctx context.Context, dealID string, actor domain.Actor) (*domain.Deal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	deal, err := s.dealRepo.FindDealByID(ctx, dealID)
	if err != nil {
		return nil, fmt.Errorf("failed to find deal %s: %w", dealID, err)
	}

	if err := s.authorizeTransition(deal, actor, domain.DealRejected); err != nil {
		logger.Warn("Reject application refused", slog.String("deal_id", dealID), slog.String("error", err.Error()))
		return nil, err
	}

	now := time.Now().UTC()
	deal.Status = domain.DealRejected
	deal.LastUpdatedAt = now
	deal.LastUpdatedBy = actor.UserID

	if err := s.dealRepo.UpdateDealStatus(ctx, *deal); err != nil {
		logger.Error("Failed to persist application rejection", slog.String("error", err.Error()), slog.String("deal_id", dealID))
		return nil, fmt.Errorf("failed to reject application: %w", err)
	}
	deal.Version++

	logger.Info("Application rejected", slog.String("deal_id", dealID))
	return deal, nil
}

// RequestCompletion moves a deal from active to completion_requested. This is
// the labourer's signal that the work is finished, pending contractor
// sign-off.
func (s *dealService) RequestCompletion(ctx context.Context, dealID string, actor domain.Actor) (*domain.Deal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	deal, err := s.dealRepo.FindDealByID(ctx, dealID)
	if err != nil {
		return nil, fmt.Errorf("failed to find deal %s: %w", dealID, err)
	}

	if err := s.authorizeTransition(deal, actor, domain.DealCompletionRequested); err != nil {
		logger.Warn("Completion request refused", slog.String("deal_id", dealID), slog.String("error", err.Error()))
		return nil, err
	}

	now := time.Now().UTC()
	requested := domain.CompletionRequested
	deal.Status = domain.DealCompletionRequested
	deal.LabourFinishRequested = true
	deal.CompletionStatus = &requested
	deal.LastUpdatedAt = now
	deal.LastUpdatedBy = actor.UserID

	if err := s.dealRepo.UpdateDealStatus(ctx, *deal); err != nil {
		logger.Error("Failed to persist completion request", slog.String("error", err.Error()), slog.String("deal_id", dealID))
		return nil, fmt.Errorf("failed to request completion: %w", err)
	}
	deal.Version++

	logger.Info("Completion requested", slog.String("deal_id", dealID))
	return deal, nil
}

// ApproveCompletion moves a deal from completion_requested to completed.
// Unresolved pending attendance records do not block completion; attendance
// is an independent trust signal, not a completion gate.
func (s *dealService) ApproveCompletion(ctx context.Context, dealID string, actor domain.Actor) (*domain.Deal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	deal, err := s.dealRepo.FindDealByID(ctx, dealID)
	if err != nil {
		return nil, fmt.Errorf("failed to find deal %s: %w", dealID, err)
	}

	if err := s.authorizeTransition(deal, actor, domain.DealCompleted); err != nil {
		logger.Warn("Completion approval refused", slog.String("deal_id", dealID), slog.String("error", err.Error()))
		return nil, err
	}

	now := time.Now().UTC()
	approved := domain.CompletionApproved
	deal.Status = domain.DealCompleted
	deal.CompletionStatus = &approved
	deal.CompletedAt = &now
	deal.LastUpdatedAt = now
	deal.LastUpdatedBy = actor.UserID

	if err := s.dealRepo.UpdateDealStatus(ctx, *deal); err != nil {
		logger.Error("Failed to persist completion approval", slog.String("error", err.Error()), slog.String("deal_id", dealID))
		return nil, fmt.Errorf("failed to approve completion: %w", err)
	}
	deal.Version++

	logger.Info("Deal completed", slog.String("deal_id", dealID))
	return deal, nil
}

// RejectCompletion moves a deal from completion_requested back to active and
// appends exactly one entry to the rejection history. The history only ever
// grows; repeated request/reject cycles accumulate one entry per cycle.
func (s *dealService) RejectCompletion(ctx context.Context, dealID string, actor domain.Actor, req dto.RejectCompletionRequest) (*domain.Deal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if len(req.ReasonCodes) == 0 {
		return nil, fmt.Errorf("%w: at least one reason code is required", apperrors.ErrValidation)
	}

	deal, err := s.dealRepo.FindDealByID(ctx, dealID)
	if err != nil {
		return nil, fmt.Errorf("failed to find deal %s: %w", dealID, err)
	}

	if err := s.authorizeTransition(deal, actor, domain.DealActive); err != nil {
		logger.Warn("Completion rejection refused", slog.String("deal_id", dealID), slog.String("error", err.Error()))
		return nil, err
	}

	now := time.Now().UTC()
	rejected := domain.CompletionRejected
	event := domain.RejectionEvent{
		RejectionID: uuid.NewString(),
		DealID:      deal.DealID,
		ReasonCodes: req.ReasonCodes,
		Note:        req.Note,
		RejectedBy:  actor.UserID,
		RejectedAt:  now,
	}

	deal.Status = domain.DealActive
	deal.LabourFinishRequested = false
	deal.CompletionStatus = &rejected
	deal.LastUpdatedAt = now
	deal.LastUpdatedBy = actor.UserID

	if err := s.dealRepo.RejectCompletion(ctx, *deal, event); err != nil {
		logger.Error("Failed to persist completion rejection", slog.String("error", err.Error()), slog.String("deal_id", dealID))
		return nil, fmt.Errorf("failed to reject completion: %w", err)
	}
	deal.Version++
	deal.RejectionHistory = append(deal.RejectionHistory, event)

	logger.Info("Completion rejected", slog.String("deal_id", dealID), slog.Int("rejection_count", len(deal.RejectionHistory)))
	return deal, nil
}

// SubmitAttendance appends a pending GPS+photo attendance proof to a deal.
// Both the location and the photo are hard preconditions.
func (s *dealService) SubmitAttendance(ctx context.Context, dealID string, actor domain.Actor, req dto.SubmitAttendanceRequest) (*domain.AttendanceRecord, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Location == nil || req.ImageURL == "" {
		return nil, ErrMissingRequiredField
	}

	deal, err := s.dealRepo.FindDealByID(ctx, dealID)
	if err != nil {
		return nil, fmt.Errorf("failed to find deal %s: %w", dealID, err)
	}

	if actor.Role != domain.RoleLabour || deal.LabourID != actor.UserID {
		logger.Warn("Attendance submission refused", slog.String("deal_id", dealID))
		return nil, fmt.Errorf("%w: only the labourer on deal %s may submit attendance", apperrors.ErrForbidden, dealID)
	}
	if deal.Status != domain.DealActive && deal.Status != domain.DealCompletionRequested {
		return nil, fmt.Errorf("%w: deal %s is %s, attendance requires an active deal", apperrors.ErrValidation, dealID, deal.Status)
	}

	now := time.Now().UTC()
	record := domain.AttendanceRecord{
		AttendanceID: uuid.NewString(),
		DealID:       deal.DealID,
		Date:         now.Truncate(24 * time.Hour),
		Timestamp:    now,
		Location: domain.GeoPoint{
			Latitude:  req.Location.Latitude,
			Longitude: req.Location.Longitude,
			Address:   req.Location.Address,
		},
		ImageURL: req.ImageURL,
		Status:   domain.AttendancePending,
	}

	if err := s.attendanceRepo.SaveAttendance(ctx, record); err != nil {
		logger.Error("Failed to save attendance record", slog.String("error", err.Error()), slog.String("deal_id", dealID))
		return nil, fmt.Errorf("failed to save attendance: %w", err)
	}

	logger.Info("Attendance submitted", slog.String("attendance_id", record.AttendanceID), slog.String("deal_id", dealID))
	return &record, nil
}

// ResolveAttendance approves or rejects a pending attendance record.
// Resolution is permanent per record; a second attempt fails without
// altering the stored status.
func (s *dealService) ResolveAttendance(ctx context.Context, attendanceID string, actor domain.Actor, decision domain.AttendanceStatus) (*domain.AttendanceRecord, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if decision != domain.AttendanceApproved && decision != domain.AttendanceRejected {
		return nil, fmt.Errorf("%w: decision must be approved or rejected, got %q", apperrors.ErrValidation, decision)
	}

	record, err := s.attendanceRepo.FindAttendanceByID(ctx, attendanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to find attendance record %s: %w", attendanceID, err)
	}

	deal, err := s.dealRepo.FindDealByID(ctx, record.DealID)
	if err != nil {
		return nil, fmt.Errorf("failed to find deal %s: %w", record.DealID, err)
	}

	if actor.Role != domain.RoleContractor || deal.ContractorID != actor.UserID {
		logger.Warn("Attendance resolution refused", slog.String("attendance_id", attendanceID))
		return nil, fmt.Errorf("%w: only the contractor on deal %s may resolve attendance", apperrors.ErrForbidden, deal.DealID)
	}

	if record.Status.IsResolved() {
		return nil, fmt.Errorf("%w: record %s is %s", ErrAlreadyResolved, attendanceID, record.Status)
	}

	now := time.Now().UTC()
	if err := s.attendanceRepo.ResolveAttendance(ctx, attendanceID, decision, actor.UserID, now); err != nil {
		logger.Error("Failed to resolve attendance record", slog.String("error", err.Error()), slog.String("attendance_id", attendanceID))
		return nil, fmt.Errorf("failed to resolve attendance: %w", err)
	}

	record.Status = decision
	record.ResolvedBy = &actor.UserID
	record.ResolvedAt = &now

	logger.Info("Attendance resolved", slog.String("attendance_id", attendanceID), slog.String("decision", string(decision)))
	return record, nil
}

// ListAttendance retrieves a deal's attendance records in submission order.
func (s *dealService) ListAttendance(ctx context.Context, dealID string, requestingUserID string) ([]domain.AttendanceRecord, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	deal, err := s.dealRepo.FindDealByID(ctx, dealID)
	if err != nil {
		return nil, fmt.Errorf("failed to find deal %s: %w", dealID, err)
	}
	if !deal.IsParticipant(requestingUserID) {
		return nil, apperrors.ErrNotFound // Obscure existence
	}

	records, err := s.attendanceRepo.ListAttendanceByDeal(ctx, dealID)
	if err != nil {
		logger.Error("Failed to list attendance records", slog.String("error", err.Error()), slog.String("deal_id", dealID))
		return nil, fmt.Errorf("failed to retrieve attendance: %w", err)
	}
	return records, nil
}
