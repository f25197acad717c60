package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/Vinay1727/labour-backend/internal/apperrors"
	"github.com/Vinay1727/labour-backend/internal/core/domain"
	portssvc "github.com/Vinay1727/labour-backend/internal/core/ports/services"
	"github.com/Vinay1727/labour-backend/internal/core/services"
	"github.com/Vinay1727/labour-backend/internal/dto"
)

// MockDealRepository is a mock type for the DealRepository interface
type MockDealRepository struct {
	mock.Mock
}

func (m *MockDealRepository) FindDealByID(ctx context.Context, dealID string) (*domain.Deal, error) {
	args := m.Called(ctx, dealID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deal), args.Error(1)
}

func (m *MockDealRepository) ListDealsByParticipant(ctx context.Context, userID string, role domain.UserRole, status *domain.DealStatus) ([]domain.Deal, error) {
	args := m.Called(ctx, userID, role, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Deal), args.Error(1)
}

func (m *MockDealRepository) FindDealByJobAndLabour(ctx context.Context, jobID, labourID string) (*domain.Deal, error) {
	args := m.Called(ctx, jobID, labourID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deal), args.Error(1)
}

func (m *MockDealRepository) SaveDeal(ctx context.Context, deal domain.Deal) error {
	args := m.Called(ctx, deal)
	return args.Error(0)
}

func (m *MockDealRepository) UpdateDealStatus(ctx context.Context, deal domain.Deal) error {
	args := m.Called(ctx, deal)
	return args.Error(0)
}

func (m *MockDealRepository) ApproveApplication(ctx context.Context, deal domain.Deal, skillName string) error {
	args := m.Called(ctx, deal, skillName)
	return args.Error(0)
}

func (m *MockDealRepository) RejectCompletion(ctx context.Context, deal domain.Deal, event domain.RejectionEvent) error {
	args := m.Called(ctx, deal, event)
	return args.Error(0)
}

func (m *MockDealRepository) MarkDealReviewed(ctx context.Context, dealID string) error {
	args := m.Called(ctx, dealID)
	return args.Error(0)
}

// MockAttendanceRepository is a mock type for the AttendanceRepository interface
type MockAttendanceRepository struct {
	mock.Mock
}

func (m *MockAttendanceRepository) SaveAttendance(ctx context.Context, record domain.AttendanceRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockAttendanceRepository) FindAttendanceByID(ctx context.Context, attendanceID string) (*domain.AttendanceRecord, error) {
	args := m.Called(ctx, attendanceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AttendanceRecord), args.Error(1)
}

func (m *MockAttendanceRepository) ListAttendanceByDeal(ctx context.Context, dealID string) ([]domain.AttendanceRecord, error) {
	args := m.Called(ctx, dealID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AttendanceRecord), args.Error(1)
}

func (m *MockAttendanceRepository) ResolveAttendance(ctx context.Context, attendanceID string, decision domain.AttendanceStatus, resolvedBy string, resolvedAt time.Time) error {
	args := m.Called(ctx, attendanceID, decision, resolvedBy, resolvedAt)
	return args.Error(0)
}

// MockJobRepository is a mock type for the JobRepository interface
type MockJobRepository struct {
	mock.Mock
}

func (m *MockJobRepository) SaveJob(ctx context.Context, job domain.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockJobRepository) FindJobByID(ctx context.Context, jobID string) (*domain.Job, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

func (m *MockJobRepository) ListActiveJobs(ctx context.Context, workType, location *string, limit, offset int) ([]domain.Job, error) {
	args := m.Called(ctx, workType, location, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Job), args.Error(1)
}

func (m *MockJobRepository) ListJobsByContractor(ctx context.Context, contractorID string) ([]domain.Job, error) {
	args := m.Called(ctx, contractorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Job), args.Error(1)
}

func (m *MockJobRepository) DeactivateJob(ctx context.Context, jobID string, userID string) error {
	args := m.Called(ctx, jobID, userID)
	return args.Error(0)
}

// --- Test Suite Setup ---

type DealServiceTestSuite struct {
	suite.Suite
	mockDealRepo       *MockDealRepository
	mockAttendanceRepo *MockAttendanceRepository
	mockJobRepo        *MockJobRepository
	service            portssvc.DealSvcFacade

	contractorID string
	labourID     string
	contractor   domain.Actor
	labour       domain.Actor
}

func (suite *DealServiceTestSuite) SetupTest() {
	suite.mockDealRepo = new(MockDealRepository)
	suite.mockAttendanceRepo = new(MockAttendanceRepository)
	suite.mockJobRepo = new(MockJobRepository)
	suite.service = services.NewDealService(suite.mockDealRepo, suite.mockAttendanceRepo, suite.mockJobRepo, true)

	suite.contractorID = uuid.NewString()
	suite.labourID = uuid.NewString()
	suite.contractor = domain.Actor{UserID: suite.contractorID, Role: domain.RoleContractor}
	suite.labour = domain.Actor{UserID: suite.labourID, Role: domain.RoleLabour}
}

func (suite *DealServiceTestSuite) newJob(skills ...domain.SkillSlot) *domain.Job {
	if len(skills) == 0 {
		skills = []domain.SkillSlot{{SkillName: "mason", RequiredCount: 2, FilledCount: 0}}
	}
	return &domain.Job{
		JobID:        uuid.NewString(),
		ContractorID: suite.contractorID,
		WorkType:     "construction",
		Location:     "Pune",
		WorkDate:     time.Now().UTC().AddDate(0, 0, 3),
		DailyWage:    decimal.NewFromInt(800),
		Skills:       skills,
		IsActive:     true,
	}
}

func (suite *DealServiceTestSuite) newDeal(status domain.DealStatus) *domain.Deal {
	return &domain.Deal{
		DealID:       uuid.NewString(),
		JobID:        uuid.NewString(),
		Status:       status,
		ContractorID: suite.contractorID,
		LabourID:     suite.labourID,
		WorkType:     "construction",
		Location:     "Pune",
		WorkDate:     time.Now().UTC().AddDate(0, 0, 3),
		Payment:      decimal.NewFromInt(800),
		AppliedSkill: "mason",
		Version:      1,
	}
}

// --- Application lifecycle ---

func (suite *DealServiceTestSuite) TestApplyToJob_Success() {
	ctx := context.Background()
	job := suite.newJob()

	suite.mockJobRepo.On("FindJobByID", ctx, job.JobID).Return(job, nil).Once()
	suite.mockDealRepo.On("FindDealByJobAndLabour", ctx, job.JobID, suite.labourID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockDealRepo.On("SaveDeal", ctx, mock.AnythingOfType("domain.Deal")).Return(nil).Once()

	deal, err := suite.service.ApplyToJob(ctx, job.JobID, suite.labour, dto.ApplyToJobRequest{})

	suite.Require().NoError(err)
	suite.Require().NotNil(deal)
	suite.Equal(domain.DealApplied, deal.Status)
	suite.Equal(suite.contractorID, deal.ContractorID)
	suite.Equal(suite.labourID, deal.LabourID)
	suite.Equal("mason", deal.AppliedSkill) // Single-skill job, inferred
	suite.True(deal.Payment.Equal(job.DailyWage))
	suite.Equal(int64(1), deal.Version)
	suite.mockDealRepo.AssertExpectations(suite.T())
}

func (suite *DealServiceTestSuite) TestApplyToJob_ContractorForbidden() {
	ctx := context.Background()

	deal, err := suite.service.ApplyToJob(ctx, uuid.NewString(), suite.contractor, dto.ApplyToJobRequest{})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.Nil(deal)
	suite.mockDealRepo.AssertNotCalled(suite.T(), "SaveDeal")
}

func (suite *DealServiceTestSuite) TestApplyToJob_DuplicateApplication() {
	ctx := context.Background()
	job := suite.newJob()
	existing := suite.newDeal(domain.DealApplied)

	suite.mockJobRepo.On("FindJobByID", ctx, job.JobID).Return(job, nil).Once()
	suite.mockDealRepo.On("FindDealByJobAndLabour", ctx, job.JobID, suite.labourID).Return(existing, nil).Once()

	deal, err := suite.service.ApplyToJob(ctx, job.JobID, suite.labour, dto.ApplyToJobRequest{})

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAlreadyApplied)
	suite.Nil(deal)
}

func (suite *DealServiceTestSuite) TestApproveApplication_Success() {
	ctx := context.Background()
	deal := suite.newDeal(domain.DealApplied)
	job := suite.newJob()
	deal.JobID = job.JobID

	suite.mockDealRepo.On("FindDealByID", ctx, deal.DealID).Return(deal, nil).Once()
	suite.mockJobRepo.On("FindJobByID", ctx, job.JobID).Return(job, nil).Once()
	suite.mockDealRepo.On("ApproveApplication", ctx, mock.AnythingOfType("domain.Deal"), "mason").Return(nil).Once()

	updated, err := suite.service.ApproveApplication(ctx, deal.DealID, suite.contractor, dto.ApproveApplicationRequest{})

	suite.Require().NoError(err)
	suite.Equal(domain.DealActive, updated.Status)
	suite.Equal("mason", updated.AppliedSkill)
	suite.Equal(int64(2), updated.Version)
	suite.mockDealRepo.AssertExpectations(suite.T())
}

// A full slot fails the approval before any status change is attempted.
func (suite *DealServiceTestSuite) TestApproveApplication_SlotFull() {
	ctx := context.Background()
	deal := suite.newDeal(domain.DealApplied)
	job := suite.newJob(domain.SkillSlot{SkillName: "mason", RequiredCount: 2, FilledCount: 2})
	deal.JobID = job.JobID

	suite.mockDealRepo.On("FindDealByID", ctx, deal.DealID).Return(deal, nil).Once()
	suite.mockJobRepo.On("FindJobByID", ctx, job.JobID).Return(job, nil).Once()

	updated, err := suite.service.ApproveApplication(ctx, deal.DealID, suite.contractor, dto.ApproveApplicationRequest{})

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrSlotFull)
	suite.Nil(updated)
	suite.mockDealRepo.AssertNotCalled(suite.T(), "ApproveApplication")
}

// A multi-skill job with no explicit selection cannot be approved, even with
// single-skill inference enabled.
func (suite *DealServiceTestSuite) TestApproveApplication_MultiSkillRequiresSelection() {
	ctx := context.Background()
	deal := suite.newDeal(domain.DealApplied)
	deal.AppliedSkill = ""
	job := suite.newJob(
		domain.SkillSlot{SkillName: "mason", RequiredCount: 1},
		domain.SkillSlot{SkillName: "helper", RequiredCount: 2},
	)
	deal.JobID = job.JobID

	suite.mockDealRepo.On("FindDealByID", ctx, deal.DealID).Return(deal, nil).Once()
	suite.mockJobRepo.On("FindJobByID", ctx, job.JobID).Return(job, nil).Once()

	updated, err := suite.service.ApproveApplication(ctx, deal.DealID, suite.contractor, dto.ApproveApplicationRequest{})

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrSkillChoiceRequired)
	suite.Nil(updated)
	suite.mockDealRepo.AssertNotCalled(suite.T(), "ApproveApplication")
}

// The wrong role is reported as forbidden, not as an invalid transition, even
// though the labourer could never drive applied -> active anyway.
func (suite *DealServiceTestSuite) TestApproveApplication_LabourForbidden() {
	ctx := context.Background()
	deal := suite.newDeal(domain.DealApplied)

	suite.mockDealRepo.On("FindDealByID", ctx, deal.DealID).Return(deal, nil).Once()

	updated, err := suite.service.ApproveApplication(ctx, deal.DealID, suite.labour, dto.ApproveApplicationRequest{})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.NotErrorIs(err, services.ErrInvalidTransition)
	suite.Nil(updated)
}

// A different contractor than the one on the deal is forbidden too.
func (suite *DealServiceTestSuite) TestApproveApplication_OtherContractorForbidden() {
	ctx := context.Background()
	deal := suite.newDeal(domain.DealApplied)
	stranger := domain.Actor{UserID: uuid.NewString(), Role: domain.RoleContractor}

	suite.mockDealRepo.On("FindDealByID", ctx, deal.DealID).Return(deal, nil).Once()

	updated, err := suite.service.ApproveApplication(ctx, deal.DealID, stranger, dto.ApproveApplicationRequest{})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.Nil(updated)
}

func (suite *DealServiceTestSuite) TestRejectApplication_Success() {
	ctx := context.Background()
	deal := suite.newDeal(domain.DealApplied)

	suite.mockDealRepo.On("FindDealByID", ctx, deal.DealID).Return(deal, nil).Once()
	suite.mockDealRepo.On("UpdateDealStatus", ctx, mock.AnythingOfType("domain.Deal")).Return(nil).Once()

	updated, err := suite.service.RejectApplication(ctx, deal.DealID, suite.contractor)

	suite.Require().NoError(err)
	suite.Equal(domain.DealRejected, updated.Status)
	suite.True(updated.Status.IsTerminal())
}

// --- Completion lifecycle ---

func (suite *DealServiceTestSuite) TestRequestCompletion_Success() {
	ctx := context.Background()
	deal := suite.newDeal(domain.DealActive)

	suite.mockDealRepo.On("FindDealByID", ctx, deal.DealID).Return(deal, nil).Once()
	suite.mockDealRepo.On("UpdateDealStatus", ctx, mock.AnythingOfType("domain.Deal")).Return(nil).Once()

	updated, err := suite.service.RequestCompletion(ctx, deal.DealID, suite.labour)

	suite.Require().NoError(err)
	suite.Equal(domain.DealCompletionRequested, updated.Status)
	suite.True(updated.LabourFinishRequested)
	suite.Require().NotNil(updated.CompletionStatus)
	suite.Equal(domain.CompletionRequested, *updated.CompletionStatus)
}

func (suite *DealServiceTestSuite) TestRequestCompletion_ContractorForbidden() {
	ctx := context.Background()
	deal := suite.newDeal(domain.DealActive)

	suite.mockDealRepo.On("FindDealByID", ctx, deal.DealID).Return(deal, nil).Once()

	updated, err := suite.service.RequestCompletion(ctx, deal.DealID, suite.contractor)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.Nil(updated)
	suite.mockDealRepo.AssertNotCalled(suite.T(), "UpdateDealStatus")
}

func (suite *DealServiceTestSuite) TestRequestCompletion_FromAppliedInvalid() {
	ctx := context.Background()
	deal := suite.newDeal(domain.DealApplied)

	suite.mockDealRepo.On("FindDealByID", ctx, deal.DealID).Return(deal, nil).Once()

	updated, err := suite.service.RequestCompletion(ctx, deal.DealID, suite.labour)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrInvalidTransition)
	suite.Contains(err.Error(), string(domain.DealApplied))
	suite.Contains(err.Error(), string(domain.DealCompletionRequested))
	suite.Nil(updated)
}

func (suite *DealServiceTestSuite) TestApproveCompletion_Success() {
	ctx := context.Background()
	deal := suite.newDeal(domain.DealCompletionRequested)
	deal.LabourFinishRequested = true

	suite.mockDealRepo.On("FindDealByID", ctx, deal.DealID).Return(deal, nil).Once()
	suite.mockDealRepo.On("UpdateDealStatus", ctx, mock.AnythingOfType("domain.Deal")).Return(nil).Once()

	updated, err := suite.service.ApproveCompletion(ctx, deal.DealID, suite.contractor)

	suite.Require().NoError(err)
	suite.Equal(domain.DealCompleted, updated.Status)
	suite.Require().NotNil(updated.CompletionStatus)
	suite.Equal(domain.CompletionApproved, *updated.CompletionStatus)
	suite.Require().NotNil(updated.CompletedAt)
	suite.WithinDuration(time.Now().UTC(), *updated.CompletedAt, time.Second)
}

func (suite *DealServiceTestSuite) TestRejectCompletion_AppendsHistoryAndReverts() {
	ctx := context.Background()
	deal := suite.newDeal(domain.DealCompletionRequested)
	deal.LabourFinishRequested = true
	note := "work incomplete on east wall"

	suite.mockDealRepo.On("FindDealByID", ctx, deal.DealID).Return(deal, nil).Once()
	suite.mockDealRepo.On("RejectCompletion", ctx, mock.AnythingOfType("domain.Deal"), mock.AnythingOfType("domain.RejectionEvent")).Return(nil).Once()

	updated, err := suite.service.RejectCompletion(ctx, deal.DealID, suite.contractor, dto.RejectCompletionRequest{
		ReasonCodes: []string{"quality", "incomplete"},
		Note:        &note,
	})

	suite.Require().NoError(err)
	suite.Equal(domain.DealActive, updated.Status)
	suite.False(updated.LabourFinishRequested)
	suite.Require().NotNil(updated.CompletionStatus)
	suite.Equal(domain.CompletionRejected, *updated.CompletionStatus)
	suite.Require().Len(updated.RejectionHistory, 1)
	suite.Equal([]string{"quality", "incomplete"}, updated.RejectionHistory[0].ReasonCodes)
	suite.Equal(suite.contractorID, updated.RejectionHistory[0].RejectedBy)
}

func (suite *DealServiceTestSuite) TestRejectCompletion_ReasonCodesRequired() {
	ctx := context.Background()

	updated, err := suite.service.RejectCompletion(ctx, uuid.NewString(), suite.contractor, dto.RejectCompletionRequest{})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(updated)
	suite.mockDealRepo.AssertNotCalled(suite.T(), "FindDealByID")
}

// Two request/reject cycles leave two history entries; earlier entries are
// untouched by later rejections.
func (suite *DealServiceTestSuite) TestRejectCompletion_HistoryGrowsAcrossCycles() {
	ctx := context.Background()
	deal := suite.newDeal(domain.DealCompletionRequested)
	firstEvent := domain.RejectionEvent{
		RejectionID: uuid.NewString(),
		DealID:      deal.DealID,
		ReasonCodes: []string{"quality"},
		RejectedBy:  suite.contractorID,
		RejectedAt:  time.Now().UTC().Add(-24 * time.Hour),
	}
	deal.RejectionHistory = []domain.RejectionEvent{firstEvent}

	suite.mockDealRepo.On("FindDealByID", ctx, deal.DealID).Return(deal, nil).Once()
	suite.mockDealRepo.On("RejectCompletion", ctx, mock.AnythingOfType("domain.Deal"), mock.AnythingOfType("domain.RejectionEvent")).Return(nil).Once()

	updated, err := suite.service.RejectCompletion(ctx, deal.DealID, suite.contractor, dto.RejectCompletionRequest{
		ReasonCodes: []string{"incomplete"},
	})

	suite.Require().NoError(err)
	suite.Require().Len(updated.RejectionHistory, 2)
	suite.Equal(firstEvent.RejectionID, updated.RejectionHistory[0].RejectionID)
	suite.Equal([]string{"quality"}, updated.RejectionHistory[0].ReasonCodes)
	suite.Equal([]string{"incomplete"}, updated.RejectionHistory[1].ReasonCodes)
}

// A concurrent writer makes the version-checked update fail; the caller sees
// a stale-state conflict.
func (suite *DealServiceTestSuite) TestApproveCompletion_StaleState() {
	ctx := context.Background()
	deal := suite.newDeal(domain.DealCompletionRequested)

	suite.mockDealRepo.On("FindDealByID", ctx, deal.DealID).Return(deal, nil).Once()
	suite.mockDealRepo.On("UpdateDealStatus", ctx, mock.AnythingOfType("domain.Deal")).Return(apperrors.ErrConflict).Once()

	updated, err := suite.service.ApproveCompletion(ctx, deal.DealID, suite.contractor)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.Nil(updated)
}

// --- Attendance sub-workflow ---

func (suite *DealServiceTestSuite) TestSubmitAttendance_Success() {
	ctx := context.Background()
	deal := suite.newDeal(domain.DealActive)

	suite.mockDealRepo.On("FindDealByID", ctx, deal.DealID).Return(deal, nil).Once()
	suite.mockAttendanceRepo.On("SaveAttendance", ctx, mock.AnythingOfType("domain.AttendanceRecord")).Return(nil).Once()

	record, err := suite.service.SubmitAttendance(ctx, deal.DealID, suite.labour, dto.SubmitAttendanceRequest{
		Location: &dto.LocationPayload{Latitude: 18.52, Longitude: 73.85},
		ImageURL: "https://cdn.example.com/att/1.jpg",
	})

	suite.Require().NoError(err)
	suite.Equal(domain.AttendancePending, record.Status)
	suite.Equal(deal.DealID, record.DealID)
	suite.Nil(record.ResolvedBy)
	suite.mockAttendanceRepo.AssertExpectations(suite.T())
}

func (suite *DealServiceTestSuite) TestSubmitAttendance_MissingLocation() {
	ctx := context.Background()

	record, err := suite.service.SubmitAttendance(ctx, uuid.NewString(), suite.labour, dto.SubmitAttendanceRequest{
		ImageURL: "https://cdn.example.com/att/1.jpg",
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrMissingRequiredField)
	suite.Nil(record)
	suite.mockAttendanceRepo.AssertNotCalled(suite.T(), "SaveAttendance")
}

func (suite *DealServiceTestSuite) TestSubmitAttendance_MissingPhoto() {
	ctx := context.Background()

	record, err := suite.service.SubmitAttendance(ctx, uuid.NewString(), suite.labour, dto.SubmitAttendanceRequest{
		Location: &dto.LocationPayload{Latitude: 18.52, Longitude: 73.85},
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrMissingRequiredField)
	suite.Nil(record)
}

func (suite *DealServiceTestSuite) TestSubmitAttendance_ContractorForbidden() {
	ctx := context.Background()
	deal := suite.newDeal(domain.DealActive)

	suite.mockDealRepo.On("FindDealByID", ctx, deal.DealID).Return(deal, nil).Once()

	record, err := suite.service.SubmitAttendance(ctx, deal.DealID, suite.contractor, dto.SubmitAttendanceRequest{
		Location: &dto.LocationPayload{Latitude: 18.52, Longitude: 73.85},
		ImageURL: "https://cdn.example.com/att/1.jpg",
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.Nil(record)
}

func (suite *DealServiceTestSuite) TestResolveAttendance_Approve() {
	ctx := context.Background()
	deal := suite.newDeal(domain.DealActive)
	record := &domain.AttendanceRecord{
		AttendanceID: uuid.NewString(),
		DealID:       deal.DealID,
		Status:       domain.AttendancePending,
	}

	suite.mockAttendanceRepo.On("FindAttendanceByID", ctx, record.AttendanceID).Return(record, nil).Once()
	suite.mockDealRepo.On("FindDealByID", ctx, deal.DealID).Return(deal, nil).Once()
	suite.mockAttendanceRepo.On("ResolveAttendance", ctx, record.AttendanceID, domain.AttendanceApproved, suite.contractorID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	resolved, err := suite.service.ResolveAttendance(ctx, record.AttendanceID, suite.contractor, domain.AttendanceApproved)

	suite.Require().NoError(err)
	suite.Equal(domain.AttendanceApproved, resolved.Status)
	suite.Require().NotNil(resolved.ResolvedBy)
	suite.Equal(suite.contractorID, *resolved.ResolvedBy)
	suite.NotNil(resolved.ResolvedAt)
}

// Resolution is permanent; a second decision on the same record fails and
// the stored status is not touched.
func (suite *DealServiceTestSuite) TestResolveAttendance_AlreadyResolved() {
	ctx := context.Background()
	deal := suite.newDeal(domain.DealActive)
	resolvedBy := suite.contractorID
	resolvedAt := time.Now().UTC().Add(-time.Hour)
	record := &domain.AttendanceRecord{
		AttendanceID: uuid.NewString(),
		DealID:       deal.DealID,
		Status:       domain.AttendanceApproved,
		ResolvedBy:   &resolvedBy,
		ResolvedAt:   &resolvedAt,
	}

	suite.mockAttendanceRepo.On("FindAttendanceByID", ctx, record.AttendanceID).Return(record, nil).Once()
	suite.mockDealRepo.On("FindDealByID", ctx, deal.DealID).Return(deal, nil).Once()

	resolved, err := suite.service.ResolveAttendance(ctx, record.AttendanceID, suite.contractor, domain.AttendanceRejected)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAlreadyResolved)
	suite.Nil(resolved)
	suite.mockAttendanceRepo.AssertNotCalled(suite.T(), "ResolveAttendance")
}

func (suite *DealServiceTestSuite) TestResolveAttendance_LabourForbidden() {
	ctx := context.Background()
	deal := suite.newDeal(domain.DealActive)
	record := &domain.AttendanceRecord{
		AttendanceID: uuid.NewString(),
		DealID:       deal.DealID,
		Status:       domain.AttendancePending,
	}

	suite.mockAttendanceRepo.On("FindAttendanceByID", ctx, record.AttendanceID).Return(record, nil).Once()
	suite.mockDealRepo.On("FindDealByID", ctx, deal.DealID).Return(deal, nil).Once()

	resolved, err := suite.service.ResolveAttendance(ctx, record.AttendanceID, suite.labour, domain.AttendanceApproved)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.Nil(resolved)
}

func (suite *DealServiceTestSuite) TestResolveAttendance_InvalidDecision() {
	ctx := context.Background()

	resolved, err := suite.service.ResolveAttendance(ctx, uuid.NewString(), suite.contractor, domain.AttendancePending)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(resolved)
	suite.mockAttendanceRepo.AssertNotCalled(suite.T(), "FindAttendanceByID")
}

// Pending attendance does not block completion approval.
func (suite *DealServiceTestSuite) TestApproveCompletion_PendingAttendanceDoesNotBlock() {
	ctx := context.Background()
	deal := suite.newDeal(domain.DealCompletionRequested)
	deal.Attendance = []domain.AttendanceRecord{
		{AttendanceID: uuid.NewString(), DealID: deal.DealID, Status: domain.AttendancePending},
	}

	suite.mockDealRepo.On("FindDealByID", ctx, deal.DealID).Return(deal, nil).Once()
	suite.mockDealRepo.On("UpdateDealStatus", ctx, mock.AnythingOfType("domain.Deal")).Return(nil).Once()

	updated, err := suite.service.ApproveCompletion(ctx, deal.DealID, suite.contractor)

	suite.Require().NoError(err)
	suite.Equal(domain.DealCompleted, updated.Status)
}

// --- Reads ---

func (suite *DealServiceTestSuite) TestGetDealByID_NonParticipantSeesNotFound() {
	ctx := context.Background()
	deal := suite.newDeal(domain.DealActive)

	suite.mockDealRepo.On("FindDealByID", ctx, deal.DealID).Return(deal, nil).Once()

	got, err := suite.service.GetDealByID(ctx, deal.DealID, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.Nil(got)
}

func (suite *DealServiceTestSuite) TestGetDealByID_AttachesAttendance() {
	ctx := context.Background()
	deal := suite.newDeal(domain.DealActive)
	records := []domain.AttendanceRecord{
		{AttendanceID: uuid.NewString(), DealID: deal.DealID, Status: domain.AttendancePending},
		{AttendanceID: uuid.NewString(), DealID: deal.DealID, Status: domain.AttendanceApproved},
	}

	suite.mockDealRepo.On("FindDealByID", ctx, deal.DealID).Return(deal, nil).Once()
	suite.mockAttendanceRepo.On("ListAttendanceByDeal", ctx, deal.DealID).Return(records, nil).Once()

	got, err := suite.service.GetDealByID(ctx, deal.DealID, suite.labourID)

	suite.Require().NoError(err)
	suite.Len(got.Attendance, 2)
}

func (suite *DealServiceTestSuite) TestListDeals_FiltersByStatus() {
	ctx := context.Background()
	status := domain.DealActive
	deals := []domain.Deal{*suite.newDeal(domain.DealActive)}

	suite.mockDealRepo.On("ListDealsByParticipant", ctx, suite.labourID, domain.RoleLabour, &status).Return(deals, nil).Once()

	resp, err := suite.service.ListDeals(ctx, suite.labour, dto.ListDealsParams{Status: &status})

	suite.Require().NoError(err)
	suite.Require().Len(resp.Deals, 1)
	suite.Equal(domain.DealActive, resp.Deals[0].Status)
}

// --- Full lifecycle walkthroughs ---

// Happy path: apply, approve, request completion, approve completion.
func (suite *DealServiceTestSuite) TestLifecycle_HappyPath() {
	ctx := context.Background()
	job := suite.newJob()

	suite.mockJobRepo.On("FindJobByID", ctx, job.JobID).Return(job, nil)
	suite.mockDealRepo.On("FindDealByJobAndLabour", ctx, job.JobID, suite.labourID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockDealRepo.On("SaveDeal", ctx, mock.AnythingOfType("domain.Deal")).Return(nil).Once()

	deal, err := suite.service.ApplyToJob(ctx, job.JobID, suite.labour, dto.ApplyToJobRequest{AppliedSkill: "mason"})
	suite.Require().NoError(err)
	suite.Equal(domain.DealApplied, deal.Status)

	suite.mockDealRepo.On("FindDealByID", ctx, deal.DealID).Return(deal, nil)
	suite.mockDealRepo.On("ApproveApplication", ctx, mock.AnythingOfType("domain.Deal"), "mason").Return(nil).Once()

	deal, err = suite.service.ApproveApplication(ctx, deal.DealID, suite.contractor, dto.ApproveApplicationRequest{SelectedSkill: "mason"})
	suite.Require().NoError(err)
	suite.Equal(domain.DealActive, deal.Status)

	suite.mockDealRepo.On("UpdateDealStatus", ctx, mock.AnythingOfType("domain.Deal")).Return(nil)

	deal, err = suite.service.RequestCompletion(ctx, deal.DealID, suite.labour)
	suite.Require().NoError(err)
	suite.Equal(domain.DealCompletionRequested, deal.Status)

	deal, err = suite.service.ApproveCompletion(ctx, deal.DealID, suite.contractor)
	suite.Require().NoError(err)
	suite.Equal(domain.DealCompleted, deal.Status)
	suite.NotNil(deal.CompletedAt)
}

// Rework loop: completion rejected once, requested again, then approved. The
// rejection history survives the whole way.
func (suite *DealServiceTestSuite) TestLifecycle_RejectThenApprove() {
	ctx := context.Background()
	deal := suite.newDeal(domain.DealCompletionRequested)
	deal.LabourFinishRequested = true

	suite.mockDealRepo.On("FindDealByID", ctx, deal.DealID).Return(deal, nil)
	suite.mockDealRepo.On("RejectCompletion", ctx, mock.AnythingOfType("domain.Deal"), mock.AnythingOfType("domain.RejectionEvent")).Return(nil).Once()
	suite.mockDealRepo.On("UpdateDealStatus", ctx, mock.AnythingOfType("domain.Deal")).Return(nil)

	deal, err := suite.service.RejectCompletion(ctx, deal.DealID, suite.contractor, dto.RejectCompletionRequest{ReasonCodes: []string{"quality"}})
	suite.Require().NoError(err)
	suite.Equal(domain.DealActive, deal.Status)
	suite.Len(deal.RejectionHistory, 1)

	deal, err = suite.service.RequestCompletion(ctx, deal.DealID, suite.labour)
	suite.Require().NoError(err)
	suite.Equal(domain.DealCompletionRequested, deal.Status)
	suite.Len(deal.RejectionHistory, 1)

	deal, err = suite.service.ApproveCompletion(ctx, deal.DealID, suite.contractor)
	suite.Require().NoError(err)
	suite.Equal(domain.DealCompleted, deal.Status)
	suite.Len(deal.RejectionHistory, 1)
}

func TestDealServiceTestSuite(t *testing.T) {
	suite.Run(t, new(DealServiceTestSuite))
}
