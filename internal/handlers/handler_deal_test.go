package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/Vinay1727/labour-backend/internal/apperrors"
	"github.com/Vinay1727/labour-backend/internal/core/domain"
	portssvc "github.com/Vinay1727/labour-backend/internal/core/ports/services"
	"github.com/Vinay1727/labour-backend/internal/core/services"
	"github.com/Vinay1727/labour-backend/internal/dto"
	"github.com/Vinay1727/labour-backend/internal/handlers"
	"github.com/Vinay1727/labour-backend/internal/middleware"
	"github.com/Vinay1727/labour-backend/internal/utils"
)

// --- Mock DealService ---
type MockDealService struct {
	mock.Mock
}

func (m *MockDealService) GetDealByID(ctx context.Context, dealID string, requestingUserID string) (*domain.Deal, error) {
	args := m.Called(ctx, dealID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deal), args.Error(1)
}
func (m *MockDealService) ListDeals(ctx context.Context, actor domain.Actor, params dto.ListDealsParams) (*dto.ListDealsResponse, error) {
	args := m.Called(ctx, actor, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListDealsResponse), args.Error(1)
}
func (m *MockDealService) ApplyToJob(ctx context.Context, jobID string, actor domain.Actor, req dto.ApplyToJobRequest) (*domain.Deal, error) {
	args := m.Called(ctx, jobID, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deal), args.Error(1)
}
func (m *MockDealService) ApproveApplication(ctx context.Context, dealID string, actor domain.Actor, req dto.ApproveApplicationRequest) (*domain.Deal, error) {
	args := m.Called(ctx, dealID, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deal), args.Error(1)
}
func (m *MockDealService) RejectApplication(ctx context.Context, dealID string, actor domain.Actor) (*domain.Deal, error) {
	args := m.Called(ctx, dealID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deal), args.Error(1)
}
func (m *MockDealService) RequestCompletion(ctx context.Context, dealID string, actor domain.Actor) (*domain.Deal, error) {
	args := m.Called(ctx, dealID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deal), args.Error(1)
}
func (m *MockDealService) ApproveCompletion(ctx context.Context, dealID string, actor domain.Actor) (*domain.Deal, error) {
	args := m.Called(ctx, dealID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deal), args.Error(1)
}
func (m *MockDealService) RejectCompletion(ctx context.Context, dealID string, actor domain.Actor, req dto.RejectCompletionRequest) (*domain.Deal, error) {
	args := m.Called(ctx, dealID, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deal), args.Error(1)
}
func (m *MockDealService) SubmitAttendance(ctx context.Context, dealID string, actor domain.Actor, req dto.SubmitAttendanceRequest) (*domain.AttendanceRecord, error) {
	args := m.Called(ctx, dealID, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AttendanceRecord), args.Error(1)
}
func (m *MockDealService) ResolveAttendance(ctx context.Context, attendanceID string, actor domain.Actor, decision domain.AttendanceStatus) (*domain.AttendanceRecord, error) {
	args := m.Called(ctx, attendanceID, actor, decision)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AttendanceRecord), args.Error(1)
}
func (m *MockDealService) ListAttendance(ctx context.Context, dealID string, requestingUserID string) ([]domain.AttendanceRecord, error) {
	args := m.Called(ctx, dealID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AttendanceRecord), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.DealSvcFacade = (*MockDealService)(nil)

// --- Test Suite ---
type DealHandlerTestSuite struct {
	suite.Suite
	router          *gin.Engine
	mockDealService *MockDealService
	jwtSecret       string
	contractorID    string
	labourID        string
}

// generateTestToken creates a JWT carrying the role claim the auth middleware
// requires.
func (suite *DealHandlerTestSuite) generateTestToken(userID string, role domain.UserRole) string {
	token, err := utils.GenerateJWT(userID, role, suite.jwtSecret, time.Hour, "labour-backend-test")
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return token
}

func (suite *DealHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.contractorID = uuid.NewString()
	suite.labourID = uuid.NewString()

	// Use the actual AuthMiddleware
	suite.router.Use(middleware.AuthMiddleware(suite.jwtSecret))

	suite.mockDealService = new(MockDealService)

	v1 := suite.router.Group("/api/v1")
	handlers.RegisterDealRoutes(v1, suite.mockDealService)
}

// newDeal builds a deal between the suite's contractor and labourer.
func (suite *DealHandlerTestSuite) newDeal(status domain.DealStatus) *domain.Deal {
	now := time.Now()
	return &domain.Deal{
		DealID:       uuid.NewString(),
		JobID:        uuid.NewString(),
		Status:       status,
		ContractorID: suite.contractorID,
		LabourID:     suite.labourID,
		WorkType:     "construction",
		Location:     "Pune",
		WorkDate:     now.Add(24 * time.Hour),
		Payment:      decimal.NewFromInt(800),
		AppliedSkill: "mason",
		Version:      1,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     suite.labourID,
			LastUpdatedAt: now,
			LastUpdatedBy: suite.labourID,
		},
	}
}

// doRequest serves an authenticated JSON request against the suite router.
func (suite *DealHandlerTestSuite) doRequest(method, url string, body any, userID string, role domain.UserRole) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, _ := http.NewRequest(method, url, reader)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(userID, role))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *DealHandlerTestSuite) TestGetDeal_Success() {
	deal := suite.newDeal(domain.DealActive)

	suite.mockDealService.On("GetDealByID", mock.Anything, deal.DealID, suite.labourID).
		Return(deal, nil).Once()

	w := suite.doRequest(http.MethodGet, "/api/v1/deals/"+deal.DealID, nil, suite.labourID, domain.RoleLabour)

	suite.Equal(http.StatusOK, w.Code)
	var body dto.DealResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal(deal.DealID, body.DealID)
	suite.Equal(domain.DealActive, body.Status)
	suite.mockDealService.AssertExpectations(suite.T())
}

func (suite *DealHandlerTestSuite) TestGetDeal_NotFound() {
	dealID := uuid.NewString()
	outsiderID := uuid.NewString()

	suite.mockDealService.On("GetDealByID", mock.Anything, dealID, outsiderID).
		Return(nil, fmt.Errorf("%w: deal not found", apperrors.ErrNotFound)).Once()

	w := suite.doRequest(http.MethodGet, "/api/v1/deals/"+dealID, nil, outsiderID, domain.RoleLabour)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.mockDealService.AssertExpectations(suite.T())
}

func (suite *DealHandlerTestSuite) TestGetDeal_MissingToken() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/deals/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockDealService.AssertNotCalled(suite.T(), "GetDealByID")
}

func (suite *DealHandlerTestSuite) TestListDeals_WithStatusFilter() {
	deal := suite.newDeal(domain.DealApplied)
	expected := &dto.ListDealsResponse{Deals: []dto.DealResponse{dto.ToDealResponse(deal)}}
	actor := domain.Actor{UserID: suite.contractorID, Role: domain.RoleContractor}

	suite.mockDealService.On("ListDeals", mock.Anything, actor,
		mock.MatchedBy(func(p dto.ListDealsParams) bool {
			return p.Status != nil && *p.Status == domain.DealApplied
		})).Return(expected, nil).Once()

	w := suite.doRequest(http.MethodGet, "/api/v1/deals?status=applied", nil, suite.contractorID, domain.RoleContractor)

	suite.Equal(http.StatusOK, w.Code)
	var body dto.ListDealsResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Len(body.Deals, 1)
	suite.mockDealService.AssertExpectations(suite.T())
}

func (suite *DealHandlerTestSuite) TestApproveApplication_Success() {
	deal := suite.newDeal(domain.DealActive)
	actor := domain.Actor{UserID: suite.contractorID, Role: domain.RoleContractor}
	reqBody := dto.ApproveApplicationRequest{SelectedSkill: "mason"}

	suite.mockDealService.On("ApproveApplication", mock.Anything, deal.DealID, actor, reqBody).
		Return(deal, nil).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/deals/"+deal.DealID+"/approve", reqBody, suite.contractorID, domain.RoleContractor)

	suite.Equal(http.StatusOK, w.Code)
	var body dto.DealResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal(domain.DealActive, body.Status)
	suite.mockDealService.AssertExpectations(suite.T())
}

func (suite *DealHandlerTestSuite) TestApproveApplication_EmptyBodyAllowed() {
	deal := suite.newDeal(domain.DealActive)
	actor := domain.Actor{UserID: suite.contractorID, Role: domain.RoleContractor}

	suite.mockDealService.On("ApproveApplication", mock.Anything, deal.DealID, actor, dto.ApproveApplicationRequest{}).
		Return(deal, nil).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/deals/"+deal.DealID+"/approve", nil, suite.contractorID, domain.RoleContractor)

	suite.Equal(http.StatusOK, w.Code)
	suite.mockDealService.AssertExpectations(suite.T())
}

func (suite *DealHandlerTestSuite) TestApproveApplication_WrongRoleForbidden() {
	dealID := uuid.NewString()
	actor := domain.Actor{UserID: suite.labourID, Role: domain.RoleLabour}

	suite.mockDealService.On("ApproveApplication", mock.Anything, dealID, actor, dto.ApproveApplicationRequest{}).
		Return(nil, fmt.Errorf("%w: role LABOUR may not move a deal to active", apperrors.ErrForbidden)).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/deals/"+dealID+"/approve", nil, suite.labourID, domain.RoleLabour)

	suite.Equal(http.StatusForbidden, w.Code)
	suite.mockDealService.AssertExpectations(suite.T())
}

func (suite *DealHandlerTestSuite) TestApproveApplication_SlotFullConflict() {
	dealID := uuid.NewString()
	actor := domain.Actor{UserID: suite.contractorID, Role: domain.RoleContractor}

	suite.mockDealService.On("ApproveApplication", mock.Anything, dealID, actor, dto.ApproveApplicationRequest{}).
		Return(nil, fmt.Errorf("%w: skill mason has no open slots", services.ErrSlotFull)).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/deals/"+dealID+"/approve", nil, suite.contractorID, domain.RoleContractor)

	suite.Equal(http.StatusConflict, w.Code)
	suite.mockDealService.AssertExpectations(suite.T())
}

func (suite *DealHandlerTestSuite) TestRequestCompletion_InvalidTransitionConflict() {
	dealID := uuid.NewString()
	actor := domain.Actor{UserID: suite.labourID, Role: domain.RoleLabour}

	suite.mockDealService.On("RequestCompletion", mock.Anything, dealID, actor).
		Return(nil, fmt.Errorf("%w: from applied to completion_requested", services.ErrInvalidTransition)).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/deals/"+dealID+"/request-completion", nil, suite.labourID, domain.RoleLabour)

	suite.Equal(http.StatusConflict, w.Code)
	suite.mockDealService.AssertExpectations(suite.T())
}

func (suite *DealHandlerTestSuite) TestApproveCompletion_StaleStateConflict() {
	dealID := uuid.NewString()
	actor := domain.Actor{UserID: suite.contractorID, Role: domain.RoleContractor}

	suite.mockDealService.On("ApproveCompletion", mock.Anything, dealID, actor).
		Return(nil, fmt.Errorf("%w: deal %s was modified concurrently", apperrors.ErrConflict, dealID)).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/deals/"+dealID+"/approve-completion", nil, suite.contractorID, domain.RoleContractor)

	suite.Equal(http.StatusConflict, w.Code)
	suite.mockDealService.AssertExpectations(suite.T())
}

func (suite *DealHandlerTestSuite) TestRejectCompletion_Success() {
	deal := suite.newDeal(domain.DealActive)
	actor := domain.Actor{UserID: suite.contractorID, Role: domain.RoleContractor}
	note := "wall not plastered"
	reqBody := dto.RejectCompletionRequest{ReasonCodes: []string{"incomplete_work"}, Note: &note}

	suite.mockDealService.On("RejectCompletion", mock.Anything, deal.DealID, actor, reqBody).
		Return(deal, nil).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/deals/"+deal.DealID+"/reject-completion", reqBody, suite.contractorID, domain.RoleContractor)

	suite.Equal(http.StatusOK, w.Code)
	suite.mockDealService.AssertExpectations(suite.T())
}

func (suite *DealHandlerTestSuite) TestRejectCompletion_MissingReasonCodes() {
	dealID := uuid.NewString()

	// Binding rejects the empty reason list before the service is reached.
	w := suite.doRequest(http.MethodPost, "/api/v1/deals/"+dealID+"/reject-completion",
		map[string]any{"reasonCodes": []string{}}, suite.contractorID, domain.RoleContractor)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockDealService.AssertNotCalled(suite.T(), "RejectCompletion")
}

func (suite *DealHandlerTestSuite) TestSubmitAttendance_Success() {
	dealID := uuid.NewString()
	actor := domain.Actor{UserID: suite.labourID, Role: domain.RoleLabour}
	reqBody := dto.SubmitAttendanceRequest{
		Location: &dto.LocationPayload{Latitude: 18.52, Longitude: 73.85},
		ImageURL: "https://cdn.example.com/site-photo.jpg",
	}
	record := &domain.AttendanceRecord{
		AttendanceID: uuid.NewString(),
		DealID:       dealID,
		Date:         time.Now().Truncate(24 * time.Hour),
		Timestamp:    time.Now(),
		Location:     domain.GeoPoint{Latitude: 18.52, Longitude: 73.85},
		ImageURL:     reqBody.ImageURL,
		Status:       domain.AttendancePending,
	}

	suite.mockDealService.On("SubmitAttendance", mock.Anything, dealID, actor, reqBody).
		Return(record, nil).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/deals/"+dealID+"/attendance", reqBody, suite.labourID, domain.RoleLabour)

	suite.Equal(http.StatusCreated, w.Code)
	var body dto.AttendanceResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal(record.AttendanceID, body.AttendanceID)
	suite.Equal(domain.AttendancePending, body.Status)
	suite.mockDealService.AssertExpectations(suite.T())
}

func (suite *DealHandlerTestSuite) TestSubmitAttendance_MissingPhoto() {
	dealID := uuid.NewString()
	actor := domain.Actor{UserID: suite.labourID, Role: domain.RoleLabour}
	reqBody := dto.SubmitAttendanceRequest{
		Location: &dto.LocationPayload{Latitude: 18.52, Longitude: 73.85},
	}

	suite.mockDealService.On("SubmitAttendance", mock.Anything, dealID, actor, reqBody).
		Return(nil, services.ErrMissingRequiredField).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/deals/"+dealID+"/attendance", reqBody, suite.labourID, domain.RoleLabour)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockDealService.AssertExpectations(suite.T())
}

func (suite *DealHandlerTestSuite) TestResolveAttendance_Success() {
	attendanceID := uuid.NewString()
	actor := domain.Actor{UserID: suite.contractorID, Role: domain.RoleContractor}
	resolvedAt := time.Now()
	record := &domain.AttendanceRecord{
		AttendanceID: attendanceID,
		DealID:       uuid.NewString(),
		Status:       domain.AttendanceApproved,
		ResolvedBy:   &suite.contractorID,
		ResolvedAt:   &resolvedAt,
	}

	suite.mockDealService.On("ResolveAttendance", mock.Anything, attendanceID, actor, domain.AttendanceApproved).
		Return(record, nil).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/attendance/"+attendanceID+"/resolve",
		dto.ResolveAttendanceRequest{Decision: domain.AttendanceApproved}, suite.contractorID, domain.RoleContractor)

	suite.Equal(http.StatusOK, w.Code)
	var body dto.AttendanceResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal(domain.AttendanceApproved, body.Status)
	suite.mockDealService.AssertExpectations(suite.T())
}

func (suite *DealHandlerTestSuite) TestResolveAttendance_AlreadyResolvedConflict() {
	attendanceID := uuid.NewString()
	actor := domain.Actor{UserID: suite.contractorID, Role: domain.RoleContractor}

	suite.mockDealService.On("ResolveAttendance", mock.Anything, attendanceID, actor, domain.AttendanceRejected).
		Return(nil, services.ErrAlreadyResolved).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/attendance/"+attendanceID+"/resolve",
		dto.ResolveAttendanceRequest{Decision: domain.AttendanceRejected}, suite.contractorID, domain.RoleContractor)

	suite.Equal(http.StatusConflict, w.Code)
	suite.mockDealService.AssertExpectations(suite.T())
}

func (suite *DealHandlerTestSuite) TestResolveAttendance_InvalidDecision() {
	attendanceID := uuid.NewString()

	w := suite.doRequest(http.MethodPost, "/api/v1/attendance/"+attendanceID+"/resolve",
		map[string]string{"decision": "maybe"}, suite.contractorID, domain.RoleContractor)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockDealService.AssertNotCalled(suite.T(), "ResolveAttendance")
}

// --- Run Test Suite ---
func TestDealHandler(t *testing.T) {
	suite.Run(t, new(DealHandlerTestSuite))
}
