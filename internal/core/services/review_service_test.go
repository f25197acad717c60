package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/Vinay1727/labour-backend/internal/apperrors"
	"github.com/Vinay1727/labour-backend/internal/core/domain"
	portssvc "github.com/Vinay1727/labour-backend/internal/core/ports/services"
	"github.com/Vinay1727/labour-backend/internal/core/services"
	"github.com/Vinay1727/labour-backend/internal/dto"
)

// MockReviewRepository is a mock type for the ReviewRepository interface
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) SaveReview(ctx context.Context, review domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) FindReviewsByDeal(ctx context.Context, dealID string) ([]domain.Review, error) {
	args := m.Called(ctx, dealID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Review), args.Error(1)
}

func (m *MockReviewRepository) FindReviewsByReviewee(ctx context.Context, revieweeID string, limit, offset int) ([]domain.Review, error) {
	args := m.Called(ctx, revieweeID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Review), args.Error(1)
}

func (m *MockReviewRepository) HasReviewed(ctx context.Context, dealID, reviewerID string) (bool, error) {
	args := m.Called(ctx, dealID, reviewerID)
	return args.Bool(0), args.Error(1)
}

// MockUserRepository is a mock type for the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByPhone(ctx context.Context, phone string) (*domain.User, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByProviderID(ctx context.Context, provider, providerID string) (*domain.User, error) {
	args := m.Called(ctx, provider, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateRefreshToken(ctx context.Context, userID string, tokenHash string, expiresAt *time.Time) error {
	args := m.Called(ctx, userID, tokenHash, expiresAt)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateUserRating(ctx context.Context, userID string, rating float64, ratingCount int) error {
	args := m.Called(ctx, userID, rating, ratingCount)
	return args.Error(0)
}

// --- Test Suite Setup ---

type ReviewServiceTestSuite struct {
	suite.Suite
	mockReviewRepo *MockReviewRepository
	mockDealRepo   *MockDealRepository
	mockUserRepo   *MockUserRepository
	service        portssvc.ReviewSvcFacade

	contractorID string
	labourID     string
}

func (suite *ReviewServiceTestSuite) SetupTest() {
	suite.mockReviewRepo = new(MockReviewRepository)
	suite.mockDealRepo = new(MockDealRepository)
	suite.mockUserRepo = new(MockUserRepository)
	suite.service = services.NewReviewService(suite.mockReviewRepo, suite.mockDealRepo, suite.mockUserRepo)

	suite.contractorID = uuid.NewString()
	suite.labourID = uuid.NewString()
}

func (suite *ReviewServiceTestSuite) completedDeal() *domain.Deal {
	now := time.Now().UTC()
	return &domain.Deal{
		DealID:       uuid.NewString(),
		Status:       domain.DealCompleted,
		ContractorID: suite.contractorID,
		LabourID:     suite.labourID,
		CompletedAt:  &now,
	}
}

// --- Test Cases ---

func (suite *ReviewServiceTestSuite) TestCreateReview_ContractorRatesLabour() {
	ctx := context.Background()
	deal := suite.completedDeal()

	suite.mockDealRepo.On("FindDealByID", ctx, deal.DealID).Return(deal, nil).Once()
	suite.mockReviewRepo.On("HasReviewed", ctx, deal.DealID, suite.contractorID).Return(false, nil).Once()
	suite.mockReviewRepo.On("SaveReview", ctx, mock.AnythingOfType("domain.Review")).Return(nil).Once()
	suite.mockDealRepo.On("MarkDealReviewed", ctx, deal.DealID).Return(nil).Once()
	suite.mockReviewRepo.On("FindReviewsByReviewee", ctx, suite.labourID, 1000, 0).Return([]domain.Review{
		{Rating: 4}, {Rating: 5},
	}, nil).Once()
	suite.mockUserRepo.On("UpdateUserRating", ctx, suite.labourID, 4.5, 2).Return(nil).Once()

	review, err := suite.service.CreateReview(ctx, deal.DealID, domain.Actor{UserID: suite.contractorID, Role: domain.RoleContractor}, dto.CreateReviewRequest{Rating: 5, Comment: "good work"})

	suite.Require().NoError(err)
	suite.Equal(suite.contractorID, review.ReviewerID)
	suite.Equal(suite.labourID, review.RevieweeID)
	suite.Equal(5, review.Rating)
	suite.mockReviewRepo.AssertExpectations(suite.T())
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *ReviewServiceTestSuite) TestCreateReview_DealNotCompleted() {
	ctx := context.Background()
	deal := suite.completedDeal()
	deal.Status = domain.DealActive

	suite.mockDealRepo.On("FindDealByID", ctx, deal.DealID).Return(deal, nil).Once()

	review, err := suite.service.CreateReview(ctx, deal.DealID, domain.Actor{UserID: suite.labourID, Role: domain.RoleLabour}, dto.CreateReviewRequest{Rating: 3})

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrDealNotCompleted)
	suite.Nil(review)
	suite.mockReviewRepo.AssertNotCalled(suite.T(), "SaveReview")
}

func (suite *ReviewServiceTestSuite) TestCreateReview_OnePerReviewer() {
	ctx := context.Background()
	deal := suite.completedDeal()

	suite.mockDealRepo.On("FindDealByID", ctx, deal.DealID).Return(deal, nil).Once()
	suite.mockReviewRepo.On("HasReviewed", ctx, deal.DealID, suite.labourID).Return(true, nil).Once()

	review, err := suite.service.CreateReview(ctx, deal.DealID, domain.Actor{UserID: suite.labourID, Role: domain.RoleLabour}, dto.CreateReviewRequest{Rating: 4})

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAlreadyReviewed)
	suite.Nil(review)
}

func (suite *ReviewServiceTestSuite) TestCreateReview_NonParticipantForbidden() {
	ctx := context.Background()
	deal := suite.completedDeal()

	suite.mockDealRepo.On("FindDealByID", ctx, deal.DealID).Return(deal, nil).Once()

	review, err := suite.service.CreateReview(ctx, deal.DealID, domain.Actor{UserID: uuid.NewString(), Role: domain.RoleLabour}, dto.CreateReviewRequest{Rating: 4})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.Nil(review)
}

func (suite *ReviewServiceTestSuite) TestListReviewsForUser() {
	ctx := context.Background()

	suite.mockReviewRepo.On("FindReviewsByReviewee", ctx, suite.labourID, 20, 0).Return([]domain.Review{
		{ReviewID: uuid.NewString(), RevieweeID: suite.labourID, Rating: 5},
	}, nil).Once()

	resp, err := suite.service.ListReviewsForUser(ctx, suite.labourID, 0, 0)

	suite.Require().NoError(err)
	suite.Len(resp.Reviews, 1)
}

func TestReviewServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReviewServiceTestSuite))
}
