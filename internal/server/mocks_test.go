package server

import (
	"context"

	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/models"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/repository"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock of the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockTradePostRepository is a mock of the TradePostRepository interface
type MockTradePostRepository struct {
	mock.Mock
}

func (m *MockTradePostRepository) Create(ctx context.Context, post *models.TradePost) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockTradePostRepository) GetByID(ctx context.Context, id uint) (*models.TradePost, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TradePost), args.Error(1)
}

func (m *MockTradePostRepository) List(ctx context.Context, filter repository.TradePostFilter) ([]models.TradePost, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.TradePost), args.Get(1).(int64), args.Error(2)
}

func (m *MockTradePostRepository) ListByOwner(ctx context.Context, ownerID uint) ([]models.TradePost, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]models.TradePost), args.Error(1)
}

func (m *MockTradePostRepository) Delete(ctx context.Context, id, ownerID uint) error {
	args := m.Called(ctx, id, ownerID)
	return args.Error(0)
}

// MockTradeRequestRepository is a mock of the TradeRequestRepository interface
type MockTradeRequestRepository struct {
	mock.Mock
}

func (m *MockTradeRequestRepository) CreatePending(ctx context.Context, req *models.TradeRequest, rule repository.PendingRule) error {
	args := m.Called(ctx, req, rule)
	return args.Error(0)
}

func (m *MockTradeRequestRepository) GetByID(ctx context.Context, id uint) (*models.TradeRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TradeRequest), args.Error(1)
}

func (m *MockTradeRequestRepository) ListIncoming(ctx context.Context, toUserID uint, limit, offset int) ([]models.TradeRequest, int64, error) {
	args := m.Called(ctx, toUserID, limit, offset)
	return args.Get(0).([]models.TradeRequest), args.Get(1).(int64), args.Error(2)
}

func (m *MockTradeRequestRepository) ListOutgoing(ctx context.Context, fromUserID uint) ([]models.TradeRequest, error) {
	args := m.Called(ctx, fromUserID)
	return args.Get(0).([]models.TradeRequest), args.Error(1)
}

func (m *MockTradeRequestRepository) CountPending(ctx context.Context, toUserID uint) (int64, error) {
	args := m.Called(ctx, toUserID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTradeRequestRepository) CountAllPending(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTradeRequestRepository) Transition(ctx context.Context, id uint, to models.TradeRequestStatus) error {
	args := m.Called(ctx, id, to)
	return args.Error(0)
}

func (m *MockTradeRequestRepository) MarkRead(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
