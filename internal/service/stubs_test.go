package service

import (
	"context"

	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/models"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/notifications"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/repository"
)

type tradePostRepoStub struct {
	createFn      func(context.Context, *models.TradePost) error
	getByIDFn     func(context.Context, uint) (*models.TradePost, error)
	listFn        func(context.Context, repository.TradePostFilter) ([]models.TradePost, int64, error)
	listByOwnerFn func(context.Context, uint) ([]models.TradePost, error)
	deleteFn      func(context.Context, uint, uint) error
}

func (s *tradePostRepoStub) Create(ctx context.Context, post *models.TradePost) error {
	return s.createFn(ctx, post)
}
func (s *tradePostRepoStub) GetByID(ctx context.Context, id uint) (*models.TradePost, error) {
	return s.getByIDFn(ctx, id)
}
func (s *tradePostRepoStub) List(ctx context.Context, filter repository.TradePostFilter) ([]models.TradePost, int64, error) {
	return s.listFn(ctx, filter)
}
func (s *tradePostRepoStub) ListByOwner(ctx context.Context, ownerID uint) ([]models.TradePost, error) {
	return s.listByOwnerFn(ctx, ownerID)
}
func (s *tradePostRepoStub) Delete(ctx context.Context, id, ownerID uint) error {
	return s.deleteFn(ctx, id, ownerID)
}

func noopTradePostRepo() *tradePostRepoStub {
	return &tradePostRepoStub{
		createFn: func(context.Context, *models.TradePost) error { return nil },
		getByIDFn: func(context.Context, uint) (*models.TradePost, error) {
			return nil, models.NewNotFoundError("Trade post", nil)
		},
		listFn: func(context.Context, repository.TradePostFilter) ([]models.TradePost, int64, error) {
			return nil, 0, nil
		},
		listByOwnerFn: func(context.Context, uint) ([]models.TradePost, error) { return nil, nil },
		deleteFn:      func(context.Context, uint, uint) error { return nil },
	}
}

type tradeRequestRepoStub struct {
	createPendingFn   func(context.Context, *models.TradeRequest, repository.PendingRule) error
	getByIDFn         func(context.Context, uint) (*models.TradeRequest, error)
	listIncomingFn    func(context.Context, uint, int, int) ([]models.TradeRequest, int64, error)
	listOutgoingFn    func(context.Context, uint) ([]models.TradeRequest, error)
	countPendingFn    func(context.Context, uint) (int64, error)
	countAllPendingFn func(context.Context) (int64, error)
	transitionFn      func(context.Context, uint, models.TradeRequestStatus) error
	markReadFn        func(context.Context, uint) error
}

func (s *tradeRequestRepoStub) CreatePending(ctx context.Context, req *models.TradeRequest, rule repository.PendingRule) error {
	return s.createPendingFn(ctx, req, rule)
}
func (s *tradeRequestRepoStub) GetByID(ctx context.Context, id uint) (*models.TradeRequest, error) {
	return s.getByIDFn(ctx, id)
}
func (s *tradeRequestRepoStub) ListIncoming(ctx context.Context, toUserID uint, limit, offset int) ([]models.TradeRequest, int64, error) {
	return s.listIncomingFn(ctx, toUserID, limit, offset)
}
func (s *tradeRequestRepoStub) ListOutgoing(ctx context.Context, fromUserID uint) ([]models.TradeRequest, error) {
	return s.listOutgoingFn(ctx, fromUserID)
}
func (s *tradeRequestRepoStub) CountPending(ctx context.Context, toUserID uint) (int64, error) {
	return s.countPendingFn(ctx, toUserID)
}
func (s *tradeRequestRepoStub) CountAllPending(ctx context.Context) (int64, error) {
	return s.countAllPendingFn(ctx)
}
func (s *tradeRequestRepoStub) Transition(ctx context.Context, id uint, to models.TradeRequestStatus) error {
	return s.transitionFn(ctx, id, to)
}
func (s *tradeRequestRepoStub) MarkRead(ctx context.Context, id uint) error {
	return s.markReadFn(ctx, id)
}

func noopTradeRequestRepo() *tradeRequestRepoStub {
	return &tradeRequestRepoStub{
		createPendingFn: func(_ context.Context, req *models.TradeRequest, _ repository.PendingRule) error {
			req.ID = 1
			req.Status = models.TradeRequestStatusPending
			return nil
		},
		getByIDFn: func(context.Context, uint) (*models.TradeRequest, error) {
			return nil, models.NewNotFoundError("Trade request", nil)
		},
		listIncomingFn: func(context.Context, uint, int, int) ([]models.TradeRequest, int64, error) {
			return nil, 0, nil
		},
		listOutgoingFn:    func(context.Context, uint) ([]models.TradeRequest, error) { return nil, nil },
		countPendingFn:    func(context.Context, uint) (int64, error) { return 0, nil },
		countAllPendingFn: func(context.Context) (int64, error) { return 0, nil },
		transitionFn:      func(context.Context, uint, models.TradeRequestStatus) error { return nil },
		markReadFn:        func(context.Context, uint) error { return nil },
	}
}

type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(context.Context, uint) (*models.User, error) {
			return nil, models.NewNotFoundError("User", nil)
		},
		getByEmailFn:    func(context.Context, string) (*models.User, error) { return nil, nil },
		getByUsernameFn: func(context.Context, string) (*models.User, error) { return nil, nil },
		createFn:        func(context.Context, *models.User) error { return nil },
	}
}

type publishedEvent struct {
	userID uint
	event  notifications.Event
}

type publisherStub struct {
	events []publishedEvent
	err    error
}

func (p *publisherStub) PublishEvent(_ context.Context, userID uint, ev notifications.Event) error {
	p.events = append(p.events, publishedEvent{userID: userID, event: ev})
	return p.err
}

type imageNormalizerStub struct {
	calls int
	fn    func([]string) ([]string, error)
}

func (s *imageNormalizerStub) Normalize(_ context.Context, _ uint, images []string) ([]string, error) {
	s.calls++
	return s.fn(images)
}

type conversationCreatorStub struct {
	id  *uint
	err error
}

func (s conversationCreatorStub) CreateForTrade(context.Context, *models.TradeRequest) (*uint, error) {
	return s.id, s.err
}
