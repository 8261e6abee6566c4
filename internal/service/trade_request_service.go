package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/featureflags"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/models"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/notifications"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/observability"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/repository"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultPendingRequestLimit  = 5
	DefaultPendingRequestWindow = 24 * time.Hour
)

// TradeRequestRules bounds how many pending requests a user may hold for one
// post within Window.
type TradeRequestRules struct {
	PendingLimit int
	Window       time.Duration
}

// DefaultTradeRequestRules allows five pending requests per post per day.
func DefaultTradeRequestRules() TradeRequestRules {
	return TradeRequestRules{PendingLimit: DefaultPendingRequestLimit, Window: DefaultPendingRequestWindow}
}

// TradeRequestService provides trade request business logic.
type TradeRequestService struct {
	requests      repository.TradeRequestRepository
	posts         repository.TradePostRepository
	conversations ConversationCreator
	events        tradeEvents
	rules         TradeRequestRules
	now           func() time.Time
}

// NewTradeRequestService returns a new TradeRequestService. publisher may be
// nil to disable notifications.
func NewTradeRequestService(
	requests repository.TradeRequestRepository,
	posts repository.TradePostRepository,
	publisher EventPublisher,
	flags *featureflags.Manager,
	rules TradeRequestRules,
) *TradeRequestService {
	if rules.Window <= 0 {
		rules.Window = DefaultPendingRequestWindow
	}
	return &TradeRequestService{
		requests:      requests,
		posts:         posts,
		conversations: NoopConversationCreator{},
		events:        tradeEvents{publisher: publisher, flags: flags},
		rules:         rules,
		now:           time.Now,
	}
}

// SetConversationCreator replaces the creator used on accept.
func (s *TradeRequestService) SetConversationCreator(c ConversationCreator) {
	if c != nil {
		s.conversations = c
	}
}

type CreateTradeRequestInput struct {
	PostID     uint
	FromUserID uint
	Message    string
}

// Create sends a trade request for a post to the post's owner.
func (s *TradeRequestService) Create(ctx context.Context, in CreateTradeRequestInput) (req *models.TradeRequest, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "TradeRequestService", "Create",
		attribute.Int64("trade_post.id", int64(in.PostID)),
		attribute.Int64("user.id", int64(in.FromUserID)))
	defer func() { observability.EndSpan(span, err) }()

	if in.PostID == 0 {
		return nil, models.NewValidationError("Post ID is required")
	}
	message, err := validation.ValidateTradeMessage(in.Message)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	post, err := s.posts.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}

	req = &models.TradeRequest{
		PostID:     post.ID,
		FromUserID: in.FromUserID,
		ToUserID:   post.CreatedBy,
		Message:    message,
	}
	rule := repository.PendingRule{
		Limit: s.rules.PendingLimit,
		Since: s.now().Add(-s.rules.Window),
	}
	if err := s.requests.CreatePending(ctx, req, rule); err != nil {
		switch {
		case models.IsCode(err, models.CodeRateLimited):
			observability.TradeRequestsRejected.WithLabelValues("rate_limited").Inc()
		case models.IsCode(err, models.CodeConflict):
			observability.TradeRequestsRejected.WithLabelValues("duplicate").Inc()
		}
		return nil, err
	}

	observability.TradeRequestsCreated.Inc()
	s.events.send(ctx, req.ToUserID, notifications.EventTradeRequestReceived, req)
	return req, nil
}

// ListIncoming returns one page of pending requests addressed to userID.
func (s *TradeRequestService) ListIncoming(ctx context.Context, userID uint, page, limit int) ([]models.TradeRequest, models.PageMeta, error) {
	page, limit, offset := models.ClampPage(page, limit)
	requests, total, err := s.requests.ListIncoming(ctx, userID, limit, offset)
	if err != nil {
		return nil, models.PageMeta{}, err
	}
	return requests, models.NewPageMeta(page, limit, total), nil
}

// ListOutgoing returns every request userID has sent, in any status.
func (s *TradeRequestService) ListOutgoing(ctx context.Context, userID uint) ([]models.TradeRequest, error) {
	return s.requests.ListOutgoing(ctx, userID)
}

// PendingCount returns how many requests await userID's decision.
func (s *TradeRequestService) PendingCount(ctx context.Context, userID uint) (int64, error) {
	return s.requests.CountPending(ctx, userID)
}

// Accept marks a pending request accepted and asks the conversation creator
// to connect both users. The returned conversation ID may be nil.
func (s *TradeRequestService) Accept(ctx context.Context, id, userID uint) (*models.TradeRequest, *uint, error) {
	req, err := s.decide(ctx, id, userID, models.TradeRequestStatusAccepted)
	if err != nil {
		return nil, nil, err
	}

	conversationID, err := s.conversations.CreateForTrade(ctx, req)
	if err != nil {
		observability.GlobalLogger.WarnContext(ctx, "failed to create trade conversation",
			slog.Uint64("request_id", uint64(req.ID)),
			slog.String("error", err.Error()),
		)
		conversationID = nil
	}

	s.events.send(ctx, req.FromUserID, notifications.EventTradeRequestAccepted, req)
	return req, conversationID, nil
}

// Decline marks a pending request rejected.
func (s *TradeRequestService) Decline(ctx context.Context, id, userID uint) (*models.TradeRequest, error) {
	req, err := s.decide(ctx, id, userID, models.TradeRequestStatusRejected)
	if err != nil {
		return nil, err
	}
	s.events.send(ctx, req.FromUserID, notifications.EventTradeRequestDeclined, req)
	return req, nil
}

// MarkRead flags a request as seen by its recipient.
func (s *TradeRequestService) MarkRead(ctx context.Context, id, userID uint) (*models.TradeRequest, error) {
	req, err := s.ownedByRecipient(ctx, id, userID, "update")
	if err != nil {
		return nil, err
	}
	if req.Read {
		return req, nil
	}
	if err := s.requests.MarkRead(ctx, id); err != nil {
		return nil, err
	}
	req.Read = true
	return req, nil
}

// decide runs the shared accept/decline guards: existence, then recipient,
// then pending status. The status change itself is conditional in the
// repository, so a concurrent decision reports "already processed".
func (s *TradeRequestService) decide(ctx context.Context, id, userID uint, to models.TradeRequestStatus) (req *models.TradeRequest, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "TradeRequestService", "Decide",
		attribute.Int64("trade_request.id", int64(id)),
		attribute.String("trade_request.status", string(to)))
	defer func() { observability.EndSpan(span, err) }()

	verb := "accept"
	if to == models.TradeRequestStatusRejected {
		verb = "decline"
	}
	req, err = s.ownedByRecipient(ctx, id, userID, verb)
	if err != nil {
		return nil, err
	}
	if req.Status != models.TradeRequestStatusPending {
		return nil, models.NewConflictError(models.MsgRequestAlreadyProcessed)
	}
	if err := s.requests.Transition(ctx, id, to); err != nil {
		return nil, err
	}

	req.Status = to
	req.UpdatedAt = s.now()
	observability.TradeRequestTransitions.WithLabelValues(string(to)).Inc()
	return req, nil
}

func (s *TradeRequestService) ownedByRecipient(ctx context.Context, id, userID uint, verb string) (*models.TradeRequest, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.ToUserID != userID {
		return nil, models.NewForbiddenError("Not authorized to " + verb + " this request")
	}
	return req, nil
}
