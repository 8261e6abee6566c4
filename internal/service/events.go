package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/featureflags"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/models"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/notifications"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/observability"
)

const publishTimeout = 2 * time.Second

// EventPublisher delivers an event to one user. *notifications.Notifier
// satisfies it.
type EventPublisher interface {
	PublishEvent(ctx context.Context, userID uint, ev notifications.Event) error
}

// tradeEvents sends trade request events when the trade_notifications flag
// is on for the recipient. Delivery is best effort.
type tradeEvents struct {
	publisher EventPublisher
	flags     *featureflags.Manager
}

func (e tradeEvents) send(ctx context.Context, recipientID uint, eventType string, req *models.TradeRequest) {
	if e.publisher == nil || !e.flags.Enabled(featureflags.TradeNotifications, recipientID) {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := e.publisher.PublishEvent(ctx, recipientID, notifications.TradeRequestEvent(eventType, req)); err != nil {
		observability.GlobalLogger.WarnContext(ctx, "failed to publish trade event",
			slog.String("type", eventType),
			slog.Uint64("request_id", uint64(req.ID)),
			slog.Uint64("recipient_id", uint64(recipientID)),
			slog.String("error", err.Error()),
		)
	}
}
