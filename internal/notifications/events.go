package notifications

import (
	"time"

	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/models"
)

// Trade event types pushed to users.
const (
	EventTradeRequestReceived = "trade_request_received"
	EventTradeRequestAccepted = "trade_request_accepted"
	EventTradeRequestDeclined = "trade_request_declined"
	EventMessagesDropped      = "messages_dropped"
)

// Event is the envelope written to user channels and websocket clients.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	SentAt  time.Time   `json:"sentAt"`
}

// TradeRequestEvent builds the event announcing a request change.
func TradeRequestEvent(eventType string, req *models.TradeRequest) Event {
	return Event{
		Type:    eventType,
		Payload: req.View(),
		SentAt:  time.Now().UTC(),
	}
}
