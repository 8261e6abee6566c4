package service

import (
	"context"

	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/models"
)

// ConversationCreator opens a conversation between the two parties of an
// accepted trade request and returns its ID. A nil ID means no conversation
// was created.
type ConversationCreator interface {
	CreateForTrade(ctx context.Context, req *models.TradeRequest) (*uint, error)
}

// NoopConversationCreator is used until a messaging backend is wired in.
type NoopConversationCreator struct{}

func (NoopConversationCreator) CreateForTrade(context.Context, *models.TradeRequest) (*uint, error) {
	return nil, nil
}
