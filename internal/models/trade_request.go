package models

import (
	"time"
)

// TradeRequestStatus represents where a trade request is in its lifecycle.
type TradeRequestStatus string

const (
	// TradeRequestStatusPending is the initial state of every request.
	TradeRequestStatusPending TradeRequestStatus = "pending"
	// TradeRequestStatusAccepted is terminal.
	TradeRequestStatusAccepted TradeRequestStatus = "accepted"
	// TradeRequestStatusRejected is terminal.
	TradeRequestStatusRejected TradeRequestStatus = "rejected"
)

// Client-facing messages for trade request rule violations.
const (
	MsgDuplicatePendingRequest = "You already have a pending request for this post"
	MsgTradeRequestRateLimited = "Too many trade requests for this post. Please try again later"
	MsgRequestAlreadyProcessed = "Request already processed"
)

// IsTerminal reports whether no further transition is allowed.
func (s TradeRequestStatus) IsTerminal() bool {
	return s == TradeRequestStatusAccepted || s == TradeRequestStatusRejected
}

// TradeRequest is an offer from one user to trade for another user's post.
type TradeRequest struct {
	ID         uint               `gorm:"primaryKey" json:"id"`
	PostID     uint               `gorm:"not null;index:idx_trade_requests_post_from,priority:1" json:"postId"`
	FromUserID uint               `gorm:"not null;index:idx_trade_requests_post_from,priority:2;index:idx_trade_requests_from_created,priority:1" json:"fromUserId"`
	ToUserID   uint               `gorm:"not null;index:idx_trade_requests_to_status,priority:1" json:"toUserId"`
	Message    string             `gorm:"size:1000;not null;default:''" json:"message"`
	Status     TradeRequestStatus `gorm:"type:varchar(20);not null;default:'pending';index:idx_trade_requests_to_status,priority:2" json:"status"`
	Read       bool               `gorm:"not null;default:false" json:"read"`
	CreatedAt  time.Time          `gorm:"index:idx_trade_requests_from_created,priority:2" json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`

	// Relationships
	Post     *TradePost `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	FromUser *User      `gorm:"foreignKey:FromUserID;constraint:OnDelete:CASCADE" json:"-"`
	ToUser   *User      `gorm:"foreignKey:ToUserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (TradeRequest) TableName() string {
	return "trade_requests"
}

// TradeRequestView is the API representation of a request with the
// counterpart profiles and post summary denormalized in.
type TradeRequestView struct {
	ID         uint               `json:"id"`
	PostID     uint               `json:"postId"`
	FromUserID uint               `json:"fromUserId"`
	ToUserID   uint               `json:"toUserId"`
	Message    string             `json:"message"`
	Status     TradeRequestStatus `json:"status"`
	Read       bool               `json:"read"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
	FromUser   *UserSummary       `json:"fromUser,omitempty"`
	ToUser     *UserSummary       `json:"toUser,omitempty"`
	Post       *PostSummary       `json:"post,omitempty"`
}

// View builds the API representation from whatever associations are preloaded.
func (r *TradeRequest) View() TradeRequestView {
	return TradeRequestView{
		ID:         r.ID,
		PostID:     r.PostID,
		FromUserID: r.FromUserID,
		ToUserID:   r.ToUserID,
		Message:    r.Message,
		Status:     r.Status,
		Read:       r.Read,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
		FromUser:   r.FromUser.Summary(),
		ToUser:     r.ToUser.Summary(),
		Post:       r.Post.Summary(),
	}
}

// TradeRequestViews maps a slice of requests to their API representation.
func TradeRequestViews(requests []TradeRequest) []TradeRequestView {
	out := make([]TradeRequestView, 0, len(requests))
	for i := range requests {
		out = append(out, requests[i].View())
	}
	return out
}
