package models

import (
	"time"
)

// DefaultTradeCategory is applied when a post is created without a category.
const DefaultTradeCategory = "general"

// TradePost is an item a user offers for barter.
type TradePost struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Description string     `gorm:"type:text;not null" json:"description"`
	Images      StringList `json:"images"`
	Category    string     `gorm:"size:100;not null;default:'general';index:idx_trade_posts_category" json:"category"`
	Tags        StringList `json:"tags"`
	Location    string     `gorm:"size:200" json:"location"`
	CreatedBy   uint       `gorm:"not null;index:idx_trade_posts_created_by" json:"createdBy"`
	IsActive    bool       `gorm:"not null;default:true;index:idx_trade_posts_active_created,priority:1" json:"isActive"`
	CreatedAt   time.Time  `gorm:"index:idx_trade_posts_active_created,priority:2" json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	// Relationships
	Owner *User `gorm:"foreignKey:CreatedBy;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

// TableName specifies the table name for GORM
func (TradePost) TableName() string {
	return "trade_posts"
}

// PostSummary is the slice of a post attached to trade requests.
type PostSummary struct {
	ID     uint       `json:"id"`
	Title  string     `json:"title"`
	Images StringList `json:"images"`
}

// Summary projects the post to the fields shown alongside a request.
func (p *TradePost) Summary() *PostSummary {
	if p == nil || p.ID == 0 {
		return nil
	}
	images := p.Images
	if images == nil {
		images = StringList{}
	}
	return &PostSummary{ID: p.ID, Title: p.Title, Images: images}
}

// TradePostView is the API representation of a post with its owner profile.
type TradePostView struct {
	ID          uint         `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Images      StringList   `json:"images"`
	Category    string       `json:"category"`
	Tags        StringList   `json:"tags"`
	Location    string       `json:"location"`
	CreatedBy   uint         `json:"createdBy"`
	IsActive    bool         `json:"isActive"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	User        *UserSummary `json:"user"`
}

// View builds the API representation. Owner must be preloaded for User to be set.
func (p *TradePost) View() TradePostView {
	images, tags := p.Images, p.Tags
	if images == nil {
		images = StringList{}
	}
	if tags == nil {
		tags = StringList{}
	}
	return TradePostView{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Images:      images,
		Category:    p.Category,
		Tags:        tags,
		Location:    p.Location,
		CreatedBy:   p.CreatedBy,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		User:        p.Owner.Summary(),
	}
}

// TradePostViews maps a slice of posts to their API representation.
func TradePostViews(posts []TradePost) []TradePostView {
	out := make([]TradePostView, 0, len(posts))
	for i := range posts {
		out = append(out, posts[i].View())
	}
	return out
}
