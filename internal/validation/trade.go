package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MaxTradeTitleLength       = 200
	MaxTradeDescriptionLength = 2000
	MaxTradeImages            = 10
	MaxTradeTags              = 20
	MaxTradeTagLength         = 50
	MaxTradeCategoryLength    = 100
	MaxTradeLocationLength    = 200
	MaxTradeMessageLength     = 1000
)

// TradePostInput is the normalized form of a create-post payload.
type TradePostInput struct {
	Title       string
	Description string
	Images      []string
	Category    string
	Tags        []string
	Location    string
}

// NormalizeTradePost trims every field, drops blank images and tags, and
// checks required fields and limits. Lengths are counted in runes.
func NormalizeTradePost(in TradePostInput) (TradePostInput, error) {
	out := TradePostInput{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Category:    strings.TrimSpace(in.Category),
		Location:    strings.TrimSpace(in.Location),
		Images:      compact(in.Images),
		Tags:        compact(in.Tags),
	}

	switch {
	case out.Title == "" || out.Description == "":
		return out, fmt.Errorf("title and description are required")
	case utf8.RuneCountInString(out.Title) > MaxTradeTitleLength:
		return out, fmt.Errorf("title must not exceed %d characters", MaxTradeTitleLength)
	case utf8.RuneCountInString(out.Description) > MaxTradeDescriptionLength:
		return out, fmt.Errorf("description must not exceed %d characters", MaxTradeDescriptionLength)
	case len(out.Images) > MaxTradeImages:
		return out, fmt.Errorf("a post can have at most %d images", MaxTradeImages)
	case len(out.Tags) > MaxTradeTags:
		return out, fmt.Errorf("a post can have at most %d tags", MaxTradeTags)
	case utf8.RuneCountInString(out.Category) > MaxTradeCategoryLength:
		return out, fmt.Errorf("category must not exceed %d characters", MaxTradeCategoryLength)
	case utf8.RuneCountInString(out.Location) > MaxTradeLocationLength:
		return out, fmt.Errorf("location must not exceed %d characters", MaxTradeLocationLength)
	}
	for _, tag := range out.Tags {
		if utf8.RuneCountInString(tag) > MaxTradeTagLength {
			return out, fmt.Errorf("tags must not exceed %d characters", MaxTradeTagLength)
		}
	}
	return out, nil
}

// ValidateTradeMessage trims msg and checks its length.
func ValidateTradeMessage(msg string) (string, error) {
	msg = strings.TrimSpace(msg)
	if utf8.RuneCountInString(msg) > MaxTradeMessageLength {
		return msg, fmt.Errorf("message must not exceed %d characters", MaxTradeMessageLength)
	}
	return msg, nil
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
