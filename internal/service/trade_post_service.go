package service

import (
	"context"

	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/featureflags"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/models"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/observability"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/repository"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// ImageNormalizer rewrites inline post images into stored files.
type ImageNormalizer interface {
	Normalize(ctx context.Context, userID uint, images []string) ([]string, error)
}

// TradePostService provides trade post business logic.
type TradePostService struct {
	posts  repository.TradePostRepository
	images ImageNormalizer
	flags  *featureflags.Manager
}

// NewTradePostService returns a new TradePostService. images may be nil, in
// which case images are always stored as given.
func NewTradePostService(posts repository.TradePostRepository, images ImageNormalizer, flags *featureflags.Manager) *TradePostService {
	return &TradePostService{posts: posts, images: images, flags: flags}
}

type CreateTradePostInput struct {
	UserID      uint
	Title       string
	Description string
	Images      []string
	Category    string
	Tags        []string
	Location    string
}

type ListTradePostsInput struct {
	Page     int
	Limit    int
	Category string
	Tag      string
	Search   string
}

// Create validates the input and stores a post owned by in.UserID.
func (s *TradePostService) Create(ctx context.Context, in CreateTradePostInput) (post *models.TradePost, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "TradePostService", "Create",
		attribute.Int64("user.id", int64(in.UserID)))
	defer func() { observability.EndSpan(span, err) }()

	clean, err := validation.NormalizeTradePost(validation.TradePostInput{
		Title:       in.Title,
		Description: in.Description,
		Images:      in.Images,
		Category:    in.Category,
		Tags:        in.Tags,
		Location:    in.Location,
	})
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	images := clean.Images
	if s.images != nil && len(images) > 0 && s.flags.Enabled(featureflags.TradeImageProcessing, in.UserID) {
		if images, err = s.images.Normalize(ctx, in.UserID, images); err != nil {
			return nil, err
		}
	}

	category := clean.Category
	if category == "" {
		category = models.DefaultTradeCategory
	}

	post = &models.TradePost{
		Title:       clean.Title,
		Description: clean.Description,
		Images:      models.StringList(images),
		Category:    category,
		Tags:        models.StringList(clean.Tags),
		Location:    clean.Location,
		CreatedBy:   in.UserID,
		IsActive:    true,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	observability.TradePostsCreated.Inc()
	return post, nil
}

// List returns one page of active posts, newest first.
func (s *TradePostService) List(ctx context.Context, in ListTradePostsInput) ([]models.TradePost, models.PageMeta, error) {
	page, limit, offset := models.ClampPage(in.Page, in.Limit)
	posts, total, err := s.posts.List(ctx, repository.TradePostFilter{
		Category: in.Category,
		Tag:      in.Tag,
		Search:   in.Search,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return nil, models.PageMeta{}, err
	}
	return posts, models.NewPageMeta(page, limit, total), nil
}

// ListByOwner returns every post created by userID, newest first.
func (s *TradePostService) ListByOwner(ctx context.Context, userID uint) ([]models.TradePost, error) {
	return s.posts.ListByOwner(ctx, userID)
}

func (s *TradePostService) Get(ctx context.Context, id uint) (*models.TradePost, error) {
	return s.posts.GetByID(ctx, id)
}

// Delete removes a post. Only the owner may delete; requests for the post go
// with it.
func (s *TradePostService) Delete(ctx context.Context, id, userID uint) (err error) {
	ctx, span := observability.StartServiceSpan(ctx, "TradePostService", "Delete",
		attribute.Int64("trade_post.id", int64(id)),
		attribute.Int64("user.id", int64(userID)))
	defer func() { observability.EndSpan(span, err) }()

	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if post.CreatedBy != userID {
		return models.NewForbiddenError("Not authorized to delete this post")
	}
	if err := s.posts.Delete(ctx, id, userID); err != nil {
		return err
	}
	observability.TradePostsDeleted.Inc()
	return nil
}
