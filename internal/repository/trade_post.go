package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/models"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/observability"

	"gorm.io/gorm"
)

// TradePostFilter narrows the public post listing. Empty fields do not filter.
type TradePostFilter struct {
	Category string
	Tag      string
	Search   string
	Limit    int
	Offset   int
}

// TradePostRepository defines persistence operations for trade posts.
type TradePostRepository interface {
	Create(ctx context.Context, post *models.TradePost) error
	GetByID(ctx context.Context, id uint) (*models.TradePost, error)
	List(ctx context.Context, filter TradePostFilter) ([]models.TradePost, int64, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]models.TradePost, error)
	Delete(ctx context.Context, id, ownerID uint) error
}

type tradePostRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewTradePostRepository returns a new TradePostRepository implementation.
func NewTradePostRepository(db *gorm.DB) TradePostRepository {
	return &tradePostRepository{db: db, log: observability.NewRepoLogger("trade_posts")}
}

func withOwner(db *gorm.DB) *gorm.DB {
	return db.Preload("Owner", func(tx *gorm.DB) *gorm.DB {
		return tx.Select("id", "username", "avatar")
	})
}

// Create inserts the post and loads its owner profile onto it.
func (r *tradePostRepository) Create(ctx context.Context, post *models.TradePost) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit("Owner").Create(post).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	var owner models.User
	if err := db.Select("id", "username", "avatar").First(&owner, post.CreatedBy).Error; err == nil {
		post.Owner = &owner
	}
	r.log.LogCreate(ctx, map[string]interface{}{"post_id": post.ID, "created_by": post.CreatedBy})
	return nil
}

func (r *tradePostRepository) GetByID(ctx context.Context, id uint) (*models.TradePost, error) {
	var post models.TradePost
	if err := withOwner(readDB(r.db).WithContext(ctx)).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Trade post", nil)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

// List returns one page of active posts, newest first, and the total match count.
func (r *tradePostRepository) List(ctx context.Context, filter TradePostFilter) ([]models.TradePost, int64, error) {
	query := readDB(r.db).WithContext(ctx).Model(&models.TradePost{}).Where("is_active = ?", true)

	if category := strings.TrimSpace(filter.Category); category != "" {
		query = query.Where("category = ?", category)
	}
	if tag := strings.TrimSpace(filter.Tag); tag != "" {
		// Tags are stored as a JSON array; match the quoted element.
		encoded, _ := json.Marshal(tag)
		query = query.Where(`tags LIKE ? ESCAPE '\'`, "%"+escapeLike(string(encoded))+"%")
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
		query = query.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, pattern, pattern)
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var posts []models.TradePost
	if err := withOwner(query).
		Order("created_at DESC").
		Order("id DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&posts).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return posts, total, nil
}

// ListByOwner returns every post of the owner, newest first.
func (r *tradePostRepository) ListByOwner(ctx context.Context, ownerID uint) ([]models.TradePost, error) {
	var posts []models.TradePost
	if err := withOwner(readDB(r.db).WithContext(ctx)).
		Where("created_by = ?", ownerID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// Delete removes the post only if ownerID still owns it.
func (r *tradePostRepository) Delete(ctx context.Context, id, ownerID uint) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND created_by = ?", id, ownerID).
		Delete(&models.TradePost{})
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "delete")
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Trade post", nil)
	}
	r.log.LogDelete(ctx, map[string]interface{}{"post_id": id, "created_by": ownerID})
	return nil
}
