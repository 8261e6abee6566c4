package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/models"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PendingRule bounds how many pending requests one user may hold for a post
// within a window. Limit <= 0 disables the bound.
type PendingRule struct {
	Limit int
	Since time.Time
}

// TradeRequestRepository defines persistence operations for trade requests.
type TradeRequestRepository interface {
	CreatePending(ctx context.Context, req *models.TradeRequest, rule PendingRule) error
	GetByID(ctx context.Context, id uint) (*models.TradeRequest, error)
	ListIncoming(ctx context.Context, toUserID uint, limit, offset int) ([]models.TradeRequest, int64, error)
	ListOutgoing(ctx context.Context, fromUserID uint) ([]models.TradeRequest, error)
	CountPending(ctx context.Context, toUserID uint) (int64, error)
	CountAllPending(ctx context.Context) (int64, error)
	Transition(ctx context.Context, id uint, to models.TradeRequestStatus) error
	MarkRead(ctx context.Context, id uint) error
}

type tradeRequestRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewTradeRequestRepository returns a new TradeRequestRepository implementation.
func NewTradeRequestRepository(db *gorm.DB) TradeRequestRepository {
	return &tradeRequestRepository{db: db, log: observability.NewRepoLogger("trade_requests")}
}

func withParticipants(db *gorm.DB) *gorm.DB {
	profile := func(tx *gorm.DB) *gorm.DB {
		return tx.Select("id", "username", "avatar")
	}
	return db.
		Preload("FromUser", profile).
		Preload("ToUser", profile).
		Preload("Post", func(tx *gorm.DB) *gorm.DB {
			return tx.Select("id", "title", "images", "created_by")
		})
}

// CreatePending inserts req as pending after the rate-limit and duplicate
// checks. The post row is locked for the duration so concurrent creates for
// the same post run one after another (SQLite serializes writers instead).
// On success req is reloaded with its participants and post summary.
func (r *tradeRequestRepository) CreatePending(ctx context.Context, req *models.TradeRequest, rule PendingRule) error {
	req.Status = models.TradeRequestStatusPending

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lock := tx
		if tx.Dialector.Name() == "postgres" {
			lock = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var post models.TradePost
		if err := lock.
			Select("id", "created_by").
			First(&post, req.PostID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Trade post", nil)
			}
			return err
		}

		pending := tx.Model(&models.TradeRequest{}).
			Where("post_id = ? AND from_user_id = ? AND status = ?",
				req.PostID, req.FromUserID, models.TradeRequestStatusPending)

		if rule.Limit > 0 {
			var recent int64
			if err := pending.Session(&gorm.Session{}).
				Where("created_at >= ?", rule.Since).
				Count(&recent).Error; err != nil {
				return err
			}
			if recent >= int64(rule.Limit) {
				return models.NewRateLimitError(models.MsgTradeRequestRateLimited)
			}
		}

		var open int64
		if err := pending.Session(&gorm.Session{}).Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return models.NewConflictError(models.MsgDuplicatePendingRequest)
		}

		return tx.Omit(clause.Associations).Create(req).Error
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}

	r.log.LogCreate(ctx, map[string]interface{}{
		"request_id":   req.ID,
		"post_id":      req.PostID,
		"from_user_id": req.FromUserID,
	})

	if err := withParticipants(r.db.WithContext(ctx)).First(req, req.ID).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *tradeRequestRepository) GetByID(ctx context.Context, id uint) (*models.TradeRequest, error) {
	var req models.TradeRequest
	if err := withParticipants(r.db.WithContext(ctx)).First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Trade request", nil)
		}
		return nil, models.NewInternalError(err)
	}
	return &req, nil
}

// ListIncoming returns one page of pending requests addressed to toUserID,
// newest first, and the total pending count.
func (r *tradeRequestRepository) ListIncoming(ctx context.Context, toUserID uint, limit, offset int) ([]models.TradeRequest, int64, error) {
	query := readDB(r.db).WithContext(ctx).
		Model(&models.TradeRequest{}).
		Where("to_user_id = ? AND status = ?", toUserID, models.TradeRequestStatusPending).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var requests []models.TradeRequest
	if err := withParticipants(query).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&requests).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return requests, total, nil
}

// ListOutgoing returns every request sent by fromUserID, newest first.
func (r *tradeRequestRepository) ListOutgoing(ctx context.Context, fromUserID uint) ([]models.TradeRequest, error) {
	var requests []models.TradeRequest
	if err := withParticipants(readDB(r.db).WithContext(ctx)).
		Where("from_user_id = ?", fromUserID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&requests).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return requests, nil
}

func (r *tradeRequestRepository) CountPending(ctx context.Context, toUserID uint) (int64, error) {
	var count int64
	if err := readDB(r.db).WithContext(ctx).
		Model(&models.TradeRequest{}).
		Where("to_user_id = ? AND status = ?", toUserID, models.TradeRequestStatusPending).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// CountAllPending counts pending requests across all users.
func (r *tradeRequestRepository) CountAllPending(ctx context.Context) (int64, error) {
	var count int64
	if err := readDB(r.db).WithContext(ctx).
		Model(&models.TradeRequest{}).
		Where("status = ?", models.TradeRequestStatusPending).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// Transition moves a pending request to a terminal status. The update is
// conditional on the request still being pending, so two concurrent decisions
// cannot both succeed.
func (r *tradeRequestRepository) Transition(ctx context.Context, id uint, to models.TradeRequestStatus) error {
	if !to.IsTerminal() {
		return models.NewValidationError("Invalid target status")
	}
	res := r.db.WithContext(ctx).
		Model(&models.TradeRequest{}).
		Where("id = ? AND status = ?", id, models.TradeRequestStatusPending).
		Update("status", to)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "update")
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewConflictError(models.MsgRequestAlreadyProcessed)
	}
	r.log.LogUpdate(ctx, map[string]interface{}{"request_id": id, "status": to})
	return nil
}

func (r *tradeRequestRepository) MarkRead(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).
		Model(&models.TradeRequest{}).
		Where("id = ?", id).
		Update("read", true)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Trade request", nil)
	}
	return nil
}
