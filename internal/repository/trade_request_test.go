package repository

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/models"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dayRule(limit int) PendingRule {
	return PendingRule{Limit: limit, Since: time.Now().Add(-24 * time.Hour)}
}

func TestTradeRequestRepository_CreatePending(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewTradeRequestRepository(db)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "owner")
	buyer := testutil.CreateUser(t, db, "buyer")
	post := testutil.CreatePost(t, db, owner.ID, "Vintage Camera")

	req := &models.TradeRequest{PostID: post.ID, FromUserID: buyer.ID, ToUserID: owner.ID, Message: "Interested"}
	require.NoError(t, repo.CreatePending(ctx, req, dayRule(5)))
	assert.Equal(t, models.TradeRequestStatusPending, req.Status)
	require.NotNil(t, req.FromUser)
	assert.Equal(t, buyer.Username, req.FromUser.Username)
	require.NotNil(t, req.Post)
	assert.Equal(t, "Vintage Camera", req.Post.Title)

	t.Run("duplicate pending is a conflict", func(t *testing.T) {
		dup := &models.TradeRequest{PostID: post.ID, FromUserID: buyer.ID, ToUserID: owner.ID}
		err := repo.CreatePending(ctx, dup, dayRule(5))
		require.Error(t, err)
		assert.True(t, models.IsCode(err, models.CodeConflict))
		assert.Equal(t, models.MsgDuplicatePendingRequest, err.Error())
	})

	t.Run("allowed again once resolved", func(t *testing.T) {
		require.NoError(t, repo.Transition(ctx, req.ID, models.TradeRequestStatusAccepted))
		again := &models.TradeRequest{PostID: post.ID, FromUserID: buyer.ID, ToUserID: owner.ID}
		require.NoError(t, repo.CreatePending(ctx, again, dayRule(5)))
		assert.NotEqual(t, req.ID, again.ID)
	})

	t.Run("missing post", func(t *testing.T) {
		err := repo.CreatePending(ctx, &models.TradeRequest{PostID: 9999, FromUserID: buyer.ID, ToUserID: owner.ID}, dayRule(5))
		assert.True(t, models.IsCode(err, models.CodeNotFound))
	})
}

func TestTradeRequestRepository_CreatePendingConcurrent(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// SQLite has a single writer; queue transactions instead of failing them as locked.
	sqlDB.SetMaxOpenConns(1)

	repo := NewTradeRequestRepository(db)
	owner := testutil.CreateUser(t, db, "owner")
	buyer := testutil.CreateUser(t, db, "buyer")
	post := testutil.CreatePost(t, db, owner.ID, "Turntable")

	const attempts = 10
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		outcomes = map[string]int{}
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.CreatePending(context.Background(),
				&models.TradeRequest{PostID: post.ID, FromUserID: buyer.ID, ToUserID: owner.ID}, dayRule(5))

			key := "ok"
			if err != nil {
				key = err.Error()
				if appErr, ok := err.(*models.AppError); ok {
					key = appErr.Code
				}
			}
			mu.Lock()
			outcomes[key]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, map[string]int{"ok": 1, models.CodeConflict: attempts - 1}, outcomes)

	var pending int64
	require.NoError(t, db.Model(&models.TradeRequest{}).
		Where("post_id = ? AND from_user_id = ? AND status = ?", post.ID, buyer.ID, models.TradeRequestStatusPending).
		Count(&pending).Error)
	assert.Equal(t, int64(1), pending)
}

func TestTradeRequestRepository_RateLimit(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewTradeRequestRepository(db)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "owner")
	buyer := testutil.CreateUser(t, db, "buyer")
	post := testutil.CreatePost(t, db, owner.ID, "Bike")

	for i := 0; i < 5; i++ {
		testutil.CreateRequest(t, db, post, buyer.ID, models.TradeRequestStatusPending, time.Now().Add(-time.Duration(i)*time.Hour))
	}

	err := repo.CreatePending(ctx, &models.TradeRequest{PostID: post.ID, FromUserID: buyer.ID, ToUserID: owner.ID}, dayRule(5))
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeRateLimited), "rate limit is checked before the duplicate rule")

	var count int64
	require.NoError(t, db.Model(&models.TradeRequest{}).Where("post_id = ?", post.ID).Count(&count).Error)
	assert.Equal(t, int64(5), count, "nothing is written when rate limited")
}

func TestTradeRequestRepository_RateLimitWindow(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewTradeRequestRepository(db)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "owner")
	buyer := testutil.CreateUser(t, db, "buyer")
	post := testutil.CreatePost(t, db, owner.ID, "Lamp")

	for i := 0; i < 5; i++ {
		testutil.CreateRequest(t, db, post, buyer.ID, models.TradeRequestStatusPending, time.Now().Add(-48*time.Hour))
	}

	err := repo.CreatePending(ctx, &models.TradeRequest{PostID: post.ID, FromUserID: buyer.ID, ToUserID: owner.ID}, dayRule(5))
	assert.True(t, models.IsCode(err, models.CodeConflict), "old pending rows fall outside the window but still block as duplicates")
}

func TestTradeRequestRepository_Transition(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewTradeRequestRepository(db)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "owner")
	buyer := testutil.CreateUser(t, db, "buyer")
	post := testutil.CreatePost(t, db, owner.ID, "Guitar")
	req := testutil.CreateRequest(t, db, post, buyer.ID, models.TradeRequestStatusPending, time.Now())

	require.NoError(t, repo.Transition(ctx, req.ID, models.TradeRequestStatusRejected))

	err := repo.Transition(ctx, req.ID, models.TradeRequestStatusAccepted)
	assert.True(t, models.IsCode(err, models.CodeConflict))
	assert.Equal(t, models.MsgRequestAlreadyProcessed, err.Error())

	got, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TradeRequestStatusRejected, got.Status, "terminal status is never overwritten")

	err = repo.Transition(ctx, req.ID, models.TradeRequestStatusPending)
	assert.True(t, models.IsCode(err, models.CodeValidation))
}

func TestTradeRequestRepository_Listings(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewTradeRequestRepository(db)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "owner")
	buyerA := testutil.CreateUser(t, db, "buyer_a")
	buyerB := testutil.CreateUser(t, db, "buyer_b")
	post1 := testutil.CreatePost(t, db, owner.ID, "Camera")
	post2 := testutil.CreatePost(t, db, owner.ID, "Lens")

	now := time.Now()
	r1 := testutil.CreateRequest(t, db, post1, buyerA.ID, models.TradeRequestStatusPending, now.Add(-3*time.Minute))
	r2 := testutil.CreateRequest(t, db, post2, buyerA.ID, models.TradeRequestStatusPending, now.Add(-2*time.Minute))
	r3 := testutil.CreateRequest(t, db, post1, buyerB.ID, models.TradeRequestStatusPending, now.Add(-time.Minute))
	require.NoError(t, repo.Transition(ctx, r1.ID, models.TradeRequestStatusAccepted))

	t.Run("incoming is pending only and paginated", func(t *testing.T) {
		page, total, err := repo.ListIncoming(ctx, owner.ID, 1, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, page, 1)
		assert.Equal(t, r3.ID, page[0].ID)
		require.NotNil(t, page[0].FromUser)
		assert.Equal(t, buyerB.ID, page[0].FromUser.ID)
		require.NotNil(t, page[0].Post)

		page, _, err = repo.ListIncoming(ctx, owner.ID, 1, 1)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, r2.ID, page[0].ID)
	})

	t.Run("outgoing has every status", func(t *testing.T) {
		out, err := repo.ListOutgoing(ctx, buyerA.ID)
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.Equal(t, r2.ID, out[0].ID)
		assert.Equal(t, r1.ID, out[1].ID)
		assert.Equal(t, models.TradeRequestStatusAccepted, out[1].Status)
		require.NotNil(t, out[1].ToUser)
		assert.Equal(t, owner.ID, out[1].ToUser.ID)
	})

	t.Run("pending counts", func(t *testing.T) {
		n, err := repo.CountPending(ctx, owner.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		n, err = repo.CountPending(ctx, buyerA.ID)
		require.NoError(t, err)
		assert.Zero(t, n)

		all, err := repo.CountAllPending(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), all)
	})

	t.Run("mark read", func(t *testing.T) {
		require.NoError(t, repo.MarkRead(ctx, r2.ID))
		got, err := repo.GetByID(ctx, r2.ID)
		require.NoError(t, err)
		assert.True(t, got.Read)

		assert.True(t, models.IsCode(repo.MarkRead(ctx, 9999), models.CodeNotFound))
	})
}

func TestTradeRequestRepository_CountPendingSQL(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTradeRequestRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "trade_requests" WHERE to_user_id = $1 AND status = $2`)).
		WithArgs(7, models.TradeRequestStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := repo.CountPending(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
