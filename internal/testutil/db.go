// Package testutil provides shared test fixtures for backend tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/database"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var dbCounter atomic.Int64

// NewSQLiteDB returns an isolated in-memory database with the full schema.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=on", name, dbCounter.Add(1))

	db, err := database.OpenSQLite(dsn)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// CreateUser inserts a user with a unique username derived from prefix.
func CreateUser(t testing.TB, db *gorm.DB, prefix string) *models.User {
	t.Helper()
	n := dbCounter.Add(1)
	user := &models.User{
		Username: fmt.Sprintf("%s_%d", prefix, n),
		Email:    fmt.Sprintf("%s_%d@example.com", prefix, n),
		Password: "hashed",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreatePost inserts an active trade post owned by ownerID.
func CreatePost(t testing.TB, db *gorm.DB, ownerID uint, title string) *models.TradePost {
	t.Helper()
	post := &models.TradePost{
		Title:       title,
		Description: title + " in good condition",
		Images:      models.StringList{},
		Tags:        models.StringList{},
		Category:    models.DefaultTradeCategory,
		CreatedBy:   ownerID,
		IsActive:    true,
	}
	require.NoError(t, db.Create(post).Error)
	return post
}

// CreateRequest inserts a request with the given status and creation time,
// bypassing the create-time business checks.
func CreateRequest(t testing.TB, db *gorm.DB, post *models.TradePost, fromUserID uint, status models.TradeRequestStatus, createdAt time.Time) *models.TradeRequest {
	t.Helper()
	req := &models.TradeRequest{
		PostID:     post.ID,
		FromUserID: fromUserID,
		ToUserID:   post.CreatedBy,
		Status:     status,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
	require.NoError(t, db.Create(req).Error)
	return req
}
