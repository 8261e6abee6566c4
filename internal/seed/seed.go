// Package seed populates the database with demo users, trade posts and
// trade requests for development and testing.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/middleware"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoPassword is the password of every seeded user.
const DemoPassword = "password123"

const batchSize = 100

// Options configures a seeding run.
type Options struct {
	NumUsers    int
	NumPosts    int
	NumRequests int
	ShouldClean bool
	// RandSeed makes runs reproducible. Zero picks a time-based seed.
	RandSeed int64
	// PasswordCost overrides bcrypt.DefaultCost, mainly for tests.
	PasswordCost int
}

// Result counts what a run inserted.
type Result struct {
	Users    int
	Posts    int
	Requests map[models.TradeRequestStatus]int
}

// Seeder writes generated data through gorm.
type Seeder struct {
	db      *gorm.DB
	catalog *Catalog
	faker   *gofakeit.Faker
}

// NewSeeder returns a seeder drawing posts from catalog.
func NewSeeder(db *gorm.DB, catalog *Catalog, randSeed int64) *Seeder {
	if randSeed == 0 {
		randSeed = time.Now().UnixNano()
	}
	return &Seeder{db: db, catalog: catalog, faker: gofakeit.New(randSeed)}
}

// Run inserts users, then posts owned by them, then requests between them.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.NumUsers < 2 && opts.NumRequests > 0 {
		return nil, fmt.Errorf("at least 2 users are needed to seed trade requests")
	}

	if opts.ShouldClean {
		if err := s.ClearAll(ctx); err != nil {
			return nil, fmt.Errorf("clear data: %w", err)
		}
	}

	users, err := s.createUsers(ctx, opts.NumUsers, opts.PasswordCost)
	if err != nil {
		return nil, fmt.Errorf("create users: %w", err)
	}
	middleware.Logger.Info("seeded users", slog.Int("count", len(users)))

	posts, err := s.createPosts(ctx, users, opts.NumPosts)
	if err != nil {
		return nil, fmt.Errorf("create posts: %w", err)
	}
	middleware.Logger.Info("seeded trade posts", slog.Int("count", len(posts)))

	counts, err := s.createRequests(ctx, users, posts, opts.NumRequests)
	if err != nil {
		return nil, fmt.Errorf("create requests: %w", err)
	}
	middleware.Logger.Info("seeded trade requests",
		slog.Int("pending", counts[models.TradeRequestStatusPending]),
		slog.Int("accepted", counts[models.TradeRequestStatusAccepted]),
		slog.Int("rejected", counts[models.TradeRequestStatusRejected]))

	return &Result{Users: len(users), Posts: len(posts), Requests: counts}, nil
}

// ClearAll removes every user, post and request.
func (s *Seeder) ClearAll(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	if db.Dialector.Name() == "postgres" {
		return db.Exec(`TRUNCATE TABLE trade_requests, trade_posts, users RESTART IDENTITY CASCADE`).Error
	}
	for _, table := range []string{"trade_requests", "trade_posts", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) createUsers(ctx context.Context, count, cost int) ([]models.User, error) {
	if count <= 0 {
		return nil, nil
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), cost)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		base := strings.ToLower(s.faker.Username())
		if len(base) > 40 {
			base = base[:40]
		}
		username := fmt.Sprintf("%s%d", base, i+1)
		users = append(users, models.User{
			Username: username,
			Email:    username + "@example.com",
			Password: string(hash),
			Bio:      s.faker.Sentence(8),
			Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", username),
		})
	}
	if err := s.db.WithContext(ctx).CreateInBatches(&users, batchSize).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Seeder) buildPost(owner uint) models.TradePost {
	cat := s.catalog.Categories[s.faker.Number(0, len(s.catalog.Categories)-1)]
	item := s.faker.RandomString(cat.Items)
	condition := s.faker.RandomString(s.catalog.Conditions)

	tags := models.StringList{}
	if len(cat.Tags) > 0 {
		picked := append([]string(nil), cat.Tags...)
		s.faker.ShuffleStrings(picked)
		tags = append(tags, picked[:s.faker.Number(1, len(picked))]...)
	}

	createdAt := time.Now().Add(-time.Duration(s.faker.Number(0, 30*24)) * time.Hour)
	return models.TradePost{
		Title:       fmt.Sprintf("%s (%s)", item, strings.ToLower(condition)),
		Description: fmt.Sprintf("%s. %s", condition, s.faker.Sentence(12)),
		Images:      models.StringList{},
		Category:    cat.Name,
		Tags:        tags,
		Location:    s.faker.City(),
		CreatedBy:   owner,
		IsActive:    true,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

func (s *Seeder) createPosts(ctx context.Context, users []models.User, count int) ([]models.TradePost, error) {
	if count <= 0 || len(users) == 0 {
		return nil, nil
	}
	posts := make([]models.TradePost, 0, count)
	for i := 0; i < count; i++ {
		owner := users[s.faker.Number(0, len(users)-1)]
		posts = append(posts, s.buildPost(owner.ID))
	}
	if err := s.db.WithContext(ctx).CreateInBatches(&posts, batchSize).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

type pairKey struct {
	post, from uint
}

// createRequests keeps requests consistent with the live rules: the recipient is the
// post owner and a requester holds at most one pending request per post.
func (s *Seeder) createRequests(ctx context.Context, users []models.User, posts []models.TradePost, count int) (map[models.TradeRequestStatus]int, error) {
	counts := map[models.TradeRequestStatus]int{}
	if count <= 0 || len(posts) == 0 || len(users) < 2 {
		return counts, nil
	}

	statuses := []models.TradeRequestStatus{
		models.TradeRequestStatusPending,
		models.TradeRequestStatusAccepted,
		models.TradeRequestStatusRejected,
	}
	pending := map[pairKey]bool{}
	requests := make([]models.TradeRequest, 0, count)

	for i := 0; i < count; i++ {
		post := posts[s.faker.Number(0, len(posts)-1)]
		from := users[s.faker.Number(0, len(users)-1)]
		if from.ID == post.CreatedBy {
			continue
		}

		status := statuses[i%len(statuses)]
		key := pairKey{post: post.ID, from: from.ID}
		if status == models.TradeRequestStatusPending {
			if pending[key] {
				status = models.TradeRequestStatusRejected
			} else {
				pending[key] = true
			}
		}

		createdAt := post.CreatedAt.Add(time.Duration(s.faker.Number(1, 72)) * time.Hour)
		if createdAt.After(time.Now()) {
			createdAt = time.Now()
		}
		requests = append(requests, models.TradeRequest{
			PostID:     post.ID,
			FromUserID: from.ID,
			ToUserID:   post.CreatedBy,
			Message:    s.faker.Sentence(10),
			Status:     status,
			Read:       status != models.TradeRequestStatusPending || s.faker.Bool(),
			CreatedAt:  createdAt,
			UpdatedAt:  createdAt,
		})
		counts[status]++
	}

	if len(requests) == 0 {
		return counts, nil
	}
	if err := s.db.WithContext(ctx).CreateInBatches(&requests, batchSize).Error; err != nil {
		return nil, err
	}
	return counts, nil
}
