// Command main seeds the database with demo users, trade posts and requests.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/config"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/database"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/models"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numPosts := flag.Int("posts", 200, "Number of trade posts to create")
	numRequests := flag.Int("requests", 300, "Number of trade requests to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	randSeed := flag.Int64("seed", 0, "Random seed for reproducible data (0 = time based)")
	flag.Parse()

	log.Printf("Target: %d users, %d posts, %d requests, clean=%v", *numUsers, *numPosts, *numRequests, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	catalog, err := seed.DefaultCatalog()
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	res, err := seed.NewSeeder(db, catalog, *randSeed).Run(ctx, seed.Options{
		NumUsers:    *numUsers,
		NumPosts:    *numPosts,
		NumRequests: *numRequests,
		ShouldClean: *shouldClean,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d users, %d posts, %d pending / %d accepted / %d rejected requests",
		res.Users, res.Posts,
		res.Requests[models.TradeRequestStatusPending],
		res.Requests[models.TradeRequestStatusAccepted],
		res.Requests[models.TradeRequestStatusRejected])
	log.Printf("All seeded users have the password: %s", seed.DemoPassword)
}
