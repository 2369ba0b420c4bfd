// Command seed fills the database with demo users and posts.
package main

import (
	"context"
	"flag"
	"log"

	"scaffold/internal/auth"
	"scaffold/internal/config"
	"scaffold/internal/database"
	"scaffold/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 5, "Number of users to create; the first is an admin")
	numPosts := flag.Int("posts", 30, "Number of posts to create")
	publishRatio := flag.Float64("published", 0.7, "Share of posts created live")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	randSeed := flag.Int64("seed", 0, "Random seed, 0 for random")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db, auth.NewHasher(cfg.BcryptCost), seed.Options{
		Users:        *numUsers,
		Posts:        *numPosts,
		PublishRatio: *publishRatio,
		RandSeed:     *randSeed,
	})
	if err := s.Run(context.Background(), *shouldClean); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("📧 All seeded users have the password: %s", seed.DefaultPassword)
}
