package seed

import (
	"context"
	"fmt"
	"log/slog"

	"scaffold/internal/auth"
	"scaffold/internal/middleware"
	"scaffold/internal/models"

	"gorm.io/gorm"
)

// Seeder writes generated data to the database.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	hasher  *auth.Hasher
}

// NewSeeder returns a Seeder writing to db.
func NewSeeder(db *gorm.DB, hasher *auth.Hasher, opts Options) *Seeder {
	return &Seeder{db: db, factory: NewFactory(opts), hasher: hasher}
}

// ClearAll deletes every post and user.
func (s *Seeder) ClearAll(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.BlogPost{}).Error; err != nil {
			return fmt.Errorf("clear posts: %w", err)
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.User{}).Error; err != nil {
			return fmt.Errorf("clear users: %w", err)
		}
		return nil
	})
}

// SeedUsers creates n accounts sharing DefaultPassword. The first one is an
// admin.
func (s *Seeder) SeedUsers(ctx context.Context, n int) ([]models.User, error) {
	if n <= 0 {
		return nil, nil
	}
	hash, err := s.hasher.HashPassword(DefaultPassword)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, n)
	for i := 0; i < n; i++ {
		users = append(users, *s.factory.BuildUser(hash, i == 0))
	}
	if err := s.db.WithContext(ctx).CreateInBatches(&users, 100).Error; err != nil {
		return nil, fmt.Errorf("seed users: %w", err)
	}
	return users, nil
}

// SeedPosts creates n posts written by admins among authors.
func (s *Seeder) SeedPosts(ctx context.Context, authors []models.User, n int) ([]models.BlogPost, error) {
	var admins []string
	for _, u := range authors {
		if u.Admin {
			admins = append(admins, u.Username)
		}
	}
	if n <= 0 || len(admins) == 0 {
		return nil, nil
	}

	posts := make([]models.BlogPost, 0, n)
	for i := 0; i < n; i++ {
		posts = append(posts, *s.factory.BuildPost(admins[i%len(admins)]))
	}
	if err := s.db.WithContext(ctx).CreateInBatches(&posts, 100).Error; err != nil {
		return nil, fmt.Errorf("seed posts: %w", err)
	}
	return posts, nil
}

// Run optionally clears the database and then seeds users and posts.
func (s *Seeder) Run(ctx context.Context, clean bool) error {
	if clean {
		if err := s.ClearAll(ctx); err != nil {
			return err
		}
	}

	users, err := s.SeedUsers(ctx, s.factory.opts.Users)
	if err != nil {
		return err
	}
	posts, err := s.SeedPosts(ctx, users, s.factory.opts.Posts)
	if err != nil {
		return err
	}

	middleware.Logger.InfoContext(ctx, "Seeding complete",
		slog.Int("users", len(users)),
		slog.Int("posts", len(posts)),
	)
	return nil
}
