// Package seed fills a database with demo accounts and blog posts for local
// development.
package seed

import (
	"fmt"
	"strings"
	"time"

	"scaffold/internal/models"

	"github.com/brianvoe/gofakeit/v6"
)

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "password123"

// Options tune what the Seeder generates.
type Options struct {
	Users int
	Posts int
	// MaxDays bounds how far back post dates are spread.
	MaxDays int
	// PublishRatio is the share of posts created live, between 0 and 1.
	PublishRatio float64
	// RandSeed makes output reproducible when non-zero.
	RandSeed int64
}

// Factory builds unsaved domain entities with fake content.
type Factory struct {
	faker *gofakeit.Faker
	opts  Options
	now   func() time.Time
	seq   int
}

// NewFactory returns a Factory. A zero RandSeed picks a random seed.
func NewFactory(opts Options) *Factory {
	if opts.MaxDays <= 0 {
		opts.MaxDays = 90
	}
	return &Factory{faker: gofakeit.New(opts.RandSeed), opts: opts, now: utcNow}
}

func utcNow() time.Time { return time.Now().UTC() }

// BuildUser returns a user whose username and email are unique within this
// factory. passwordHash is stored as is.
func (f *Factory) BuildUser(passwordHash string, admin bool) *models.User {
	f.seq++
	base := strings.ToLower(f.faker.Username())
	if len(base) > 40 {
		base = base[:40]
	}
	username := fmt.Sprintf("%s%d", base, f.seq)
	return &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: passwordHash,
		Admin:    admin,
	}
}

// BuildPost returns a post by author dated within the last MaxDays.
func (f *Factory) BuildPost(author string) *models.BlogPost {
	now := f.now()
	title := strings.TrimSuffix(f.faker.Sentence(f.faker.Number(3, 8)), ".")
	if len(title) > models.MaxTitleLength {
		title = title[:models.MaxTitleLength]
	}

	var content strings.Builder
	for i := 0; i < f.faker.Number(1, 4); i++ {
		content.WriteString("<p>")
		content.WriteString(f.faker.Paragraph(1, f.faker.Number(2, 6), 12, " "))
		content.WriteString("</p>")
	}

	return &models.BlogPost{
		Author:    author,
		Title:     title,
		Content:   content.String(),
		Date:      f.faker.DateRange(now.AddDate(0, 0, -f.opts.MaxDays), now).UTC(),
		Published: f.faker.Float64Range(0, 1) < f.opts.PublishRatio,
	}
}
