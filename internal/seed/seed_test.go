package seed

import (
	"context"
	"testing"
	"time"

	"scaffold/internal/auth"
	"scaffold/internal/models"
	"scaffold/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestFactory_BuildPost(t *testing.T) {
	f := NewFactory(Options{MaxDays: 30, PublishRatio: 1, RandSeed: 42})

	for i := 0; i < 20; i++ {
		p := f.BuildPost("admin")
		assert.Equal(t, "admin", p.Author)
		assert.NotEmpty(t, p.Title)
		assert.LessOrEqual(t, len(p.Title), models.MaxTitleLength)
		assert.Contains(t, p.Content, "<p>")
		assert.True(t, p.Published)
		assert.WithinDuration(t, time.Now(), p.Date, 31*24*time.Hour)
		assert.Equal(t, time.UTC, p.Date.Location())
	}
}

func TestFactory_UsersAreUnique(t *testing.T) {
	f := NewFactory(Options{RandSeed: 7})

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		u := f.BuildUser("hash", false)
		assert.False(t, seen[u.Username], "duplicate username %s", u.Username)
		seen[u.Username] = true
		assert.LessOrEqual(t, len(u.Email), 64)
	}
}

func TestSeeder_Run(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	hasher := auth.NewHasher(bcrypt.MinCost)

	s := NewSeeder(db, hasher, Options{Users: 3, Posts: 10, PublishRatio: 0.5, RandSeed: 1})
	require.NoError(t, s.Run(ctx, true))

	var users []models.User
	require.NoError(t, db.Order("id").Find(&users).Error)
	require.Len(t, users, 3)
	assert.True(t, users[0].Admin)
	assert.False(t, users[1].Admin)
	assert.True(t, hasher.VerifyPassword(users[1].Password, DefaultPassword))

	var posts []models.BlogPost
	require.NoError(t, db.Find(&posts).Error)
	require.Len(t, posts, 10)
	for _, p := range posts {
		assert.Equal(t, users[0].Username, p.Author)
	}

	// Running again with clean replaces rather than appends.
	require.NoError(t, s.Run(ctx, true))
	var count int64
	require.NoError(t, db.Model(&models.BlogPost{}).Count(&count).Error)
	assert.Equal(t, int64(10), count)
}
