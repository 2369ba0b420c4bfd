package repository

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"scaffold/internal/cache"
	"scaffold/internal/models"
	"scaffold/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newPostRepo(t *testing.T) (PostRepository, *cache.Store) {
	t.Helper()
	rdb, _ := testutil.NewRedis(t)
	store := cache.New(rdb)
	return NewPostRepository(testutil.NewDB(t), store), store
}

func TestPostRepository_CreateIsDraft(t *testing.T) {
	repo, _ := newPostRepo(t)
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	post, err := repo.Create(ctx, "admin", "Hello", "World", at)
	require.NoError(t, err)
	assert.NotZero(t, post.ID)
	assert.False(t, post.Published)

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin", got.Author)
	assert.False(t, got.Published)
	assert.True(t, at.Equal(got.Date))
}

func TestPostRepository_GetByID_NotFound(t *testing.T) {
	repo, _ := newPostRepo(t)

	_, err := repo.GetByID(context.Background(), 999)
	assert.True(t, models.IsNotFound(err))
}

func TestPostRepository_ListOrdering(t *testing.T) {
	repo, _ := newPostRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	older, err := repo.Create(ctx, "admin", "older", "c", base)
	require.NoError(t, err)
	newer, err := repo.Create(ctx, "admin", "newer", "c", base.Add(time.Hour))
	require.NoError(t, err)
	draft, err := repo.Create(ctx, "admin", "draft", "c", base.Add(2*time.Hour))
	require.NoError(t, err)

	_, err = repo.TogglePublish(ctx, older.ID, base.Add(3*time.Hour))
	require.NoError(t, err)
	_, err = repo.TogglePublish(ctx, newer.ID, base.Add(4*time.Hour))
	require.NoError(t, err)

	published, err := repo.ListPublished(ctx)
	require.NoError(t, err)
	require.Len(t, published, 2)
	assert.Equal(t, newer.ID, published[0].ID)
	assert.Equal(t, older.ID, published[1].ID)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []uint{newer.ID, older.ID, draft.ID}, []uint{all[0].ID, all[1].ID, all[2].ID})
}

func TestPostRepository_ListPublished_Empty(t *testing.T) {
	repo, _ := newPostRepo(t)

	posts, err := repo.ListPublished(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestPostRepository_TogglePublish(t *testing.T) {
	repo, _ := newPostRepo(t)
	ctx := context.Background()
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	first := created.Add(time.Hour)
	second := created.Add(2 * time.Hour)

	post, err := repo.Create(ctx, "admin", "t", "c", created)
	require.NoError(t, err)

	live, err := repo.TogglePublish(ctx, post.ID, first)
	require.NoError(t, err)
	assert.True(t, live.Published)
	assert.True(t, first.Equal(live.Date))

	draft, err := repo.TogglePublish(ctx, post.ID, second)
	require.NoError(t, err)
	assert.False(t, draft.Published)
	assert.True(t, second.Equal(draft.Date))
	assert.Equal(t, post.Title, draft.Title)
}

func TestPostRepository_MutationsOnMissingPost(t *testing.T) {
	repo, _ := newPostRepo(t)
	ctx := context.Background()

	_, err := repo.Update(ctx, 42, "t", "c")
	assert.True(t, models.IsNotFound(err), "update")

	err = repo.Delete(ctx, 42)
	assert.True(t, models.IsNotFound(err), "delete")

	_, err = repo.TogglePublish(ctx, 42, time.Now())
	assert.True(t, models.IsNotFound(err), "toggle")
}

func TestPostRepository_UpdateKeepsStateAndDate(t *testing.T) {
	repo, _ := newPostRepo(t)
	ctx := context.Background()
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	post, err := repo.Create(ctx, "admin", "before", "old", at)
	require.NoError(t, err)

	updated, err := repo.Update(ctx, post.ID, "after", "new")
	require.NoError(t, err)
	assert.Equal(t, "after", updated.Title)
	assert.Equal(t, "new", updated.Content)
	assert.False(t, updated.Published)
	assert.True(t, at.Equal(updated.Date))
}

func TestPostRepository_DeleteIsNotIdempotent(t *testing.T) {
	repo, _ := newPostRepo(t)
	ctx := context.Background()

	post, err := repo.Create(ctx, "admin", "t", "c", time.Now().UTC())
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, post.ID))
	assert.True(t, models.IsNotFound(repo.Delete(ctx, post.ID)))

	_, err = repo.GetByID(ctx, post.ID)
	assert.True(t, models.IsNotFound(err))
}

func TestPostRepository_MutationInvalidatesPublishedCache(t *testing.T) {
	repo, _ := newPostRepo(t)
	ctx := context.Background()
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	post, err := repo.Create(ctx, "admin", "t", "c", at)
	require.NoError(t, err)

	before, err := repo.ListPublished(ctx)
	require.NoError(t, err)
	assert.Empty(t, before)

	_, err = repo.TogglePublish(ctx, post.ID, at.Add(time.Minute))
	require.NoError(t, err)

	after, err := repo.ListPublished(ctx)
	require.NoError(t, err)
	require.Len(t, after, 1)

	_, err = repo.Update(ctx, post.ID, "renamed", "c")
	require.NoError(t, err)

	renamed, err := repo.ListPublished(ctx)
	require.NoError(t, err)
	require.Len(t, renamed, 1)
	assert.Equal(t, "renamed", renamed[0].Title)
}

func TestPostRepository_WithoutCache(t *testing.T) {
	repo := NewPostRepository(testutil.NewDB(t), nil)
	ctx := context.Background()

	post, err := repo.Create(ctx, "admin", "t", "c", time.Now().UTC())
	require.NoError(t, err)
	_, err = repo.TogglePublish(ctx, post.ID, time.Now().UTC())
	require.NoError(t, err)

	posts, err := repo.ListPublished(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestPostRepository_OrderingAcrossTimeZones(t *testing.T) {
	repo, _ := newPostRepo(t)
	ctx := context.Background()
	plusTwo := time.FixedZone("UTC+2", 2*60*60)

	// 13:00+02:00 is 11:00Z, an hour before the second post.
	older, err := repo.Create(ctx, "admin", "older", "c", time.Date(2024, 5, 1, 13, 0, 0, 0, plusTwo))
	require.NoError(t, err)
	newer, err := repo.Create(ctx, "admin", "newer", "c", time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, []uint{newer.ID, older.ID}, []uint{all[0].ID, all[1].ID})

	// Publishing the older post later in local time must move it to the top.
	_, err = repo.TogglePublish(ctx, newer.ID, time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, err = repo.TogglePublish(ctx, older.ID, time.Date(2024, 5, 2, 12, 30, 0, 0, plusTwo))
	require.NoError(t, err)

	published, err := repo.ListPublished(ctx)
	require.NoError(t, err)
	require.Len(t, published, 2)
	assert.Equal(t, older.ID, published[0].ID)
	assert.Equal(t, time.UTC, published[0].Date.Location())
}

func TestPostRepository_UnpublishDuringListIsNotCachedStale(t *testing.T) {
	rdb, _ := testutil.NewRedis(t)
	db := testutil.NewDB(t)
	repo := NewPostRepository(db, cache.New(rdb))
	ctx := context.Background()
	at := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	post, err := repo.Create(ctx, "admin", "secret", "content", at)
	require.NoError(t, err)
	_, err = repo.TogglePublish(ctx, post.ID, at.Add(time.Minute))
	require.NoError(t, err)

	// Unpublish right after the public list query reads its rows and before
	// the result reaches the cache.
	var armed atomic.Bool
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:unpublish_once", func(tx *gorm.DB) {
		if tx.Statement.Table != "blog_posts" || !armed.CompareAndSwap(true, false) {
			return
		}
		_, err := repo.TogglePublish(context.Background(), post.ID, at.Add(2*time.Minute))
		assert.NoError(t, err)
	}))

	armed.Store(true)
	_, err = repo.ListPublished(ctx)
	require.NoError(t, err)

	current, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.False(t, current.Published)

	later, err := repo.ListPublished(ctx)
	require.NoError(t, err)
	assert.Empty(t, later, "draft must not be served from the public list")
}
