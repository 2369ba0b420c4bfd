// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"time"

	"scaffold/internal/cache"
	"scaffold/internal/models"

	"gorm.io/gorm"
)

// PostRepository persists blog posts. It performs no authorization.
type PostRepository interface {
	Create(ctx context.Context, author, title, content string, at time.Time) (*models.BlogPost, error)
	GetByID(ctx context.Context, id uint) (*models.BlogPost, error)
	ListPublished(ctx context.Context) ([]models.BlogPost, error)
	ListAll(ctx context.Context) ([]models.BlogPost, error)
	Update(ctx context.Context, id uint, title, content string) (*models.BlogPost, error)
	Delete(ctx context.Context, id uint) error
	TogglePublish(ctx context.Context, id uint, at time.Time) (*models.BlogPost, error)
}

type postRepository struct {
	db    *gorm.DB
	cache *cache.Store
}

// NewPostRepository creates a post repository. store may be nil.
func NewPostRepository(db *gorm.DB, store *cache.Store) PostRepository {
	return &postRepository{db: db, cache: store}
}

func (r *postRepository) Create(ctx context.Context, author, title, content string, at time.Time) (*models.BlogPost, error) {
	post := &models.BlogPost{
		Author:  author,
		Title:   title,
		Content: content,
		Date:    at.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return post, nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.BlogPost, error) {
	var post models.BlogPost
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) ListPublished(ctx context.Context) ([]models.BlogPost, error) {
	posts := []models.BlogPost{}
	err := r.cache.Aside(ctx, cache.PublishedPostsKey, &posts, cache.PublishedPostsTTL, func() error {
		return r.newestFirst(ctx).Where("published = ?", true).Find(&posts).Error
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) ListAll(ctx context.Context) ([]models.BlogPost, error) {
	posts := []models.BlogPost{}
	if err := r.newestFirst(ctx).Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, id uint, title, content string) (*models.BlogPost, error) {
	res := r.db.WithContext(ctx).Model(&models.BlogPost{}).Where("id = ?", id).
		Updates(map[string]any{"title": title, "content": content})
	if err := r.mutated(ctx, res, id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.BlogPost{}, id)
	return r.mutated(ctx, res, id)
}

// TogglePublish flips published and stamps date in one UPDATE so concurrent
// toggles never lose a flip. Dates are stored in UTC so text-ordered
// drivers sort them correctly.
func (r *postRepository) TogglePublish(ctx context.Context, id uint, at time.Time) (*models.BlogPost, error) {
	res := r.db.WithContext(ctx).Model(&models.BlogPost{}).Where("id = ?", id).
		Updates(map[string]any{
			"published": gorm.Expr("NOT published"),
			"date":      at.UTC(),
		})
	if err := r.mutated(ctx, res, id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *postRepository) newestFirst(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Order("date DESC").Order("id DESC")
}

// mutated maps the outcome of a single-row write and drops the cached public list.
func (r *postRepository) mutated(ctx context.Context, res *gorm.DB, id uint) error {
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	r.cache.Invalidate(ctx, cache.PublishedPostsKey)
	return nil
}
